package control

import (
	"regexp"
	"strings"
)

var (
	versionRE = regexp.MustCompile(`\([^)]*\)`)
	archRE    = regexp.MustCompile(`\[[^\]]*\]`)
	profileRE = regexp.MustCompile(`<[^>]*>`)
)

// variableSigil marks substitution variables such as ${misc:Depends}.
const variableSigil = "$"

// ParseDepends reduces a dependency field value to plain package names, one
// per comma-separated expression at most. Version constraints, architecture
// lists and build profiles are stripped, only the first alternative of an
// OR-group is kept, multiarch qualifiers are dropped, and variables vanish.
// Duplicates are preserved in order of appearance.
func ParseDepends(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	var names []string
	for _, expr := range strings.Split(field, ",") {
		if name := ParseExpression(expr); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ParseExpression normalizes a single dependency expression such as
// "libfoo (>= 1.2) [amd64] | libbar" to "libfoo". It returns "" for empty or
// variable-only expressions.
func ParseExpression(expr string) string {
	expr = versionRE.ReplaceAllString(expr, "")
	expr = archRE.ReplaceAllString(expr, "")
	expr = profileRE.ReplaceAllString(expr, "")

	first, _, _ := strings.Cut(expr, "|")
	name := strings.TrimSpace(first)
	if name == "" || strings.HasPrefix(name, variableSigil) {
		return ""
	}
	if base, _, ok := strings.Cut(name, ":"); ok {
		name = base
	}
	return name
}
