package control

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// Field names consumed from Sources stanzas.
const (
	FieldPackage           = "Package"
	FieldBinary            = "Binary"
	FieldArchitecture      = "Architecture"
	FieldSection           = "Section"
	FieldHomepage          = "Homepage"
	FieldBuildDepends      = "Build-Depends"
	FieldBuildDependsIndep = "Build-Depends-Indep"
)

// maxLineSize bounds a single corpus line. Build-Depends of large source
// packages run to tens of kilobytes, past bufio's 64 KiB default in practice.
const maxLineSize = 1 << 20

// Stanza is one paragraph of a control file, keyed by field name.
type Stanza map[string]string

// Name returns the stanza's Package field.
func (s Stanza) Name() string { return s.Get(FieldPackage) }

// Get returns the value of field, falling back to a case-insensitive match
// since control-file field names are case-insensitive. Parsed stanzas hold
// one key per field; for a hand-built stanza with several spellings the
// lexically smallest key wins.
func (s Stanza) Get(field string) string {
	if v, ok := s[field]; ok {
		return v
	}
	if k := s.key(field); k != "" {
		return s[k]
	}
	return ""
}

// key returns the stored spelling of field, or "" when absent.
func (s Stanza) key(field string) string {
	if _, ok := s[field]; ok {
		return field
	}
	for _, k := range slices.Sorted(maps.Keys(s)) {
		if strings.EqualFold(k, field) {
			return k
		}
	}
	return ""
}

// lineKind classifies a single corpus line.
type lineKind int

const (
	lineBlank lineKind = iota
	lineField
	lineContinuation
	lineMalformed
)

func classify(line string) lineKind {
	switch {
	case strings.TrimSpace(line) == "":
		return lineBlank
	case line[0] == ' ' || line[0] == '\t':
		return lineContinuation
	case strings.Contains(line, ":"):
		return lineField
	default:
		return lineMalformed
	}
}

// parser is the stanza state machine. It is outside a stanza when cur is
// empty, and inside a field when field is non-empty.
type parser struct {
	out   []Stanza
	cur   Stanza
	field string
}

func (p *parser) feed(line string) {
	switch classify(line) {
	case lineBlank:
		p.commit()
	case lineContinuation:
		if p.field == "" {
			return
		}
		if text := strings.TrimSpace(line); text != "" {
			if p.cur[p.field] == "" {
				p.cur[p.field] = text
			} else {
				p.cur[p.field] += " " + text
			}
		}
	case lineField:
		name, value, _ := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if p.cur == nil {
			p.cur = make(Stanza)
		}
		// A repeated field in any case overwrites the first spelling.
		if k := p.cur.key(name); k != "" {
			name = k
		}
		p.cur[name] = strings.TrimSpace(value)
		p.field = name
	case lineMalformed:
		// Tolerated: skipped without touching parser state.
	}
}

func (p *parser) commit() {
	if len(p.cur) > 0 && p.cur.Name() != "" {
		p.out = append(p.out, p.cur)
	}
	p.cur = nil
	p.field = ""
}

// Parse reads a control-file corpus and returns its stanzas in input order.
// Stanzas lacking a Package value are dropped. Duplicate package names are
// all returned; use [Index] for last-wins lookup.
func Parse(r io.Reader) ([]Stanza, error) {
	p := &parser{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		p.feed(strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	p.commit()
	return p.out, nil
}

// ParseString is a convenience wrapper around [Parse] for in-memory corpora.
func ParseString(s string) []Stanza {
	stanzas, _ := Parse(strings.NewReader(s))
	return stanzas
}

// Index maps stanzas by package name. Later stanzas overwrite earlier ones
// with the same name, mirroring sequential parse order.
func Index(stanzas []Stanza) map[string]Stanza {
	m := make(map[string]Stanza, len(stanzas))
	for _, s := range stanzas {
		m[s.Name()] = s
	}
	return m
}

// SplitList splits a comma-separated field such as Binary into trimmed,
// non-empty names.
func SplitList(field string) []string {
	if field == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(field, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
