// Package control parses Debian control-file corpora such as the archive's
// Sources index.
//
// # Stanzas
//
// A corpus is a sequence of RFC822-style stanzas separated by blank lines.
// [Parse] turns it into a slice of [Stanza] values in input order:
//
//	stanzas, err := control.Parse(f)
//	byName := control.Index(stanzas) // later duplicates win
//
// The parser is tolerant: lines that neither start a field nor continue one
// are skipped, and stanzas without a Package field are dropped. The only
// error it reports is a failure to read the underlying stream.
//
// # Dependency fields
//
// [ParseDepends] reduces a Build-Depends style field to plain package names.
// Version constraints, architecture lists, build profiles and multiarch
// qualifiers are dropped, and only the first alternative of an OR-group is
// kept:
//
//	control.ParseDepends("libfoo (>= 1.2) [amd64] | libbar, ${misc:Depends}")
//	// []string{"libfoo"}
package control
