// Package pkgdb indexes a parsed Sources corpus for reverse build-dependency
// queries.
//
// A [Database] is built once per run from the stanzas produced by
// [control.Parse] and is read-only afterwards. Every lookup is total: names
// absent from the corpus yield placeholder metadata, an identity source
// mapping, or empty lists, never an error. Absence is routine in an
// open-world package archive.
//
//	db, err := pkgdb.Load(f)
//	for _, d := range db.ReverseDependents("libbar", true) {
//	    fmt.Println(d.Name, d.Arch)
//	}
package pkgdb

import (
	"io"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/debimpact/pkg/control"
	"github.com/matzehuels/debimpact/pkg/observability"
)

const (
	// Unknown is the placeholder for missing section or architecture data.
	Unknown = "unknown"

	// ArchAll is the architecture value of packages that only build
	// architecture-independent artifacts.
	ArchAll = "all"

	// DefaultScanCacheSize bounds the reverse-dependency scan memo.
	DefaultScanCacheSize = 4096
)

// Record is one source stanza of the corpus.
type Record struct {
	Name              string   // Source package name (unique key)
	Section           string   // Section, "unknown" if absent
	Architecture      string   // Raw Architecture field
	Homepage          string   // Homepage URL, may be empty
	BuildDepends      string   // Raw Build-Depends value
	BuildDependsIndep string   // Raw Build-Depends-Indep value
	Binaries          []string // Produced binary package names, in field order
}

// IsPureAll reports whether the record only builds architecture-independent
// packages.
func (r Record) IsPureAll() bool { return r.Architecture == ArchAll }

// Metadata is the per-package information carried into reports.
type Metadata struct {
	Category string `json:"category"`
	Arch     string `json:"arch"`
	Homepage string `json:"homepage"`
}

// UnknownMetadata is returned for packages absent from the database.
var UnknownMetadata = Metadata{Category: Unknown, Arch: Unknown, Homepage: ""}

// Dependent is one match of a reverse-dependency scan.
type Dependent struct {
	Name string
	Metadata
}

// entry pairs a record with its pre-parsed build-dependency names.
type entry struct {
	rec  Record
	deps []string
}

type scanKey struct {
	target string
	filter bool
}

// Database is the in-memory index over parsed stanzas.
// It is immutable after construction and safe for concurrent readers.
type Database struct {
	entries  []entry
	byName   map[string]int
	bySource map[string]string // binary -> first producing source
	scans    *lru.Cache[scanKey, []Dependent]
}

// Option configures a Database.
type Option func(*options)

type options struct {
	scanCacheSize int
}

// WithScanCache sets the number of memoised reverse-dependency scans.
// A size of zero or less disables memoisation.
func WithScanCache(size int) Option {
	return func(o *options) { o.scanCacheSize = size }
}

// New builds a Database from parsed stanzas. Records keep the position of a
// name's first appearance; a later stanza with the same name replaces the
// earlier record (last wins).
func New(stanzas []control.Stanza, opts ...Option) *Database {
	start := time.Now()
	o := options{scanCacheSize: DefaultScanCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	db := &Database{
		byName:   make(map[string]int, len(stanzas)),
		bySource: make(map[string]string),
	}
	for _, s := range stanzas {
		e := newEntry(s)
		if i, ok := db.byName[e.rec.Name]; ok {
			db.entries[i] = e
			continue
		}
		db.byName[e.rec.Name] = len(db.entries)
		db.entries = append(db.entries, e)
	}
	for _, e := range db.entries {
		for _, bin := range e.rec.Binaries {
			if _, ok := db.bySource[bin]; !ok {
				db.bySource[bin] = e.rec.Name
			}
		}
	}
	if o.scanCacheSize > 0 {
		db.scans, _ = lru.New[scanKey, []Dependent](o.scanCacheSize)
	}

	observability.Database().OnLoad(len(db.entries), time.Since(start))
	return db
}

// Load parses a corpus from r and builds a Database from it.
func Load(r io.Reader, opts ...Option) (*Database, error) {
	stanzas, err := control.Parse(r)
	if err != nil {
		return nil, err
	}
	return New(stanzas, opts...), nil
}

func newEntry(s control.Stanza) entry {
	section := s.Get(control.FieldSection)
	if section == "" {
		section = Unknown
	}
	rec := Record{
		Name:              s.Name(),
		Section:           section,
		Architecture:      s.Get(control.FieldArchitecture),
		Homepage:          s.Get(control.FieldHomepage),
		BuildDepends:      s.Get(control.FieldBuildDepends),
		BuildDependsIndep: s.Get(control.FieldBuildDependsIndep),
		Binaries:          control.SplitList(s.Get(control.FieldBinary)),
	}
	deps := append(control.ParseDepends(rec.BuildDepends), control.ParseDepends(rec.BuildDependsIndep)...)
	return entry{rec: rec, deps: deps}
}

// Len returns the number of distinct source packages.
func (db *Database) Len() int { return len(db.entries) }

// Names returns all source package names in corpus order.
func (db *Database) Names() []string {
	names := make([]string, len(db.entries))
	for i, e := range db.entries {
		names[i] = e.rec.Name
	}
	return names
}

// Lookup returns the record for name.
func (db *Database) Lookup(name string) (Record, bool) {
	i, ok := db.byName[name]
	if !ok {
		return Record{}, false
	}
	rec := db.entries[i].rec
	rec.Binaries = slices.Clone(rec.Binaries)
	return rec, true
}

// Metadata returns the report metadata for name, or [UnknownMetadata] when
// the name is absent. A present record without an Architecture field reports
// "unknown" as its arch.
func (db *Database) Metadata(name string) Metadata {
	i, ok := db.byName[name]
	if !ok {
		return UnknownMetadata
	}
	return db.entries[i].rec.metadata()
}

func (r Record) metadata() Metadata {
	arch := r.Architecture
	if arch == "" {
		arch = Unknown
	}
	return Metadata{Category: r.Section, Arch: arch, Homepage: r.Homepage}
}

// SourceOf returns the source package producing binary. The first record in
// corpus order wins; names no record produces map to themselves.
func (db *Database) SourceOf(binary string) string {
	if src, ok := db.bySource[binary]; ok {
		return src
	}
	return binary
}

// BinariesOf returns the binaries produced by source, or nil if the source
// is unknown or produces nothing.
func (db *Database) BinariesOf(source string) []string {
	i, ok := db.byName[source]
	if !ok {
		return nil
	}
	return slices.Clone(db.entries[i].rec.Binaries)
}

// ReverseDependents returns every record whose Build-Depends or
// Build-Depends-Indep names target, in corpus order. With filterPureAll,
// records whose architecture is exactly "all" are left out.
//
// Each call is a full pass over the records unless the answer is memoised.
// The returned slice must not be modified.
func (db *Database) ReverseDependents(target string, filterPureAll bool) []Dependent {
	key := scanKey{target: target, filter: filterPureAll}
	if db.scans != nil {
		if deps, ok := db.scans.Get(key); ok {
			observability.Database().OnScan(target, filterPureAll, len(deps), true)
			return deps
		}
	}

	var out []Dependent
	for _, e := range db.entries {
		if filterPureAll && e.rec.IsPureAll() {
			continue
		}
		if slices.Contains(e.deps, target) {
			out = append(out, Dependent{Name: e.rec.Name, Metadata: e.rec.metadata()})
		}
	}

	if db.scans != nil {
		db.scans.Add(key, out)
	}
	observability.Database().OnScan(target, filterPureAll, len(out), false)
	return out
}
