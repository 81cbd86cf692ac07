package pkgdb

import (
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/debimpact/pkg/control"
)

func load(t *testing.T, corpus string, opts ...Option) *Database {
	t.Helper()
	db, err := Load(strings.NewReader(corpus), opts...)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return db
}

func names(deps []Dependent) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.Name
	}
	return out
}

func TestReverseDependentsScenario(t *testing.T) {
	db := load(t, `Package: libfoo
Architecture: any
Build-Depends: libbar (>= 1.0)
`)
	got := db.ReverseDependents("libbar", false)
	if len(got) != 1 || got[0].Name != "libfoo" {
		t.Fatalf("ReverseDependents(libbar) = %v, want [libfoo]", names(got))
	}
	if got[0].Arch != "any" {
		t.Errorf("Arch = %q, want any", got[0].Arch)
	}
	if got[0].Category != Unknown {
		t.Errorf("Category = %q, want %q", got[0].Category, Unknown)
	}
}

func TestBinaryMappingScenario(t *testing.T) {
	db := load(t, `Package: toolchain-src
Binary: gcc-pkg, g++-pkg
`)
	if got := db.BinariesOf("toolchain-src"); !slices.Equal(got, []string{"gcc-pkg", "g++-pkg"}) {
		t.Errorf("BinariesOf() = %v", got)
	}
	if got := db.SourceOf("g++-pkg"); got != "toolchain-src" {
		t.Errorf("SourceOf(g++-pkg) = %q, want toolchain-src", got)
	}
}

func TestFilterPureAllScenario(t *testing.T) {
	db := load(t, `Package: native
Architecture: any
Build-Depends: libbase

Package: noarch
Architecture: all
Build-Depends-Indep: libbase
`)
	if got := names(db.ReverseDependents("libbase", true)); !slices.Equal(got, []string{"native"}) {
		t.Errorf("filtered = %v, want [native]", got)
	}
	if got := names(db.ReverseDependents("libbase", false)); !slices.Equal(got, []string{"native", "noarch"}) {
		t.Errorf("unfiltered = %v, want [native noarch]", got)
	}
}

func TestFilterPureAllIsVerbatim(t *testing.T) {
	db := load(t, `Package: mixed
Architecture: all amd64
Build-Depends: libbase

Package: upper
Architecture: ALL
Build-Depends: libbase
`)
	got := names(db.ReverseDependents("libbase", true))
	if !slices.Equal(got, []string{"mixed", "upper"}) {
		t.Errorf("ReverseDependents() = %v, want both records", got)
	}
}

func TestReverseDependentsCombinesFields(t *testing.T) {
	db := load(t, `Package: a
Build-Depends: x
Build-Depends-Indep: target

Package: b
Build-Depends: target:native, y

Package: c
Build-Depends: other | target
`)
	got := names(db.ReverseDependents("target", false))
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("ReverseDependents() = %v, want [a b] (second alternative ignored)", got)
	}
}

func TestMetadataTotal(t *testing.T) {
	db := load(t, `Package: known
Section: devel
Homepage: https://known.example

Package: bare
`)
	tests := []struct {
		name string
		want Metadata
	}{
		{"known", Metadata{Category: "devel", Arch: Unknown, Homepage: "https://known.example"}},
		{"bare", Metadata{Category: Unknown, Arch: Unknown}},
		{"absent", UnknownMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := db.Metadata(tt.name); got != tt.want {
				t.Errorf("Metadata(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}

	if got := db.BinariesOf("absent"); len(got) != 0 {
		t.Errorf("BinariesOf(absent) = %v, want empty", got)
	}
	if got := db.SourceOf("absent"); got != "absent" {
		t.Errorf("SourceOf(absent) = %q, want identity", got)
	}
	if _, ok := db.Lookup("absent"); ok {
		t.Error("Lookup(absent) should report false")
	}
}

func TestSourceOfInverse(t *testing.T) {
	db := load(t, `Package: s1
Binary: a, b

Package: s2
Binary: c

Package: s3
`)
	for _, src := range db.Names() {
		for _, bin := range db.BinariesOf(src) {
			if got := db.SourceOf(bin); got != src {
				t.Errorf("SourceOf(%q) = %q, want %q", bin, got, src)
			}
		}
	}
}

func TestSourceOfFirstMatchWins(t *testing.T) {
	db := load(t, `Package: first
Binary: shared

Package: second
Binary: shared
`)
	if got := db.SourceOf("shared"); got != "first" {
		t.Errorf("SourceOf(shared) = %q, want first", got)
	}
}

func TestDuplicateNameLastWins(t *testing.T) {
	db := New(control.ParseString(`Package: dup
Section: old
Build-Depends: x

Package: other

Package: dup
Section: new
Build-Depends: y
`))
	if db.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", db.Len())
	}
	if got := db.Names(); !slices.Equal(got, []string{"dup", "other"}) {
		t.Errorf("Names() = %v, want first-appearance order", got)
	}
	rec, _ := db.Lookup("dup")
	if rec.Section != "new" {
		t.Errorf("Section = %q, want new", rec.Section)
	}
	if got := db.ReverseDependents("x", false); len(got) != 0 {
		t.Errorf("overwritten Build-Depends still matched: %v", names(got))
	}
	if got := names(db.ReverseDependents("y", false)); !slices.Equal(got, []string{"dup"}) {
		t.Errorf("ReverseDependents(y) = %v", got)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	db := load(t, "Package: s\nBinary: a, b\n")
	rec, ok := db.Lookup("s")
	if !ok {
		t.Fatal("Lookup(s) failed")
	}
	rec.Binaries[0] = "mutated"
	if got := db.BinariesOf("s"); got[0] != "a" {
		t.Errorf("Lookup result aliases database state: %v", got)
	}
}

func TestScanCacheTransparent(t *testing.T) {
	corpus := `Package: a
Build-Depends: t

Package: b
Architecture: all
Build-Depends: t
`
	cached := load(t, corpus)
	uncached := load(t, corpus, WithScanCache(0))

	for _, filter := range []bool{false, true, false, true} {
		got := names(cached.ReverseDependents("t", filter))
		want := names(uncached.ReverseDependents("t", filter))
		if !slices.Equal(got, want) {
			t.Errorf("filter=%v: cached %v != uncached %v", filter, got, want)
		}
	}
}
