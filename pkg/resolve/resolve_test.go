package resolve

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/observability"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
)

// diamond: a needs libb and libc, b and c both need target.
const diamond = `Package: base-src
Binary: target

Package: b
Architecture: any
Binary: libb
Build-Depends: target

Package: c
Architecture: any
Binary: libc
Build-Depends: target (>= 1.0)

Package: a
Section: utils
Architecture: any
Binary: a-bin
Build-Depends: libb, libc
`

func load(t *testing.T, corpus string) *pkgdb.Database {
	t.Helper()
	db, err := pkgdb.Load(strings.NewReader(corpus))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return db
}

// chainsOf formats a result as name -> formatted chains.
func chainsOf(deps []*Dependent) map[string][]string {
	out := make(map[string][]string, len(deps))
	for _, d := range deps {
		for _, c := range d.Chains {
			out[d.Name] = append(out[d.Name], c.String())
		}
	}
	return out
}

func TestResolveBinaryDiamond(t *testing.T) {
	r := New(load(t, diamond), Options{})
	res := r.ResolveBinary(context.Background(), "target")

	want := map[string][]string{
		"b": {"target -> b"},
		"c": {"target -> c"},
		"a": {"target -> b -> a", "target -> c -> a"},
	}
	if got := chainsOf(res.Dependents); !reflect.DeepEqual(got, want) {
		t.Errorf("chains = %v, want %v", got, want)
	}
	if res.Truncated {
		t.Error("Truncated = true for a shallow graph")
	}
}

func TestResolveSourceDiamond(t *testing.T) {
	r := New(load(t, diamond), Options{})
	res := r.ResolveSource(context.Background(), "base-src")

	want := map[string][]string{
		"b": {"base-src -> b"},
		"c": {"base-src -> c"},
		"a": {"base-src -> b -> a", "base-src -> c -> a"},
	}
	if got := chainsOf(res.Dependents); !reflect.DeepEqual(got, want) {
		t.Errorf("chains = %v, want %v", got, want)
	}
	if res.Mode != ModeSource {
		t.Errorf("Mode = %q, want source", res.Mode)
	}
}

func TestResolveSourceSelfBuildDependency(t *testing.T) {
	db := load(t, `Package: rustc
Architecture: any
Binary: rustc, libstd-rust-dev
Build-Depends: rustc

Package: foo
Architecture: any
Binary: foo-bin
Build-Depends: rustc
`)
	res := New(db, Options{}).ResolveSource(context.Background(), "rustc")
	want := map[string][]string{
		"rustc": {"rustc -> rustc"},
		"foo":   {"rustc -> foo"},
	}
	if got := chainsOf(res.Dependents); !reflect.DeepEqual(got, want) {
		t.Errorf("chains = %v, want %v", got, want)
	}
	if res.Truncated {
		t.Error("Truncated = true for a two-package corpus")
	}
}

func TestExpandFromBinaryDirectNotOverwritten(t *testing.T) {
	db := load(t, `Package: b
Binary: libb
Build-Depends: target

Package: c
Binary: libc
Build-Depends: target, libb
`)
	exp := New(db, Options{}).ExpandFromBinary("target", nil, 0, DefaultMaxDepth)

	if !slices.Equal(exp.Order, []string{"b", "c"}) {
		t.Fatalf("Order = %v, want [b c]", exp.Order)
	}
	c := exp.Dependents["c"]
	if len(c.Chains) != 1 || c.Chains[0].String() != "c" {
		t.Errorf("direct dependent c chains = %v, want only [c]", c.Chains)
	}
}

func TestExpandFromBinaryCycleTerminates(t *testing.T) {
	db := load(t, `Package: x
Binary: libx
Build-Depends: liby

Package: y
Binary: liby
Build-Depends: libx
`)
	res := New(db, Options{}).ResolveBinary(context.Background(), "libx")
	want := map[string][]string{
		"y": {"libx -> y"},
		"x": {"libx -> y -> x"},
	}
	if got := chainsOf(res.Dependents); !reflect.DeepEqual(got, want) {
		t.Errorf("chains = %v, want %v", got, want)
	}
}

func TestResolveBinaryExcludesTarget(t *testing.T) {
	db := load(t, `Package: foo
Binary: foo
Build-Depends: bar

Package: bar
Binary: bar
Build-Depends: foo
`)
	res := New(db, Options{}).ResolveBinary(context.Background(), "foo")
	for _, d := range res.Dependents {
		if d.Name == "foo" {
			t.Errorf("target reported as its own dependent: %v", d.Chains)
		}
	}
	if len(res.Dependents) != 1 || res.Dependents[0].Name != "bar" {
		t.Errorf("Dependents = %v, want [bar]", chainsOf(res.Dependents))
	}
}

func TestExpandFromBinarySelfLoopGuard(t *testing.T) {
	db := load(t, `Package: gcc
Binary: gcc-bin, gcc-doc
Build-Depends: gcc-bin
`)
	exp := New(db, Options{}).ExpandFromBinary("gcc-bin", nil, 0, DefaultMaxDepth)
	if exp.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", exp.Len())
	}
	if got := exp.Dependents["gcc"].Chains; len(got) != 1 || got[0].String() != "gcc" {
		t.Errorf("gcc chains = %v", got)
	}
}

// linear builds s1 <- s2 <- ... <- sn where s<i> needs b<i-1>.
func linear(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "Package: s%d\nBinary: b%d\nBuild-Depends: b%d\n\n", i, i, i-1)
	}
	return sb.String()
}

func TestExpandFromBinaryDepthBound(t *testing.T) {
	db := load(t, linear(8))
	r := New(db, Options{})

	for _, k := range []int{0, 1, 2, 5} {
		t.Run(fmt.Sprintf("max_depth_%d", k), func(t *testing.T) {
			exp := r.ExpandFromBinary("b0", nil, 0, k)
			longest := 0
			for _, d := range exp.List() {
				for _, c := range d.Chains {
					longest = max(longest, len(c))
				}
			}
			if longest > k+1 {
				t.Errorf("longest chain = %d, want <= %d", longest, k+1)
			}
			if longest != k+1 {
				t.Errorf("longest chain = %d, want cap reached at %d", longest, k+1)
			}
			if !exp.Truncated {
				t.Error("Truncated = false although the chain continues past the cap")
			}
		})
	}

	if exp := r.ExpandFromBinary("b0", nil, 0, DefaultMaxDepth); exp.Truncated || exp.Len() != 8 {
		t.Errorf("default cap: Len() = %d, Truncated = %v", exp.Len(), exp.Truncated)
	}
}

// countingDB counts reverse-dependency scans per target.
type countingDB struct {
	Database
	scans map[string]int
}

func (c *countingDB) ReverseDependents(target string, filterPureAll bool) []pkgdb.Dependent {
	c.scans[target]++
	return c.Database.ReverseDependents(target, filterPureAll)
}

func TestExpandFromBinaryFrontierScansStopAtFirstTruncation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Package: p\nBinary: p1, p2, p3, p4\nBuild-Depends: b0\n\n")
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&sb, "Package: q%d\nBinary: q%d-bin\nBuild-Depends: p%d\n\n", i, i, i)
	}
	db := &countingDB{Database: load(t, sb.String()), scans: map[string]int{}}

	exp := New(db, Options{}).ExpandFromBinary("b0", nil, 0, 0)
	if !exp.Truncated {
		t.Fatal("Truncated = false although q1..q4 lie past the cap")
	}
	if exp.Len() != 1 {
		t.Errorf("Len() = %d, want only p", exp.Len())
	}
	frontier := 0
	for _, bin := range []string{"p1", "p2", "p3", "p4"} {
		frontier += db.scans[bin]
	}
	if frontier != 1 {
		t.Errorf("frontier scans = %d, want 1 (%v)", frontier, db.scans)
	}
}

func TestExpandIdempotent(t *testing.T) {
	r := New(load(t, diamond+"\n"+linear(4)), Options{})
	first := chainsOf(r.ExpandFromBinary("target", nil, 0, DefaultMaxDepth).List())
	second := chainsOf(r.ExpandFromBinary("target", nil, 0, DefaultMaxDepth).List())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expansions differ:\n%v\n%v", first, second)
	}
}

func TestFilterPureAll(t *testing.T) {
	db := load(t, `Package: native
Architecture: any
Binary: native-bin
Build-Depends: libbase

Package: docs
Architecture: all
Binary: docs-bin
Build-Depends: libbase

Package: user
Architecture: all
Build-Depends: native-bin
`)
	tests := []struct {
		filter bool
		want   []string
	}{
		{true, []string{"native"}},
		{false, []string{"native", "docs", "user"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("filter=%v", tt.filter), func(t *testing.T) {
			res := New(db, Options{FilterPureAll: tt.filter}).ResolveBinary(context.Background(), "libbase")
			var got []string
			for _, d := range res.Dependents {
				if tt.filter && d.Arch == pkgdb.ArchAll {
					t.Errorf("pure-all dependent %q not filtered", d.Name)
				}
				got = append(got, d.Name)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("dependents = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnknownTargets(t *testing.T) {
	r := New(load(t, diamond), Options{})
	ctx := context.Background()

	if res := r.ResolveBinary(ctx, "missing"); len(res.Dependents) != 0 || res.Truncated {
		t.Errorf("ResolveBinary(missing) = %+v", res)
	}
	if res := r.ResolveSource(ctx, "missing"); len(res.Dependents) != 0 {
		t.Errorf("ResolveSource(missing) = %+v", res)
	}
	if res := r.ResolveSource(ctx, "a"); len(res.Dependents) != 0 {
		t.Errorf("ResolveSource(a) = %v, want nothing depends on a-bin", chainsOf(res.Dependents))
	}
}

func TestResolveTargetsValidation(t *testing.T) {
	r := New(load(t, diamond), Options{})
	ctx := context.Background()

	for _, targets := range [][]string{nil, {}, {"", "  "}} {
		if _, err := r.ResolveBinaryTargets(ctx, targets); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ResolveBinaryTargets(%q) error = %v, want INVALID_INPUT", targets, err)
		}
	}
	if _, err := r.ResolveSourceTargets(ctx, []string{"../etc"}); !errors.Is(err, errors.ErrCodeInvalidPackage) {
		t.Errorf("ResolveSourceTargets(../etc) error = %v, want INVALID_PACKAGE", err)
	}
	if _, err := r.ResolveTargets(ctx, Mode("graph"), []string{"target"}); !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("ResolveTargets(graph) error = %v, want INVALID_MODE", err)
	}
}

func TestResolveTargetsAcceptsNonDebianNames(t *testing.T) {
	r := New(load(t, `Package: a
Architecture: any
Binary: a-bin
Build-Depends: X
`), Options{})
	ctx := context.Background()

	report, err := r.ResolveBinaryTargets(ctx, []string{"X"})
	if err != nil {
		t.Fatalf("ResolveBinaryTargets(X) error: %v", err)
	}
	if got := chainsOf(report.Results[0].Dependents); !reflect.DeepEqual(got, map[string][]string{"a": {"X -> a"}}) {
		t.Errorf("chains = %v, want a via X", got)
	}

	report, err = r.ResolveBinaryTargets(ctx, []string{"Unknown"})
	if err != nil {
		t.Fatalf("ResolveBinaryTargets(Unknown) error: %v", err)
	}
	if len(report.Entries) != 0 {
		t.Errorf("Entries = %v, want none", report.Entries)
	}
}

func TestResolveBinaryTargetsReport(t *testing.T) {
	r := New(load(t, diamond), Options{FilterPureAll: true})
	report, err := r.ResolveBinaryTargets(context.Background(), []string{" target ", "libb", "target"})
	if err != nil {
		t.Fatalf("ResolveBinaryTargets() error: %v", err)
	}

	if !slices.Equal(report.Targets, []string{"target", "libb"}) {
		t.Errorf("Targets = %v, want normalised [target libb]", report.Targets)
	}
	if report.ID == "" || report.CreatedAt.IsZero() {
		t.Errorf("report missing identity: id=%q created=%v", report.ID, report.CreatedAt)
	}
	if report.MaxDepth != DefaultMaxDepth || !report.FilterPureAll {
		t.Errorf("MaxDepth = %d, FilterPureAll = %v", report.MaxDepth, report.FilterPureAll)
	}
	if len(report.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(report.Results))
	}

	var a *Entry
	for i := range report.Entries {
		if report.Entries[i].Name == "a" {
			a = &report.Entries[i]
		}
	}
	if a == nil {
		t.Fatal("a missing from entries")
	}
	want := "target -> b -> a,target -> c -> a,libb -> a"
	if got := a.DependencyChain(); got != want {
		t.Errorf("DependencyChain() = %q, want %q", got, want)
	}
	if a.Category != "utils" || a.Arch != "any" {
		t.Errorf("metadata = %+v", a.Metadata)
	}
}

func TestResolveSourceTargetsUsesSourceDepth(t *testing.T) {
	db := load(t, "Package: s0\nBinary: b0\n\n"+linear(8))
	r := New(db, Options{SourceMaxDepth: 2})
	report, err := r.ResolveSourceTargets(context.Background(), []string{"s0"})
	if err != nil {
		t.Fatalf("ResolveSourceTargets() error: %v", err)
	}
	if report.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", report.MaxDepth)
	}
	if !report.Truncated {
		t.Error("Truncated = false with a depth cap below the chain length")
	}
	for _, e := range report.Entries {
		for _, c := range e.Chains {
			if n := len(strings.Split(c, ChainSeparator)); n > 4 {
				t.Errorf("chain %q has %d packages, want <= 4", c, n)
			}
		}
	}
}

type recordingHooks struct {
	observability.NoopResolveHooks
	mu        sync.Mutex
	truncated []string
	completed int
	lastCount int
}

func (h *recordingHooks) OnTruncated(_ context.Context, target string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.truncated = append(h.truncated, target)
}

func (h *recordingHooks) OnResolveComplete(_ context.Context, _ string, _ []string, n int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed++
	h.lastCount = n
}

func TestResolveHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetResolveHooks(hooks)
	defer observability.Reset()

	r := New(load(t, linear(6)), Options{MaxDepth: 1})
	if _, err := r.ResolveBinaryTargets(context.Background(), []string{"b0"}); err != nil {
		t.Fatalf("ResolveBinaryTargets() error: %v", err)
	}
	if !slices.Equal(hooks.truncated, []string{"b0"}) {
		t.Errorf("OnTruncated targets = %v, want [b0]", hooks.truncated)
	}
	if hooks.completed != 1 || hooks.lastCount != 2 {
		t.Errorf("OnResolveComplete calls = %d, dependents = %d", hooks.completed, hooks.lastCount)
	}
}
