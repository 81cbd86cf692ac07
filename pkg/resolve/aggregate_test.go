package resolve

import (
	"slices"
	"testing"

	"github.com/matzehuels/debimpact/pkg/pkgdb"
)

func TestAggregator(t *testing.T) {
	devel := pkgdb.Metadata{Category: "devel", Arch: "any"}
	other := pkgdb.Metadata{Category: "libs", Arch: "all"}

	agg := NewAggregator()
	agg.Add(&Result{Target: "t1", Dependents: []*Dependent{
		{Name: "x", Metadata: devel, Chains: []Chain{{"t1", "x"}}},
		{Name: "y", Metadata: devel, Chains: []Chain{{"t1", "x", "y"}}},
	}})
	agg.Add(&Result{Target: "t2", Dependents: []*Dependent{
		{Name: "y", Metadata: other, Chains: []Chain{{"t2", "y"}, {"t1", "x", "y"}}},
		{Name: "z", Metadata: other, Chains: []Chain{{"t2", "z"}}},
	}})
	agg.Add(nil)

	if agg.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", agg.Len())
	}
	entries := agg.Entries()

	var order []string
	for _, e := range entries {
		order = append(order, e.Name)
	}
	if !slices.Equal(order, []string{"x", "y", "z"}) {
		t.Errorf("order = %v, want first-seen [x y z]", order)
	}

	y := entries[1]
	if !slices.Equal(y.Chains, []string{"t1 -> x -> y", "t2 -> y"}) {
		t.Errorf("y chains = %v", y.Chains)
	}
	if y.Metadata != devel {
		t.Errorf("y metadata = %+v, want first writer %+v", y.Metadata, devel)
	}
	if got := y.DependencyChain(); got != "t1 -> x -> y,t2 -> y" {
		t.Errorf("DependencyChain() = %q", got)
	}
}

func TestAggregatorExactStringDedup(t *testing.T) {
	agg := NewAggregator()
	meta := pkgdb.UnknownMetadata
	agg.AddChain("p", meta, "a -> p")
	agg.AddChain("p", meta, "a -> p")
	agg.AddChain("p", meta, "a->p")

	got := agg.Entries()[0].Chains
	if !slices.Equal(got, []string{"a -> p", "a->p"}) {
		t.Errorf("chains = %v, want differently formatted chains kept apart", got)
	}
}

func TestAggregatorEntriesDoNotAlias(t *testing.T) {
	agg := NewAggregator()
	agg.AddChain("p", pkgdb.UnknownMetadata, "a -> p")
	entries := agg.Entries()
	entries[0].Chains[0] = "mutated"

	if got := agg.Entries()[0].Chains[0]; got != "a -> p" {
		t.Errorf("Entries() aliases internal state: %q", got)
	}
}

func TestChainAndVisited(t *testing.T) {
	c := Chain{"b", "c"}
	p := c.Prepend("a")
	if p.String() != "a -> b -> c" || c.String() != "b -> c" {
		t.Errorf("Prepend: got %q, receiver %q", p, c)
	}
	if p.Dependent() != "c" || (Chain{}).Dependent() != "" {
		t.Error("Dependent() mismatch")
	}

	var empty *Visited
	if empty.Contains("a") || empty.Len() != 0 {
		t.Error("nil Visited should be empty")
	}
	parent := NewVisited("a")
	left := parent.With("b")
	right := parent.With("c")
	if !left.Contains("a") || !left.Contains("b") || left.Contains("c") {
		t.Error("left branch sees wrong names")
	}
	if right.Contains("b") || parent.Contains("b") {
		t.Error("sibling branch leaked into another branch")
	}
	if left.Len() != 2 {
		t.Errorf("Len() = %d, want 2", left.Len())
	}
}
