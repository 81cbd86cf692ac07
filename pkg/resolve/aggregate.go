package resolve

import (
	"strings"

	"github.com/matzehuels/debimpact/pkg/pkgdb"
)

// Entry is one dependent in an aggregated report.
type Entry struct {
	Name string `json:"package"`
	pkgdb.Metadata
	Chains []string `json:"chains"`
}

// DependencyChain joins the entry's chains with commas.
func (e Entry) DependencyChain() string { return strings.Join(e.Chains, ",") }

// Aggregator merges per-target results into one entry per dependent name.
// Chains are compared as formatted strings; the first result that mentions a
// dependent fixes its metadata.
type Aggregator struct {
	order   []string
	entries map[string]*aggEntry
}

type aggEntry struct {
	Entry
	seen map[string]struct{}
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[string]*aggEntry)}
}

// Add merges res into the aggregate.
func (a *Aggregator) Add(res *Result) {
	if res == nil {
		return
	}
	for _, d := range res.Dependents {
		e := a.entry(d.Name, d.Metadata)
		for _, c := range d.Chains {
			e.addChain(c.String())
		}
	}
}

// AddChain records a single formatted chain for name. It lets callers merge
// chains from sources other than a [Result], such as a stored report.
func (a *Aggregator) AddChain(name string, meta pkgdb.Metadata, chain string) {
	a.entry(name, meta).addChain(chain)
}

func (a *Aggregator) entry(name string, meta pkgdb.Metadata) *aggEntry {
	if e, ok := a.entries[name]; ok {
		return e
	}
	e := &aggEntry{
		Entry: Entry{Name: name, Metadata: meta},
		seen:  make(map[string]struct{}),
	}
	a.entries[name] = e
	a.order = append(a.order, name)
	return e
}

func (e *aggEntry) addChain(s string) {
	if _, ok := e.seen[s]; ok {
		return
	}
	e.seen[s] = struct{}{}
	e.Chains = append(e.Chains, s)
}

// Len returns the number of distinct dependents.
func (a *Aggregator) Len() int { return len(a.order) }

// Entries returns the merged entries in first-seen order. The returned
// entries do not alias the aggregator's state.
func (a *Aggregator) Entries() []Entry {
	out := make([]Entry, len(a.order))
	for i, name := range a.order {
		e := a.entries[name].Entry
		e.Chains = append([]string(nil), e.Chains...)
		out[i] = e
	}
	return out
}
