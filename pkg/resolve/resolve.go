package resolve

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/observability"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
)

const (
	// DefaultMaxDepth caps binary-mode traversal.
	DefaultMaxDepth = 10

	// DefaultSourceMaxDepth caps the traversal of each binary in source mode.
	DefaultSourceMaxDepth = 5
)

// Mode selects how targets are interpreted.
type Mode string

const (
	ModeBinary Mode = "binary" // targets are binary package names
	ModeSource Mode = "source" // targets are source package names
)

// ParseMode parses "binary" or "source".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBinary, ModeSource:
		return Mode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown mode %q (want binary or source)", s)
}

// Database is the read-only view of a package database the resolver needs.
// [*pkgdb.Database] satisfies it.
type Database interface {
	ReverseDependents(target string, filterPureAll bool) []pkgdb.Dependent
	BinariesOf(source string) []string
	Metadata(name string) pkgdb.Metadata
}

// Options configures a Resolver.
type Options struct {
	MaxDepth       int  // Binary-mode depth cap (default 10)
	SourceMaxDepth int  // Source-mode depth cap (default 5)
	FilterPureAll  bool // Skip dependents whose Architecture is exactly "all"
}

// WithDefaults returns a copy with zero caps replaced by the defaults.
func (o Options) WithDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.SourceMaxDepth <= 0 {
		o.SourceMaxDepth = DefaultSourceMaxDepth
	}
	return o
}

// depthFor returns the cap that applies to mode.
func (o Options) depthFor(mode Mode) int {
	if mode == ModeSource {
		return o.SourceMaxDepth
	}
	return o.MaxDepth
}

// Dependent is one package found by an expansion with every distinct chain
// that reaches it.
type Dependent struct {
	Name string `json:"package"`
	pkgdb.Metadata
	Chains []Chain `json:"chains"`

	seen map[string]struct{}
}

// addChain appends c unless a chain with the same formatted string is
// already recorded.
func (d *Dependent) addChain(c Chain) bool {
	s := c.String()
	if _, ok := d.seen[s]; ok {
		return false
	}
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	d.seen[s] = struct{}{}
	d.Chains = append(d.Chains, c)
	return true
}

// Expansion is the output of one expansion call. Order lists dependents in
// discovery order.
type Expansion struct {
	Order      []string
	Dependents map[string]*Dependent

	// Truncated is set when the depth cap stopped a branch that still had
	// reverse dependents to visit.
	Truncated bool
}

func newExpansion() *Expansion {
	return &Expansion{Dependents: make(map[string]*Dependent)}
}

// Len returns the number of dependents.
func (e *Expansion) Len() int { return len(e.Order) }

// List returns the dependents in discovery order.
func (e *Expansion) List() []*Dependent {
	out := make([]*Dependent, len(e.Order))
	for i, name := range e.Order {
		out[i] = e.Dependents[name]
	}
	return out
}

// add returns the dependent for name, creating it with meta if absent.
func (e *Expansion) add(name string, meta pkgdb.Metadata) *Dependent {
	if d, ok := e.Dependents[name]; ok {
		return d
	}
	d := &Dependent{Name: name, Metadata: meta}
	e.Dependents[name] = d
	e.Order = append(e.Order, name)
	return d
}

// Resolver expands reverse build-dependency closures over a Database.
// A Resolver holds no mutable state and may be shared between goroutines as
// long as the Database is.
type Resolver struct {
	db   Database
	opts Options
}

// New creates a Resolver. Zero depth caps take their defaults.
func New(db Database, opts Options) *Resolver {
	return &Resolver{db: db, opts: opts.WithDefaults()}
}

// Options returns the effective options.
func (r *Resolver) Options() Options { return r.opts }

// MaxDepth returns the depth cap applied in mode.
func (r *Resolver) MaxDepth(mode Mode) int { return r.opts.depthFor(mode) }

// ExpandFromBinary finds every source package that transitively
// build-depends on the binary target. visited holds source names already on
// the current path; they are neither reported nor expanded. Chains start at
// the first dependent, not at target.
//
// Direct dependents are recorded with their one-hop chain and never take a
// deeper chain at this level. Dependents found further down collect every
// distinct chain, so a package reached through two intermediates keeps both.
//
// Past maxDepth the call still scans target once to learn whether anything
// was cut off. A parent stops issuing these frontier scans as soon as one
// reports truncation, and the database scan cache absorbs repeats.
func (r *Resolver) ExpandFromBinary(target string, visited *Visited, depth, maxDepth int) *Expansion {
	exp := newExpansion()
	direct := r.db.ReverseDependents(target, r.opts.FilterPureAll)

	if depth > maxDepth {
		for _, d := range direct {
			if !visited.Contains(d.Name) {
				exp.Truncated = true
				break
			}
		}
		return exp
	}

	own := make(map[string]bool, len(direct))
	for _, d := range direct {
		if visited.Contains(d.Name) || own[d.Name] {
			continue
		}
		own[d.Name] = true
		exp.add(d.Name, d.Metadata).addChain(Chain{d.Name})
	}

	for _, d := range direct {
		if visited.Contains(d.Name) {
			continue
		}
		branch := visited.With(d.Name)
		for _, bin := range r.db.BinariesOf(d.Name) {
			if bin == target {
				continue
			}
			if depth+1 > maxDepth && exp.Truncated {
				break
			}
			sub := r.ExpandFromBinary(bin, branch, depth+1, maxDepth)
			if sub.Truncated {
				exp.Truncated = true
			}
			for _, name := range sub.Order {
				if own[name] {
					continue
				}
				sd := sub.Dependents[name]
				dep := exp.add(name, sd.Metadata)
				for _, c := range sd.Chains {
					dep.addChain(c.Prepend(d.Name))
				}
			}
		}
	}
	return exp
}

// ExpandFromSource expands every binary produced by source with the
// source-mode depth cap and prefixes each chain with source. A source that
// is unknown or produces nothing yields an empty expansion. A source that
// build-depends on one of its own binaries is reported with a one-hop chain.
func (r *Resolver) ExpandFromSource(source string) *Expansion {
	exp := newExpansion()
	for _, bin := range r.db.BinariesOf(source) {
		sub := r.ExpandFromBinary(bin, nil, 0, r.opts.SourceMaxDepth)
		if sub.Truncated {
			exp.Truncated = true
		}
		for _, name := range sub.Order {
			sd := sub.Dependents[name]
			dep := exp.add(name, sd.Metadata)
			for _, c := range sd.Chains {
				dep.addChain(c.Prepend(source))
			}
		}
	}
	return exp
}

// Result is the resolution of a single target.
type Result struct {
	Target     string       `json:"target"`
	Mode       Mode         `json:"mode"`
	Dependents []*Dependent `json:"dependents"`
	Truncated  bool         `json:"truncated,omitempty"`
}

// ResolveBinary resolves one binary target. Chains are rooted at the target
// ("target -> dependent -> ..."), and the target itself is never reported.
func (r *Resolver) ResolveBinary(ctx context.Context, target string) *Result {
	exp := r.ExpandFromBinary(target, nil, 0, r.opts.MaxDepth)
	res := &Result{Target: target, Mode: ModeBinary, Truncated: exp.Truncated}
	for _, d := range exp.List() {
		if d.Name == target {
			continue
		}
		rooted := &Dependent{Name: d.Name, Metadata: d.Metadata}
		for _, c := range d.Chains {
			rooted.addChain(c.Prepend(target))
		}
		res.Dependents = append(res.Dependents, rooted)
	}
	if res.Truncated {
		observability.Resolve().OnTruncated(ctx, target, r.opts.MaxDepth)
	}
	return res
}

// ResolveSource resolves one source target. Chains are rooted at the source.
func (r *Resolver) ResolveSource(ctx context.Context, source string) *Result {
	exp := r.ExpandFromSource(source)
	res := &Result{Target: source, Mode: ModeSource, Dependents: exp.List(), Truncated: exp.Truncated}
	if res.Truncated {
		observability.Resolve().OnTruncated(ctx, source, r.opts.SourceMaxDepth)
	}
	return res
}

// Report is a complete multi-target resolution: the per-target results and
// their aggregate.
type Report struct {
	ID            string    `json:"id"`
	Mode          Mode      `json:"mode"`
	Targets       []string  `json:"targets"`
	FilterPureAll bool      `json:"filter_pure_all"`
	MaxDepth      int       `json:"max_depth"`
	CorpusDigest  string    `json:"corpus_digest,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	Results       []*Result `json:"results"`
	Entries       []Entry   `json:"entries"`
	Truncated     bool      `json:"truncated,omitempty"`
}

// ResolveBinaryTargets resolves each binary target and aggregates the
// results. Targets are trimmed and deduplicated; an empty list is an
// INVALID_INPUT error. Unknown targets contribute empty results.
func (r *Resolver) ResolveBinaryTargets(ctx context.Context, targets []string) (*Report, error) {
	return r.ResolveTargets(ctx, ModeBinary, targets)
}

// ResolveSourceTargets is ResolveBinaryTargets for source targets.
func (r *Resolver) ResolveSourceTargets(ctx context.Context, targets []string) (*Report, error) {
	return r.ResolveTargets(ctx, ModeSource, targets)
}

// ResolveTargets resolves targets in the given mode.
func (r *Resolver) ResolveTargets(ctx context.Context, mode Mode, targets []string) (report *Report, err error) {
	start := time.Now()
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, string(mode), targets)
	defer func() {
		n := 0
		if report != nil {
			n = len(report.Entries)
		}
		hooks.OnResolveComplete(ctx, string(mode), targets, n, time.Since(start), err)
	}()

	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	targets, err = errors.NormalizeTargets(targets)
	if err != nil {
		return nil, err
	}

	report = &Report{
		ID:            uuid.NewString(),
		Mode:          mode,
		Targets:       targets,
		FilterPureAll: r.opts.FilterPureAll,
		MaxDepth:      r.opts.depthFor(mode),
		CreatedAt:     time.Now().UTC(),
	}
	agg := NewAggregator()
	for _, t := range targets {
		var res *Result
		if mode == ModeSource {
			res = r.ResolveSource(ctx, t)
		} else {
			res = r.ResolveBinary(ctx, t)
		}
		report.Results = append(report.Results, res)
		report.Truncated = report.Truncated || res.Truncated
		agg.Add(res)
	}
	report.Entries = agg.Entries()
	return report, nil
}
