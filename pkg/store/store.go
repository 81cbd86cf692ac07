// Package store keeps a history of resolution reports.
//
// [MongoStore] persists reports in MongoDB so that a team can look up past
// impact analyses by id. [MemoryStore] keeps them in process and backs tests
// and single-user server runs.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
	"github.com/matzehuels/debimpact/pkg/resolve"
)

// DefaultLimit bounds [Store.Recent] when the caller passes no limit.
const DefaultLimit = 20

// Store persists reports.
type Store interface {
	Save(ctx context.Context, r *resolve.Report) error
	Get(ctx context.Context, id string) (*resolve.Report, error)
	Recent(ctx context.Context, limit int) ([]Summary, error)
	Close(ctx context.Context) error
}

// Summary is a report header for listings.
type Summary struct {
	ID           string       `json:"id" bson:"_id"`
	Mode         resolve.Mode `json:"mode" bson:"mode"`
	Targets      []string     `json:"targets" bson:"targets"`
	Dependents   int          `json:"dependents" bson:"dependents"`
	CorpusDigest string       `json:"corpus_digest" bson:"corpus_digest"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
}

// document is the stored form of a report. Per-target results are not
// stored; the aggregated entries carry every chain.
type document struct {
	ID            string       `bson:"_id"`
	Mode          resolve.Mode `bson:"mode"`
	Targets       []string     `bson:"targets"`
	FilterPureAll bool         `bson:"filter_pure_all"`
	MaxDepth      int          `bson:"max_depth"`
	CorpusDigest  string       `bson:"corpus_digest"`
	CreatedAt     time.Time    `bson:"created_at"`
	Truncated     bool         `bson:"truncated"`
	Dependents    int          `bson:"dependents"`
	Entries       []entryDoc   `bson:"entries"`
}

type entryDoc struct {
	Package  string   `bson:"package"`
	Category string   `bson:"category"`
	Arch     string   `bson:"arch"`
	Homepage string   `bson:"homepage,omitempty"`
	Chains   []string `bson:"chains"`
}

func toDocument(r *resolve.Report) document {
	d := document{
		ID:            r.ID,
		Mode:          r.Mode,
		Targets:       r.Targets,
		FilterPureAll: r.FilterPureAll,
		MaxDepth:      r.MaxDepth,
		CorpusDigest:  r.CorpusDigest,
		CreatedAt:     r.CreatedAt.UTC().Truncate(time.Millisecond),
		Truncated:     r.Truncated,
		Dependents:    len(r.Entries),
		Entries:       make([]entryDoc, len(r.Entries)),
	}
	for i, e := range r.Entries {
		d.Entries[i] = entryDoc{
			Package:  e.Name,
			Category: e.Category,
			Arch:     e.Arch,
			Homepage: e.Homepage,
			Chains:   e.Chains,
		}
	}
	return d
}

func (d document) report() *resolve.Report {
	r := &resolve.Report{
		ID:            d.ID,
		Mode:          d.Mode,
		Targets:       d.Targets,
		FilterPureAll: d.FilterPureAll,
		MaxDepth:      d.MaxDepth,
		CorpusDigest:  d.CorpusDigest,
		CreatedAt:     d.CreatedAt,
		Truncated:     d.Truncated,
		Entries:       make([]resolve.Entry, len(d.Entries)),
	}
	for i, e := range d.Entries {
		r.Entries[i] = resolve.Entry{
			Name:     e.Package,
			Metadata: pkgdb.Metadata{Category: e.Category, Arch: e.Arch, Homepage: e.Homepage},
			Chains:   e.Chains,
		}
	}
	return r
}

func (d document) summary() Summary {
	return Summary{
		ID:           d.ID,
		Mode:         d.Mode,
		Targets:      d.Targets,
		Dependents:   d.Dependents,
		CorpusDigest: d.CorpusDigest,
		CreatedAt:    d.CreatedAt,
	}
}

// checkID validates a report id before it reaches a backend.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid report id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeReportNotFound, "no report with id %s", id)
}

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []document
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Save(_ context.Context, r *resolve.Report) error {
	if err := checkID(r.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := toDocument(r)
	if i := slices.IndexFunc(s.docs, func(x document) bool { return x.ID == d.ID }); i >= 0 {
		s.docs[i] = d
		return nil
	}
	s.docs = append(s.docs, d)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*resolve.Report, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.docs {
		if d.ID == id {
			return d.report(), nil
		}
	}
	return nil, notFound(id)
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := slices.Clone(s.docs)
	slices.SortStableFunc(docs, func(a, b document) int { return b.CreatedAt.Compare(a.CreatedAt) })
	out := make([]Summary, 0, min(limit, len(docs)))
	for _, d := range docs[:min(limit, len(docs))] {
		out = append(out, d.summary())
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
