// Package pipeline runs the load → parse → resolve pipeline for debimpact.
//
// The CLI and the HTTP server share this package so that both load corpora,
// cache reports and log progress the same way.
//
// # Stages
//
//  1. Load: read a local Sources file or download one (cached by URL)
//  2. Parse: build the package database from the control text
//  3. Resolve: compute reverse build-dependents of every target (cached by
//     corpus digest and options)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    URL:     corpus.URL("", "bookworm", ""),
//	    Mode:    resolve.ModeBinary,
//	    Targets: []string{"libssl3"},
//	})
//	for _, e := range result.Report.Entries {
//	    fmt.Println(e.Name, e.DependencyChain())
//	}
package pipeline

import (
	"time"

	"github.com/matzehuels/debimpact/pkg/corpus"
	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
	"github.com/matzehuels/debimpact/pkg/resolve"
)

// Options configures a pipeline run.
type Options struct {
	// Corpus source: a local file wins over URL. Both empty means the
	// default Debian mirror.
	CorpusPath string `json:"corpus_path,omitempty"`
	URL        string `json:"url,omitempty"`

	Mode    resolve.Mode    `json:"mode"`
	Targets []string        `json:"targets"`
	Resolve resolve.Options `json:"resolve"`

	// Refresh revalidates the corpus download and recomputes the report.
	Refresh bool `json:"refresh,omitempty"`
}

// Validate checks options that can be checked before any I/O and fills in
// defaults. Targets are normalized in place.
func (o *Options) Validate() error {
	if o.Mode == "" {
		o.Mode = resolve.ModeBinary
	}
	mode, err := resolve.ParseMode(string(o.Mode))
	if err != nil {
		return err
	}
	o.Mode = mode
	o.Targets, err = errors.NormalizeTargets(o.Targets)
	if err != nil {
		return err
	}
	o.Resolve = o.Resolve.WithDefaults()
	if o.CorpusPath == "" && o.URL == "" {
		o.URL = corpus.URL("", "", "")
	}
	return nil
}

// Source describes where the corpus comes from.
func (o *Options) Source() string {
	if o.CorpusPath != "" {
		return o.CorpusPath
	}
	return o.URL
}

// Result holds everything a run produced.
type Result struct {
	Corpus    *corpus.Corpus
	Database  *pkgdb.Database
	Report    *resolve.Report
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records stage timings.
type Stats struct {
	LoadTime    time.Duration
	ParseTime   time.Duration
	ResolveTime time.Duration
	Packages    int
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	CorpusHit bool
	ReportHit bool
}
