package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/debimpact/pkg/cache"
	"github.com/matzehuels/debimpact/pkg/corpus"
	"github.com/matzehuels/debimpact/pkg/httputil"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
	"github.com/matzehuels/debimpact/pkg/resolve"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it does not
// keep results. Multiple goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// CorpusTTL bounds how long downloaded payloads are reused.
	CorpusTTL time.Duration
	// HTTPClient overrides the download client.
	HTTPClient *http.Client
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		CorpusTTL: cache.TTLCorpus,
	}
}

// Execute runs the complete load → parse → resolve pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	loadStart := time.Now()
	c, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Corpus = c
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.CorpusHit = c.Cached

	r.Logger.Info("loaded corpus",
		"source", c.Source,
		"bytes", len(c.Data),
		"cached", c.Cached,
		"duration", result.Stats.LoadTime)

	parseStart := time.Now()
	db, err := c.Database(pkgdb.WithScanCache(pkgdb.DefaultScanCacheSize))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Database = db
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Packages = db.Len()

	r.Logger.Info("parsed corpus",
		"packages", db.Len(),
		"digest", c.Digest,
		"duration", result.Stats.ParseTime)

	resolveStart := time.Now()
	report, hit, err := r.ResolveWithCacheInfo(ctx, db, c.Digest, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Report = report
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.CacheInfo.ReportHit = hit

	r.Logger.Info("resolved dependents",
		"mode", report.Mode,
		"targets", len(report.Targets),
		"dependents", len(report.Entries),
		"cached", hit,
		"duration", result.Stats.ResolveTime)

	return result, nil
}

// Load reads or downloads the corpus named by opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*corpus.Corpus, error) {
	if opts.CorpusPath != "" {
		r.Logger.Debug("reading corpus file", "path", opts.CorpusPath)
		return corpus.Open(opts.CorpusPath)
	}
	url := opts.URL
	if url == "" {
		url = corpus.URL("", "", "")
	}
	f := corpus.NewFetcher(corpus.Options{
		HTTPClient: r.HTTPClient,
		Cache:      r.Cache,
		Keyer:      r.Keyer,
		TTL:        r.CorpusTTL,
		Logger:     r.Logger.Debugf,
	})
	return f.Fetch(ctx, url, opts.Refresh)
}

// ResolveWithCacheInfo resolves opts.Targets over db and returns whether the
// report came from the cache. digest identifies the corpus db was built
// from; an empty digest disables report caching.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, db *pkgdb.Database, digest string, opts Options) (*resolve.Report, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	resolver := resolve.New(db, opts.Resolve)
	key := r.Keyer.ReportKey(digest, cache.ReportKeyOpts{
		Mode:          string(opts.Mode),
		Targets:       opts.Targets,
		FilterPureAll: opts.Resolve.FilterPureAll,
		MaxDepth:      resolver.MaxDepth(opts.Mode),
	})

	reports := httputil.NewCache(r.Cache, cache.TTLReport)
	if digest != "" && !opts.Refresh {
		var cached resolve.Report
		if hit, err := reports.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	report, err := resolver.ResolveTargets(ctx, opts.Mode, opts.Targets)
	if err != nil {
		return nil, false, err
	}
	report.CorpusDigest = digest

	if digest != "" {
		if err := reports.Set(ctx, key, report); err != nil {
			r.Logger.Warn("caching report failed", "error", err)
		}
	}
	return report, false, nil
}

// Resolve is ResolveWithCacheInfo without the cache hit info.
func (r *Runner) Resolve(ctx context.Context, db *pkgdb.Database, digest string, opts Options) (*resolve.Report, error) {
	report, _, err := r.ResolveWithCacheInfo(ctx, db, digest, opts)
	return report, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
