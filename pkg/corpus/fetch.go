package corpus

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/debimpact/pkg/buildinfo"
	"github.com/matzehuels/debimpact/pkg/cache"
	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/httputil"
	"github.com/matzehuels/debimpact/pkg/observability"
)

const (
	defaultTimeout    = 5 * time.Minute
	defaultRetries    = 3
	defaultRetryDelay = time.Second
)

// Options configures a Fetcher. The zero value downloads without caching.
type Options struct {
	HTTPClient *http.Client         // Default: 5 minute timeout
	Cache      cache.Cache          // Raw payload store (default: none)
	Keyer      cache.Keyer          // Default: cache.DefaultKeyer
	TTL        time.Duration        // Payload lifetime (default cache.TTLCorpus)
	Retries    int                  // Attempts per download (default 3)
	RetryDelay time.Duration        // Initial backoff (default 1s)
	Logger     func(string, ...any) // Progress callback (optional)
}

// WithDefaults returns a copy with every unset field filled in.
func (o Options) WithDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.TTL == 0 {
		o.TTL = cache.TTLCorpus
	}
	if o.Retries <= 0 {
		o.Retries = defaultRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	if o.Logger == nil {
		o.Logger = func(string, ...any) {}
	}
	return o
}

// Fetcher downloads and caches Sources indexes. It is safe for concurrent
// use if its cache is.
type Fetcher struct {
	opts Options
	meta *httputil.Cache
}

// fetchRecord is stored next to each cached payload.
type fetchRecord struct {
	httputil.Validators
	FetchedAt time.Time `json:"fetched_at"`
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts Options) *Fetcher {
	opts = opts.WithDefaults()
	return &Fetcher{
		opts: opts,
		meta: httputil.NewCache(opts.Cache, opts.TTL).Namespace("fetch:"),
	}
}

// Fetch returns the corpus at rawURL. A cached payload is used unless
// refresh is set; with refresh, a cached payload is revalidated with a
// conditional request and reused if the server answers 304.
//
// A 404 is a NOT_FOUND error; network failures and other statuses are
// NETWORK_ERROR after retries; an undecodable payload is INVALID_CORPUS.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, refresh bool) (*Corpus, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	key := f.opts.Keyer.CorpusKey(rawURL)

	cached, hit, err := f.opts.Cache.Get(ctx, key)
	if err != nil {
		f.opts.Logger("cache read failed: %v", err)
		hit = false
	}
	var rec fetchRecord
	if hit {
		_, _ = f.meta.Get(ctx, key, &rec)
		if !refresh {
			c, err := newCorpus(rawURL, cached, rec.FetchedAt, true)
			if err == nil {
				f.opts.Logger("using cached corpus from %s", rec.FetchedAt.Format(time.DateTime))
				return c, nil
			}
			f.opts.Logger("discarding unreadable cached corpus: %v", err)
			_ = f.opts.Cache.Delete(ctx, key)
			hit = false
		}
	}

	var validators httputil.Validators
	if hit {
		validators = rec.Validators
	}
	raw, fresh, err := f.download(ctx, rawURL, validators)
	if err != nil {
		return nil, err
	}
	if !fresh.modified {
		f.opts.Logger("corpus not modified since %s", rec.FetchedAt.Format(time.DateTime))
		return newCorpus(rawURL, cached, rec.FetchedAt, true)
	}

	now := time.Now().UTC()
	if err := f.opts.Cache.Set(ctx, key, raw, f.opts.TTL); err != nil {
		f.opts.Logger("cache write failed: %v", err)
	} else {
		_ = f.meta.Set(ctx, key, fetchRecord{Validators: fresh.validators, FetchedAt: now})
	}
	return newCorpus(rawURL, raw, now, false)
}

type downloadResult struct {
	modified   bool
	validators httputil.Validators
}

func (f *Fetcher) download(ctx context.Context, rawURL string, v httputil.Validators) ([]byte, downloadResult, error) {
	u, _ := url.Parse(rawURL)
	hooks := observability.HTTP()

	var body []byte
	res := downloadResult{modified: true}
	err := httputil.Retry(ctx, f.opts.Retries, f.opts.RetryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", buildinfo.UserAgent())
		v.Apply(req)

		f.opts.Logger("GET %s", rawURL)
		start := time.Now()
		hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
		resp, err := f.opts.HTTPClient.Do(req)
		if err != nil {
			hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

		if err := httputil.CheckStatus(rawURL, resp.StatusCode); err != nil {
			return err
		}
		if resp.StatusCode == http.StatusNotModified {
			res.modified = false
			return nil
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &httputil.RetryableError{Err: fmt.Errorf("read body: %w", err)}
		}
		body = data
		res.validators = httputil.ValidatorsFrom(resp)
		return nil
	})
	if err != nil {
		return nil, res, classify(rawURL, err)
	}
	return body, res, nil
}

// classify maps download failures onto error codes.
func classify(rawURL string, err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *httputil.StatusError
	if stderrors.As(err, &se) && se.Code == http.StatusNotFound {
		return errors.Wrap(errors.ErrCodeNotFound, err, "no Sources index at %s", rawURL)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "download %s", rawURL)
}
