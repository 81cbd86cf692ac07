// Package httputil holds the HTTP plumbing shared by the corpus fetcher and
// the report runner.
//
//   - [Retry] and [RetryWithBackoff]: exponential backoff for transient
//     failures wrapped in [RetryableError]
//   - [CheckStatus]: maps response codes to retryable or terminal errors
//   - [Validators]: ETag / Last-Modified pairs for conditional requests
//   - [Cache]: a JSON-typed, namespaced view over a [cache.Cache] backend
//
// A typical download:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(url, resp.StatusCode)
//	})
package httputil
