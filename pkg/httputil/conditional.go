package httputil

import "net/http"

// Validators are the cache validators a server sent with a response.
type Validators struct {
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// ValidatorsFrom extracts validators from resp.
func ValidatorsFrom(resp *http.Response) Validators {
	return Validators{
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}
}

// IsZero reports whether no validator is set.
func (v Validators) IsZero() bool { return v.ETag == "" && v.LastModified == "" }

// Apply turns req into a conditional request.
func (v Validators) Apply(req *http.Request) {
	if v.ETag != "" {
		req.Header.Set("If-None-Match", v.ETag)
	}
	if v.LastModified != "" {
		req.Header.Set("If-Modified-Since", v.LastModified)
	}
}
