package cache

import "strings"

// Keyer derives cache keys. Keys start with their kind ("corpus:",
// "report:") so backends and hooks can tell them apart.
type Keyer interface {
	// CorpusKey keys the raw payload downloaded from url.
	CorpusKey(url string) string

	// ReportKey keys a resolution report computed over the corpus with the
	// given digest.
	ReportKey(digest string, opts ReportKeyOpts) string
}

// ReportKeyOpts holds every input that changes a report's content.
type ReportKeyOpts struct {
	Mode          string   `json:"mode"`
	Targets       []string `json:"targets"`
	FilterPureAll bool     `json:"filter_pure_all"`
	MaxDepth      int      `json:"max_depth"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) CorpusKey(url string) string {
	return hashKey("corpus", url)
}

func (DefaultKeyer) ReportKey(digest string, opts ReportKeyOpts) string {
	return hashKey("report", digest, opts)
}

// KeyType returns the kind prefix of key ("corpus" for "corpus:ab12..."),
// skipping any scope prefix added by a [ScopedKeyer].
func KeyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
