package cache

// ScopedKeyer wraps a Keyer with a prefix, giving several tools or mirrors
// separate namespaces in one shared backend.
//
//	// Keep trixie and bookworm corpora apart in one Redis
//	trixie := NewScopedKeyer(NewDefaultKeyer(), "trixie:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) CorpusKey(url string) string {
	return k.prefix + k.inner.CorpusKey(url)
}

func (k *ScopedKeyer) ReportKey(digest string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(digest, opts)
}
