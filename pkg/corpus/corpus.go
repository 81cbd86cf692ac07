package corpus

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
)

// Defaults for the mirror layout.
const (
	DefaultMirror    = "https://deb.debian.org/debian"
	DefaultSuite     = "trixie"
	DefaultComponent = "main"
)

// URL returns the Sources.xz location for a mirror, suite and component.
// Empty arguments take the defaults.
func URL(mirror, suite, component string) string {
	if mirror == "" {
		mirror = DefaultMirror
	}
	if suite == "" {
		suite = DefaultSuite
	}
	if component == "" {
		component = DefaultComponent
	}
	return fmt.Sprintf("%s/dists/%s/%s/source/Sources.xz", strings.TrimRight(mirror, "/"), suite, component)
}

// Corpus is a decompressed Sources index.
type Corpus struct {
	Source      string      // URL or file path it came from
	Data        []byte      // Decompressed control-file text
	Digest      string      // xxhash64 of Data, 16 hex digits
	Compression Compression // Encoding of the raw payload
	RawSize     int         // Size of the raw payload in bytes
	FetchedAt   time.Time   // Download time (file mtime for local files)
	Cached      bool        // Served from the cache without a download
}

func newCorpus(source string, raw []byte, fetchedAt time.Time, cached bool) (*Corpus, error) {
	data, kind, err := Decompress(source, raw)
	if err != nil {
		return nil, err
	}
	return &Corpus{
		Source:      source,
		Data:        data,
		Digest:      Digest(data),
		Compression: kind,
		RawSize:     len(raw),
		FetchedAt:   fetchedAt,
		Cached:      cached,
	}, nil
}

// Digest returns the xxhash64 of data as 16 hex digits.
func Digest(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Open reads a local corpus file, compressed or not.
func Open(path string) (*Corpus, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeNotFound, "corpus file %s does not exist", path)
		}
		return nil, fmt.Errorf("stat corpus: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return newCorpus(path, raw, info.ModTime(), false)
}

// Database parses the corpus into a package database.
func (c *Corpus) Database(opts ...pkgdb.Option) (*pkgdb.Database, error) {
	return pkgdb.Load(bytes.NewReader(c.Data), opts...)
}
