package corpus

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/matzehuels/debimpact/pkg/errors"
)

// Compression names a payload encoding.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionXZ   Compression = "xz"
	CompressionGzip Compression = "gzip"
)

var (
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Detect identifies the encoding of data from its magic bytes, falling back
// to the suffix of name when the payload is too short to tell.
func Detect(name string, data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case len(data) >= len(xzMagic):
		return CompressionNone
	case strings.HasSuffix(name, ".xz"):
		return CompressionXZ
	case strings.HasSuffix(name, ".gz"):
		return CompressionGzip
	}
	return CompressionNone
}

// Decompress decodes data according to its detected encoding. name is only
// used for detection and error messages.
func Decompress(name string, data []byte) ([]byte, Compression, error) {
	kind := Detect(name, data)
	var r io.Reader
	switch kind {
	case CompressionXZ:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, errors.Wrap(errors.ErrCodeInvalidCorpus, err, "open xz stream %s", name)
		}
		r = xr
	case CompressionGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, kind, errors.Wrap(errors.ErrCodeInvalidCorpus, err, "open gzip stream %s", name)
		}
		defer gr.Close()
		r = gr
	default:
		return data, kind, nil
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, kind, errors.Wrap(errors.ErrCodeInvalidCorpus, err, "decompress %s", name)
	}
	return out, kind, nil
}
