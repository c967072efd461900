package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// decoder wraps a compressed stream
type decoder func(r io.Reader) (io.ReadCloser, error)

var decoders = map[string]decoder{
	".gz": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	".zst": func(r io.Reader) (io.ReadCloser, error) {
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	},
	".lz4": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(lz4.NewReader(r)), nil
	},
	".br": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(r)), nil
	},
}

// decompress returns r unwrapped according to the compression suffix of
// path. Paths without a known suffix are returned as is.
func decompress(path string, r io.Reader) (io.ReadCloser, error) {
	lower := strings.ToLower(path)
	for suffix, dec := range decoders {
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		rc, err := dec(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s stream: %w", strings.TrimPrefix(suffix, "."), err)
		}
		return rc, nil
	}
	return io.NopCloser(r), nil
}
