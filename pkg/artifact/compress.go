package artifact

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	extZstd = ".zst"
	extGzip = ".gz"
	extLZ4  = ".lz4"
)

// Decode decompresses data when name carries a .zst, .gz or .lz4 extension
// and returns it unchanged otherwise.
func Decode(name string, data []byte) ([]byte, error) {
	switch strings.ToLower(path.Ext(name)) {
	case extZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("artifact: zstd reader: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("artifact: zstd decode %s: %w", name, err)
		}
		return out, nil
	case extGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("artifact: gzip decode %s: %w", name, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("artifact: gzip decode %s: %w", name, err)
		}
		return out, nil
	case extLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("artifact: lz4 decode %s: %w", name, err)
		}
		return out, nil
	default:
		return data, nil
	}
}

// StripCompression removes a trailing compression extension from name, so
// "laptops.csv.zst" becomes "laptops.csv".
func StripCompression(name string) string {
	ext := path.Ext(name)
	switch strings.ToLower(ext) {
	case extZstd, extGzip, extLZ4:
		return strings.TrimSuffix(name, ext)
	default:
		return name
	}
}
