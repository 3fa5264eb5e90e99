package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/internal/pool"
	"github.com/klauspost/compress/gzip"
)

// gzipWriterPool reuses writers; a gzip.Writer carries a large deflate state.
var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

// GzipCompressor implements block method Gzip with a single gzip member per block.
type GzipCompressor struct{}

var (
	_ Codec             = (*GzipCompressor)(nil)
	_ SizedDecompressor = (*GzipCompressor)(nil)
)

// NewGzipCompressor creates a gzip codec using the default compression level.
func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{}
}

// Compress returns data as a gzip member.
func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)

	w, _ := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compression failed: %w", err)
	}

	return bytes.Clone(buf.Bytes()), nil
}

// Decompress inflates a gzip member.
func (c GzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}

	return out, nil
}

// DecompressSize inflates a gzip member that must hold exactly rawSize bytes.
// Inflation stops one byte past rawSize, so an oversized member is rejected
// without being fully expanded.
func (c GzipCompressor) DecompressSize(data []byte, rawSize int) ([]byte, error) {
	if rawSize < 0 {
		return nil, fmt.Errorf("%w: negative size %d", errs.ErrRawSizeMismatch, rawSize)
	}

	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}
	defer r.Close()

	buf := bytes.NewBuffer(make([]byte, 0, min(rawSize, 4*len(data)+bytes.MinRead)))
	if _, err := buf.ReadFrom(io.LimitReader(r, int64(rawSize)+1)); err != nil {
		return nil, fmt.Errorf("gzip decompression failed: %w", err)
	}

	if buf.Len() != rawSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrRawSizeMismatch, buf.Len(), rawSize)
	}

	return buf.Bytes(), nil
}
