package compress

import (
	"fmt"

	"github.com/arloliu/cramblock/errs"
)

// NoOpCompressor stores payloads uncompressed (method None).
type NoOpCompressor struct{}

var (
	_ Codec             = (*NoOpCompressor)(nil)
	_ SizedDecompressor = (*NoOpCompressor)(nil)
)

// NewNoOpCompressor creates a pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data itself. The result shares memory with the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself. The result shares memory with the input.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressSize returns data itself after checking its length.
func (c NoOpCompressor) DecompressSize(data []byte, rawSize int) ([]byte, error) {
	if len(data) != rawSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrRawSizeMismatch, len(data), rawSize)
	}

	return data, nil
}
