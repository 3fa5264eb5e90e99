package compress

import (
	"github.com/arloliu/cramblock/rans"
)

// RansNx16Compressor implements block method RansNx16 with the order-0 model.
type RansNx16Compressor struct {
	lanes int
}

var (
	_ Codec             = (*RansNx16Compressor)(nil)
	_ SizedDecompressor = (*RansNx16Compressor)(nil)
)

// NewRansNx16Compressor creates a 4-lane rANS Nx16 codec.
func NewRansNx16Compressor() RansNx16Compressor {
	return RansNx16Compressor{lanes: rans.DefaultLanes}
}

// NewRansNx16Compressor32 creates a 32-lane rANS Nx16 codec.
func NewRansNx16Compressor32() RansNx16Compressor {
	return RansNx16Compressor{lanes: rans.MaxLanes}
}

// Compress encodes data as a rANS Nx16 stream.
func (c RansNx16Compressor) Compress(data []byte) ([]byte, error) {
	lanes := c.lanes
	if lanes == 0 {
		lanes = rans.DefaultLanes
	}

	return rans.Compress(data, rans.WithLanes(lanes))
}

// Decompress decodes a rANS Nx16 stream. The lane count is read from the stream.
func (c RansNx16Compressor) Decompress(data []byte) ([]byte, error) {
	return rans.Decompress(data)
}

// DecompressSize decodes a rANS Nx16 stream whose declared length must be
// rawSize. The length is checked before any output is allocated.
func (c RansNx16Compressor) DecompressSize(data []byte, rawSize int) ([]byte, error) {
	return rans.DecompressSize(data, rawSize)
}
