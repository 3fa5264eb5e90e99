package compress

import (
	"fmt"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/format"
)

// Compressor compresses one block payload.
type Compressor interface {
	// Compress returns the compressed form of data.
	//
	// The returned slice is owned by the caller. data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores one block payload.
//
// Implementations must be safe for concurrent use: blocks of a slice are
// decoded in parallel with a shared codec.
type Decompressor interface {
	// Decompress returns the original form of data.
	//
	// Corrupted input yields an error; the caller never receives partial output.
	Decompress(data []byte) ([]byte, error)
}

// SizedDecompressor is implemented by decompressors that can stop at a known
// output size.
//
// Callers that know the decompressed size, such as a block carrying its raw
// size, use it so that a corrupt payload cannot expand past that size.
type SizedDecompressor interface {
	// DecompressSize returns the original form of data, which must be exactly
	// rawSize bytes long. Any other length yields errs.ErrRawSizeMismatch.
	DecompressSize(data []byte, rawSize int) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionMethod]Codec{
	format.CompressionNone:     NewNoOpCompressor(),
	format.CompressionGzip:     NewGzipCompressor(),
	format.CompressionRansNx16: NewRansNx16Compressor(),
}

// GetCodec returns the built-in codec for method.
//
// Methods defined by the format but not implemented here yield
// errs.ErrUnsupportedMethod; values outside the format yield
// errs.ErrInvalidCompressionMethod.
func GetCodec(method format.CompressionMethod) (Codec, error) {
	if err := method.Validate(); err != nil {
		return nil, err
	}

	if codec, ok := builtinCodecs[method]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedMethod, method)
}
