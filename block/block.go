package block

import (
	"fmt"

	"github.com/arloliu/cramblock/compress"
	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/format"
)

// Block is one framed, possibly compressed, byte payload.
//
// Blocks are values: once read or encoded they are not modified.
type Block struct {
	Method      format.CompressionMethod
	ContentType format.ContentType
	// ContentID correlates the block with the data series or tag it carries.
	ContentID int32
	// RawSize is the payload size after decompression.
	RawSize int32
	// Data holds exactly CompressedSize bytes.
	Data []byte
	// CRC32 is the checksum read from, or computed for, the serialized block.
	CRC32 uint32
}

// CompressedSize returns the payload size as stored on the wire.
func (b Block) CompressedSize() int32 {
	return int32(len(b.Data)) //nolint:gosec
}

// Encode compresses raw with method and returns the resulting block.
//
// The CRC32 field is filled with the checksum Write would produce for the
// block under the default options.
func Encode(method format.CompressionMethod, contentType format.ContentType, contentID int32, raw []byte) (Block, error) {
	if err := contentType.Validate(); err != nil {
		return Block{}, err
	}

	codec, err := compress.GetCodec(method)
	if err != nil {
		return Block{}, err
	}

	data, err := codec.Compress(raw)
	if err != nil {
		return Block{}, fmt.Errorf("encode block %d: %w", contentID, err)
	}

	b := Block{
		Method:      method,
		ContentType: contentType,
		ContentID:   contentID,
		RawSize:     int32(len(raw)), //nolint:gosec
		Data:        data,
	}

	b.CRC32, err = Checksum(b)
	if err != nil {
		return Block{}, err
	}

	return b, nil
}

// Decode returns the decompressed payload.
//
// It fails with errs.ErrRawSizeMismatch when the codec output does not have
// RawSize bytes. Codecs implementing compress.SizedDecompressor are bounded by
// RawSize while decoding, so a payload declaring a larger output is rejected
// before it is expanded.
func (b Block) Decode() ([]byte, error) {
	codec, err := compress.GetCodec(b.Method)
	if err != nil {
		return nil, err
	}

	var raw []byte
	if sized, ok := codec.(compress.SizedDecompressor); ok {
		raw, err = sized.DecompressSize(b.Data, int(b.RawSize))
	} else {
		raw, err = codec.Decompress(b.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode block %d (%s): %w", b.ContentID, b.ContentType, err)
	}

	if len(raw) != int(b.RawSize) {
		return nil, fmt.Errorf("%w: block %d: want %d bytes, got %d",
			errs.ErrRawSizeMismatch, b.ContentID, b.RawSize, len(raw))
	}

	return raw, nil
}
