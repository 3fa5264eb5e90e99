package header

import (
	"bytes"
	"fmt"

	"github.com/arloliu/cramblock/block"
	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/format"
)

// CompressionHeader is the per-container description of how records were
// split into blocks.
type CompressionHeader struct {
	TagSets  *TagSets
	TagMap   *TagEncodingMap
	Encoders *BlockContentEncoderMap
}

// Append appends the serialized header to dst.
func (h *CompressionHeader) Append(dst []byte) []byte {
	dst = h.TagSets.Append(dst)
	dst = h.TagMap.Append(dst)

	return h.Encoders.Append(dst)
}

// Block wraps the serialized header in an uncompressed block of content type
// CompressionHeader.
func (h *CompressionHeader) Block() (block.Block, error) {
	return block.Encode(format.CompressionNone, format.ContentCompressionHeader, 0, h.Append(nil))
}

// ParseCompressionHeader parses a header written by Append. data must hold
// exactly one header.
func ParseCompressionHeader(data []byte) (*CompressionHeader, error) {
	r := bytes.NewReader(data)

	tagSets, err := ReadTagSets(r)
	if err != nil {
		return nil, fmt.Errorf("tag sets: %w", err)
	}

	tagMap, err := ReadTagEncodingMap(r)
	if err != nil {
		return nil, fmt.Errorf("tag encoding map: %w", err)
	}

	encoders, err := ReadBlockContentEncoderMap(r)
	if err != nil {
		return nil, fmt.Errorf("block content encoders: %w", err)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes after compression header", errs.ErrTrailingData, r.Len())
	}

	return &CompressionHeader{TagSets: tagSets, TagMap: tagMap, Encoders: encoders}, nil
}

// DecodeBlock decodes a compression header block.
func DecodeBlock(b block.Block) (*CompressionHeader, error) {
	if b.ContentType != format.ContentCompressionHeader {
		return nil, fmt.Errorf("%w: want %s block, got %s",
			errs.ErrInvalidContentType, format.ContentCompressionHeader, b.ContentType)
	}

	raw, err := b.Decode()
	if err != nil {
		return nil, err
	}

	return ParseCompressionHeader(raw)
}
