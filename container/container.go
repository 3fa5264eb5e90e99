package container

import (
	"bytes"
	"fmt"

	"github.com/arloliu/cramblock/block"
	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/format"
	"github.com/arloliu/cramblock/header"
	"github.com/arloliu/cramblock/internal/num"
)

// CoreContentID is the content id of a slice's core data block.
const CoreContentID int32 = 0

// SliceHeader describes the records and blocks of one slice.
type SliceHeader struct {
	// RecordCount is the number of records in the slice.
	RecordCount int32
	// RecordCounter is the index of the slice's first record in the container.
	RecordCounter int32
	// ContentIDs lists the content ids of the slice's blocks in order.
	ContentIDs []int32
}

func (h *SliceHeader) appendTo(dst []byte) []byte {
	dst = num.AppendITF8(dst, h.RecordCount)
	dst = num.AppendITF8(dst, h.RecordCounter)
	dst = num.AppendITF8(dst, int32(len(h.ContentIDs))) //nolint:gosec
	for _, id := range h.ContentIDs {
		dst = num.AppendITF8(dst, id)
	}

	return dst
}

func (h *SliceHeader) block() (block.Block, error) {
	return block.Encode(format.CompressionNone, format.ContentSliceHeader, 0, h.appendTo(nil))
}

func decodeSliceHeader(b block.Block) (SliceHeader, error) {
	if b.ContentType != format.ContentSliceHeader {
		return SliceHeader{}, fmt.Errorf("%w: want %s block, got %s",
			errs.ErrInvalidContentType, format.ContentSliceHeader, b.ContentType)
	}

	raw, err := b.Decode()
	if err != nil {
		return SliceHeader{}, err
	}

	r := bytes.NewReader(raw)

	var h SliceHeader
	if h.RecordCount, err = num.ReadITF8(r); err != nil {
		return SliceHeader{}, err
	}

	if h.RecordCounter, err = num.ReadITF8(r); err != nil {
		return SliceHeader{}, err
	}

	count, err := num.ReadITF8(r)
	if err != nil {
		return SliceHeader{}, err
	}

	if h.RecordCount < 0 || h.RecordCounter < 0 || count < 0 || int(count) > r.Len() {
		return SliceHeader{}, fmt.Errorf("%w: slice header records %d, counter %d, blocks %d",
			errs.ErrInvalidContainer, h.RecordCount, h.RecordCounter, count)
	}

	h.ContentIDs = make([]int32, count)
	for i := range h.ContentIDs {
		if h.ContentIDs[i], err = num.ReadITF8(r); err != nil {
			return SliceHeader{}, err
		}
	}

	if r.Len() != 0 {
		return SliceHeader{}, fmt.Errorf("%w: %d bytes after slice header", errs.ErrTrailingData, r.Len())
	}

	return h, nil
}

// Slice is an ordered group of blocks covering a run of records.
type Slice struct {
	header SliceHeader
	blocks []block.Block
}

func newSlice(h SliceHeader, blocks []block.Block) (*Slice, error) {
	if len(h.ContentIDs) != len(blocks) {
		return nil, fmt.Errorf("%w: slice header lists %d blocks, slice has %d",
			errs.ErrInvalidContainer, len(h.ContentIDs), len(blocks))
	}

	for i, b := range blocks {
		if b.ContentID != h.ContentIDs[i] {
			return nil, fmt.Errorf("%w: block %d has content id %d, header lists %d",
				errs.ErrInvalidContainer, i, b.ContentID, h.ContentIDs[i])
		}
	}

	return &Slice{header: h, blocks: blocks}, nil
}

// Header returns the slice header.
func (s *Slice) Header() SliceHeader {
	return s.header
}

// RecordCount returns the number of records in the slice.
func (s *Slice) RecordCount() int {
	return int(s.header.RecordCount)
}

// Blocks returns the slice's blocks in order. The slice must not be modified.
func (s *Slice) Blocks() []block.Block {
	return s.blocks
}

// CoreBlock returns the core data block.
func (s *Slice) CoreBlock() (block.Block, bool) {
	for _, b := range s.blocks {
		if b.ContentType == format.ContentCoreData {
			return b, true
		}
	}

	return block.Block{}, false
}

// ExternalBlock returns the external block with the given content id.
func (s *Slice) ExternalBlock(contentID int32) (block.Block, bool) {
	for _, b := range s.blocks {
		if b.ContentType == format.ContentExternalData && b.ContentID == contentID {
			return b, true
		}
	}

	return block.Block{}, false
}

// DataContainer is a compression header plus the slices it describes.
type DataContainer struct {
	compressionHeader *header.CompressionHeader
	slices            []*Slice
}

// CompressionHeader returns the container's compression header.
func (dc *DataContainer) CompressionHeader() *header.CompressionHeader {
	return dc.compressionHeader
}

// Slices returns the slices in order. The slice must not be modified.
func (dc *DataContainer) Slices() []*Slice {
	return dc.slices
}

// RecordCount returns the number of records over all slices.
func (dc *DataContainer) RecordCount() int {
	n := 0
	for _, s := range dc.slices {
		n += s.RecordCount()
	}

	return n
}

// BlockCount returns the number of blocks written for the container,
// compression and slice header blocks included.
func (dc *DataContainer) BlockCount() int {
	n := 1
	for _, s := range dc.slices {
		n += 1 + len(s.blocks)
	}

	return n
}
