package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/arloliu/cramblock/block"
	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/header"
	"github.com/arloliu/cramblock/internal/num"
	"github.com/arloliu/cramblock/internal/pool"
)

// Write serializes dc to w.
func Write(w io.Writer, dc *DataContainer) error {
	if dc.compressionHeader == nil {
		return fmt.Errorf("%w: missing compression header", errs.ErrInvalidContainer)
	}

	body := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(body)

	chBlock, err := dc.compressionHeader.Block()
	if err != nil {
		return err
	}

	if body.B, err = block.Append(body.B, chBlock); err != nil {
		return err
	}

	for i, s := range dc.slices {
		shBlock, err := s.header.block()
		if err != nil {
			return fmt.Errorf("slice %d: %w", i, err)
		}

		if body.B, err = block.Append(body.B, shBlock); err != nil {
			return fmt.Errorf("slice %d: %w", i, err)
		}

		for _, b := range s.blocks {
			if body.B, err = block.Append(body.B, b); err != nil {
				return fmt.Errorf("slice %d: %w", i, err)
			}
		}
	}

	head := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(head)

	head.B = binary.LittleEndian.AppendUint32(head.B, uint32(body.Len())) //nolint:gosec
	head.B = num.AppendITF8(head.B, int32(dc.RecordCount()))              //nolint:gosec
	head.B = num.AppendITF8(head.B, int32(len(dc.slices)))                //nolint:gosec
	head.B = num.AppendITF8(head.B, int32(dc.BlockCount()))               //nolint:gosec
	head.B = binary.LittleEndian.AppendUint32(head.B, crc32.ChecksumIEEE(head.B))

	if _, err := head.WriteTo(w); err != nil {
		return fmt.Errorf("write container header: %w", err)
	}

	if _, err := body.WriteTo(w); err != nil {
		return fmt.Errorf("write container body: %w", err)
	}

	return nil
}

// recordingReader keeps the bytes it reads for checksumming.
type recordingReader struct {
	r   io.Reader
	buf []byte
}

func (rr *recordingReader) ReadByte() (byte, error) {
	var one [1]byte
	if _, err := io.ReadFull(rr.r, one[:]); err != nil {
		return 0, err
	}
	rr.buf = append(rr.buf, one[0])

	return one[0], nil
}

// Read reads one container from r.
//
// It returns io.EOF, unwrapped, only when r is exhausted before the first
// byte of the container. Any later shortfall is a *errs.TruncatedError.
func Read(r io.Reader) (*DataContainer, error) {
	rr := &recordingReader{r: r}

	var size [4]byte
	if n, err := io.ReadFull(r, size[:]); err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, truncated(err, "container body size", len(size), n)
	}
	rr.buf = append(rr.buf, size[:]...)
	bodySize := binary.LittleEndian.Uint32(size[:])

	var counts [3]int32
	for i := range counts {
		v, err := num.ReadITF8(rr)
		if err != nil {
			return nil, fmt.Errorf("read container header: %w", err)
		}
		counts[i] = v
	}
	recordCount, sliceCount, blockCount := counts[0], counts[1], counts[2]

	var sum [4]byte
	if n, err := io.ReadFull(r, sum[:]); err != nil {
		return nil, truncated(err, "container header checksum", len(sum), n)
	}

	if stored, computed := binary.LittleEndian.Uint32(sum[:]), crc32.ChecksumIEEE(rr.buf); stored != computed {
		return nil, fmt.Errorf("%w: container header: stored %08x, computed %08x",
			errs.ErrChecksumMismatch, stored, computed)
	}

	if recordCount < 0 || sliceCount < 0 || blockCount < 1 {
		return nil, fmt.Errorf("%w: records %d, slices %d, blocks %d",
			errs.ErrInvalidContainer, recordCount, sliceCount, blockCount)
	}

	var body bytes.Buffer
	if n, err := io.CopyN(&body, r, int64(bodySize)); err != nil {
		return nil, truncated(err, "container body", int(bodySize), int(n))
	}

	dc, err := parseBody(bytes.NewReader(body.Bytes()), int(sliceCount))
	if err != nil {
		return nil, err
	}

	if dc.RecordCount() != int(recordCount) || dc.BlockCount() != int(blockCount) {
		return nil, fmt.Errorf("%w: header declares %d records in %d blocks, body has %d in %d",
			errs.ErrInvalidContainer, recordCount, blockCount, dc.RecordCount(), dc.BlockCount())
	}

	return dc, nil
}

func parseBody(r *bytes.Reader, sliceCount int) (*DataContainer, error) {
	chBlock, err := block.Read(r)
	if err != nil {
		return nil, fmt.Errorf("compression header block: %w", err)
	}

	ch, err := header.DecodeBlock(chBlock)
	if err != nil {
		return nil, err
	}

	dc := &DataContainer{compressionHeader: ch}
	for i := range sliceCount {
		shBlock, err := block.Read(r)
		if err != nil {
			return nil, fmt.Errorf("slice %d header block: %w", i, err)
		}

		h, err := decodeSliceHeader(shBlock)
		if err != nil {
			return nil, fmt.Errorf("slice %d: %w", i, err)
		}

		blocks := make([]block.Block, len(h.ContentIDs))
		for j := range blocks {
			if blocks[j], err = block.Read(r); err != nil {
				return nil, fmt.Errorf("slice %d block %d: %w", i, j, err)
			}
		}

		s, err := newSlice(h, blocks)
		if err != nil {
			return nil, fmt.Errorf("slice %d: %w", i, err)
		}
		dc.slices = append(dc.slices, s)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes after last slice", errs.ErrTrailingData, r.Len())
	}

	return dc, nil
}

func truncated(err error, what string, want, got int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.Truncated(what, want, got)
	}

	return fmt.Errorf("read %s: %w", what, err)
}
