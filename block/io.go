package block

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/format"
	"github.com/arloliu/cramblock/internal/pool"
)

const (
	checksumSize = 4
	// readChunk bounds the up-front allocation for a payload whose declared
	// size has not been proven by the stream yet.
	readChunk = 64 * 1024
)

// hashingReader feeds every byte it reads into a running checksum.
type hashingReader struct {
	r   io.Reader
	h   hash.Hash32
	one [1]byte
}

func (hr *hashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	hr.h.Write(p[:n])

	return n, err
}

func (hr *hashingReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(hr.r, hr.one[:]); err != nil {
		return 0, err
	}
	hr.h.Write(hr.one[:])

	return hr.one[0], nil
}

// Read reads one block from r and verifies its checksum.
//
// The method byte is validated before any further byte is consumed, so an
// unknown method leaves r positioned right after it. Errors:
//   - errs.ErrInvalidCompressionMethod, errs.ErrInvalidContentType,
//     errs.ErrInvalidBlockSize: malformed header (all wrap errs.ErrFormat)
//   - *errs.TruncatedError: r ended before a declared length was satisfied
//   - errs.ErrChecksumMismatch: stored and computed CRC-32 differ
func Read(r io.Reader, opts ...Option) (Block, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return Block{}, err
	}

	hr := &hashingReader{r: r, h: cfg.checksum()}

	var b Block

	method, err := hr.ReadByte()
	if err != nil {
		return Block{}, truncated(err, "compression method", 1, 0)
	}
	b.Method = format.CompressionMethod(method)
	if err := b.Method.Validate(); err != nil {
		return Block{}, err
	}

	contentType, err := hr.ReadByte()
	if err != nil {
		return Block{}, truncated(err, "content type", 1, 0)
	}
	b.ContentType = format.ContentType(contentType)
	if err := b.ContentType.Validate(); err != nil {
		return Block{}, err
	}

	if b.ContentID, err = cfg.ints.ReadInt32(hr); err != nil {
		return Block{}, fmt.Errorf("read content id: %w", err)
	}

	size, err := cfg.ints.ReadInt32(hr)
	if err != nil {
		return Block{}, fmt.Errorf("read compressed size: %w", err)
	}

	if b.RawSize, err = cfg.ints.ReadInt32(hr); err != nil {
		return Block{}, fmt.Errorf("read raw size: %w", err)
	}

	if size < 0 || b.RawSize < 0 {
		return Block{}, fmt.Errorf("%w: compressed %d, raw %d", errs.ErrInvalidBlockSize, size, b.RawSize)
	}

	buf := bytes.NewBuffer(make([]byte, 0, min(int(size), readChunk)))
	n, err := io.CopyN(buf, hr, int64(size))
	if err != nil {
		return Block{}, truncated(err, "block data", int(size), int(n))
	}
	b.Data = buf.Bytes()

	computed := hr.h.Sum32()

	var tail [checksumSize]byte
	if got, err := io.ReadFull(r, tail[:]); err != nil {
		return Block{}, truncated(err, "block checksum", checksumSize, got)
	}

	b.CRC32 = binary.LittleEndian.Uint32(tail[:])
	if b.CRC32 != computed {
		return Block{}, fmt.Errorf("%w: block %d: stored %08x, computed %08x",
			errs.ErrChecksumMismatch, b.ContentID, b.CRC32, computed)
	}

	return b, nil
}

// Write serializes b to w.
//
// The checksum is recomputed from the bytes written; b.CRC32 is not consulted.
// A block obtained from Read is written back byte for byte.
func Write(w io.Writer, b Block, opts ...Option) error {
	bb := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(bb)

	var err error
	if bb.B, err = Append(bb.B, b, opts...); err != nil {
		return err
	}

	if _, err := bb.WriteTo(w); err != nil {
		return fmt.Errorf("write block %d: %w", b.ContentID, err)
	}

	return nil
}

// Append appends the serialized form of b, checksum included, to dst.
func Append(dst []byte, b Block, opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return dst, err
	}

	if err := b.Method.Validate(); err != nil {
		return dst, err
	}

	if err := b.ContentType.Validate(); err != nil {
		return dst, err
	}

	if b.RawSize < 0 {
		return dst, fmt.Errorf("%w: raw %d", errs.ErrInvalidBlockSize, b.RawSize)
	}

	start := len(dst)
	dst = append(dst, byte(b.Method), byte(b.ContentType))
	dst = cfg.ints.AppendInt32(dst, b.ContentID)
	dst = cfg.ints.AppendInt32(dst, b.CompressedSize())
	dst = cfg.ints.AppendInt32(dst, b.RawSize)
	dst = append(dst, b.Data...)

	h := cfg.checksum()
	h.Write(dst[start:])

	return binary.LittleEndian.AppendUint32(dst, h.Sum32()), nil
}

// Checksum returns the CRC-32 that Write would store for b.
func Checksum(b Block, opts ...Option) (uint32, error) {
	bb := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(bb)

	var err error
	if bb.B, err = Append(bb.B, b, opts...); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(bb.B[len(bb.B)-checksumSize:]), nil
}

func truncated(err error, what string, want, got int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.Truncated(what, want, got)
	}

	return fmt.Errorf("read %s: %w", what, err)
}
