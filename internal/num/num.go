// Package num implements the variable-length integer encodings used by the
// CRAM block layer: ITF8 for signed 32-bit header fields and uint7 for the
// unsigned values inside rANS Nx16 streams.
package num

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/cramblock/errs"
)

// ITF8 is the signed 32-bit integer codec used by block and container headers.
//
// Values are stored big-endian in 1 to 5 bytes; the count of leading one bits
// in the first byte gives the number of continuation bytes. Negative values
// always take 5 bytes.
type ITF8 struct{}

// ReadInt32 reads one ITF8 value from r.
func (ITF8) ReadInt32(r io.ByteReader) (int32, error) {
	return ReadITF8(r)
}

// AppendInt32 appends the ITF8 encoding of v to dst.
func (ITF8) AppendInt32(dst []byte, v int32) []byte {
	return AppendITF8(dst, v)
}

// ITF8Len returns the encoded size of v in bytes.
func ITF8Len(v int32) int {
	n := uint32(v) //nolint:gosec
	switch {
	case n>>7 == 0:
		return 1
	case n>>14 == 0:
		return 2
	case n>>21 == 0:
		return 3
	case n>>28 == 0:
		return 4
	default:
		return 5
	}
}

// AppendITF8 appends the ITF8 encoding of v to dst.
func AppendITF8(dst []byte, v int32) []byte {
	n := uint32(v) //nolint:gosec
	switch ITF8Len(v) {
	case 1:
		return append(dst, byte(n))
	case 2:
		return append(dst, byte(n>>8)|0x80, byte(n))
	case 3:
		return append(dst, byte(n>>16)|0xc0, byte(n>>8), byte(n))
	case 4:
		return append(dst, byte(n>>24)|0xe0, byte(n>>16), byte(n>>8), byte(n))
	default:
		return append(dst, byte(n>>28)&0x0f|0xf0, byte(n>>20), byte(n>>12), byte(n>>4), byte(n)&0x0f)
	}
}

// ReadITF8 reads one ITF8 value from r.
func ReadITF8(r io.ByteReader) (int32, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, eofToTruncated(err, "itf8", 1, 0)
	}

	var extra int
	var n uint32
	switch {
	case b0&0x80 == 0:
		return int32(b0), nil
	case b0&0x40 == 0:
		extra, n = 1, uint32(b0&0x3f)
	case b0&0x20 == 0:
		extra, n = 2, uint32(b0&0x1f)
	case b0&0x10 == 0:
		extra, n = 3, uint32(b0&0x0f)
	default:
		extra, n = 4, uint32(b0&0x0f)
	}

	for i := range extra {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eofToTruncated(err, "itf8", extra+1, i+1)
		}

		if extra == 4 && i == 3 {
			// the fifth byte only contributes its low nibble
			n = n<<4 | uint32(b&0x0f)
		} else {
			n = n<<8 | uint32(b)
		}
	}

	return int32(n), nil //nolint:gosec
}

// AppendUint7 appends v as a big-endian base-128 integer with continuation bits.
func AppendUint7(dst []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7f)
	v >>= 7

	for v > 0 {
		i--
		tmp[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}

	return append(dst, tmp[i:]...)
}

// ReadUint7 reads one uint7 value from r.
func ReadUint7(r io.ByteReader) (uint32, error) {
	var n uint32
	for i := range 5 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eofToTruncated(err, "uint7", i+1, i)
		}

		if n>>25 != 0 {
			return 0, fmt.Errorf("%w: uint7 overflows 32 bits", errs.ErrInvalidVarint)
		}

		n = n<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return n, nil
		}
	}

	return 0, fmt.Errorf("%w: uint7 longer than 5 bytes", errs.ErrInvalidVarint)
}

func eofToTruncated(err error, what string, want, got int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.Truncated(what, want, got)
	}

	return err
}
