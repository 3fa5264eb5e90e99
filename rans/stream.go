package rans

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/internal/num"
	"github.com/arloliu/cramblock/internal/options"
)

// Stream flags.
const (
	FlagOrder  = 0x01 // order-1 model
	FlagN32    = 0x04 // 32 lanes instead of 4
	FlagStripe = 0x08 // striped sub-streams
	FlagNoSize = 0x10 // raw length omitted
	FlagCat    = 0x20 // data stored uncoded
	FlagRLE    = 0x40 // run-length transform
	FlagPack   = 0x80 // pack transform

	unsupportedFlags = FlagOrder | FlagStripe | FlagNoSize | FlagRLE
)

const (
	DefaultLanes = 4
	MaxLanes     = 32
)

type streamConfig struct {
	lanes int
	pack  bool
}

// Option configures Compress.
type Option = options.Option[*streamConfig]

// WithLanes sets the number of interleaved states. The stream format only
// carries 4 (default) or 32.
func WithLanes(n int) Option {
	return options.New(func(c *streamConfig) error {
		if n != DefaultLanes && n != MaxLanes {
			return fmt.Errorf("%w: %d, want %d or %d", errs.ErrInvalidLaneCount, n, DefaultLanes, MaxLanes)
		}
		c.lanes = n

		return nil
	})
}

// WithPack enables or disables the pack transform for inputs with at most 16
// distinct symbols. Default is enabled.
func WithPack(enabled bool) Option {
	return options.NoError(func(c *streamConfig) {
		c.pack = enabled
	})
}

// Compress encodes src as a self-describing rANS Nx16 order-0 stream.
//
// The coded form is dropped in favor of storing src as is (CAT) when it would
// not be smaller.
func Compress(src []byte, opts ...Option) ([]byte, error) {
	cfg := &streamConfig{lanes: DefaultLanes, pack: true}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if uint64(len(src)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: input of %d bytes exceeds 32-bit length", errs.ErrUnsupportedConfiguration, len(src))
	}

	var flags byte
	if cfg.lanes == MaxLanes {
		flags |= FlagN32
	}

	dst := make([]byte, 1, 16+len(src))
	dst = num.AppendUint7(dst, uint32(len(src))) //nolint:gosec

	data := src
	if cfg.pack && len(src) > 0 {
		transform, packed, err := Pack(src)
		switch {
		case err == nil:
			flags |= FlagPack
			dst = append(dst, byte(transform.NSym()))
			dst = append(dst, transform.Palette...)
			dst = num.AppendUint7(dst, uint32(len(packed))) //nolint:gosec
			data = packed
		case !errors.Is(err, errs.ErrAlphabetTooLarge):
			return nil, err
		}
	}

	if len(data) > 0 {
		freqs, payload, err := EncodeOrder0(data, cfg.lanes)
		if err != nil {
			return nil, err
		}

		coded := AppendFrequencies(nil, &freqs)
		if len(coded)+len(payload) < len(data) {
			dst = append(dst, coded...)
			dst = append(dst, payload...)
			dst[0] = flags

			return dst, nil
		}
	}

	flags |= FlagCat
	dst = append(dst, data...)
	dst[0] = flags

	return dst, nil
}

// Decompress decodes a stream produced by Compress.
//
// Order-1, striped, size-less and run-length streams are rejected with
// errs.ErrUnsupportedFlags.
//
// The output length is taken from the stream. A constant input packs to a few
// bytes whatever its length, so callers that know the expected size should use
// DecompressSize to bound the output.
func Decompress(src []byte) ([]byte, error) {
	return decompress(src, -1)
}

// DecompressSize decodes a stream that must hold exactly size raw bytes.
//
// The declared length is checked before any output is allocated; a mismatch
// yields errs.ErrRawSizeMismatch.
func DecompressSize(src []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", errs.ErrRawSizeMismatch, size)
	}

	return decompress(src, size)
}

// decompress decodes src; want < 0 accepts any declared length.
func decompress(src []byte, want int) ([]byte, error) {
	r := bytes.NewReader(src)

	flags, err := r.ReadByte()
	if err != nil {
		return nil, errs.Truncated("rans nx16 flags", 1, 0)
	}

	if flags&unsupportedFlags != 0 {
		return nil, fmt.Errorf("%w: 0x%02x", errs.ErrUnsupportedFlags, flags)
	}

	lanes := DefaultLanes
	if flags&FlagN32 != 0 {
		lanes = MaxLanes
	}

	rawLen, err := num.ReadUint7(r)
	if err != nil {
		return nil, fmt.Errorf("raw length: %w", err)
	}

	if want >= 0 && int64(rawLen) != int64(want) {
		return nil, fmt.Errorf("%w: stream declares %d bytes, want %d", errs.ErrRawSizeMismatch, rawLen, want)
	}

	n := int(rawLen)

	var palette []byte
	if flags&FlagPack != 0 {
		nSym, err := r.ReadByte()
		if err != nil {
			return nil, errs.Truncated("pack symbol count", 1, 0)
		}

		if nSym > MaxPackSymbols {
			return nil, fmt.Errorf("%w: nSym %d exceeds %d", errs.ErrAlphabetTooLarge, nSym, MaxPackSymbols)
		}

		palette = make([]byte, nSym)
		if got, _ := r.Read(palette); got < int(nSym) {
			return nil, errs.Truncated("pack palette", int(nSym), got)
		}

		packedLen, err := num.ReadUint7(r)
		if err != nil {
			return nil, fmt.Errorf("packed length: %w", err)
		}

		n = int(packedLen)
		if expect := (PackTransform{Palette: palette}).PackedLen(int(rawLen)); n != expect {
			return nil, fmt.Errorf("%w: packed length %d, want %d for %d symbols", errs.ErrRawSizeMismatch, n, expect, rawLen)
		}
	}

	var data []byte
	if flags&FlagCat != 0 {
		if r.Len() < n {
			return nil, errs.Truncated("stored data", n, r.Len())
		}

		if r.Len() > n {
			return nil, fmt.Errorf("%w: %d bytes after stored data", errs.ErrTrailingData, r.Len()-n)
		}

		data = src[len(src)-n:]
	} else {
		freqs, err := ReadFrequencies(r)
		if err != nil {
			return nil, err
		}

		data, err = DecodeOrder0(src[len(src)-r.Len():], &freqs, lanes, n)
		if err != nil {
			return nil, err
		}
	}

	if flags&FlagPack != 0 {
		return Unpack(data, palette, len(palette), int(rawLen))
	}

	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}
