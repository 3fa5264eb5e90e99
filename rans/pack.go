package rans

import (
	"fmt"

	"github.com/arloliu/cramblock/errs"
)

// MaxPackSymbols is the largest alphabet the pack transform accepts.
const MaxPackSymbols = 16

// PackTransform describes how a low-cardinality stream was bit-packed.
type PackTransform struct {
	// Palette lists the distinct symbols in order of first appearance; a
	// packed code is an index into it.
	Palette []byte
}

// NSym returns the palette size.
func (p PackTransform) NSym() int {
	return len(p.Palette)
}

// SymbolBitWidth returns the bits used per symbol: 0 for a palette of at most
// one symbol, then 1, 2 or 4.
func (p PackTransform) SymbolBitWidth() int {
	return symbolBitWidth(len(p.Palette))
}

// PackedLen returns the number of packed bytes for n symbols.
func (p PackTransform) PackedLen(n int) int {
	width := p.SymbolBitWidth()
	if width == 0 {
		return 0
	}

	perByte := 8 / width

	return (n + perByte - 1) / perByte
}

func symbolBitWidth(nSym int) int {
	switch {
	case nSym <= 1:
		return 0
	case nSym <= 2:
		return 1
	case nSym <= 4:
		return 2
	default:
		return 4
	}
}

// Pack bit-packs src using a palette of its distinct symbols.
//
// Codes are stored least-significant bits first: the symbol at position i
// occupies bits (i mod k)*w .. (i mod k)*w+w-1 of byte i/k, where w is the
// bit width and k = 8/w. Trailing codes of the last byte are zero.
//
// Returns errs.ErrAlphabetTooLarge if src has more than MaxPackSymbols
// distinct values.
func Pack(src []byte) (PackTransform, []byte, error) {
	var index [256]int
	for i := range index {
		index[i] = -1
	}

	palette := make([]byte, 0, MaxPackSymbols)
	for _, b := range src {
		if index[b] >= 0 {
			continue
		}

		if len(palette) == MaxPackSymbols {
			return PackTransform{}, nil, fmt.Errorf("%w: more than %d distinct symbols", errs.ErrAlphabetTooLarge, MaxPackSymbols)
		}

		index[b] = len(palette)
		palette = append(palette, b)
	}

	transform := PackTransform{Palette: palette}
	width := transform.SymbolBitWidth()
	dst := make([]byte, transform.PackedLen(len(src)))
	if width == 0 {
		return transform, dst, nil
	}

	perByte := 8 / width
	for i, b := range src {
		shift := uint(i%perByte) * uint(width) //nolint:gosec
		dst[i/perByte] |= byte(index[b]) << shift
	}

	return transform, dst, nil
}

// Unpack restores n symbols from a packed stream.
//
// n is required because the padding codes of the last byte cannot be told
// apart from real symbols. For nSym <= 1 no input is consumed and every output
// byte is palette[0].
func Unpack(src []byte, palette []byte, nSym int, n int) ([]byte, error) {
	if nSym > MaxPackSymbols {
		return nil, fmt.Errorf("%w: nSym %d exceeds %d", errs.ErrAlphabetTooLarge, nSym, MaxPackSymbols)
	}

	if n == 0 {
		return []byte{}, nil
	}

	width := symbolBitWidth(nSym)
	if width == 0 {
		if len(palette) == 0 {
			return nil, fmt.Errorf("%w: empty palette", errs.ErrPaletteIndexOutOfRange)
		}

		dst := make([]byte, n)
		for i := range dst {
			dst[i] = palette[0]
		}

		return dst, nil
	}

	perByte := 8 / width
	if need := (n + perByte - 1) / perByte; len(src) < need {
		return nil, errs.Truncated("packed symbols", need, len(src))
	}

	mask := byte(1)<<width - 1
	dst := make([]byte, n)

	var v byte
	for i := range dst {
		if i%perByte == 0 {
			v = src[i/perByte]
		}

		code := int(v & mask)
		if code >= len(palette) {
			return nil, fmt.Errorf("%w: code %d at position %d, palette has %d symbols",
				errs.ErrPaletteIndexOutOfRange, code, i, len(palette))
		}

		dst[i] = palette[code]
		v >>= width
	}

	return dst, nil
}
