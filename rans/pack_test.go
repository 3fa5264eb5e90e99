package rans

import (
	"math/rand/v2"
	"testing"

	"github.com/arloliu/cramblock/errs"
	"github.com/stretchr/testify/require"
)

func TestPack_AlternatingBits(t *testing.T) {
	src := []byte{0, 1, 0, 1, 0, 1, 0, 1}

	transform, packed, err := Pack(src)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1}, transform.Palette)
	require.Equal(t, 1, transform.SymbolBitWidth())
	require.Equal(t, []byte{0b10101010}, packed)

	got, err := Unpack(packed, transform.Palette, transform.NSym(), len(src))
	require.NoError(t, err)
	require.Equal(t, src, got)
}

func TestPack_PaletteFollowsFirstAppearance(t *testing.T) {
	transform, packed, err := Pack([]byte("TTAG"))
	require.NoError(t, err)
	require.Equal(t, []byte("TAG"), transform.Palette)
	require.Equal(t, 2, transform.SymbolBitWidth())
	// codes 0,0,1,2 at 2 bits each, least-significant first
	require.Equal(t, []byte{0b10_01_00_00}, packed)
}

func TestPack_SingleSymbol(t *testing.T) {
	src := []byte("AAAAAAAAAAAA")

	transform, packed, err := Pack(src)
	require.NoError(t, err)
	require.Equal(t, []byte("A"), transform.Palette)
	require.Equal(t, 0, transform.SymbolBitWidth())
	require.Empty(t, packed)

	got, err := Unpack(packed, transform.Palette, 1, len(src))
	require.NoError(t, err)
	require.Equal(t, src, got)
}

func TestPack_Empty(t *testing.T) {
	transform, packed, err := Pack(nil)
	require.NoError(t, err)
	require.Equal(t, 0, transform.NSym())
	require.Empty(t, packed)

	got, err := Unpack(nil, nil, 0, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestPack_RoundTripWidths(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	tests := []struct {
		name  string
		nSym  int
		width int
	}{
		{name: "two symbols", nSym: 2, width: 1},
		{name: "three symbols", nSym: 3, width: 2},
		{name: "four symbols", nSym: 4, width: 2},
		{name: "five symbols", nSym: 5, width: 4},
		{name: "sixteen symbols", nSym: 16, width: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, length := range []int{1, 7, 8, 9, 1000, 1 << 16} {
				src := make([]byte, length)
				for i := range src {
					src[i] = byte(100 + rng.IntN(tt.nSym))
				}
				// make sure every symbol appears so the width is deterministic
				if length >= tt.nSym {
					for s := range tt.nSym {
						src[s] = byte(100 + s)
					}
				}

				transform, packed, err := Pack(src)
				require.NoError(t, err)
				if length >= tt.nSym {
					require.Equal(t, tt.width, transform.SymbolBitWidth())
				}
				require.Len(t, packed, transform.PackedLen(length))

				got, err := Unpack(packed, transform.Palette, transform.NSym(), length)
				require.NoError(t, err)
				require.Equal(t, src, got)
			}
		})
	}
}

func TestPack_AlphabetTooLarge(t *testing.T) {
	src := make([]byte, 17)
	for i := range src {
		src[i] = byte(i)
	}

	_, _, err := Pack(src)
	require.ErrorIs(t, err, errs.ErrAlphabetTooLarge)
	require.ErrorIs(t, err, errs.ErrUnsupportedConfiguration)

	_, err = Unpack([]byte{0x00}, src, 17, 2)
	require.ErrorIs(t, err, errs.ErrAlphabetTooLarge)
}

func TestUnpack_PaletteIndexOutOfRange(t *testing.T) {
	// 2-bit codes with a 3-entry palette; code 3 has no palette entry
	_, err := Unpack([]byte{0b11_00_01_10}, []byte("ACG"), 3, 4)
	require.ErrorIs(t, err, errs.ErrPaletteIndexOutOfRange)
	require.ErrorIs(t, err, errs.ErrFormat)

	_, err = Unpack(nil, nil, 1, 3)
	require.ErrorIs(t, err, errs.ErrPaletteIndexOutOfRange)
}

func TestUnpack_Truncated(t *testing.T) {
	_, err := Unpack([]byte{0xff}, []byte{0, 1}, 2, 9)
	require.ErrorIs(t, err, errs.ErrTruncatedInput)

	var te *errs.TruncatedError
	require.ErrorAs(t, err, &te)
	require.Equal(t, 2, te.Want)
	require.Equal(t, 1, te.Got)
}
