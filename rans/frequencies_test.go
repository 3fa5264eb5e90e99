package rans

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/arloliu/cramblock/errs"
	"github.com/stretchr/testify/require"
)

func requireNormalized(t *testing.T, raw, normalized *Frequencies) {
	t.Helper()

	require.Equal(t, uint64(TotalFrequency), normalized.Sum())
	for sym := range raw {
		if raw[sym] > 0 {
			require.NotZero(t, normalized[sym], "symbol %d starved", sym)
		} else {
			require.Zero(t, normalized[sym], "symbol %d invented", sym)
		}
	}
}

func TestBuildFrequencies(t *testing.T) {
	freqs := BuildFrequencies([]byte("noodles"))

	require.Equal(t, uint32(2), freqs['o'])
	require.Equal(t, uint32(1), freqs['n'])
	require.Equal(t, uint32(1), freqs['s'])
	require.Equal(t, uint64(7), freqs.Sum())
	require.Equal(t, []byte("delnos"), freqs.Alphabet())
}

func TestNormalize_Exact(t *testing.T) {
	raw := BuildFrequencies([]byte("abcc"))
	normalized := Normalize(&raw)

	require.Equal(t, uint32(1024), normalized['a'])
	require.Equal(t, uint32(1024), normalized['b'])
	require.Equal(t, uint32(2048), normalized['c'])
}

func TestNormalize_ShortfallGoesToMostFrequent(t *testing.T) {
	raw := BuildFrequencies([]byte("aab"))
	normalized := Normalize(&raw)

	// floor(2*4096/3)=2730, floor(4096/3)=1365, remainder 1 goes to 'a'
	require.Equal(t, uint32(2731), normalized['a'])
	require.Equal(t, uint32(1365), normalized['b'])
}

func TestNormalize_ProtectsRareSymbols(t *testing.T) {
	var raw Frequencies
	raw[0] = 10_000_000
	for sym := 1; sym < 256; sym++ {
		raw[sym] = 1
	}

	normalized := Normalize(&raw)
	requireNormalized(t, &raw, &normalized)
	require.Equal(t, uint32(TotalFrequency-255), normalized[0])
}

func TestNormalize_TiesPreferLowerSymbol(t *testing.T) {
	var raw Frequencies
	raw['x'] = 1_000_000
	raw['y'] = 1_000_000
	raw['z'] = 1

	normalized := Normalize(&raw)
	requireNormalized(t, &raw, &normalized)
	require.Equal(t, uint32(1), normalized['z'])
	require.Equal(t, uint32(2048), normalized['x'])
	require.Equal(t, uint32(2047), normalized['y'])
}

func TestNormalize_SingleSymbol(t *testing.T) {
	raw := BuildFrequencies([]byte("GGGG"))
	normalized := Normalize(&raw)
	require.Equal(t, uint32(TotalFrequency), normalized['G'])
}

func TestNormalize_Empty(t *testing.T) {
	var raw Frequencies
	normalized := Normalize(&raw)
	require.Zero(t, normalized.Sum())
}

func TestNormalize_RandomHistograms(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for range 500 {
		var raw Frequencies
		present := 1 + rng.IntN(256)
		for range present {
			sym := rng.IntN(256)
			switch rng.IntN(3) {
			case 0:
				raw[sym] += 1
			case 1:
				raw[sym] += uint32(rng.IntN(100))
			default:
				raw[sym] += uint32(rng.IntN(1 << 24))
			}
		}
		if raw.Sum() == 0 {
			raw[0] = 1
		}

		normalized := Normalize(&raw)
		requireNormalized(t, &raw, &normalized)
	}
}

func TestBuildCumulative(t *testing.T) {
	var freqs Frequencies
	freqs[1] = 1000
	freqs[3] = 96
	freqs[255] = 3000

	cfreqs := BuildCumulative(&freqs)
	require.Equal(t, uint32(0), cfreqs[0])
	require.Equal(t, uint32(0), cfreqs[1])
	require.Equal(t, uint32(1000), cfreqs[2])
	require.Equal(t, uint32(1000), cfreqs[3])
	require.Equal(t, uint32(1096), cfreqs[4])
	require.Equal(t, uint32(1096), cfreqs[255])
}

func TestFrequencies_Validate(t *testing.T) {
	var freqs Frequencies
	freqs['A'] = 4095
	require.ErrorIs(t, freqs.Validate(), errs.ErrInvalidFrequencyTable)

	freqs['C'] = 1
	require.NoError(t, freqs.Validate())
}

func TestAppendFrequencies_Layout(t *testing.T) {
	var freqs Frequencies
	freqs[0] = 1000
	freqs[1] = 1000
	freqs[2] = 1000
	freqs[10] = 1096

	got := AppendFrequencies(nil, &freqs)
	expected := []byte{
		0, 1, 1, 10, 0, // alphabet: 0, run starting at 1 covering 2, then 10, terminator
		0x87, 0x68, // 1000
		0x87, 0x68,
		0x87, 0x68,
		0x88, 0x48, // 1096
	}
	require.Equal(t, expected, got)
}

func TestFrequencies_SerializationRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("a"),
		{0},
		{0, 255},
		{255},
		[]byte("the quick brown fox jumps over the lazy dog"),
		bytes.Repeat([]byte{0, 1, 2, 3, 4, 5, 6, 200, 201, 202}, 50),
	}

	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	inputs = append(inputs, all)

	for _, src := range inputs {
		raw := BuildFrequencies(src)
		normalized := Normalize(&raw)

		buf := AppendFrequencies(nil, &normalized)
		r := bytes.NewReader(buf)
		got, err := ReadFrequencies(r)
		require.NoError(t, err)
		require.Equal(t, normalized, got)
		require.Zero(t, r.Len(), "reader should consume the whole table")
	}
}

func TestReadFrequencies_Malformed(t *testing.T) {
	t.Run("truncated alphabet", func(t *testing.T) {
		_, err := ReadFrequencies(bytes.NewReader([]byte{'A'}))
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
	})

	t.Run("truncated frequency", func(t *testing.T) {
		_, err := ReadFrequencies(bytes.NewReader([]byte{'A', 0, 0x80}))
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
	})

	t.Run("run past symbol 255", func(t *testing.T) {
		_, err := ReadFrequencies(bytes.NewReader([]byte{254, 255, 10}))
		require.ErrorIs(t, err, errs.ErrInvalidAlphabet)
	})

	t.Run("zero frequency", func(t *testing.T) {
		_, err := ReadFrequencies(bytes.NewReader([]byte{'A', 0, 0}))
		require.ErrorIs(t, err, errs.ErrInvalidFrequencyTable)
	})
}
