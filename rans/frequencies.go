package rans

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/internal/num"
)

const (
	// Precision is the number of bits of the normalized frequency total.
	Precision = 12
	// TotalFrequency is the sum of every normalized frequency table.
	TotalFrequency = 1 << Precision
	// LowerBound is the initial lane state and the renormalization lower bound.
	LowerBound = 0x8000
)

// Frequencies maps each byte value to its frequency.
//
// Raw histograms and normalized tables share this type; only a normalized
// table (sum == TotalFrequency) passes Validate.
type Frequencies [256]uint32

// CumulativeFrequencies holds exclusive prefix sums of a normalized table.
type CumulativeFrequencies [256]uint32

// BuildFrequencies returns the histogram of src.
func BuildFrequencies(src []byte) Frequencies {
	var freqs Frequencies
	for _, b := range src {
		freqs[b]++
	}

	return freqs
}

// Sum returns the total of all frequencies.
func (f *Frequencies) Sum() uint64 {
	var sum uint64
	for _, v := range f {
		sum += uint64(v)
	}

	return sum
}

// Alphabet returns the symbols with a nonzero frequency in ascending order.
func (f *Frequencies) Alphabet() []byte {
	alphabet := make([]byte, 0, 256)
	for sym, v := range f {
		if v > 0 {
			alphabet = append(alphabet, byte(sym))
		}
	}

	return alphabet
}

// Validate checks that f is a normalized table summing to TotalFrequency.
func (f *Frequencies) Validate() error {
	if sum := f.Sum(); sum != TotalFrequency {
		return fmt.Errorf("%w: frequencies sum to %d, want %d", errs.ErrInvalidFrequencyTable, sum, TotalFrequency)
	}

	return nil
}

// Normalize scales a raw histogram so it sums to TotalFrequency.
//
// Each present symbol gets floor(raw*4096/total), raised to 1 if that rounds
// to zero. A shortfall is added to the most frequent raw symbol (lowest symbol
// on ties). An excess, which only the raise to 1 can cause, is taken back one
// unit at a time from the symbols in descending normalized order (lowest
// symbol first on ties), never lowering a symbol below 1.
//
// An all-zero histogram yields an all-zero table.
func Normalize(raw *Frequencies) Frequencies {
	var normalized Frequencies

	total := raw.Sum()
	if total == 0 {
		return normalized
	}

	var sum uint32
	maxSym := 0
	for sym, f := range raw {
		if f == 0 {
			continue
		}

		if f > raw[maxSym] {
			maxSym = sym
		}

		n := uint32(uint64(f) * TotalFrequency / total) //nolint:gosec
		if n == 0 {
			n = 1
		}

		normalized[sym] = n
		sum += n
	}

	switch {
	case sum < TotalFrequency:
		normalized[maxSym] += TotalFrequency - sum
	case sum > TotalFrequency:
		shrink(&normalized, sum-TotalFrequency)
	}

	return normalized
}

func shrink(freqs *Frequencies, excess uint32) {
	order := make([]int, 0, 256)
	for sym, f := range freqs {
		if f > 1 {
			order = append(order, sym)
		}
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(freqs[b], freqs[a])
	})

	for excess > 0 {
		progressed := false
		for _, sym := range order {
			if excess == 0 {
				break
			}

			if freqs[sym] > 1 {
				freqs[sym]--
				excess--
				progressed = true
			}
		}

		if !progressed {
			return
		}
	}
}

// BuildCumulative returns the exclusive prefix sums of freqs in symbol order.
func BuildCumulative(freqs *Frequencies) CumulativeFrequencies {
	var cfreqs CumulativeFrequencies
	for sym := 1; sym < len(freqs); sym++ {
		cfreqs[sym] = cfreqs[sym-1] + freqs[sym-1]
	}

	return cfreqs
}

// AppendFrequencies appends the serialized table to dst: the alphabet followed
// by each nonzero frequency as uint7, in ascending symbol order.
//
// The table must have at least one nonzero entry; an empty alphabet has no
// encoding distinct from the alphabet {0}.
func AppendFrequencies(dst []byte, freqs *Frequencies) []byte {
	dst = appendAlphabet(dst, freqs)

	for _, f := range freqs {
		if f > 0 {
			dst = num.AppendUint7(dst, f)
		}
	}

	return dst
}

// ReadFrequencies reads a table written by AppendFrequencies.
//
// The result is not validated; decoders call Validate before use.
func ReadFrequencies(r io.ByteReader) (Frequencies, error) {
	var freqs Frequencies

	alphabet, err := readAlphabet(r)
	if err != nil {
		return freqs, err
	}

	for sym, present := range alphabet {
		if !present {
			continue
		}

		f, err := num.ReadUint7(r)
		if err != nil {
			return freqs, fmt.Errorf("frequency of symbol %d: %w", sym, err)
		}

		if f == 0 {
			return freqs, fmt.Errorf("%w: symbol %d listed with zero frequency", errs.ErrInvalidFrequencyTable, sym)
		}

		freqs[sym] = f
	}

	return freqs, nil
}

// appendAlphabet writes the present symbols in ascending order. When a symbol
// directly follows another present symbol, it is followed by the count of the
// present symbols that continue the run, which are then omitted. A zero byte
// terminates the list.
func appendAlphabet(dst []byte, freqs *Frequencies) []byte {
	rle := 0
	for sym := range len(freqs) {
		if freqs[sym] == 0 {
			continue
		}

		if rle > 0 {
			rle--
			continue
		}

		dst = append(dst, byte(sym))

		if sym > 0 && freqs[sym-1] > 0 {
			end := sym + 1
			for end < len(freqs) && freqs[end] > 0 {
				end++
			}

			rle = end - (sym + 1)
			dst = append(dst, byte(rle))
		}
	}

	return append(dst, 0)
}

func readAlphabet(r io.ByteReader) ([256]bool, error) {
	var alphabet [256]bool

	readByte := func() (int, error) {
		b, err := r.ReadByte()
		if err != nil {
			return 0, errs.Truncated("alphabet", 1, 0)
		}

		return int(b), nil
	}

	sym, err := readByte()
	if err != nil {
		return alphabet, err
	}

	rle := 0
	for {
		if sym > 255 {
			return alphabet, fmt.Errorf("%w: run exceeds symbol 255", errs.ErrInvalidAlphabet)
		}

		alphabet[sym] = true

		switch {
		case rle > 0:
			rle--
			sym++
		default:
			next, err := readByte()
			if err != nil {
				return alphabet, err
			}

			if next == sym+1 {
				if rle, err = readByte(); err != nil {
					return alphabet, err
				}
			}

			sym = next
		}

		if sym == 0 {
			return alphabet, nil
		}
	}
}
