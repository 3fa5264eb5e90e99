package rans

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/internal/pool"
)

const stateSize = 4

// decodeReserve bounds the output capacity reserved up front; the rest grows
// with the symbols actually decoded.
const decodeReserve = 1 << 16

// EncodeOrder0 codes src with lanes interleaved rANS states.
//
// It returns the normalized frequency table and the payload: the final lane
// states followed by the renormalization words in decoder order. The table is
// not part of the payload; callers serialize it with AppendFrequencies.
//
// An empty src yields an all-zero table and a payload holding only the
// initial states.
func EncodeOrder0(src []byte, lanes int) (Frequencies, []byte, error) {
	if lanes <= 0 {
		return Frequencies{}, nil, fmt.Errorf("%w: %d", errs.ErrInvalidLaneCount, lanes)
	}

	raw := BuildFrequencies(src)
	freqs := Normalize(&raw)
	cfreqs := BuildCumulative(&freqs)

	states := make([]uint32, lanes)
	for j := range states {
		states[j] = LowerBound
	}

	buf := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(buf)
	buf.Grow(len(src))

	for i := len(src) - 1; i >= 0; i-- {
		j := i % lanes
		sym := src[i]

		x := renormalize(buf, states[j], freqs[sym])
		states[j] = update(x, cfreqs[sym], freqs[sym])
	}

	words := buf.Bytes()
	dst := make([]byte, lanes*stateSize+len(words))
	for j, state := range states {
		binary.LittleEndian.PutUint32(dst[j*stateSize:], state)
	}

	out := dst[lanes*stateSize:]
	for k := range words {
		out[k] = words[len(words)-1-k]
	}

	return freqs, dst, nil
}

// renormalize pushes the low 16 bits of x while x is too large for the
// symbol's interval. Words are pushed high byte first so that the final
// reversal leaves them little-endian.
func renormalize(buf *pool.ByteBuffer, x, freq uint32) uint32 {
	xMax := ((LowerBound >> Precision) << 16) * freq
	for x >= xMax {
		_ = buf.WriteByte(byte(x >> 8))
		_ = buf.WriteByte(byte(x))
		x >>= 16
	}

	return x
}

func update(x, cfreq, freq uint32) uint32 {
	return (x/freq)<<Precision + cfreq + x%freq
}

// DecodeOrder0 decodes n symbols from a payload produced by EncodeOrder0.
//
// freqs must be a normalized table; it is validated before any decoding so a
// malformed table cannot produce garbage output. A payload too short for the
// lane states or for a renormalization read fails with errs.ErrTruncatedInput.
//
// n is not trusted for allocation: the output grows as symbols are decoded, so
// a short payload claiming a huge n fails after a bounded amount of work.
func DecodeOrder0(src []byte, freqs *Frequencies, lanes int, n int) ([]byte, error) {
	if lanes <= 0 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidLaneCount, lanes)
	}

	if n == 0 {
		return []byte{}, nil
	}

	if err := freqs.Validate(); err != nil {
		return nil, err
	}

	if len(src) < lanes*stateSize {
		return nil, errs.Truncated("rans lane states", lanes*stateSize, len(src))
	}

	cfreqs := BuildCumulative(freqs)
	lookup := buildSymbolLookup(freqs, &cfreqs)

	states := make([]uint32, lanes)
	for j := range states {
		states[j] = binary.LittleEndian.Uint32(src[j*stateSize:])
	}

	pos := lanes * stateSize
	dst := make([]byte, 0, min(n, decodeReserve+4*len(src)))
	for i := range n {
		j := i % lanes
		x := states[j]

		slot := x & (TotalFrequency - 1)
		sym := lookup[slot]
		dst = append(dst, sym)

		x = freqs[sym]*(x>>Precision) + slot - cfreqs[sym]
		if x < LowerBound {
			if pos+2 > len(src) {
				return nil, errs.Truncated("rans renormalization word", pos+2, len(src))
			}

			x = x<<16 | uint32(binary.LittleEndian.Uint16(src[pos:]))
			pos += 2
		}

		states[j] = x
	}

	return dst, nil
}

// buildSymbolLookup maps every cumulative slot in [0, TotalFrequency) to the
// symbol owning it.
func buildSymbolLookup(freqs *Frequencies, cfreqs *CumulativeFrequencies) *[TotalFrequency]byte {
	var lookup [TotalFrequency]byte
	for sym, f := range freqs {
		start := cfreqs[sym]
		for k := start; k < start+f; k++ {
			lookup[k] = byte(sym)
		}
	}

	return &lookup
}
