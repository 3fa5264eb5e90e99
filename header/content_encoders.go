package header

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/format"
	"github.com/arloliu/cramblock/internal/num"
)

// BlockContentEncoderMap selects the compression method for each block of a
// slice.
//
// The core block uses Core. External blocks use their override when one is
// set and Default otherwise.
type BlockContentEncoderMap struct {
	Core      format.CompressionMethod
	Default   format.CompressionMethod
	overrides map[int32]format.CompressionMethod
}

// NewBlockContentEncoderMap returns a map using gzip for the core block and
// rANS Nx16 for external blocks.
func NewBlockContentEncoderMap() *BlockContentEncoderMap {
	return &BlockContentEncoderMap{
		Core:      format.CompressionGzip,
		Default:   format.CompressionRansNx16,
		overrides: make(map[int32]format.CompressionMethod),
	}
}

// Set overrides the method of the external block with content id contentID.
func (m *BlockContentEncoderMap) Set(contentID int32, method format.CompressionMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}

	if m.overrides == nil {
		m.overrides = make(map[int32]format.CompressionMethod)
	}
	m.overrides[contentID] = method

	return nil
}

// Method returns the method for the external block contentID.
func (m *BlockContentEncoderMap) Method(contentID int32) format.CompressionMethod {
	if method, ok := m.overrides[contentID]; ok {
		return method
	}

	return m.Default
}

// Append appends the serialized map to dst.
func (m *BlockContentEncoderMap) Append(dst []byte) []byte {
	dst = num.AppendITF8(dst, int32(m.Core))
	dst = num.AppendITF8(dst, int32(m.Default))

	ids := slices.Sorted(maps.Keys(m.overrides))
	dst = num.AppendITF8(dst, int32(len(ids))) //nolint:gosec
	for _, id := range ids {
		dst = num.AppendITF8(dst, id)
		dst = num.AppendITF8(dst, int32(m.overrides[id]))
	}

	return dst
}

// ReadBlockContentEncoderMap parses a map written by Append.
func ReadBlockContentEncoderMap(r *bytes.Reader) (*BlockContentEncoderMap, error) {
	core, err := readMethod(r)
	if err != nil {
		return nil, err
	}

	def, err := readMethod(r)
	if err != nil {
		return nil, err
	}

	count, err := num.ReadITF8(r)
	if err != nil {
		return nil, err
	}

	if count < 0 {
		return nil, fmt.Errorf("%w: negative override count %d", errs.ErrInvalidEncoding, count)
	}

	m := &BlockContentEncoderMap{
		Core:      core,
		Default:   def,
		overrides: make(map[int32]format.CompressionMethod, min(int(count), r.Len())),
	}
	for range count {
		id, err := num.ReadITF8(r)
		if err != nil {
			return nil, err
		}

		method, err := readMethod(r)
		if err != nil {
			return nil, err
		}
		m.overrides[id] = method
	}

	return m, nil
}

func readMethod(r *bytes.Reader) (format.CompressionMethod, error) {
	v, err := num.ReadITF8(r)
	if err != nil {
		return 0, err
	}

	if v < 0 || v > 0xff {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidCompressionMethod, v)
	}

	method := format.CompressionMethod(v)

	return method, method.Validate()
}
