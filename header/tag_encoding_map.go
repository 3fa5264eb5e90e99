package header

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/internal/num"
	"github.com/arloliu/cramblock/internal/options"
	"github.com/arloliu/cramblock/record"
)

// EncodingPolicy picks the Encoding for one tag key.
type EncodingPolicy func(key record.Key) Encoding

// ExternalPerKey routes every key to an external block whose content id is
// the key id.
func ExternalPerKey(key record.Key) Encoding {
	return External{BlockContentID: key.ID()}
}

type tagMapConfig struct {
	policy EncodingPolicy
}

// TagEncodingMapOption configures BuildTagEncodingMap.
type TagEncodingMapOption = options.Option[*tagMapConfig]

// WithEncodingPolicy replaces the ExternalPerKey policy.
func WithEncodingPolicy(policy EncodingPolicy) TagEncodingMapOption {
	return options.New(func(c *tagMapConfig) error {
		if policy == nil {
			return fmt.Errorf("%w: nil encoding policy", errs.ErrUnsupportedConfiguration)
		}
		c.policy = policy

		return nil
	})
}

// TagEncodingMap maps tag key ids to the Encoding of their values.
type TagEncodingMap struct {
	entries map[int32]Encoding
}

// BuildTagEncodingMap collects the distinct tag keys of records and assigns
// each an Encoding.
//
// The result depends only on the set of key ids: keys repeated within or
// across records collapse into one entry.
func BuildTagEncodingMap(records []record.Record, opts ...TagEncodingMapOption) (*TagEncodingMap, error) {
	cfg := &tagMapConfig{policy: ExternalPerKey}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	m := &TagEncodingMap{entries: make(map[int32]Encoding)}
	for i := range records {
		for _, tag := range records[i].Tags {
			id := tag.Key.ID()
			if _, ok := m.entries[id]; ok {
				continue
			}

			enc := cfg.policy(tag.Key)
			if enc == nil {
				return nil, fmt.Errorf("%w: no encoding for %s", errs.ErrInvalidEncoding, tag.Key)
			}
			m.entries[id] = enc
		}
	}

	return m, nil
}

// Lookup returns the Encoding registered for key id.
func (m *TagEncodingMap) Lookup(id int32) (Encoding, bool) {
	enc, ok := m.entries[id]
	return enc, ok
}

// Len returns the number of entries.
func (m *TagEncodingMap) Len() int {
	return len(m.entries)
}

// IDs returns the key ids in ascending order.
func (m *TagEncodingMap) IDs() []int32 {
	return slices.Sorted(maps.Keys(m.entries))
}

// Append appends the serialized map to dst.
func (m *TagEncodingMap) Append(dst []byte) []byte {
	ids := m.IDs()

	body := num.AppendITF8(nil, int32(len(ids))) //nolint:gosec
	for _, id := range ids {
		body = num.AppendITF8(body, id)
		body = appendEncoding(body, m.entries[id])
	}

	return appendSized(dst, body)
}

// ReadTagEncodingMap parses a map written by Append.
//
// Each key id must name a valid tag key and appear once.
func ReadTagEncodingMap(r *bytes.Reader) (*TagEncodingMap, error) {
	body, err := readSized(r, "tag encoding map")
	if err != nil {
		return nil, err
	}

	br := bytes.NewReader(body)
	count, err := num.ReadITF8(br)
	if err != nil {
		return nil, err
	}

	if count < 0 {
		return nil, fmt.Errorf("%w: negative entry count %d", errs.ErrInvalidEncoding, count)
	}

	m := &TagEncodingMap{entries: make(map[int32]Encoding, min(int(count), br.Len()))}
	for range count {
		id, err := num.ReadITF8(br)
		if err != nil {
			return nil, err
		}

		if _, err := record.KeyFromID(id); err != nil {
			return nil, err
		}

		if _, dup := m.entries[id]; dup {
			return nil, fmt.Errorf("%w: duplicate key id %d", errs.ErrInvalidEncoding, id)
		}

		enc, err := readEncoding(br)
		if err != nil {
			return nil, fmt.Errorf("key id %d: %w", id, err)
		}
		m.entries[id] = enc
	}

	if br.Len() != 0 {
		return nil, fmt.Errorf("%w: %d bytes after tag encoding map", errs.ErrTrailingData, br.Len())
	}

	return m, nil
}
