package header

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/record"
)

// TagSets is the dictionary of distinct ordered tag key lists of a container.
//
// Records store an index into it instead of their key list.
type TagSets struct {
	sets  [][]record.Key
	index map[string]int
}

// NewTagSets returns an empty dictionary.
func NewTagSets() *TagSets {
	return &TagSets{index: make(map[string]int)}
}

// Add registers keys and returns the index of the list.
// Equal lists, including order, share one index.
func (ts *TagSets) Add(keys []record.Key) int {
	id := string(appendKeys(nil, keys))
	if i, ok := ts.index[id]; ok {
		return i
	}

	i := len(ts.sets)
	ts.sets = append(ts.sets, slices.Clone(keys))
	ts.index[id] = i

	return i
}

// Get returns the key list at index i.
func (ts *TagSets) Get(i int) ([]record.Key, bool) {
	if i < 0 || i >= len(ts.sets) {
		return nil, false
	}

	return ts.sets[i], true
}

// Len returns the number of distinct lists.
func (ts *TagSets) Len() int {
	return len(ts.sets)
}

// Append appends the serialized dictionary to dst. Each list is written as
// its 3-byte keys (tag name, type) followed by a NUL.
func (ts *TagSets) Append(dst []byte) []byte {
	var body []byte
	for _, keys := range ts.sets {
		body = appendKeys(body, keys)
		body = append(body, 0)
	}

	return appendSized(dst, body)
}

// ReadTagSets parses a dictionary written by Append.
func ReadTagSets(r *bytes.Reader) (*TagSets, error) {
	body, err := readSized(r, "tag sets")
	if err != nil {
		return nil, err
	}

	ts := NewTagSets()
	for len(body) > 0 {
		end := bytes.IndexByte(body, 0)
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated tag set", errs.ErrInvalidTagKey)
		}

		list := body[:end]
		body = body[end+1:]
		if len(list)%3 != 0 {
			return nil, fmt.Errorf("%w: tag set length %d", errs.ErrInvalidTagKey, len(list))
		}

		keys := make([]record.Key, 0, len(list)/3)
		for j := 0; j < len(list); j += 3 {
			key, err := record.NewKey(string(list[j:j+2]), record.ValueType(list[j+2]))
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}

		if before := ts.Len(); ts.Add(keys) != before {
			return nil, fmt.Errorf("%w: duplicate tag set %d", errs.ErrInvalidTagKey, before)
		}
	}

	return ts, nil
}

func appendKeys(dst []byte, keys []record.Key) []byte {
	for _, k := range keys {
		dst = append(dst, k.Tag[0], k.Tag[1], byte(k.Type))
	}

	return dst
}
