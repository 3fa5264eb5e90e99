package record

// Tag is one key/value pair attached to a record.
type Tag struct {
	Key   Key
	Value Value
}

// Record is an alignment record reduced to its optional tags.
//
// Tag order is preserved; it is part of what a CRAM tag set (TD) records.
type Record struct {
	Tags []Tag
}

// AddTag appends a tag named name holding v.
func (r *Record) AddTag(name string, v Value) error {
	key, err := NewKey(name, v.Type())
	if err != nil {
		return err
	}

	r.Tags = append(r.Tags, Tag{Key: key, Value: v})

	return nil
}

// Get returns the value of the first tag named name.
func (r *Record) Get(name string) (Value, bool) {
	for _, t := range r.Tags {
		if string(t.Key.Tag[:]) == name {
			return t.Value, true
		}
	}

	return Value{}, false
}

// Keys returns the tag keys in record order.
func (r *Record) Keys() []Key {
	keys := make([]Key, len(r.Tags))
	for i, t := range r.Tags {
		keys[i] = t.Key
	}

	return keys
}
