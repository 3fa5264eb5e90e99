package record

import (
	"fmt"

	"github.com/arloliu/cramblock/errs"
)

// ValueType is the single-character type code of a tag value.
type ValueType byte

const (
	TypeChar    ValueType = 'A' // printable character
	TypeInt8    ValueType = 'c'
	TypeUint8   ValueType = 'C'
	TypeInt16   ValueType = 's'
	TypeUint16  ValueType = 'S'
	TypeInt32   ValueType = 'i'
	TypeUint32  ValueType = 'I'
	TypeFloat32 ValueType = 'f'
	TypeString  ValueType = 'Z' // NUL-terminated text
	TypeHex     ValueType = 'H' // NUL-terminated hex digits
	TypeArray   ValueType = 'B' // typed numeric array
)

// Valid reports whether t is a known tag value type.
func (t ValueType) Valid() bool {
	switch t {
	case TypeChar, TypeInt8, TypeUint8, TypeInt16, TypeUint16, TypeInt32, TypeUint32,
		TypeFloat32, TypeString, TypeHex, TypeArray:
		return true
	default:
		return false
	}
}

// size returns the fixed encoded width of t, or 0 for variable-length types.
func (t ValueType) size() int {
	switch t {
	case TypeChar, TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat32:
		return 4
	default:
		return 0
	}
}

func (t ValueType) String() string {
	return string(rune(t))
}

// Key identifies a tag by name and value type.
type Key struct {
	Tag  [2]byte
	Type ValueType
}

// NewKey validates tag and typ and returns the corresponding Key.
//
// tag must match [A-Za-z][A-Za-z0-9].
func NewKey(tag string, typ ValueType) (Key, error) {
	if len(tag) != 2 || !isAlpha(tag[0]) || !(isAlpha(tag[1]) || isDigit(tag[1])) {
		return Key{}, fmt.Errorf("%w: tag %q", errs.ErrInvalidTagKey, tag)
	}

	if !typ.Valid() {
		return Key{}, fmt.Errorf("%w: type %q for tag %s", errs.ErrInvalidTagKey, byte(typ), tag)
	}

	return Key{Tag: [2]byte{tag[0], tag[1]}, Type: typ}, nil
}

// ID folds the key into the numeric identifier used by compression headers.
func (k Key) ID() int32 {
	return int32(k.Tag[0])<<16 | int32(k.Tag[1])<<8 | int32(k.Type)
}

// KeyFromID is the inverse of Key.ID.
func KeyFromID(id int32) (Key, error) {
	if id < 0 || id > 0xffffff {
		return Key{}, fmt.Errorf("%w: id %d", errs.ErrInvalidTagKey, id)
	}

	return NewKey(string([]byte{byte(id >> 16), byte(id >> 8)}), ValueType(byte(id)))
}

func (k Key) String() string {
	return string(k.Tag[:]) + ":" + k.Type.String()
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
