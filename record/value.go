package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/arloliu/cramblock/errs"
)

// Value is a typed tag value held in its binary encoding.
type Value struct {
	typ ValueType
	raw []byte
}

// Char returns an 'A' value.
func Char(c byte) Value { return Value{typ: TypeChar, raw: []byte{c}} }

// Int8 returns a 'c' value.
func Int8(v int8) Value { return Value{typ: TypeInt8, raw: []byte{byte(v)}} }

// Uint8 returns a 'C' value.
func Uint8(v uint8) Value { return Value{typ: TypeUint8, raw: []byte{v}} }

// Int16 returns an 's' value.
func Int16(v int16) Value {
	return Value{typ: TypeInt16, raw: binary.LittleEndian.AppendUint16(nil, uint16(v))} //nolint:gosec
}

// Uint16 returns an 'S' value.
func Uint16(v uint16) Value {
	return Value{typ: TypeUint16, raw: binary.LittleEndian.AppendUint16(nil, v)}
}

// Int32 returns an 'i' value.
func Int32(v int32) Value {
	return Value{typ: TypeInt32, raw: binary.LittleEndian.AppendUint32(nil, uint32(v))} //nolint:gosec
}

// Uint32 returns an 'I' value.
func Uint32(v uint32) Value {
	return Value{typ: TypeUint32, raw: binary.LittleEndian.AppendUint32(nil, v)}
}

// Float32 returns an 'f' value.
func Float32(v float32) Value {
	return Value{typ: TypeFloat32, raw: binary.LittleEndian.AppendUint32(nil, math.Float32bits(v))}
}

// String returns a 'Z' value. s must not contain NUL.
func String(s string) (Value, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return Value{}, fmt.Errorf("%w: string contains NUL", errs.ErrInvalidTagValue)
	}

	return Value{typ: TypeString, raw: append([]byte(s), 0)}, nil
}

// Hex returns an 'H' value. s must consist of an even number of hex digits.
func Hex(s string) (Value, error) {
	if err := checkHex([]byte(s)); err != nil {
		return Value{}, err
	}

	return Value{typ: TypeHex, raw: append([]byte(s), 0)}, nil
}

// checkHex reports whether digits is an even-length run of hex digits.
func checkHex(digits []byte) error {
	if len(digits)%2 != 0 {
		return fmt.Errorf("%w: odd hex length %d", errs.ErrInvalidTagValue, len(digits))
	}

	for _, c := range digits {
		if !isDigit(c) && (c < 'A' || c > 'F') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: hex digit %q", errs.ErrInvalidTagValue, c)
		}
	}

	return nil
}

// Uint8Array returns a 'B' value with element type 'C'.
func Uint8Array(v []uint8) Value {
	raw := arrayHeader(TypeUint8, len(v))
	return Value{typ: TypeArray, raw: append(raw, v...)}
}

// Int32Array returns a 'B' value with element type 'i'.
func Int32Array(v []int32) Value {
	raw := arrayHeader(TypeInt32, len(v))
	for _, x := range v {
		raw = binary.LittleEndian.AppendUint32(raw, uint32(x)) //nolint:gosec
	}

	return Value{typ: TypeArray, raw: raw}
}

// Float32Array returns a 'B' value with element type 'f'.
func Float32Array(v []float32) Value {
	raw := arrayHeader(TypeFloat32, len(v))
	for _, x := range v {
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(x))
	}

	return Value{typ: TypeArray, raw: raw}
}

func arrayHeader(elem ValueType, n int) []byte {
	raw := make([]byte, 0, 5+n*elem.size())
	raw = append(raw, byte(elem))

	return binary.LittleEndian.AppendUint32(raw, uint32(n)) //nolint:gosec
}

// Type returns the value type code.
func (v Value) Type() ValueType {
	return v.typ
}

// Bytes returns the binary encoding. The slice must not be modified.
func (v Value) Bytes() []byte {
	return v.raw
}

// Int returns the value of an integer type ('c', 'C', 's', 'S', 'i', 'I').
func (v Value) Int() (int64, bool) {
	switch v.typ {
	case TypeInt8:
		return int64(int8(v.raw[0])), true //nolint:gosec
	case TypeUint8:
		return int64(v.raw[0]), true
	case TypeInt16:
		return int64(int16(binary.LittleEndian.Uint16(v.raw))), true //nolint:gosec
	case TypeUint16:
		return int64(binary.LittleEndian.Uint16(v.raw)), true
	case TypeInt32:
		return int64(int32(binary.LittleEndian.Uint32(v.raw))), true //nolint:gosec
	case TypeUint32:
		return int64(binary.LittleEndian.Uint32(v.raw)), true
	default:
		return 0, false
	}
}

// Text returns the content of a 'A', 'Z' or 'H' value without terminator.
func (v Value) Text() (string, bool) {
	switch v.typ {
	case TypeChar:
		return string(v.raw), true
	case TypeString, TypeHex:
		return string(v.raw[:len(v.raw)-1]), true
	default:
		return "", false
	}
}

// Equal reports whether v and other have the same type and encoding.
func (v Value) Equal(other Value) bool {
	return v.typ == other.typ && bytes.Equal(v.raw, other.raw)
}

// Reader is the byte source ReadValue consumes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// ReadValue reads one value of type typ from r.
//
// Values of one tag are stored back to back in an external block, so r is
// left positioned at the next value. Hex values are checked the way Hex checks
// them.
func ReadValue(typ ValueType, r Reader) (Value, error) {
	if !typ.Valid() {
		return Value{}, fmt.Errorf("%w: type %q", errs.ErrInvalidTagValue, byte(typ))
	}

	switch typ {
	case TypeString, TypeHex:
		var raw []byte
		for {
			c, err := r.ReadByte()
			if err != nil {
				return Value{}, readErr(err, typ.String()+" value", len(raw)+1, len(raw))
			}

			if c == 0 {
				if typ == TypeHex {
					if err := checkHex(raw); err != nil {
						return Value{}, err
					}
				}

				return Value{typ: typ, raw: append(raw, 0)}, nil
			}
			raw = append(raw, c)
		}
	case TypeArray:
		head := make([]byte, 5)
		if n, err := io.ReadFull(r, head); err != nil {
			return Value{}, readErr(err, "array header", len(head), n)
		}

		elem := ValueType(head[0])
		if elem.size() == 0 || elem == TypeChar {
			return Value{}, fmt.Errorf("%w: array element type %q", errs.ErrInvalidTagValue, head[0])
		}

		count := binary.LittleEndian.Uint32(head[1:])
		bodyLen := int64(count) * int64(elem.size())

		var body bytes.Buffer
		n, err := io.CopyN(&body, r, bodyLen)
		if err != nil {
			return Value{}, readErr(err, "array body", int(bodyLen), int(n))
		}

		return Value{typ: typ, raw: append(head, body.Bytes()...)}, nil
	default:
		raw := make([]byte, typ.size())
		if n, err := io.ReadFull(r, raw); err != nil {
			return Value{}, readErr(err, typ.String()+" value", len(raw), n)
		}

		return Value{typ: typ, raw: raw}, nil
	}
}

func readErr(err error, what string, want, got int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.Truncated(what, want, got)
	}

	return err
}
