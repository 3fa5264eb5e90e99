package header

import (
	"bytes"
	"fmt"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/internal/num"
)

// EncodingKind is the CRAM encoding id written ahead of encoding arguments.
type EncodingKind int32

// EncodingExternal stores values in the external block named by its argument.
const EncodingExternal EncodingKind = 1

func (k EncodingKind) String() string {
	if k == EncodingExternal {
		return "External"
	}

	return fmt.Sprintf("EncodingKind(%d)", int32(k))
}

// Encoding describes where and how the values of one tag key are stored.
//
// The set of variants is closed; External is the only one at present.
type Encoding interface {
	Kind() EncodingKind
	appendArgs(dst []byte) []byte
}

// External routes values to the block with content id BlockContentID.
type External struct {
	BlockContentID int32
}

var _ Encoding = External{}

// Kind returns EncodingExternal.
func (External) Kind() EncodingKind {
	return EncodingExternal
}

func (e External) appendArgs(dst []byte) []byte {
	return num.AppendITF8(dst, e.BlockContentID)
}

func (e External) String() string {
	return fmt.Sprintf("External(%d)", e.BlockContentID)
}

// appendEncoding writes kind, argument size and arguments.
func appendEncoding(dst []byte, enc Encoding) []byte {
	args := enc.appendArgs(nil)
	dst = num.AppendITF8(dst, int32(enc.Kind()))
	dst = num.AppendITF8(dst, int32(len(args))) //nolint:gosec

	return append(dst, args...)
}

func readEncoding(r *bytes.Reader) (Encoding, error) {
	kind, err := num.ReadITF8(r)
	if err != nil {
		return nil, err
	}

	args, err := readSized(r, "encoding arguments")
	if err != nil {
		return nil, err
	}

	switch EncodingKind(kind) {
	case EncodingExternal:
		ar := bytes.NewReader(args)
		id, err := num.ReadITF8(ar)
		if err != nil {
			return nil, fmt.Errorf("%w: external arguments: %w", errs.ErrInvalidEncoding, err)
		}

		if ar.Len() != 0 {
			return nil, fmt.Errorf("%w: %d extra bytes in external arguments", errs.ErrInvalidEncoding, ar.Len())
		}

		return External{BlockContentID: id}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", errs.ErrInvalidEncoding, kind)
	}
}

// readSized reads an ITF8 byte count followed by that many bytes.
func readSized(r *bytes.Reader, what string) ([]byte, error) {
	size, err := num.ReadITF8(r)
	if err != nil {
		return nil, err
	}

	if size < 0 {
		return nil, fmt.Errorf("%w: negative %s size %d", errs.ErrInvalidEncoding, what, size)
	}

	if int(size) > r.Len() {
		return nil, errs.Truncated(what, int(size), r.Len())
	}

	data := make([]byte, size)
	_, _ = r.Read(data)

	return data, nil
}

// appendSized writes len(data) as ITF8 followed by data.
func appendSized(dst, data []byte) []byte {
	dst = num.AppendITF8(dst, int32(len(data))) //nolint:gosec
	return append(dst, data...)
}
