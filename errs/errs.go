// Package errs defines the errors returned by cramblock packages.
//
// Every specific error wraps exactly one of four kinds so callers can branch
// with errors.Is on either level:
//
//   - ErrFormat: the input does not follow the wire format
//   - ErrTruncatedInput: fewer bytes are available than a declared length requires
//   - ErrIntegrity: a checksum does not match the bytes it covers
//   - ErrUnsupportedConfiguration: the request is valid but not supported by this implementation
package errs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrFormat                   = errors.New("format error")
	ErrTruncatedInput           = errors.New("truncated input")
	ErrIntegrity                = errors.New("integrity error")
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")
)

// Format errors.
var (
	ErrInvalidCompressionMethod = fmt.Errorf("%w: invalid compression method", ErrFormat)
	ErrInvalidContentType       = fmt.Errorf("%w: invalid block content type", ErrFormat)
	ErrInvalidBlockSize         = fmt.Errorf("%w: invalid block size", ErrFormat)
	ErrRawSizeMismatch          = fmt.Errorf("%w: decompressed size does not match raw size", ErrFormat)
	ErrInvalidVarint            = fmt.Errorf("%w: invalid variable-length integer", ErrFormat)
	ErrInvalidFrequencyTable    = fmt.Errorf("%w: invalid frequency table", ErrFormat)
	ErrInvalidAlphabet          = fmt.Errorf("%w: invalid alphabet", ErrFormat)
	ErrPaletteIndexOutOfRange   = fmt.Errorf("%w: palette index out of range", ErrFormat)
	ErrInvalidEncoding          = fmt.Errorf("%w: invalid encoding", ErrFormat)
	ErrInvalidTagKey            = fmt.Errorf("%w: invalid tag key", ErrFormat)
	ErrInvalidTagValue          = fmt.Errorf("%w: invalid tag value", ErrFormat)
	ErrMissingBlock             = fmt.Errorf("%w: missing block", ErrFormat)
	ErrTrailingData             = fmt.Errorf("%w: unexpected trailing data", ErrFormat)
	ErrInvalidContainer         = fmt.Errorf("%w: invalid container", ErrFormat)
)

// Integrity errors.
var (
	ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", ErrIntegrity)
)

// Unsupported configuration errors.
var (
	ErrAlphabetTooLarge  = fmt.Errorf("%w: alphabet too large for pack transform", ErrUnsupportedConfiguration)
	ErrInvalidLaneCount  = fmt.Errorf("%w: invalid lane count", ErrUnsupportedConfiguration)
	ErrUnsupportedFlags  = fmt.Errorf("%w: unsupported rANS Nx16 flags", ErrUnsupportedConfiguration)
	ErrUnsupportedMethod = fmt.Errorf("%w: unsupported compression method", ErrUnsupportedConfiguration)
	ErrInvalidSliceSize  = fmt.Errorf("%w: invalid records per slice", ErrUnsupportedConfiguration)
)

// TruncatedError reports a read that ended before a declared length was satisfied.
type TruncatedError struct {
	What string // field or section being read
	Want int    // bytes required
	Got  int    // bytes actually available
}

// Truncated returns a *TruncatedError for the named field.
func Truncated(what string, want, got int) error {
	return &TruncatedError{What: what, Want: want, Got: got}
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated input: %s: want %d bytes, got %d", e.What, e.Want, e.Got)
}

// Is reports whether target is ErrTruncatedInput.
func (e *TruncatedError) Is(target error) bool {
	return target == ErrTruncatedInput
}
