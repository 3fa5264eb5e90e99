package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{err: ErrInvalidCompressionMethod, kind: ErrFormat},
		{err: ErrPaletteIndexOutOfRange, kind: ErrFormat},
		{err: ErrInvalidFrequencyTable, kind: ErrFormat},
		{err: ErrChecksumMismatch, kind: ErrIntegrity},
		{err: ErrAlphabetTooLarge, kind: ErrUnsupportedConfiguration},
		{err: ErrUnsupportedMethod, kind: ErrUnsupportedConfiguration},
	}

	for _, tt := range tests {
		wrapped := fmt.Errorf("block 3: %w", tt.err)
		require.ErrorIs(t, wrapped, tt.kind, tt.err.Error())
		require.ErrorIs(t, wrapped, tt.err)
		require.NotErrorIs(t, wrapped, ErrTruncatedInput)
	}
}

func TestTruncatedError(t *testing.T) {
	err := fmt.Errorf("read block: %w", Truncated("block data", 10, 4))

	require.ErrorIs(t, err, ErrTruncatedInput)
	require.NotErrorIs(t, err, ErrFormat)

	var te *TruncatedError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "block data", te.What)
	require.Equal(t, 10, te.Want)
	require.Equal(t, 4, te.Got)
	require.Equal(t, "read block: truncated input: block data: want 10 bytes, got 4", err.Error())
}
