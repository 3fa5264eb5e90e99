package format

import (
	"testing"

	"github.com/arloliu/cramblock/errs"
	"github.com/stretchr/testify/require"
)

func TestCompressionMethod_Validate(t *testing.T) {
	for m := CompressionNone; m <= CompressionNameTokenizer; m++ {
		require.NoError(t, m.Validate(), m.String())
		require.NotEqual(t, "Unknown", m.String())
	}

	err := CompressionMethod(9).Validate()
	require.ErrorIs(t, err, errs.ErrInvalidCompressionMethod)
	require.ErrorIs(t, err, errs.ErrFormat)
	require.Equal(t, "Unknown", CompressionMethod(99).String())
}

func TestContentType_Validate(t *testing.T) {
	tests := []struct {
		ct       ContentType
		expected string
	}{
		{ct: ContentFileHeader, expected: "FileHeader"},
		{ct: ContentCompressionHeader, expected: "CompressionHeader"},
		{ct: ContentSliceHeader, expected: "SliceHeader"},
		{ct: ContentReserved, expected: "Reserved"},
		{ct: ContentExternalData, expected: "ExternalData"},
		{ct: ContentCoreData, expected: "CoreData"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.NoError(t, tt.ct.Validate())
			require.Equal(t, tt.expected, tt.ct.String())
		})
	}

	require.ErrorIs(t, ContentType(6).Validate(), errs.ErrInvalidContentType)
	require.Equal(t, "Unknown", ContentType(6).String())
}
