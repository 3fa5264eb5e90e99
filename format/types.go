package format

import (
	"fmt"

	"github.com/arloliu/cramblock/errs"
)

type (
	CompressionMethod uint8
	ContentType       uint8
)

const (
	CompressionNone               CompressionMethod = 0x0 // CompressionNone stores the payload as is.
	CompressionGzip               CompressionMethod = 0x1 // CompressionGzip represents gzip (DEFLATE) compression.
	CompressionBzip2              CompressionMethod = 0x2 // CompressionBzip2 represents bzip2 compression.
	CompressionLzma               CompressionMethod = 0x3 // CompressionLzma represents LZMA compression.
	CompressionRans4x8            CompressionMethod = 0x4 // CompressionRans4x8 represents the rANS 4x8 entropy coder.
	CompressionRansNx16           CompressionMethod = 0x5 // CompressionRansNx16 represents the rANS Nx16 entropy coder.
	CompressionAdaptiveArithmetic CompressionMethod = 0x6 // CompressionAdaptiveArithmetic represents the adaptive arithmetic coder.
	CompressionFqzcomp            CompressionMethod = 0x7 // CompressionFqzcomp represents the fqzcomp quality coder.
	CompressionNameTokenizer      CompressionMethod = 0x8 // CompressionNameTokenizer represents the read name tokenizer.

	ContentFileHeader        ContentType = 0x0 // ContentFileHeader holds the SAM header.
	ContentCompressionHeader ContentType = 0x1 // ContentCompressionHeader holds a container compression header.
	ContentSliceHeader       ContentType = 0x2 // ContentSliceHeader holds a slice header.
	ContentReserved          ContentType = 0x3 // ContentReserved is reserved by the format.
	ContentExternalData      ContentType = 0x4 // ContentExternalData holds one external data series.
	ContentCoreData          ContentType = 0x5 // ContentCoreData holds the core bit stream.
)

func (m CompressionMethod) String() string {
	switch m {
	case CompressionNone:
		return "None"
	case CompressionGzip:
		return "Gzip"
	case CompressionBzip2:
		return "Bzip2"
	case CompressionLzma:
		return "Lzma"
	case CompressionRans4x8:
		return "Rans4x8"
	case CompressionRansNx16:
		return "RansNx16"
	case CompressionAdaptiveArithmetic:
		return "AdaptiveArithmetic"
	case CompressionFqzcomp:
		return "Fqzcomp"
	case CompressionNameTokenizer:
		return "NameTokenizer"
	default:
		return "Unknown"
	}
}

// Validate returns errs.ErrInvalidCompressionMethod if m is not a registered method.
func (m CompressionMethod) Validate() error {
	if m > CompressionNameTokenizer {
		return fmt.Errorf("%w: %d", errs.ErrInvalidCompressionMethod, uint8(m))
	}

	return nil
}

func (c ContentType) String() string {
	switch c {
	case ContentFileHeader:
		return "FileHeader"
	case ContentCompressionHeader:
		return "CompressionHeader"
	case ContentSliceHeader:
		return "SliceHeader"
	case ContentReserved:
		return "Reserved"
	case ContentExternalData:
		return "ExternalData"
	case ContentCoreData:
		return "CoreData"
	default:
		return "Unknown"
	}
}

// Validate returns errs.ErrInvalidContentType if c is not a registered content type.
func (c ContentType) Validate() error {
	if c > ContentCoreData {
		return fmt.Errorf("%w: %d", errs.ErrInvalidContentType, uint8(c))
	}

	return nil
}
