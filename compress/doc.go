// Package compress maps CRAM block compression methods to codecs.
//
// Each block records the method used for its payload in its first header
// byte. This package resolves that byte to a Codec:
//
//	codec, err := compress.GetCodec(format.CompressionRansNx16)
//	if err != nil {
//	    return err
//	}
//	payload, err := codec.Compress(raw)
//
// # Supported Methods
//
//   - None (0): payload stored as is
//   - Gzip (1): one gzip member per block, default level
//   - RansNx16 (5): order-0 rANS Nx16 stream, see package rans
//
// The remaining methods defined by the format (bzip2, LZMA, rANS 4x8,
// adaptive arithmetic, fqzcomp, name tokenizer) are recognized but return
// errs.ErrUnsupportedMethod. Unknown method values return
// errs.ErrInvalidCompressionMethod.
//
// # Choosing a Method
//
// rANS Nx16 is an entropy coder only: it exploits skewed byte distributions
// (qualities, tag values with few distinct values, bases) but not repeated
// substrings. Gzip is the better fit for data with long repeats, such as read
// names. The container builder picks per content id through a
// header.BlockContentEncoderMap.
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use.
package compress
