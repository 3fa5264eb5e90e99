// Package block frames CRAM blocks.
//
// A block is the unit of compression in a CRAM container. Its wire layout is:
//
//	u8      compression method
//	u8      content type
//	itf8    content id
//	itf8    compressed size
//	itf8    raw size
//	u8[]    data (compressed size bytes)
//	u32     CRC-32 of all preceding block bytes, little-endian
//
// Read and Write move blocks between byte streams without looking at the
// payload. Encode and Block.Decode apply the codec named by the method byte.
//
// The integer codec and the checksum are injected with options so that the
// framing can be exercised against in-memory fakes:
//
//	b, err := block.Read(r, block.WithChecksum(crc32.NewIEEE))
package block
