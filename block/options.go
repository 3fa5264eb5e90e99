package block

import (
	"hash"
	"hash/crc32"
	"io"

	"github.com/arloliu/cramblock/internal/num"
	"github.com/arloliu/cramblock/internal/options"
)

// IntCodec reads and writes the signed header integers of a block.
type IntCodec interface {
	ReadInt32(r io.ByteReader) (int32, error)
	AppendInt32(dst []byte, v int32) []byte
}

type config struct {
	ints     IntCodec
	checksum func() hash.Hash32
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		ints:     num.ITF8{},
		checksum: crc32.NewIEEE,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Option configures block framing.
type Option = options.Option[*config]

// WithIntCodec replaces the ITF8 codec used for content id and sizes.
// A nil codec keeps the default.
func WithIntCodec(codec IntCodec) Option {
	return options.NoError(func(c *config) {
		if codec != nil {
			c.ints = codec
		}
	})
}

// WithChecksum replaces the CRC-32 (IEEE) checksum factory.
// A nil factory keeps the default.
func WithChecksum(newHash func() hash.Hash32) Option {
	return options.NoError(func(c *config) {
		if newHash != nil {
			c.checksum = newHash
		}
	})
}
