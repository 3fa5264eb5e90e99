package container

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"

	"github.com/arloliu/cramblock/block"
	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/format"
	"github.com/arloliu/cramblock/header"
	"github.com/arloliu/cramblock/internal/num"
	"github.com/arloliu/cramblock/internal/options"
	"github.com/arloliu/cramblock/record"
	"golang.org/x/sync/errgroup"
)

// DefaultRecordsPerSlice is the slice size used when none is configured.
const DefaultRecordsPerSlice = 10_000

type builderConfig struct {
	recordsPerSlice int
	concurrency     int
	encoders        *header.BlockContentEncoderMap
	policy          header.EncodingPolicy
}

// BuilderOption configures a Builder.
type BuilderOption = options.Option[*builderConfig]

// WithRecordsPerSlice sets the maximum number of records per slice.
func WithRecordsPerSlice(n int) BuilderOption {
	return options.New(func(c *builderConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidSliceSize, n)
		}
		c.recordsPerSlice = n

		return nil
	})
}

// WithConcurrency bounds the number of blocks encoded at once.
// Values below 1 select runtime.GOMAXPROCS(0).
func WithConcurrency(n int) BuilderOption {
	return options.NoError(func(c *builderConfig) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		c.concurrency = n
	})
}

// WithBlockContentEncoders sets the compression method per block.
func WithBlockContentEncoders(m *header.BlockContentEncoderMap) BuilderOption {
	return options.New(func(c *builderConfig) error {
		if m == nil {
			return fmt.Errorf("%w: nil block content encoder map", errs.ErrUnsupportedConfiguration)
		}
		c.encoders = m

		return nil
	})
}

// WithEncodingPolicy sets the tag encoding policy, see header.WithEncodingPolicy.
func WithEncodingPolicy(policy header.EncodingPolicy) BuilderOption {
	return options.New(func(c *builderConfig) error {
		if policy == nil {
			return fmt.Errorf("%w: nil encoding policy", errs.ErrUnsupportedConfiguration)
		}
		c.policy = policy

		return nil
	})
}

// Builder turns batches of records into data containers.
//
// A Builder holds only configuration and is safe for concurrent use.
type Builder struct {
	cfg builderConfig
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	cfg := builderConfig{
		recordsPerSlice: DefaultRecordsPerSlice,
		concurrency:     runtime.GOMAXPROCS(0),
		encoders:        header.NewBlockContentEncoderMap(),
		policy:          header.ExternalPerKey,
	}

	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Builder{cfg: cfg}, nil
}

// pendingBlock is the raw payload of a block waiting to be compressed.
type pendingBlock struct {
	method      format.CompressionMethod
	contentType format.ContentType
	contentID   int32
	raw         []byte
}

// Build encodes records into one container.
//
// The tag encoding map and tag sets are derived from all records before any
// block is encoded. Blocks are then compressed concurrently; the first error
// cancels the remaining work and is returned.
func (b *Builder) Build(ctx context.Context, records []record.Record) (*DataContainer, error) {
	tagMap, err := header.BuildTagEncodingMap(records, header.WithEncodingPolicy(b.cfg.policy))
	if err != nil {
		return nil, err
	}

	tagSets := header.NewTagSets()

	var headers []SliceHeader
	var pending [][]pendingBlock
	for start := 0; start < len(records); start += b.cfg.recordsPerSlice {
		end := min(start+b.cfg.recordsPerSlice, len(records))

		h, blocks, err := b.splitSlice(records[start:end], start, tagMap, tagSets)
		if err != nil {
			return nil, err
		}

		headers = append(headers, h)
		pending = append(pending, blocks)
	}

	encoded := make([][]block.Block, len(pending))
	for i := range pending {
		encoded[i] = make([]block.Block, len(pending[i]))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.concurrency)
	for i := range pending {
		for j, p := range pending[i] {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				blk, err := block.Encode(p.method, p.contentType, p.contentID, p.raw)
				if err != nil {
					return fmt.Errorf("slice %d: %w", i, err)
				}
				encoded[i][j] = blk

				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	dc := &DataContainer{
		compressionHeader: &header.CompressionHeader{
			TagSets:  tagSets,
			TagMap:   tagMap,
			Encoders: b.cfg.encoders,
		},
		slices: make([]*Slice, len(headers)),
	}

	for i, h := range headers {
		if dc.slices[i], err = newSlice(h, encoded[i]); err != nil {
			return nil, err
		}
	}

	return dc, nil
}

// splitSlice lays out the core stream and the external streams of one slice.
func (b *Builder) splitSlice(
	records []record.Record,
	counter int,
	tagMap *header.TagEncodingMap,
	tagSets *header.TagSets,
) (SliceHeader, []pendingBlock, error) {
	var core []byte
	external := make(map[int32][]byte)

	for i := range records {
		core = num.AppendITF8(core, int32(tagSets.Add(records[i].Keys()))) //nolint:gosec

		for _, tag := range records[i].Tags {
			if tag.Key.Type != tag.Value.Type() {
				return SliceHeader{}, nil, fmt.Errorf("%w: %s holds a value of type %s",
					errs.ErrInvalidTagValue, tag.Key, tag.Value.Type())
			}

			enc, ok := tagMap.Lookup(tag.Key.ID())
			if !ok {
				return SliceHeader{}, nil, fmt.Errorf("%w: no encoding for %s", errs.ErrInvalidEncoding, tag.Key)
			}

			switch e := enc.(type) {
			case header.External:
				if e.BlockContentID == CoreContentID {
					return SliceHeader{}, nil, fmt.Errorf("%w: %s routed to core content id",
						errs.ErrInvalidEncoding, tag.Key)
				}
				external[e.BlockContentID] = append(external[e.BlockContentID], tag.Value.Bytes()...)
			default:
				return SliceHeader{}, nil, fmt.Errorf("%w: %s for %s", errs.ErrInvalidEncoding, enc.Kind(), tag.Key)
			}
		}
	}

	ids := slices.Sorted(maps.Keys(external))

	blocks := make([]pendingBlock, 0, 1+len(ids))
	blocks = append(blocks, pendingBlock{
		method:      b.cfg.encoders.Core,
		contentType: format.ContentCoreData,
		contentID:   CoreContentID,
		raw:         core,
	})

	for _, id := range ids {
		blocks = append(blocks, pendingBlock{
			method:      b.cfg.encoders.Method(id),
			contentType: format.ContentExternalData,
			contentID:   id,
			raw:         external[id],
		})
	}

	h := SliceHeader{
		RecordCount:   int32(len(records)), //nolint:gosec
		RecordCounter: int32(counter),      //nolint:gosec
		ContentIDs:    make([]int32, len(blocks)),
	}
	for i, p := range blocks {
		h.ContentIDs[i] = p.contentID
	}

	return h, blocks, nil
}
