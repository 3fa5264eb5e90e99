package container

import (
	"bytes"
	"context"
	"fmt"
	"runtime"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/format"
	"github.com/arloliu/cramblock/header"
	"github.com/arloliu/cramblock/internal/num"
	"github.com/arloliu/cramblock/record"
	"golang.org/x/sync/errgroup"
)

// DecodeRecords restores the records of dc in container order.
//
// Block payloads are decompressed concurrently. Every tag value is located
// through the compression header's tag encoding map. Errors name the slice
// they occurred in; a failing slice is never reported as a short result.
func DecodeRecords(ctx context.Context, dc *DataContainer) ([]record.Record, error) {
	ch := dc.CompressionHeader()
	if ch == nil || ch.TagMap == nil || ch.TagSets == nil {
		return nil, fmt.Errorf("%w: missing compression header", errs.ErrInvalidContainer)
	}

	raws := make([][][]byte, len(dc.slices))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range dc.slices {
		raws[i] = make([][]byte, len(s.blocks))
		for j, b := range s.blocks {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				raw, err := b.Decode()
				if err != nil {
					return fmt.Errorf("slice %d: %w", i, err)
				}
				raws[i][j] = raw

				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// every record carries at least one core byte, its tag set index
	capacity := 0
	for i, s := range dc.slices {
		for j, b := range s.blocks {
			if b.ContentType == format.ContentCoreData {
				capacity += min(int(s.header.RecordCount), len(raws[i][j]))
			}
		}
	}

	records := make([]record.Record, 0, capacity)
	for i, s := range dc.slices {
		var err error
		if records, err = decodeSlice(records, ch, s, raws[i]); err != nil {
			return nil, fmt.Errorf("slice %d: %w", i, err)
		}
	}

	return records, nil
}

func decodeSlice(dst []record.Record, ch *header.CompressionHeader, s *Slice, raws [][]byte) ([]record.Record, error) {
	var core *bytes.Reader
	external := make(map[int32]*bytes.Reader)

	for j, b := range s.blocks {
		if b.ContentType == format.ContentCoreData {
			core = bytes.NewReader(raws[j])
			continue
		}
		external[b.ContentID] = bytes.NewReader(raws[j])
	}

	if core == nil {
		return dst, fmt.Errorf("%w: core data block", errs.ErrMissingBlock)
	}

	if int(s.header.RecordCount) > core.Len() {
		return dst, errs.Truncated("core data block", int(s.header.RecordCount), core.Len())
	}

	for range s.header.RecordCount {
		index, err := num.ReadITF8(core)
		if err != nil {
			return dst, fmt.Errorf("tag set index: %w", err)
		}

		keys, ok := ch.TagSets.Get(int(index))
		if !ok {
			return dst, fmt.Errorf("%w: tag set %d of %d", errs.ErrInvalidEncoding, index, ch.TagSets.Len())
		}

		var rec record.Record
		if len(keys) > 0 {
			rec.Tags = make([]record.Tag, 0, len(keys))
		}
		for _, key := range keys {
			v, err := readTag(ch.TagMap, external, key)
			if err != nil {
				return dst, err
			}
			rec.Tags = append(rec.Tags, record.Tag{Key: key, Value: v})
		}
		dst = append(dst, rec)
	}

	if core.Len() != 0 {
		return dst, fmt.Errorf("%w: %d bytes left in core block", errs.ErrTrailingData, core.Len())
	}

	for id, r := range external {
		if r.Len() != 0 {
			return dst, fmt.Errorf("%w: %d bytes left in external block %d", errs.ErrTrailingData, r.Len(), id)
		}
	}

	return dst, nil
}

func readTag(tagMap *header.TagEncodingMap, external map[int32]*bytes.Reader, key record.Key) (record.Value, error) {
	enc, ok := tagMap.Lookup(key.ID())
	if !ok {
		return record.Value{}, fmt.Errorf("%w: no encoding for %s", errs.ErrInvalidEncoding, key)
	}

	switch e := enc.(type) {
	case header.External:
		r, ok := external[e.BlockContentID]
		if !ok {
			return record.Value{}, fmt.Errorf("%w: external block %d for %s", errs.ErrMissingBlock, e.BlockContentID, key)
		}

		v, err := record.ReadValue(key.Type, r)
		if err != nil {
			return record.Value{}, fmt.Errorf("%s: %w", key, err)
		}

		return v, nil
	default:
		return record.Value{}, fmt.Errorf("%w: %s for %s", errs.ErrInvalidEncoding, enc.Kind(), key)
	}
}
