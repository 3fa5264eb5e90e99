package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"testing"

	"github.com/arloliu/cramblock/errs"
	"github.com/arloliu/cramblock/format"
	"github.com/arloliu/cramblock/header"
	"github.com/arloliu/cramblock/record"
	"github.com/stretchr/testify/require"
)

func sampleRecords(t *testing.T, n int) []record.Record {
	t.Helper()

	records := make([]record.Record, n)
	for i := range records {
		if i%7 == 6 {
			continue
		}

		rec := &records[i]
		require.NoError(t, rec.AddTag("NM", record.Int32(int32(i%5))))

		rg, err := record.String(fmt.Sprintf("grp%d", i%3))
		require.NoError(t, err)
		require.NoError(t, rec.AddTag("RG", rg))

		if i%3 == 0 {
			md, err := record.String(fmt.Sprintf("%dA0C%d", i, i%11))
			require.NoError(t, err)
			require.NoError(t, rec.AddTag("MD", md))
		}

		if i%4 == 1 {
			require.NoError(t, rec.AddTag("XS", record.Uint8(uint8(i))))
			require.NoError(t, rec.AddTag("OA", record.Int32Array([]int32{int32(i), -int32(i)})))
		}
	}

	return records
}

func mustBuild(t *testing.T, records []record.Record, opts ...BuilderOption) *DataContainer {
	t.Helper()

	b, err := NewBuilder(opts...)
	require.NoError(t, err)

	dc, err := b.Build(context.Background(), records)
	require.NoError(t, err)

	return dc
}

func keyID(t *testing.T, tag string, typ record.ValueType) int32 {
	t.Helper()

	k, err := record.NewKey(tag, typ)
	require.NoError(t, err)

	return k.ID()
}

func TestBuild_DecodeRecords_RoundTrip(t *testing.T) {
	records := sampleRecords(t, 100)
	dc := mustBuild(t, records, WithRecordsPerSlice(40), WithConcurrency(3))

	require.Len(t, dc.Slices(), 3)
	require.Equal(t, 100, dc.RecordCount())

	got, err := DecodeRecords(context.Background(), dc)
	require.NoError(t, err)
	require.Equal(t, records, got)
}

func TestBuild_Layout(t *testing.T) {
	records := sampleRecords(t, 30)
	dc := mustBuild(t, records, WithRecordsPerSlice(20))

	ch := dc.CompressionHeader()
	require.Equal(t, 5, ch.TagMap.Len())

	counter := 0
	for _, s := range dc.Slices() {
		h := s.Header()
		require.Equal(t, int32(counter), h.RecordCounter)
		counter += s.RecordCount()

		blocks := s.Blocks()
		require.Len(t, h.ContentIDs, len(blocks))
		require.Equal(t, format.ContentCoreData, blocks[0].ContentType)
		require.Equal(t, CoreContentID, blocks[0].ContentID)
		require.Equal(t, format.CompressionGzip, blocks[0].Method)

		for i, b := range blocks[1:] {
			require.Equal(t, format.ContentExternalData, b.ContentType)
			require.Equal(t, format.CompressionRansNx16, b.Method)
			require.Equal(t, h.ContentIDs[i+1], b.ContentID)
			if i > 0 {
				require.Less(t, blocks[i].ContentID, b.ContentID)
			}

			enc, ok := ch.TagMap.Lookup(b.ContentID)
			require.True(t, ok)
			require.Equal(t, header.External{BlockContentID: b.ContentID}, enc)
		}
	}
	require.Equal(t, 30, counter)

	rg, ok := dc.Slices()[0].ExternalBlock(keyID(t, "RG", record.TypeString))
	require.True(t, ok)
	raw, err := rg.Decode()
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, []byte("grp0\x00grp1\x00grp2\x00")))

	_, ok = dc.Slices()[0].ExternalBlock(12345)
	require.False(t, ok)

	core, ok := dc.Slices()[0].CoreBlock()
	require.True(t, ok)
	require.Equal(t, int32(20), core.RawSize)
}

func TestBuild_EncoderOverrides(t *testing.T) {
	encoders := header.NewBlockContentEncoderMap()
	encoders.Core = format.CompressionNone
	rgID := keyID(t, "RG", record.TypeString)
	require.NoError(t, encoders.Set(rgID, format.CompressionGzip))

	dc := mustBuild(t, sampleRecords(t, 10), WithBlockContentEncoders(encoders))

	s := dc.Slices()[0]
	core, _ := s.CoreBlock()
	require.Equal(t, format.CompressionNone, core.Method)

	rg, ok := s.ExternalBlock(rgID)
	require.True(t, ok)
	require.Equal(t, format.CompressionGzip, rg.Method)

	nm, ok := s.ExternalBlock(keyID(t, "NM", record.TypeInt32))
	require.True(t, ok)
	require.Equal(t, format.CompressionRansNx16, nm.Method)
}

func TestBuild_SharedExternalBlock(t *testing.T) {
	records := sampleRecords(t, 50)
	dc := mustBuild(t, records, WithEncodingPolicy(func(record.Key) header.Encoding {
		return header.External{BlockContentID: 1}
	}))

	blocks := dc.Slices()[0].Blocks()
	require.Len(t, blocks, 2)
	require.Equal(t, int32(1), blocks[1].ContentID)

	got, err := DecodeRecords(context.Background(), dc)
	require.NoError(t, err)
	require.Equal(t, records, got)
}

func TestBuild_Errors(t *testing.T) {
	_, err := NewBuilder(WithRecordsPerSlice(0))
	require.ErrorIs(t, err, errs.ErrInvalidSliceSize)

	_, err = NewBuilder(WithBlockContentEncoders(nil))
	require.ErrorIs(t, err, errs.ErrUnsupportedConfiguration)

	_, err = NewBuilder(WithEncodingPolicy(nil))
	require.ErrorIs(t, err, errs.ErrUnsupportedConfiguration)

	t.Run("unsupported method", func(t *testing.T) {
		encoders := header.NewBlockContentEncoderMap()
		encoders.Default = format.CompressionBzip2

		b, err := NewBuilder(WithBlockContentEncoders(encoders))
		require.NoError(t, err)

		_, err = b.Build(context.Background(), sampleRecords(t, 5))
		require.ErrorIs(t, err, errs.ErrUnsupportedMethod)
	})

	t.Run("routed to core", func(t *testing.T) {
		b, err := NewBuilder(WithEncodingPolicy(func(record.Key) header.Encoding {
			return header.External{BlockContentID: CoreContentID}
		}))
		require.NoError(t, err)

		_, err = b.Build(context.Background(), sampleRecords(t, 5))
		require.ErrorIs(t, err, errs.ErrInvalidEncoding)
	})

	t.Run("key and value types differ", func(t *testing.T) {
		key, err := record.NewKey("NH", record.TypeInt32)
		require.NoError(t, err)
		text, err := record.String("12")
		require.NoError(t, err)

		records := sampleRecords(t, 5)
		records[2].Tags = append(records[2].Tags, record.Tag{Key: key, Value: text})

		b, err := NewBuilder()
		require.NoError(t, err)

		_, err = b.Build(context.Background(), records)
		require.ErrorIs(t, err, errs.ErrInvalidTagValue)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		b, err := NewBuilder()
		require.NoError(t, err)

		_, err = b.Build(ctx, sampleRecords(t, 5))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestBuild_Empty(t *testing.T) {
	dc := mustBuild(t, nil)
	require.Empty(t, dc.Slices())
	require.Equal(t, 1, dc.BlockCount())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, dc))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Zero(t, got.RecordCount())

	records, err := DecodeRecords(context.Background(), got)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	records := sampleRecords(t, 120)
	dc := mustBuild(t, records, WithRecordsPerSlice(50))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, dc))
	wire := bytes.Clone(buf.Bytes())

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Zero(t, buf.Len())
	require.Equal(t, dc.BlockCount(), got.BlockCount())
	require.Len(t, got.Slices(), 3)

	for i, s := range got.Slices() {
		require.Equal(t, dc.Slices()[i].Header(), s.Header())
		require.Equal(t, dc.Slices()[i].Blocks(), s.Blocks())
	}

	decoded, err := DecodeRecords(context.Background(), got)
	require.NoError(t, err)
	require.Equal(t, records, decoded)

	var again bytes.Buffer
	require.NoError(t, Write(&again, got))
	require.Equal(t, wire, again.Bytes())
}

func TestRead_Stream(t *testing.T) {
	var buf bytes.Buffer
	for n := range 3 {
		require.NoError(t, Write(&buf, mustBuild(t, sampleRecords(t, 10*(n+1)))))
	}

	for n := range 3 {
		dc, err := Read(&buf)
		require.NoError(t, err)
		require.Equal(t, 10*(n+1), dc.RecordCount())
	}

	_, err := Read(&buf)
	require.ErrorIs(t, err, io.EOF)
	require.NotErrorIs(t, err, errs.ErrTruncatedInput)
}

func TestRead_Corrupt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, mustBuild(t, sampleRecords(t, 40))))
	wire := buf.Bytes()

	t.Run("header checksum", func(t *testing.T) {
		corrupt := bytes.Clone(wire)
		corrupt[4] ^= 0x01

		_, err := Read(bytes.NewReader(corrupt))
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("block checksum", func(t *testing.T) {
		corrupt := bytes.Clone(wire)
		corrupt[len(corrupt)-1] ^= 0x01

		_, err := Read(bytes.NewReader(corrupt))
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
		require.ErrorIs(t, err, errs.ErrIntegrity)
	})

	t.Run("truncated body", func(t *testing.T) {
		_, err := Read(bytes.NewReader(wire[:len(wire)-10]))
		require.ErrorIs(t, err, errs.ErrTruncatedInput)

		var te *errs.TruncatedError
		require.ErrorAs(t, err, &te)
		require.Equal(t, "container body", te.What)
	})

	t.Run("truncated header", func(t *testing.T) {
		_, err := Read(bytes.NewReader(wire[:2]))
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
	})
}

func TestDecodeRecords_MissingBlock(t *testing.T) {
	dc := mustBuild(t, sampleRecords(t, 10))

	s := dc.Slices()[0]
	s.blocks = s.blocks[:1]

	_, err := DecodeRecords(context.Background(), dc)
	require.ErrorIs(t, err, errs.ErrMissingBlock)
}

func TestDecodeRecords_MissingCoreBlock(t *testing.T) {
	dc := mustBuild(t, sampleRecords(t, 10))

	s := dc.Slices()[0]
	s.blocks = s.blocks[1:]

	_, err := DecodeRecords(context.Background(), dc)
	require.ErrorIs(t, err, errs.ErrMissingBlock)
}

func TestDecodeRecords_RecordCountExceedsCoreBlock(t *testing.T) {
	dc := mustBuild(t, sampleRecords(t, 1))
	s := dc.Slices()[0]
	s.header.RecordCount = 1 << 26

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, dc))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, 1<<26, got.RecordCount())

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	_, err = DecodeRecords(context.Background(), got)
	runtime.ReadMemStats(&after)

	require.ErrorIs(t, err, errs.ErrTruncatedInput)
	require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(4<<20))

	var te *errs.TruncatedError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "core data block", te.What)
}
