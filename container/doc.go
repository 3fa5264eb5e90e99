// Package container assembles CRAM data containers from records and back.
//
// A DataContainer owns one compression header and an ordered list of slices.
// Each slice owns a slice header and an ordered list of blocks: one core
// block holding, per record, the ITF8 index of its tag set, and one external
// block per content id holding the concatenated tag values routed to it.
//
//	b, err := container.NewBuilder(container.WithRecordsPerSlice(10_000))
//	dc, err := b.Build(ctx, records)
//	err = container.Write(w, dc)
//
//	dc, err = container.Read(r)
//	records, err = container.DecodeRecords(ctx, dc)
//
// # Wire Layout
//
//	┌───────────────────────────────────────────────────┐
//	│ u32 body size (little-endian)                     │
//	│ itf8 record count                                 │
//	│ itf8 slice count                                  │
//	│ itf8 block count                                  │
//	│ u32 CRC-32 of the preceding header bytes          │
//	├───────────────────────────────────────────────────┤
//	│ compression header block                          │
//	├───────────────────────────────────────────────────┤
//	│ slice header block, then the slice's blocks       │
//	│ ... repeated per slice                            │
//	└───────────────────────────────────────────────────┘
//
// The block count covers every block in the body, compression and slice
// header blocks included.
//
// # Concurrency
//
// Build and DecodeRecords compress and decompress blocks on a bounded pool of
// goroutines. The tag encoding map is built once, before any block is
// encoded, and only read afterwards. Containers and slices are not modified
// after Build or Read returns them.
package container
