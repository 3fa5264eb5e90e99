// Package header builds and serializes the CRAM compression header.
//
// A compression header describes how the records of a container were split
// into blocks. This package covers the tag related parts:
//
//   - TagEncodingMap: for every tag key seen in a batch, the Encoding that
//     carries its values (today always External, one block per key)
//   - TagSets: the dictionary of distinct ordered tag lists (CRAM "TD");
//     each record refers to one list by index
//   - BlockContentEncoderMap: the compression method chosen for the core
//     block and for each external block
//
// # Building
//
// The map is derived from the set of key ids in a batch, so record order and
// duplicate keys do not change it:
//
//	m, err := header.BuildTagEncodingMap(records)
//	enc, ok := m.Lookup(key.ID())
//
// Encoding selection is a policy function. The default routes each key to an
// external block whose content id equals the key id:
//
//	m, err := header.BuildTagEncodingMap(records,
//	    header.WithEncodingPolicy(func(k record.Key) header.Encoding {
//	        return header.External{BlockContentID: k.ID()}
//	    }))
//
// # Serialized Form
//
// The compression header block payload is:
//
//	┌────────────────────────────────────────────────────┐
//	│ tag sets: itf8 size, NUL-terminated key lists     │
//	├────────────────────────────────────────────────────┤
//	│ tag encoding map: itf8 size, itf8 count, entries   │
//	│   entry: itf8 key id, itf8 kind, itf8 args size,   │
//	│          args                                      │
//	├────────────────────────────────────────────────────┤
//	│ block content encoders: itf8 core method,          │
//	│   itf8 default method, itf8 count, (id, method)... │
//	└────────────────────────────────────────────────────┘
//
// Entries are written in ascending id order, so equal maps serialize to equal
// bytes.
//
// # Thread Safety
//
// Built values are read-only and safe for concurrent readers.
package header
