// Package record models the optional tags of alignment records.
//
// A tag is a two-character name plus a value type, for example NM:i or
// RG:Z. The pair forms a Key whose numeric ID (tag[0]<<16 | tag[1]<<8 | type)
// identifies the tag in a CRAM compression header and doubles as the content
// id of the external block carrying its values.
//
// Values keep their BAM binary encoding (little-endian, NUL-terminated
// strings), which is the byte form concatenated into external blocks.
package record
