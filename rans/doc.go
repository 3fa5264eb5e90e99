// Package rans implements the rANS Nx16 entropy coder used by CRAM blocks
// (compression method 5).
//
// # Overview
//
// rANS Nx16 codes a byte stream with N interleaved 32-bit coder states
// ("lanes"). The symbol at position i is always handled by lane i mod N, so
// lanes are independent and the decoder can keep N states in flight. States
// are renormalized 16 bits at a time against a fixed 12-bit precision
// (frequencies sum to 4096) and a lower bound of 0x8000.
//
// Only the order-0 model is implemented: a single static frequency table per
// stream, transmitted ahead of the coded data.
//
// # Coding Order
//
// Encoding is a two-phase process:
//
//  1. Forward: histogram the input, normalize it to 4096 and build the
//     cumulative table.
//  2. Backward: code the symbols from last to first, pushing renormalization
//     words onto a stack.
//
// The stack is flipped on output, so the decoder walks the stream forward and
// emits symbols in their original order.
//
// # Payload Layout
//
// An order-0 payload as produced by EncodeOrder0:
//
//	┌──────────────────────────────────────────────┐
//	│ N × uint32 final lane states (little-endian) │
//	├──────────────────────────────────────────────┤
//	│ renormalization words (uint16 little-endian) │
//	└──────────────────────────────────────────────┘
//
// A complete stream as produced by Compress:
//
//	┌──────────────────────────────────────────────┐
//	│ flags (1 byte): N32=0x04 CAT=0x20 PACK=0x80  │
//	│ raw length (uint7)                           │
//	├──────────────────────────────────────────────┤
//	│ PACK only: nSym (1 byte), palette (nSym),    │
//	│            packed length (uint7)             │
//	├──────────────────────────────────────────────┤
//	│ CAT: stored bytes                            │
//	│ otherwise: frequency table + order-0 payload │
//	└──────────────────────────────────────────────┘
//
// The frequency table is a run-length coded alphabet followed by one uint7
// frequency per present symbol, in ascending symbol order.
//
// # Pack Transform
//
// Streams with at most 16 distinct byte values are first packed to 1, 2 or 4
// bits per symbol (see Pack). A stream with a single distinct value packs to
// zero bytes.
//
// # Thread Safety
//
// All functions are pure over their arguments and safe for concurrent use.
// Coder states, tables and palettes live only for the duration of one call.
package rans
