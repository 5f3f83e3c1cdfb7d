// Package lz4 implements the LZ4 block format: a compact compressed
// representation of a byte sequence without frame headers, checksums, or a
// stored uncompressed size. The decoder must be told the decompressed size
// out-of-band (for fixtures, the length of the matching .dat file).
//
// Both directions support a preset dictionary that seeds the history window,
// which improves compression of short inputs sharing content with the
// dictionary. The decoder is sink-driven: decoded output is streamed as
// literal runs and back-references, and the [Sink] owns the window. [Window]
// is the standard bounds-checked sink; custom sinks can stream decoded data
// elsewhere (for example straight into device memory).
package lz4

import "errors"

var (
	// ErrCorrupt is returned for malformed compressed streams: truncated
	// input, a zero or out-of-window back-reference offset, or trailing
	// garbage where a token was expected.
	ErrCorrupt = errors.New("corrupt lz4 block")

	// ErrTooLarge is returned when decoded output would exceed the size the
	// caller allotted. Since the block format stores no size, this is also
	// what a wrong out-of-band size looks like.
	ErrTooLarge = errors.New("decoded output exceeds limit")
)

const (
	minMatch    = 4     // shortest encodable match
	maxDistance = 65535 // back-reference window, 16-bit offset
	tokenMax    = 15    // nibble value meaning "length continues"

	// Block-format end restrictions: the last sequence is literals-only,
	// the final 5 bytes are always literals, and no match may start within
	// the last 12 bytes. Reference decoders rely on these for fast copies.
	lastLiterals = 5
	mfLimit      = 12
)

// CompressBound returns the maximum compressed size of n input bytes.
// Incompressible input grows by one length byte per 255 literals plus
// constant sequence overhead.
func CompressBound(n int) int {
	return n + n/255 + 16
}
