package lz4

import "fmt"

// Sink consumes a decoded LZ4 stream as alternating literal runs and
// back-references. Literal is only called for non-empty runs. Backref offsets
// count backwards from the current end of produced output; an offset larger
// than the output produced so far reaches into the preset dictionary, if the
// sink has one. Returning an error aborts decoding.
type Sink interface {
	Literal(data []byte) error
	Backref(offset, length int) error
}

// Decompress decodes src, an LZ4 block-format stream, into sink.
//
// It performs the structural validation that can be done without a window
// (truncation, token layout); offset and length validation against the
// window is the sink's job. The stream ends when input is exhausted directly
// after a literal run - the block format's literals-only final sequence. An
// empty src is corrupt: even zero bytes of output need one token (0x00).
func Decompress(src []byte, sink Sink) error {
	pos := 0

	for {
		if pos >= len(src) {
			return fmt.Errorf("%w: missing token at %d", ErrCorrupt, pos)
		}

		token := int(src[pos])
		pos++

		litLen, next, err := readLength(src, pos, token>>4)
		if err != nil {
			return err
		}

		pos = next

		if litLen > len(src)-pos {
			return fmt.Errorf("%w: %d literal bytes at %d, %d remain", ErrCorrupt, litLen, pos, len(src)-pos)
		}

		if litLen > 0 {
			if err := sink.Literal(src[pos : pos+litLen]); err != nil {
				return err
			}

			pos += litLen
		}

		// Input exhausted right after literals: the final, literals-only
		// sequence. The only clean way out of the loop.
		if pos == len(src) {
			return nil
		}

		if len(src)-pos < 2 {
			return fmt.Errorf("%w: truncated offset at %d", ErrCorrupt, pos)
		}

		offset := int(src[pos]) | int(src[pos+1])<<8
		pos += 2

		matchLen, next, err := readLength(src, pos, token&0x0f)
		if err != nil {
			return err
		}

		pos = next

		if err := sink.Backref(offset, matchLen+minMatch); err != nil {
			return err
		}
	}
}

// readLength resolves a token nibble into a full length. A nibble of 15
// means the length continues in subsequent bytes, each adding up to 255,
// terminated by the first byte below 255. Lengths are bounded by the input
// size (every extension byte is consumed from src), so they cannot overflow.
func readLength(src []byte, pos, nibble int) (length, next int, err error) {
	length = nibble
	if nibble != tokenMax {
		return length, pos, nil
	}

	for {
		if pos >= len(src) {
			return 0, 0, fmt.Errorf("%w: truncated length at %d", ErrCorrupt, pos)
		}

		b := int(src[pos])
		pos++
		length += b

		if b != 255 {
			return length, pos, nil
		}
	}
}

// Window is a [Sink] decoding into a fixed-capacity buffer, optionally seeded
// with a preset dictionary. Back-references that reach before the start of
// produced output are served from the tail of the dictionary, exactly as the
// encoder saw them.
//
// All writes and reads are bounds-checked: a reference outside dict+output is
// [ErrCorrupt], output beyond the buffer's capacity is [ErrTooLarge]. A
// Window must not be reused across streams.
type Window struct {
	buf  []byte
	n    int
	dict []byte
}

// NewWindow returns a Window that can hold up to size decoded bytes.
// dict may be nil.
func NewWindow(size int, dict []byte) *Window {
	return &Window{buf: make([]byte, size), dict: dict}
}

// Len returns the number of bytes decoded so far.
func (w *Window) Len() int { return w.n }

// Bytes returns the decoded output. The slice aliases the Window's buffer.
func (w *Window) Bytes() []byte { return w.buf[:w.n] }

func (w *Window) Literal(data []byte) error {
	if len(data) > len(w.buf)-w.n {
		return fmt.Errorf("%w: %d literals at output %d, capacity %d", ErrTooLarge, len(data), w.n, len(w.buf))
	}

	copy(w.buf[w.n:], data)
	w.n += len(data)

	return nil
}

func (w *Window) Backref(offset, length int) error {
	if offset <= 0 || offset > w.n+len(w.dict) {
		return fmt.Errorf("%w: offset %d at output %d with %d dict bytes", ErrCorrupt, offset, w.n, len(w.dict))
	}

	if length > len(w.buf)-w.n {
		return fmt.Errorf("%w: %d match bytes at output %d, capacity %d", ErrTooLarge, length, w.n, len(w.buf))
	}

	// Byte-at-a-time on purpose: when offset < length the match overlaps
	// bytes it is itself producing (run encoding), so a block copy would
	// read stale data.
	from := w.n - offset
	for i := range length {
		w.buf[w.n+i] = w.at(from + i)
	}

	w.n += length

	return nil
}

// at reads a window position. Negative positions index the dictionary tail.
func (w *Window) at(pos int) byte {
	if pos < 0 {
		return w.dict[len(w.dict)+pos]
	}

	return w.buf[pos]
}

// DecompressBlock decodes src with an optional preset dictionary into a
// fresh buffer of at most maxSize bytes. maxSize is the out-of-band
// decompressed size the block format requires the caller to know.
func DecompressBlock(src, dict []byte, maxSize int) ([]byte, error) {
	w := NewWindow(maxSize, dict)
	if err := Decompress(src, w); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}
