package lz4

const (
	hashLog   = 16
	hashShift = 32 - hashLog

	// Fibonacci hashing constant, same multiplier the reference
	// implementation uses for 32-bit sequences.
	hashMul = 2654435761

	// maxChain bounds how many candidate positions the match finder walks
	// per input position. The generator always runs at maximum effort: a
	// fixture is compressed once and read forever, so search time is spent
	// freely in exchange for canonical, well-packed streams.
	maxChain = 4096
)

// CompressBlock compresses src into LZ4 block format at maximum effort,
// optionally seeded with a preset dictionary. The output stores no
// uncompressed size; decoders must learn it out-of-band. Empty src encodes
// to the canonical single-byte stream 0x00.
//
// The output is deterministic for identical (src, dict) pairs and is
// decodable by any conforming LZ4 block decoder.
func CompressBlock(src, dict []byte) []byte {
	if len(src) == 0 {
		return []byte{0x00}
	}

	// Only the last 64 KiB of the dictionary are reachable through 16-bit
	// offsets; drop the rest so the work buffer stays small.
	if len(dict) > maxDistance {
		dict = dict[len(dict)-maxDistance:]
	}

	c := newCompressor(dict, src)

	return c.compress()
}

// compressor runs a hash-chain match search over dict+src. Positions in buf
// below start belong to the dictionary; matches may begin there, which the
// decoder resolves through its preset dictionary.
type compressor struct {
	buf   []byte // dict followed by src
	start int    // len(dict); first encodable position
	head  []int  // hash -> most recent position + 1 (0 = empty)
	chain []int  // position -> previous position with same hash + 1
}

func newCompressor(dict, src []byte) *compressor {
	c := &compressor{
		buf:   append(append(make([]byte, 0, len(dict)+len(src)), dict...), src...),
		start: len(dict),
		head:  make([]int, 1<<hashLog),
		chain: make([]int, len(dict)+len(src)),
	}

	// Seed the chains with every dictionary position so matches can reach
	// into the preset window from the first input byte.
	for pos := 0; pos+minMatch <= c.start; pos++ {
		c.insert(pos)
	}

	return c
}

func (c *compressor) compress() []byte {
	end := len(c.buf)
	dst := make([]byte, 0, CompressBound(end-c.start))

	anchor := c.start
	pos := c.start

	// No match may start within the last 12 bytes of the block.
	for pos <= end-mfLimit {
		mLen, mOff := c.findMatch(pos)
		if mLen < minMatch {
			c.insert(pos)
			pos++

			continue
		}

		// One-step lazy retry: a longer match starting one byte later is
		// worth one extra literal.
		if pos+1 <= end-mfLimit {
			if mLen2, mOff2 := c.findMatch(pos + 1); mLen2 > mLen {
				c.insert(pos)
				pos++
				mLen, mOff = mLen2, mOff2
			}
		}

		dst = appendSequence(dst, c.buf[anchor:pos], mOff, mLen)

		for i := range mLen {
			if pos+i+minMatch <= end {
				c.insert(pos + i)
			}
		}

		pos += mLen
		anchor = pos
	}

	return appendLastLiterals(dst, c.buf[anchor:end])
}

// findMatch walks the hash chain at pos and returns the longest match found
// as (length, offset). Matches are capped so they never run into the final 5
// bytes, which the format reserves for literals. A length below minMatch
// means no usable match.
func (c *compressor) findMatch(pos int) (length, offset int) {
	maxLen := len(c.buf) - lastLiterals - pos
	if maxLen < minMatch {
		return 0, 0
	}

	limit := pos - maxDistance

	cand := c.head[c.hash(pos)] - 1
	for depth := 0; cand >= 0 && cand >= limit && depth < maxChain; depth++ {
		if l := c.matchLength(cand, pos, maxLen); l > length {
			length, offset = l, pos-cand

			if length == maxLen {
				break
			}
		}

		cand = c.chain[cand] - 1
	}

	return length, offset
}

// matchLength returns the common prefix length of buf[cand:] and buf[pos:],
// capped at maxLen. cand may be below pos+maxLen's reach; reading past pos is
// fine because both sides index the same buffer.
func (c *compressor) matchLength(cand, pos, maxLen int) int {
	n := 0
	for n < maxLen && c.buf[cand+n] == c.buf[pos+n] {
		n++
	}

	return n
}

func (c *compressor) insert(pos int) {
	h := c.hash(pos)
	c.chain[pos] = c.head[h]
	c.head[h] = pos + 1
}

func (c *compressor) hash(pos int) uint32 {
	v := uint32(c.buf[pos]) | uint32(c.buf[pos+1])<<8 | uint32(c.buf[pos+2])<<16 | uint32(c.buf[pos+3])<<24

	return (v * hashMul) >> hashShift
}

// appendSequence emits one token + literals + match sequence.
func appendSequence(dst, literals []byte, offset, matchLen int) []byte {
	litLen := len(literals)
	extMatch := matchLen - minMatch

	token := byte(min(litLen, tokenMax)) << 4
	token |= byte(min(extMatch, tokenMax))
	dst = append(dst, token)

	if litLen >= tokenMax {
		dst = appendLengthExt(dst, litLen-tokenMax)
	}

	dst = append(dst, literals...)
	dst = append(dst, byte(offset), byte(offset>>8))

	if extMatch >= tokenMax {
		dst = appendLengthExt(dst, extMatch-tokenMax)
	}

	return dst
}

// appendLastLiterals emits the final, literals-only sequence (match nibble
// zero, no offset).
func appendLastLiterals(dst, literals []byte) []byte {
	litLen := len(literals)

	dst = append(dst, byte(min(litLen, tokenMax))<<4)
	if litLen >= tokenMax {
		dst = appendLengthExt(dst, litLen-tokenMax)
	}

	return append(dst, literals...)
}

// appendLengthExt emits the 255-terminated length extension for rem, the
// remainder after the token nibble's 15.
func appendLengthExt(dst []byte, rem int) []byte {
	for rem >= 255 {
		dst = append(dst, 255)
		rem -= 255
	}

	return append(dst, byte(rem))
}
