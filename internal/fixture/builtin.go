package fixture

import "bytes"

// lorem is the fixed Latin paragraph the original fixture set was built
// from, 437 bytes of UTF-8.
const lorem = `Lorem ipsum dolor sit amet consectetur adipiscing elit. Quisque faucibus ex
sapien vitae pellentesque sem placerat. In id cursus mi pretium tellus duis
convallis. Tempus leo eu aenean sed diam urna tempor. Pulvinar vivamus
fringilla lacus nec metus bibendum egestas. Iaculis massa nisl malesuada
lacinia integer nunc posuere. Ut hendrerit semper vel class aptent taciti
sociosqu. Ad litora torquent per conubia nostra inceptos himenaeos.`

// loremDict is a phrase from the middle of the paragraph, used as the
// preset dictionary of the dictionary-seeded case.
const loremDict = "Iaculis massa nisl malesuada"

// Builtin returns the canonical fixture set, in generation order.
//
// lorem1 and lorem2 reproduce the original generator's cases: the same
// paragraph without and with a dictionary. The rest target specific decoder
// paths: the canonical empty stream, overlapping back-references from runs,
// and a pure literal stream from incompressible bytes.
func Builtin() []Fixture {
	return []Fixture{
		{Name: "empty"},
		{Name: "lorem1", Data: []byte(lorem)},
		{Name: "lorem2", Data: []byte(lorem), Dict: []byte(loremDict)},
		{Name: "runs", Data: runsData()},
		{Name: "binary", Data: binaryData(1024)},
	}
}

// runsData builds input dominated by runs and short periods, so the
// compressed stream is dense with overlapping back-references.
func runsData() []byte {
	var buf bytes.Buffer

	buf.Write(bytes.Repeat([]byte{'a'}, 300))
	buf.Write(bytes.Repeat([]byte("ab"), 150))
	buf.Write(bytes.Repeat([]byte("abcdefg"), 40))
	buf.Write(bytes.Repeat([]byte{0x00}, 256))

	return buf.Bytes()
}

// binaryData returns n pseudo-random bytes from a fixed splitmix64 stream.
// Hand-rolled so the sequence is stable across Go releases: fixture bytes
// must never change once a decoder test suite has recorded expectations.
func binaryData(n int) []byte {
	out := make([]byte, 0, n)
	state := uint64(0x9e3779b97f4a7c15)

	for len(out) < n {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31

		for i := 0; i < 8 && len(out) < n; i++ {
			out = append(out, byte(z>>(8*i)))
		}
	}

	return out
}
