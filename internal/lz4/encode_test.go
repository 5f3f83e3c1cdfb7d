package lz4_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	pierrec "github.com/pierrec/lz4/v4"

	"github.com/calvinalkan/lzfix/internal/lz4"
)

const lorem = `Lorem ipsum dolor sit amet consectetur adipiscing elit. Quisque faucibus ex
sapien vitae pellentesque sem placerat. In id cursus mi pretium tellus duis
convallis. Tempus leo eu aenean sed diam urna tempor. Pulvinar vivamus
fringilla lacus nec metus bibendum egestas. Iaculis massa nisl malesuada
lacinia integer nunc posuere. Ut hendrerit semper vel class aptent taciti
sociosqu. Ad litora torquent per conubia nostra inceptos himenaeos.`

func encodeCases() []struct {
	name string
	data []byte
	dict []byte
} {
	incompressible := make([]byte, 4096)
	rand.New(rand.NewSource(1)).Read(incompressible)

	return []struct {
		name string
		data []byte
		dict []byte
	}{
		{name: "empty", data: nil},
		{name: "single byte", data: []byte{'a'}},
		{name: "below match threshold", data: []byte("abcdefghijk")},
		{name: "lorem", data: []byte(lorem)},
		{name: "lorem with dict", data: []byte(lorem), dict: []byte("Iaculis massa nisl malesuada")},
		{name: "data equals dict", data: []byte("Iaculis massa nisl malesuada"), dict: []byte("Iaculis massa nisl malesuada")},
		{name: "runs", data: bytes.Repeat([]byte{'a'}, 3000)},
		{name: "short period run", data: bytes.Repeat([]byte("ab"), 1500)},
		{name: "repeated blocks", data: bytes.Repeat([]byte("0123456789abcdef"), 256)},
		{name: "incompressible", data: incompressible},
		{name: "incompressible with dict", data: incompressible[:512], dict: incompressible[512:1024]},
		{name: "dict larger than window", data: []byte(lorem), dict: bytes.Repeat([]byte(lorem), 200)},
	}
}

func TestCompressBlockRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tt := range encodeCases() {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := lz4.CompressBlock(tt.data, tt.dict)

			got, err := lz4.DecompressBlock(src, tt.dict, len(tt.data))
			if err != nil {
				t.Fatalf("DecompressBlock: %v", err)
			}

			if diff := cmp.Diff(tt.data, got, cmp.Transformer("bytes", normalize)); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			if len(src) > lz4.CompressBound(len(tt.data)) {
				t.Errorf("compressed size %d exceeds CompressBound %d", len(src), lz4.CompressBound(len(tt.data)))
			}
		})
	}
}

// The encoder must produce streams any conforming decoder accepts, and must
// accept streams from other conforming encoders. pierrec/lz4 is the
// independent oracle for both directions.
func TestCompressBlockOracle(t *testing.T) {
	t.Parallel()

	for _, tt := range encodeCases() {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := lz4.CompressBlock(tt.data, tt.dict)

			dst := make([]byte, len(tt.data))

			var (
				n   int
				err error
			)

			if len(tt.dict) == 0 {
				n, err = pierrec.UncompressBlock(src, dst)
			} else {
				n, err = pierrec.UncompressBlockWithDict(src, dst, tt.dict)
			}

			if err != nil {
				t.Fatalf("oracle rejected our stream: %v", err)
			}

			if diff := cmp.Diff(tt.data, dst[:n], cmp.Transformer("bytes", normalize)); diff != "" {
				t.Errorf("oracle output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecompressBlockAcceptsOracleStreams(t *testing.T) {
	t.Parallel()

	for _, tt := range encodeCases() {
		if len(tt.dict) > 0 {
			// pierrec's block API compresses without dictionaries.
			continue
		}

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var c pierrec.Compressor

			buf := make([]byte, pierrec.CompressBlockBound(len(tt.data)))

			n, err := c.CompressBlock(tt.data, buf)
			if err != nil {
				t.Fatalf("oracle CompressBlock: %v", err)
			}

			if n == 0 {
				// Oracle signals incompressible input with n == 0 instead
				// of emitting a literal-only stream; nothing to decode.
				t.Skip("oracle stored block uncompressed")
			}

			got, err := lz4.DecompressBlock(buf[:n], nil, len(tt.data))
			if err != nil {
				t.Fatalf("DecompressBlock on oracle stream: %v", err)
			}

			if diff := cmp.Diff(tt.data, got, cmp.Transformer("bytes", normalize)); diff != "" {
				t.Errorf("decoded oracle stream mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompressBlockDeterministic(t *testing.T) {
	t.Parallel()

	data := []byte(lorem)
	dict := []byte("Iaculis massa nisl malesuada")

	a := lz4.CompressBlock(data, dict)
	b := lz4.CompressBlock(data, dict)

	if !bytes.Equal(a, b) {
		t.Error("identical inputs produced different streams")
	}
}

func TestCompressBlockEmptyInput(t *testing.T) {
	t.Parallel()

	got := lz4.CompressBlock(nil, nil)
	if !bytes.Equal(got, []byte{0x00}) {
		t.Fatalf("empty input = %x, want 00", got)
	}
}

func TestCompressBlockCompresses(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("abcd"), 1024)

	src := lz4.CompressBlock(data, nil)
	if len(src) >= len(data) {
		t.Errorf("repetitive input did not compress: %d -> %d", len(data), len(src))
	}
}

func TestCompressBlockDictionaryHelps(t *testing.T) {
	t.Parallel()

	data := []byte("Iaculis massa nisl malesuada lacinia integer nunc posuere.")
	dict := []byte("Iaculis massa nisl malesuada")

	plain := lz4.CompressBlock(data, nil)
	seeded := lz4.CompressBlock(data, dict)

	if len(seeded) >= len(plain) {
		t.Errorf("dictionary did not help: plain %d, seeded %d", len(plain), len(seeded))
	}
}

// normalize maps nil and empty slices to the same value so cmp.Diff compares
// contents only.
func normalize(b []byte) string { return string(b) }
