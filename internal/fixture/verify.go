package fixture

import (
	"bytes"
	"errors"
	"fmt"

	pierrec "github.com/pierrec/lz4/v4"

	"github.com/calvinalkan/lzfix/internal/fs"
	"github.com/calvinalkan/lzfix/internal/lz4"
)

// ErrVerifyFailed is the sentinel wrapped by all verification failures.
var ErrVerifyFailed = errors.New("fixture verification failed")

// Verify checks the fixture's round-trip law: name.lz4, decoded with
// name.dct (when present) and name.dat's length, must reproduce name.dat
// exactly.
//
// The block is decoded twice - once with the internal decoder and once with
// an independent LZ4 implementation - so a bug shared by the generator's
// compressor and decoder cannot hide a malformed stream. Recompressing the
// data must also reproduce the block byte-for-byte, which catches artifacts
// regenerated by a different compressor, and the manifest digests are
// checked when a manifest entry exists.
func Verify(fsys fs.FS, dir, name string) error {
	fx, block, err := Load(fsys, dir, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}

	decoded, err := lz4.DecompressBlock(block, fx.Dict, len(fx.Data))
	if err != nil {
		return fmt.Errorf("%w: %s%s does not decode: %w", ErrVerifyFailed, name, ExtBlock, err)
	}

	if !bytes.Equal(decoded, fx.Data) {
		return fmt.Errorf("%w: %s%s decodes to %d bytes that differ from %s%s",
			ErrVerifyFailed, name, ExtBlock, len(decoded), name, ExtData)
	}

	if err := oracleDecode(block, fx); err != nil {
		return fmt.Errorf("%w: %s%s rejected by reference decoder: %w", ErrVerifyFailed, name, ExtBlock, err)
	}

	if recompressed := lz4.CompressBlock(fx.Data, fx.Dict); !bytes.Equal(recompressed, block) {
		return fmt.Errorf("%w: %s%s was not produced by this generator (recompression differs)",
			ErrVerifyFailed, name, ExtBlock)
	}

	if err := verifyManifest(fsys, dir, name); err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}

	return nil
}

// oracleDecode replays the block through pierrec/lz4, the independent
// implementation.
func oracleDecode(block []byte, fx Fixture) error {
	dst := make([]byte, len(fx.Data))

	var (
		n   int
		err error
	)

	if len(fx.Dict) == 0 {
		n, err = pierrec.UncompressBlock(block, dst)
	} else {
		n, err = pierrec.UncompressBlockWithDict(block, dst, fx.Dict)
	}

	if err != nil {
		return err
	}

	if !bytes.Equal(dst[:n], fx.Data) {
		return fmt.Errorf("reference decoder produced %d differing bytes", n)
	}

	return nil
}

// verifyManifest checks the fixture's artifacts against the manifest, when
// one exists and lists them. Unlisted artifacts are fine - the manifest may
// predate the fixture.
func verifyManifest(fsys fs.FS, dir, name string) error {
	m, err := LoadManifest(fsys, dir)
	if err != nil {
		return err
	}

	if len(m.Artifacts) == 0 {
		return nil
	}

	partial := Manifest{}

	for _, fileName := range []string{name + ExtData, name + ExtDict, name + ExtBlock} {
		if a, ok := m.Lookup(fileName); ok {
			partial.Artifacts = append(partial.Artifacts, a)
		}
	}

	_, err = CheckManifest(fsys, dir, partial)

	return err
}
