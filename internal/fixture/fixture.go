// Package fixture models LZ4 decoder test fixtures and their on-disk
// artifacts.
//
// A fixture is a named test case: raw data, an optional compression
// dictionary, and the data's LZ4 block compression. On disk a fixture "name"
// owns up to three files in the fixture directory:
//
//	name.dat   raw data, exactly as the decoder should reproduce it
//	name.dct   the dictionary, only present when the fixture has one
//	name.lz4   LZ4 block compression of name.dat (max effort, no stored size)
//
// Artifacts are immutable once generated; decoder test suites read them and
// must never depend on regenerating byte-identical streams from a different
// compressor.
package fixture

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/calvinalkan/lzfix/internal/fs"
	"github.com/calvinalkan/lzfix/internal/lz4"
)

const (
	// ExtData, ExtDict and ExtBlock are the artifact file extensions.
	ExtData  = ".dat"
	ExtDict  = ".dct"
	ExtBlock = ".lz4"

	artifactPerm = 0o644
	dirPerm      = 0o755
)

var (
	// ErrNameRequired is returned for an empty fixture name.
	ErrNameRequired = errors.New("fixture name is required")

	// ErrInvalidName is returned when a name cannot be used verbatim as a
	// file stem.
	ErrInvalidName = errors.New("invalid fixture name")

	// ErrNotFound is returned when a fixture has no artifacts on disk.
	ErrNotFound = errors.New("fixture not found")
)

// Fixture is a named decoder test case. Data may be empty; an empty Dict
// means the fixture has no dictionary.
type Fixture struct {
	Name string
	Data []byte
	Dict []byte
}

// ValidateName checks that name is usable verbatim as a file stem.
func ValidateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}

	if name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\") ||
		strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return nil
}

// DataPath returns the path of the fixture's raw-data artifact.
func DataPath(dir, name string) string { return filepath.Join(dir, name+ExtData) }

// DictPath returns the path of the fixture's dictionary artifact.
func DictPath(dir, name string) string { return filepath.Join(dir, name+ExtDict) }

// BlockPath returns the path of the fixture's compressed artifact.
func BlockPath(dir, name string) string { return filepath.Join(dir, name+ExtBlock) }

// Write generates the fixture's artifacts in dir, creating it if needed.
//
// It writes name.dat, name.dct when the fixture has a dictionary, and
// name.lz4 compressed at maximum effort with that dictionary. Existing
// artifacts are overwritten; a stale name.dct from a previous dictionary
// variant of the fixture is removed. Writes are atomic, so a crash cannot
// leave a partially written artifact - though it can leave a partial set.
func Write(fsys fs.FS, dir string, fx Fixture) error {
	if err := ValidateName(fx.Name); err != nil {
		return err
	}

	if err := fsys.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating fixture dir: %w", err)
	}

	if err := fsys.WriteFileAtomic(DataPath(dir, fx.Name), fx.Data, artifactPerm); err != nil {
		return fmt.Errorf("writing %s%s: %w", fx.Name, ExtData, err)
	}

	if len(fx.Dict) > 0 {
		if err := fsys.WriteFileAtomic(DictPath(dir, fx.Name), fx.Dict, artifactPerm); err != nil {
			return fmt.Errorf("writing %s%s: %w", fx.Name, ExtDict, err)
		}
	} else {
		if err := removeIfExists(fsys, DictPath(dir, fx.Name)); err != nil {
			return fmt.Errorf("removing stale %s%s: %w", fx.Name, ExtDict, err)
		}
	}

	block := lz4.CompressBlock(fx.Data, fx.Dict)
	if err := fsys.WriteFileAtomic(BlockPath(dir, fx.Name), block, artifactPerm); err != nil {
		return fmt.Errorf("writing %s%s: %w", fx.Name, ExtBlock, err)
	}

	return nil
}

// Load reads a fixture's artifacts back. The returned block is the raw
// contents of name.lz4. A missing name.dct simply means no dictionary.
func Load(fsys fs.FS, dir, name string) (fx Fixture, block []byte, err error) {
	if err := ValidateName(name); err != nil {
		return Fixture{}, nil, err
	}

	data, err := fsys.ReadFile(DataPath(dir, name))
	if err != nil {
		return Fixture{}, nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}

	dict, err := readIfExists(fsys, DictPath(dir, name))
	if err != nil {
		return Fixture{}, nil, fmt.Errorf("reading %s%s: %w", name, ExtDict, err)
	}

	block, err = fsys.ReadFile(BlockPath(dir, name))
	if err != nil {
		return Fixture{}, nil, fmt.Errorf("reading %s%s: %w", name, ExtBlock, err)
	}

	return Fixture{Name: name, Data: data, Dict: dict}, block, nil
}

// List returns the names of all fixtures in dir (stems of .dat files),
// sorted. A missing directory is an empty list, not an error.
func List(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		ok, existsErr := fsys.Exists(dir)
		if existsErr == nil && !ok {
			return nil, nil
		}

		return nil, fmt.Errorf("reading fixture dir: %w", err)
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if stem, ok := strings.CutSuffix(e.Name(), ExtData); ok {
			names = append(names, stem)
		}
	}

	sort.Strings(names)

	return names, nil
}

func readIfExists(fsys fs.FS, path string) ([]byte, error) {
	ok, err := fsys.Exists(path)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	return fsys.ReadFile(path)
}

func removeIfExists(fsys fs.FS, path string) error {
	ok, err := fsys.Exists(path)
	if err != nil || !ok {
		return err
	}

	return fsys.Remove(path)
}
