package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/calvinalkan/lzfix/internal/fs"
)

// ManifestName is the manifest file written alongside the artifacts.
const ManifestName = "manifest.json"

// ErrManifestMismatch is returned by [CheckManifest] when an artifact does
// not match its recorded digest.
var ErrManifestMismatch = errors.New("manifest mismatch")

// Manifest records a digest per artifact so verify can detect bit-rot or
// accidental edits without recompressing anything.
type Manifest struct {
	Artifacts []Artifact `json:"artifacts"`
}

// Artifact is one manifest entry, keyed by artifact file name.
type Artifact struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	XXH64 string `json:"xxh64"`
}

// Digest returns the xxhash64 hex digest manifests record.
func Digest(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// ManifestPath returns the manifest location for a fixture directory.
func ManifestPath(dir string) string {
	return filepath.Join(dir, ManifestName)
}

// LoadManifest reads the manifest in dir. A missing manifest returns an
// empty Manifest and no error - fixture sets predating manifests are legal.
func LoadManifest(fsys fs.FS, dir string) (Manifest, error) {
	path := ManifestPath(dir)

	ok, err := fsys.Exists(path)
	if err != nil {
		return Manifest{}, err
	}

	if !ok {
		return Manifest{}, nil
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest: %w", err)
	}

	return m, nil
}

// WriteManifest writes the manifest atomically, entries sorted by name for
// stable diffs.
func WriteManifest(fsys fs.FS, dir string, m Manifest) error {
	sort.Slice(m.Artifacts, func(i, j int) bool {
		return m.Artifacts[i].Name < m.Artifacts[j].Name
	})

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	data = append(data, '\n')

	if err := fsys.WriteFileAtomic(ManifestPath(dir), data, artifactPerm); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	return nil
}

// Record replaces the manifest entries for the given artifact file names
// with freshly computed ones. Entries for other fixtures are kept.
func (m *Manifest) Record(fsys fs.FS, dir string, fileNames ...string) error {
	for _, name := range fileNames {
		data, err := fsys.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("digesting %s: %w", name, err)
		}

		m.set(Artifact{Name: name, Size: int64(len(data)), XXH64: Digest(data)})
	}

	return nil
}

// Drop removes the entries for the given artifact file names, if present.
func (m *Manifest) Drop(fileNames ...string) {
	for _, name := range fileNames {
		for i, a := range m.Artifacts {
			if a.Name == name {
				m.Artifacts = append(m.Artifacts[:i], m.Artifacts[i+1:]...)

				break
			}
		}
	}
}

// Lookup returns the entry for an artifact file name.
func (m *Manifest) Lookup(name string) (Artifact, bool) {
	for _, a := range m.Artifacts {
		if a.Name == name {
			return a, true
		}
	}

	return Artifact{}, false
}

func (m *Manifest) set(a Artifact) {
	for i := range m.Artifacts {
		if m.Artifacts[i].Name == a.Name {
			m.Artifacts[i] = a

			return
		}
	}

	m.Artifacts = append(m.Artifacts, a)
}

// CheckManifest verifies every artifact listed in the manifest against its
// recorded size and digest. Returns the file names checked.
func CheckManifest(fsys fs.FS, dir string, m Manifest) ([]string, error) {
	var checked []string

	for _, a := range m.Artifacts {
		data, err := fsys.ReadFile(filepath.Join(dir, a.Name))
		if err != nil {
			return checked, fmt.Errorf("%w: %s unreadable: %w", ErrManifestMismatch, a.Name, err)
		}

		if int64(len(data)) != a.Size {
			return checked, fmt.Errorf("%w: %s is %d bytes, manifest says %d", ErrManifestMismatch, a.Name, len(data), a.Size)
		}

		if got := Digest(data); got != a.XXH64 {
			return checked, fmt.Errorf("%w: %s digest %s, manifest says %s", ErrManifestMismatch, a.Name, got, a.XXH64)
		}

		checked = append(checked, a.Name)
	}

	return checked, nil
}
