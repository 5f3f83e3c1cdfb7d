package fixture_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/lzfix/internal/fixture"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	env := map[string]string{"XDG_CONFIG_HOME": t.TempDir()}

	cfg, sources, err := fixture.LoadConfig(t.TempDir(), "", fixture.Config{}, false, env)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.FixtureDir != "testdata" {
		t.Errorf("FixtureDir = %q, want testdata", cfg.FixtureDir)
	}

	if sources.Project != "" {
		t.Errorf("unexpected project source %q", sources.Project)
	}
}

func TestLoadConfigProjectFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, fixture.ConfigFileName)

	// JSONC: comments and trailing commas are fine.
	content := `{
	// where the decoder test suite reads from
	"fixture_dir": "src/lz4/testdata",
}`

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, sources, err := fixture.LoadConfig(dir, "", fixture.Config{}, false, map[string]string{"XDG_CONFIG_HOME": t.TempDir()})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.FixtureDir != "src/lz4/testdata" {
		t.Errorf("FixtureDir = %q", cfg.FixtureDir)
	}

	if sources.Project != path {
		t.Errorf("Project source = %q, want %q", sources.Project, path)
	}
}

func TestLoadConfigGlobalThenProject(t *testing.T) {
	t.Parallel()

	global := t.TempDir()
	work := t.TempDir()

	globalPath := filepath.Join(global, "lzfix", "config.json")
	if err := os.MkdirAll(filepath.Dir(globalPath), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(globalPath, []byte(`{"fixture_dir": "global-dir"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	env := map[string]string{"XDG_CONFIG_HOME": global}

	cfg, sources, err := fixture.LoadConfig(work, "", fixture.Config{}, false, env)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.FixtureDir != "global-dir" {
		t.Errorf("FixtureDir = %q, want global-dir", cfg.FixtureDir)
	}

	if sources.Global != globalPath {
		t.Errorf("Global source = %q, want %q", sources.Global, globalPath)
	}

	// Project config wins over global.
	if err := os.WriteFile(filepath.Join(work, fixture.ConfigFileName), []byte(`{"fixture_dir": "project-dir"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err = fixture.LoadConfig(work, "", fixture.Config{}, false, env)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.FixtureDir != "project-dir" {
		t.Errorf("FixtureDir = %q, want project-dir", cfg.FixtureDir)
	}
}

func TestLoadConfigCLIOverrideWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fixture.ConfigFileName), []byte(`{"fixture_dir": "from-file"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	env := map[string]string{"XDG_CONFIG_HOME": t.TempDir()}

	cfg, _, err := fixture.LoadConfig(dir, "", fixture.Config{FixtureDir: "from-flag"}, true, env)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.FixtureDir != "from-flag" {
		t.Errorf("FixtureDir = %q, want from-flag", cfg.FixtureDir)
	}
}

func TestLoadConfigExplicitFileMustExist(t *testing.T) {
	t.Parallel()

	_, _, err := fixture.LoadConfig(t.TempDir(), "nope.json", fixture.Config{}, false, map[string]string{"XDG_CONFIG_HOME": t.TempDir()})
	if !errors.Is(err, fixture.ErrConfigNotFound) {
		t.Errorf("LoadConfig = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigRejectsExplicitEmptyDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fixture.ConfigFileName), []byte(`{"fixture_dir": ""}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := fixture.LoadConfig(dir, "", fixture.Config{}, false, map[string]string{"XDG_CONFIG_HOME": t.TempDir()})
	if !errors.Is(err, fixture.ErrFixtureDirEmpty) {
		t.Errorf("LoadConfig = %v, want ErrFixtureDirEmpty", err)
	}
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, fixture.ConfigFileName), []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := fixture.LoadConfig(dir, "", fixture.Config{}, false, map[string]string{"XDG_CONFIG_HOME": t.TempDir()})
	if !errors.Is(err, fixture.ErrConfigInvalid) {
		t.Errorf("LoadConfig = %v, want ErrConfigInvalid", err)
	}
}
