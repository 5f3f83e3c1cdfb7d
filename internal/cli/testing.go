package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/lzfix/internal/fixture"
)

// CLI provides a clean interface for running CLI commands in tests.
// It manages a temp directory and environment variables.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI creates a new test CLI with a temp directory. The global config
// lookup is pointed at a second temp dir so a developer's real config
// never leaks into tests.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{"XDG_CONFIG_HOME": t.TempDir()},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
// Args should not include "lzfix" or "--cwd" - those are added automatically.
func (r *CLI) Run(args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"lzfix", "--cwd", r.Dir}, args...)
	code := Run(nil, &outBuf, &errBuf, fullArgs, r.Env)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// FixtureDir returns the path to the default fixture directory.
func (r *CLI) FixtureDir() string {
	return filepath.Join(r.Dir, "testdata")
}

// ReadFixtureFile reads a file from the default fixture directory.
func (r *CLI) ReadFixtureFile(name string) []byte {
	r.t.Helper()

	data, err := os.ReadFile(filepath.Join(r.FixtureDir(), name))
	if err != nil {
		r.t.Fatalf("failed to read fixture file %s: %v", name, err)
	}

	return data
}

// WriteFixtureFile writes a file into the default fixture directory.
func (r *CLI) WriteFixtureFile(name string, data []byte) {
	r.t.Helper()

	if err := os.MkdirAll(r.FixtureDir(), 0o755); err != nil {
		r.t.Fatalf("failed to create fixture dir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(r.FixtureDir(), name), data, 0o600); err != nil {
		r.t.Fatalf("failed to write fixture file %s: %v", name, err)
	}
}

// WriteConfig writes a project config file into the work directory.
func (r *CLI) WriteConfig(content string) {
	r.t.Helper()

	if err := os.WriteFile(filepath.Join(r.Dir, fixture.ConfigFileName), []byte(content), 0o600); err != nil {
		r.t.Fatalf("failed to write config: %v", err)
	}
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}
