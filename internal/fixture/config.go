package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	FixtureDir string `json:"fixture_dir"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".lzfix.json"

var (
	// ErrConfigNotFound is returned when an explicitly requested config
	// file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid is returned for unparseable config files.
	ErrConfigInvalid = errors.New("invalid config file")

	// ErrFixtureDirEmpty is returned when fixture_dir resolves to empty.
	ErrFixtureDirEmpty = errors.New("fixture_dir cannot be empty")
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{FixtureDir: "testdata"}
}

// LoadConfig loads configuration with the following precedence (highest
// wins):
//  1. Defaults
//  2. Global user config ($XDG_CONFIG_HOME/lzfix/config.json or
//     ~/.config/lzfix/config.json)
//  3. Project config file (.lzfix.json in workDir, if present)
//  4. Explicit config file via configPath (must exist)
//  5. CLI overrides
//
// Config files are JSONC: comments and trailing commas are allowed.
func LoadConfig(workDir, configPath string, overrides Config, hasFixtureDirOverride bool, env map[string]string) (Config, ConfigSources, error) {
	cfg := DefaultConfig()

	var sources ConfigSources

	globalCfg, globalPath, err := loadOptionalConfig(globalConfigPath(env))
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, configPath)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if hasFixtureDirOverride {
		cfg.FixtureDir = overrides.FixtureDir
	}

	if cfg.FixtureDir == "" {
		return Config{}, ConfigSources{}, ErrFixtureDirEmpty
	}

	return cfg, sources, nil
}

// globalConfigPath returns the global config location, preferring
// XDG_CONFIG_HOME from the provided env. Empty when no home is resolvable.
func globalConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "lzfix", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "lzfix", "config.json")
}

func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		return loadOptionalConfig(filepath.Join(workDir, ConfigFileName))
	}

	// Explicit config file: must exist.
	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	if _, err := os.Stat(path); err != nil {
		return Config{}, "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	return loadOptionalConfig(path)
}

// loadOptionalConfig loads a config file, treating a missing file as empty
// config. An explicitly empty fixture_dir is invalid, not "use defaults".
func loadOptionalConfig(path string) (Config, string, error) {
	if path == "" {
		return Config{}, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, "", nil
		}

		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	cfg, explicitEmpty, err := parseConfig(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	if explicitEmpty {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrFixtureDirEmpty)
	}

	return cfg, path, nil
}

func parseConfig(data []byte) (cfg Config, explicitEmptyDir bool, err error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("invalid JSONC: %w", err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("invalid JSON: %w", err)
	}

	// Distinguish `"fixture_dir": ""` from the key being absent.
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, exists := raw["fixture_dir"]; exists {
		if s, ok := val.(string); ok && s == "" {
			explicitEmptyDir = true
		}
	}

	return cfg, explicitEmptyDir, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.FixtureDir != "" {
		base.FixtureDir = overlay.FixtureDir
	}

	return base
}

// FormatConfig returns the config as formatted JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
