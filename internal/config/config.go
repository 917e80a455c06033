package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// GeminiDirEnv overrides the configured Gemini directory when set.
const GeminiDirEnv = "GCUSAGE_GEMINI_DIR"

// Config holds all gcusage configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Display DisplayConfig `toml:"display"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	GeminiDir     string `toml:"gemini_dir,omitempty"`
	DefaultPeriod string `toml:"default_period"`
	Timezone      string `toml:"timezone,omitempty"`
	LogLevel      string `toml:"log_level,omitempty"`
	UseCache      bool   `toml:"use_cache"`
}

// DisplayConfig holds report rendering settings.
type DisplayConfig struct {
	CompactTotals bool `toml:"compact_totals"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultPeriod: "day",
			UseCache:      true,
		},
		Display: DisplayConfig{
			CompactTotals: true,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gcusage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gcusage")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GeminiDir returns the Gemini directory from env var or config, in that
// order, or "" to use the default.
func GeminiDir(cfg Config) string {
	if dir := os.Getenv(GeminiDirEnv); dir != "" {
		return expandHome(dir)
	}
	return expandHome(cfg.General.GeminiDir)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
