// Package config handles configuration loading and validation for
// cliptrim.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete application configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version"`

	// Trimmer holds the selection constraint policy.
	Trimmer TrimmerConfig `toml:"trimmer"`

	// Thumbnails holds strip generation settings.
	Thumbnails ThumbnailConfig `toml:"thumbnails"`

	// Probe holds media probing settings.
	Probe ProbeConfig `toml:"probe"`

	// Library holds sample-folder settings.
	Library LibraryConfig `toml:"library"`

	// Storage holds session-store settings.
	Storage StorageConfig `toml:"storage"`

	// Logging holds log output settings.
	Logging LoggingConfig `toml:"logging"`
}

// TrimmerConfig is the base constraint policy before split-mode
// scaling.
type TrimmerConfig struct {
	// BaseMinSec is the minimum clip duration for one output item.
	BaseMinSec float64 `toml:"base_min_sec"`

	// BaseMaxSec is the maximum clip duration for one output item.
	BaseMaxSec float64 `toml:"base_max_sec"`

	// BaseStepSec is the duration grid. Quarter seconds keep frame
	// counts divisible for 16fps-aligned encoders.
	BaseStepSec float64 `toml:"base_step_sec"`

	// MaxItems bounds the split-mode item count offered by the UI.
	MaxItems int `toml:"max_items"`
}

// ThumbnailConfig holds strip generation settings.
type ThumbnailConfig struct {
	// CacheEnabled persists encoded strips in the session store.
	CacheEnabled bool `toml:"cache_enabled"`

	// FFmpegPath / FFprobePath override the binaries found on PATH.
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
}

// ProbeConfig holds media probing settings.
type ProbeConfig struct {
	// TimeoutSec bounds a whole probe attempt.
	TimeoutSec int `toml:"timeout_sec"`

	// FetchTimeoutSec bounds the download of a remote source.
	FetchTimeoutSec int `toml:"fetch_timeout_sec"`
}

// LibraryConfig holds sample-folder settings.
type LibraryConfig struct {
	// SampleDirs are directories watched for playable sample media.
	SampleDirs []string `toml:"sample_dirs"`

	// Extensions are the playable file extensions, lowercase with dot.
	Extensions []string `toml:"extensions"`
}

// StorageConfig holds session-store settings.
type StorageConfig struct {
	// Path is the SQLite session database location.
	Path string `toml:"path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`

	// Output is stdout, stderr, file, or both.
	Output string `toml:"output"`

	// FilePath is the log file when Output includes file.
	FilePath string `toml:"file_path"`
}

// CliptrimDir returns the per-user application directory.
func CliptrimDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cliptrim"
	}
	return filepath.Join(home, ".cliptrim")
}

// ConfigPath returns the default configuration file location.
func ConfigPath() string {
	return filepath.Join(CliptrimDir(), "config.toml")
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Trimmer: TrimmerConfig{
			BaseMinSec:  1,
			BaseMaxSec:  20,
			BaseStepSec: 0.25,
			MaxItems:    8,
		},
		Thumbnails: ThumbnailConfig{
			CacheEnabled: true,
		},
		Probe: ProbeConfig{
			TimeoutSec:      15,
			FetchTimeoutSec: 15,
		},
		Library: LibraryConfig{
			SampleDirs: []string{filepath.Join(CliptrimDir(), "samples")},
			Extensions: []string{".mp4", ".mov", ".mkv", ".webm", ".m4v", ".avi"},
		},
		Storage: StorageConfig{
			Path: filepath.Join(CliptrimDir(), "session.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads the configuration at path, or the default path when path
// is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	t := c.Trimmer
	if t.BaseMinSec <= 0 {
		return fmt.Errorf("trimmer.base_min_sec must be positive")
	}
	if t.BaseMaxSec < t.BaseMinSec {
		return fmt.Errorf("trimmer.base_max_sec must be >= base_min_sec")
	}
	if t.BaseStepSec <= 0 {
		return fmt.Errorf("trimmer.base_step_sec must be positive")
	}
	if t.MaxItems < 1 {
		return fmt.Errorf("trimmer.max_items must be at least 1")
	}
	if c.Probe.TimeoutSec <= 0 {
		return fmt.Errorf("probe.timeout_sec must be positive")
	}
	if c.Probe.FetchTimeoutSec <= 0 {
		return fmt.Errorf("probe.fetch_timeout_sec must be positive")
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr", "file", "both":
	default:
		return fmt.Errorf("logging.output %q is not one of stdout, stderr, file, both", c.Logging.Output)
	}
	return nil
}
