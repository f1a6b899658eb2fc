// Package boxconfig loads and saves the box-add CLI's YAML configuration
// file: the default catalog server, storage locations, network defaults
// and download TLS options.
package boxconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cperrin88/boxkeep/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Sentinel errors mirroring the shape of an invalid or unusable config file.
var (
	ErrEmptyConfigPath = errors.New("config path must not be empty")
	ErrConfigParse     = errors.New("failed to parse config file")
	ErrConfigValidate  = errors.New("invalid configuration")
)

const (
	// DefaultHTTPTimeout is the default of Settings.HTTPTimeout. The add
	// command does not pass that setting to the downloader.
	DefaultHTTPTimeout = 10 * time.Minute
	// YAMLIndent is the number of spaces used when writing the config file.
	YAMLIndent = 2
)

// DownloadSettings carries the TLS/redirect options threaded into every
// boxdownload.Options built for a box-add invocation.
type DownloadSettings struct {
	Insecure                   bool   `yaml:"insecure,omitempty"`
	CACert                     string `yaml:"ca_cert,omitempty"`
	CAPath                     string `yaml:"ca_path,omitempty"`
	ClientCert                 string `yaml:"client_cert,omitempty"`
	LocationTrusted            bool   `yaml:"location_trusted,omitempty"`
	DisableSSLRevokeBestEffort bool   `yaml:"disable_ssl_revoke_best_effort,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	ServerURL     string        `yaml:"server_url,omitempty"`
	CacheDir      string        `yaml:"cache_dir,omitempty"`
	CollectionDir string        `yaml:"collection_dir,omitempty"`
	TmpDir        string        `yaml:"tmp_dir,omitempty"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	OutputFormat  string        `yaml:"output_format"`
	LogLevel      string        `yaml:"log_level"`
	Download      DownloadSettings `yaml:"download,omitempty"`
}

// Config is the top-level box-add CLI configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// DefaultConfig returns a configuration with sensible defaults, falling
// back to "." for any directory it cannot resolve.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetBoxCacheDir()
	if err != nil {
		cacheDir = "."
	}
	collectionDir, err := fsutil.GetBoxCollectionDir()
	if err != nil {
		collectionDir = "."
	}
	tmpDir, err := fsutil.GetTmpDir()
	if err != nil {
		tmpDir = "."
	}

	return &Config{
		Settings: Settings{
			CacheDir:      cacheDir,
			CollectionDir: collectionDir,
			TmpDir:        tmpDir,
			HTTPTimeout:   DefaultHTTPTimeout,
			OutputFormat:  "text",
			LogLevel:      "info",
		},
	}
}

// LoadConfig loads configuration from path, returning defaults if the file
// does not exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %s: %w", path, err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("opening config file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader parses YAML config data, applying defaults for any
// zero-valued field and validating the result.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config data: %w", err)
	}

	cfg := *DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidate, err)
	}

	return &cfg, nil
}

// SaveConfig writes c to path as YAML, atomically via a temp file.
func (c *Config) SaveConfig(path string) (err error) {
	if path == "" {
		return ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving config path %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return fmt.Errorf("creating temp config file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tempPath)
		}
	}()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)
	if err = encoder.Encode(c); err != nil {
		_ = file.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	_ = encoder.Close()
	if err = file.Close(); err != nil {
		return fmt.Errorf("closing temp config file: %w", err)
	}

	if err = os.Rename(tempPath, absPath); err != nil {
		return fmt.Errorf("renaming temp config file into place: %w", err)
	}

	return os.Chmod(absPath, fsutil.FileModeDefault)
}

// ToYAML renders c as YAML.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// Validate reports whether c holds a usable configuration.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigValidate
	}
	if c.Settings.HTTPTimeout < 0 {
		return fmt.Errorf("%w: http_timeout must not be negative", ErrConfigValidate)
	}
	switch c.Settings.OutputFormat {
	case "", "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: unrecognised output_format %q", ErrConfigValidate, c.Settings.OutputFormat)
	}
	return nil
}
