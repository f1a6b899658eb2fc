package boxcli

import (
	"fmt"

	"github.com/cperrin88/boxkeep/internal/boxlog"
	"github.com/cperrin88/boxkeep/pkg/boxadd"
	"github.com/cperrin88/boxkeep/pkg/boxcatalog"
	"github.com/cperrin88/boxkeep/pkg/boxconfig"
	"github.com/cperrin88/boxkeep/pkg/fsutil"
)

// These variables are set by cmd/boxctl from the root command's persistent
// flags before any subcommand runs.
var (
	ConfigPath *string
	Verbose    *bool
	NoColor    *bool
)

// loadConfig resolves the config file (explicit --config flag, falling
// back to the platform default location) and applies --verbose/--no-color
// overrides, initializing the logger to match.
func loadConfig() (*boxconfig.Config, error) {
	path := getConfigPath()

	cfg, err := boxconfig.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	noColor := NoColor != nil && *NoColor
	boxlog.Init(cfg.Settings.LogLevel, noColor)

	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := fsutil.GetDefaultConfigPath()
	if err != nil {
		boxlog.Warn("failed to resolve default config path, using empty path", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return defaultPath
}

// loadCollection opens the reference BoxCollection rooted at the
// configured collection directory.
func loadCollection(cfg *boxconfig.Config) (*boxcatalog.Catalog, error) {
	cat, err := boxcatalog.Open(cfg.Settings.CollectionDir)
	if err != nil {
		return nil, fmt.Errorf("opening box collection at %s: %w", cfg.Settings.CollectionDir, err)
	}
	return cat, nil
}

// newPipeline returns a fresh pipeline; it carries no state between Add
// calls, so one instance per invocation is appropriate.
func newPipeline() *boxadd.Pipeline {
	return boxadd.NewPipeline()
}
