package boxcli

import (
	"fmt"
	"os"

	"github.com/cperrin88/boxkeep/internal/boxlog"
	"github.com/cperrin88/boxkeep/pkg/boxconfig"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the "config" command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View or initialize the box-add CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCmd(), newConfigInitCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(*cobra.Command, []string) error {
			return runConfigShow()
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(*cobra.Command, []string) error {
			return runConfigInit(force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}

func runConfigShow() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := cfg.ToYAML()
	if err != nil {
		return fmt.Errorf("rendering configuration: %w", err)
	}

	fmt.Print(string(data))
	return nil
}

func runConfigInit(force bool) error {
	path := getConfigPath()
	if path == "" {
		return fmt.Errorf("could not resolve a configuration path")
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
	}

	cfg := boxconfig.DefaultConfig()
	if err := cfg.SaveConfig(path); err != nil {
		return fmt.Errorf("writing default configuration: %w", err)
	}

	boxlog.Success("configuration file created", map[string]interface{}{"path": path})
	return nil
}
