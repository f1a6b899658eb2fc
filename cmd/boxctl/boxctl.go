package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cperrin88/boxkeep/internal/boxcli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	noColor    bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boxctl",
		Short: "A box-add pipeline for virtual machine images",
		Long: `boxctl fetches, verifies and unpacks virtual machine box images:
- add: fetch a box by URL or short-hand catalog reference
- cache: inspect the local box collection
- config: view or initialize configuration`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	boxcli.ConfigPath = &configPath
	boxcli.Verbose = &verbose
	boxcli.NoColor = &noColor

	cmd.AddCommand(
		boxcli.NewAddCmd(),
		boxcli.NewCacheCmd(),
		boxcli.NewConfigCmd(),
		boxcli.NewVersionCmd(),
	)

	return cmd
}
