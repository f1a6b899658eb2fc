package boxcli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cperrin88/boxkeep/internal/boxlog"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the "cache" command with subcommands for inspecting
// the local box collection: listing its boxes and printing its directory.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the local box collection",
	}

	cmd.AddCommand(newCacheListCmd(), newCacheDirCmd())

	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List boxes in the local collection",
		RunE: func(*cobra.Command, []string) error {
			return runCacheList()
		},
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Print the collection directory path",
		RunE: func(*cobra.Command, []string) error {
			return runCacheDir()
		},
	}
}

func runCacheList() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	collection, err := loadCollection(cfg)
	if err != nil {
		return err
	}

	boxes := collection.List()
	if len(boxes) == 0 {
		boxlog.Info("no boxes in the local collection")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVERSION\tPROVIDER\tARCHITECTURE")
	for _, b := range boxes {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.Name, b.Version, b.Provider, b.Architecture)
	}
	return w.Flush()
}

func runCacheDir() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println(cfg.Settings.CollectionDir)
	return nil
}
