package boxcli

import (
	"context"
	"fmt"

	"github.com/cperrin88/boxkeep/internal/boxlog"
	"github.com/cperrin88/boxkeep/pkg/boxadd"
	"github.com/cperrin88/boxkeep/pkg/boxhook"
	"github.com/cperrin88/boxkeep/pkg/boxui"
	"github.com/spf13/cobra"
)

// NewAddCmd creates the "add" command.
func NewAddCmd() *cobra.Command {
	var (
		name              string
		provider          []string
		versionConstraint string
		checksum          string
		checksumType      string
		architecture      string
		force             bool
		serverURL         string
		caCert            string
		caPath            string
		insecure          bool
		clientCert        string
		locationTrusted   bool
		authScript        string
		urlScript         string
	)

	cmd := &cobra.Command{
		Use:   "add URL [URL...]",
		Short: "Add a box to the local collection",
		Long: `Add fetches a box from one or more URLs (or a short-hand catalog
reference such as hashicorp/bionic64), verifies its checksum, and unpacks
it into the local collection.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), args, addFlags{
				name:              name,
				provider:          provider,
				versionConstraint: versionConstraint,
				checksum:          checksum,
				checksumType:      checksumType,
				architecture:      architecture,
				force:             force,
				serverURL:         serverURL,
				caCert:            caCert,
				caPath:            caPath,
				insecure:          insecure,
				clientCert:        clientCert,
				locationTrusted:   locationTrusted,
				authScript:        authScript,
				urlScript:         urlScript,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "box name (required unless adding from catalog metadata)")
	cmd.Flags().StringArrayVar(&provider, "provider", nil, "acceptable provider(s), e.g. virtualbox")
	cmd.Flags().StringVar(&versionConstraint, "box-version", "", "version constraint, e.g. \">= 1.0, < 2.0\"")
	cmd.Flags().StringVar(&checksum, "checksum", "", "expected checksum of the archive")
	cmd.Flags().StringVar(&checksumType, "checksum-type", "", "checksum algorithm (default sha256 if --checksum is set)")
	cmd.Flags().StringVar(&architecture, "architecture", "", "requested architecture (default: host architecture)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing box with the same name/version/provider")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "catalog server used to expand short-hand references (default: $VAGRANT_SERVER_URL)")
	cmd.Flags().StringVar(&caCert, "cacert", "", "PEM-encoded CA certificate to trust")
	cmd.Flags().StringVar(&caPath, "capath", "", "directory of PEM-encoded CA certificates to trust")
	cmd.Flags().BoolVarP(&insecure, "insecure", "k", false, "disable TLS certificate verification")
	cmd.Flags().StringVar(&clientCert, "cert", "", "PEM-encoded client certificate for mutual TLS")
	cmd.Flags().BoolVar(&locationTrusted, "location-trusted", false, "allow redirects to carry credentials to a different host")
	cmd.Flags().StringVar(&authScript, "auth-downloader-script", "", "Tengo script run to authenticate the downloader")
	cmd.Flags().StringVar(&urlScript, "auth-url-script", "", "Tengo script run to rewrite candidate URLs")

	return cmd
}

type addFlags struct {
	name              string
	provider          []string
	versionConstraint string
	checksum          string
	checksumType      string
	architecture      string
	force             bool
	serverURL         string
	caCert            string
	caPath            string
	insecure          bool
	clientCert        string
	locationTrusted   bool
	authScript        string
	urlScript         string
}

func runAdd(ctx context.Context, urls []string, flags addFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	collection, err := loadCollection(cfg)
	if err != nil {
		return err
	}

	env := &boxadd.Env{
		Name:                               flags.name,
		URLs:                               urls,
		Provider:                           flags.provider,
		VersionConstraint:                  flags.versionConstraint,
		Checksum:                           flags.checksum,
		ChecksumType:                       flags.checksumType,
		Architecture:                       flags.architecture,
		Force:                              flags.force,
		ServerURL:                          flags.serverURL,
		DownloadCACert:                     flags.caCert,
		DownloadCAPath:                     flags.caPath,
		DownloadInsecure:                   flags.insecure,
		DownloadClientCert:                 flags.clientCert,
		DownloadLocationTrusted:            flags.locationTrusted,
		DownloadDisableSSLRevokeBestEffort: cfg.Settings.Download.DisableSSLRevokeBestEffort,
		TmpPath:                            cfg.Settings.TmpDir,
		UI:                                 boxui.NewConsoleUI(),
		Collection:                         collection,
		Hook: boxhook.TengoHook{
			DownloaderScript: flags.authScript,
			URLScript:        flags.urlScript,
		},
	}

	if env.ServerURL == "" {
		env.ServerURL = cfg.Settings.ServerURL
	}
	if !flags.insecure {
		env.DownloadInsecure = cfg.Settings.Download.Insecure
	}
	if flags.caCert == "" {
		env.DownloadCACert = cfg.Settings.Download.CACert
	}
	if flags.caPath == "" {
		env.DownloadCAPath = cfg.Settings.Download.CAPath
	}
	if flags.clientCert == "" {
		env.DownloadClientCert = cfg.Settings.Download.ClientCert
	}
	if !flags.locationTrusted {
		env.DownloadLocationTrusted = cfg.Settings.Download.LocationTrusted
	}

	pipeline := newPipeline()
	pipeline.Hooks = boxadd.Hooks{OnEvent: func(e boxadd.Event) {
		boxlog.Info(e.Msg, map[string]interface{}{"phase": e.Phase})
	}}

	if err := pipeline.Add(ctx, env); err != nil {
		return fmt.Errorf("adding box: %w", err)
	}

	boxlog.Success("box added", map[string]interface{}{
		"name":     env.BoxAdded.Name,
		"version":  env.BoxAdded.Version,
		"provider": env.BoxAdded.Provider,
	})
	return nil
}
