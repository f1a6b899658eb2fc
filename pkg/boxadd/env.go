// Package boxadd drives the box-add pipeline's state machine: it classifies
// a user-supplied reference, expands short-hand and metadata indirection,
// selects a candidate provider, downloads and verifies the archive, and
// hands it to a BoxCollection.
package boxadd

import (
	"strings"

	"github.com/cperrin88/boxkeep/pkg/boxhook"
	"github.com/cperrin88/boxkeep/pkg/boxui"
)

// Env is the typed in-process representation of the environment bag. Every
// field is read-only to the pipeline except BoxAdded, which the pipeline
// sets exactly once on success.
type Env struct {
	Name              string
	URLs              []string
	Provider          []string
	VersionConstraint string
	Checksum          string
	ChecksumType      string
	Architecture      string
	Force             bool
	ServerURL         string

	DownloadCACert                     string
	DownloadCAPath                     string
	DownloadInsecure                   bool
	DownloadClientCert                 string
	DownloadLocationTrusted            bool
	DownloadDisableSSLRevokeBestEffort bool

	TmpPath    string
	UI         boxui.UI
	Collection BoxCollection
	Hook       boxhook.Hook

	// BoxAdded is written by the pipeline on success; the caller must not
	// set it.
	BoxAdded *Box
}

// FromMap converts the map[string]string form of the environment bag into
// an Env. URLs and Provider are read as comma-separated lists; empty items
// are dropped. The boxctl add command does not go through FromMap: it fills
// an Env from its flags directly.
func FromMap(m map[string]string) Env {
	return Env{
		Name:                               m["box_name"],
		URLs:                               splitNonEmpty(m["box_url"]),
		Provider:                           splitNonEmpty(m["box_provider"]),
		VersionConstraint:                  m["box_version"],
		Checksum:                           m["box_checksum"],
		ChecksumType:                       m["box_checksum_type"],
		Architecture:                       m["box_architecture"],
		Force:                              m["box_force"] == "true",
		ServerURL:                          m["box_server_url"],
		DownloadCACert:                     m["box_download_ca_cert"],
		DownloadCAPath:                     m["box_download_ca_path"],
		DownloadInsecure:                   m["box_download_insecure"] == "true",
		DownloadClientCert:                 m["box_download_client_cert"],
		DownloadLocationTrusted:            m["box_download_location_trusted"] == "true",
		DownloadDisableSSLRevokeBestEffort: m["box_download_disable_ssl_revoke_best_effort"] == "true",
		TmpPath:                            m["tmp_path"],
	}
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
