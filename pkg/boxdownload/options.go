// Package boxdownload builds transports for and performs box/metadata
// fetches over http, https, file and ftp, with strictly sequential
// fallback across a multi-URL candidate list.
package boxdownload

import (
	"time"

	"github.com/cperrin88/boxkeep/pkg/boxauth"
)

// Options parameterises the transport a Factory builds. The TLS and
// redirect fields are read from the environment bag; Timeout and Auth are
// set by the caller. A zero value takes the transport's default behavior.
type Options struct {
	// CACert is a PEM-encoded CA certificate to trust in addition to the
	// system pool.
	CACert string
	// CAPath is a directory of PEM-encoded CA certificates to trust.
	CAPath string
	// Insecure disables TLS certificate verification.
	Insecure bool
	// ClientCert is a PEM-encoded client certificate (with key) for mutual
	// TLS.
	ClientCert string
	// LocationTrusted allows redirects to carry the Authorization header
	// to a different host.
	LocationTrusted bool
	// DisableSSLRevokeBestEffort is carried through from the environment
	// bag; no transport reads it, so it has no effect on any platform.
	DisableSSLRevokeBestEffort bool
	// Timeout bounds a single fetch attempt. Zero means no timeout.
	Timeout time.Duration
	// Auth, if set, is applied to every outgoing HTTP(S) request.
	Auth boxauth.Authenticator
}
