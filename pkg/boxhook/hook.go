// Package boxhook implements the box-add pipeline's authentication hook
// protocol: a caller-provided callback invoked before every download to
// mutate transport options and rewrite the candidate URL list.
package boxhook

import "github.com/cperrin88/boxkeep/pkg/boxdownload"

// Hook has two operations: AuthenticateURLs lets the caller rewrite a
// candidate URL list (e.g. to append a signed query string or swap in a
// mirror) once before the list is tried, and AuthenticateDownloader lets
// it mutate transport options before each download attempt.
type Hook interface {
	AuthenticateDownloader(opts boxdownload.Options) (boxdownload.Options, error)
	AuthenticateURLs(urls []string) ([]string, error)
}

// NoopHook is the default Hook: both operations are the identity function.
type NoopHook struct{}

// AuthenticateDownloader returns opts unchanged.
func (NoopHook) AuthenticateDownloader(opts boxdownload.Options) (boxdownload.Options, error) {
	return opts, nil
}

// AuthenticateURLs returns urls unchanged.
func (NoopHook) AuthenticateURLs(urls []string) ([]string, error) {
	return urls, nil
}
