package boxhook

import (
	"fmt"

	"github.com/cperrin88/boxkeep/pkg/boxdownload"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// TengoHook runs operator-supplied Tengo scripts for the two hook
// operations: one script compilation per invocation, context variables
// bound before Run.
type TengoHook struct {
	// DownloaderScript, if non-empty, runs on AuthenticateDownloader with
	// downloader_options bound as a map and expected back mutated in
	// place.
	DownloaderScript string
	// URLScript, if non-empty, runs on AuthenticateURLs with box_urls
	// bound as an array of strings and expected back rewritten.
	URLScript string
}

// AuthenticateDownloader runs DownloaderScript, if set, against a
// map[string]interface{} view of opts's scriptable fields, then applies
// any values the script changed back onto a copy of opts.
func (h TengoHook) AuthenticateDownloader(opts boxdownload.Options) (boxdownload.Options, error) {
	if h.DownloaderScript == "" {
		return opts, nil
	}

	in := map[string]interface{}{
		"ca_cert":                        opts.CACert,
		"ca_path":                        opts.CAPath,
		"insecure":                       opts.Insecure,
		"client_cert":                    opts.ClientCert,
		"location_trusted":               opts.LocationTrusted,
		"disable_ssl_revoke_best_effort": opts.DisableSSLRevokeBestEffort,
	}

	script := tengo.NewScript([]byte(h.DownloaderScript))
	script.SetImports(stdlib.GetModuleMap("fmt", "os", "strings"))
	if err := script.Add("downloader_options", in); err != nil {
		return opts, fmt.Errorf("binding downloader_options: %w", err)
	}

	compiled, err := script.Run()
	if err != nil {
		return opts, fmt.Errorf("running authenticate_box_downloader hook: %w", err)
	}

	out, ok := compiled.Get("downloader_options").Value().(map[string]interface{})
	if !ok {
		return opts, fmt.Errorf("authenticate_box_downloader hook did not return a downloader_options map")
	}

	result := opts
	if v, ok := out["ca_cert"].(string); ok {
		result.CACert = v
	}
	if v, ok := out["ca_path"].(string); ok {
		result.CAPath = v
	}
	if v, ok := out["insecure"].(bool); ok {
		result.Insecure = v
	}
	if v, ok := out["client_cert"].(string); ok {
		result.ClientCert = v
	}
	if v, ok := out["location_trusted"].(bool); ok {
		result.LocationTrusted = v
	}
	if v, ok := out["disable_ssl_revoke_best_effort"].(bool); ok {
		result.DisableSSLRevokeBestEffort = v
	}

	return result, nil
}

// AuthenticateURLs runs URLScript, if set, against a []string box_urls
// binding and returns the rewritten list the script leaves behind.
func (h TengoHook) AuthenticateURLs(urls []string) ([]string, error) {
	if h.URLScript == "" {
		return urls, nil
	}

	in := make([]interface{}, len(urls))
	for i, u := range urls {
		in[i] = u
	}

	script := tengo.NewScript([]byte(h.URLScript))
	script.SetImports(stdlib.GetModuleMap("fmt", "os", "strings"))
	if err := script.Add("box_urls", in); err != nil {
		return urls, fmt.Errorf("binding box_urls: %w", err)
	}

	compiled, err := script.Run()
	if err != nil {
		return urls, fmt.Errorf("running authenticate_box_url hook: %w", err)
	}

	rewritten, ok := compiled.Get("box_urls").Value().([]interface{})
	if !ok {
		return urls, fmt.Errorf("authenticate_box_url hook did not return a box_urls array")
	}

	out := make([]string, 0, len(rewritten))
	for _, v := range rewritten {
		s, ok := v.(string)
		if !ok {
			return urls, fmt.Errorf("authenticate_box_url hook returned a non-string URL element")
		}
		out = append(out, s)
	}

	return out, nil
}
