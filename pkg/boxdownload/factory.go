package boxdownload

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

// Factory builds a Downloader from Options. Each Build call parses the TLS
// configuration and constructs a new http.Client.
type Factory struct{}

// NewFactory returns a Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Build constructs a Downloader honoring opts.
func (f *Factory) Build(opts Options) (*Downloader, error) {
	tlsConfig, err := buildTLSConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("building TLS config: %w", err)
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}

	if opts.LocationTrusted {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) == 0 {
				return nil
			}
			if auth := opts.Auth; auth != nil {
				if err := auth.Apply(req); err != nil {
					return fmt.Errorf("re-applying auth on redirect: %w", err)
				}
			}
			return nil
		}
	}

	return &Downloader{client: client, opts: opts}, nil
}

func buildTLSConfig(opts Options) (*tls.Config, error) {
	if opts.CACert == "" && opts.CAPath == "" && !opts.Insecure && opts.ClientCert == "" {
		return nil, nil
	}

	cfg := &tls.Config{InsecureSkipVerify: opts.Insecure} //nolint:gosec // operator opt-in, mirrors curl -k

	if opts.CACert != "" || opts.CAPath != "" {
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if opts.CACert != "" {
			data, err := os.ReadFile(opts.CACert)
			if err != nil {
				return nil, fmt.Errorf("reading ca_cert %s: %w", opts.CACert, err)
			}
			if !pool.AppendCertsFromPEM(data) {
				return nil, fmt.Errorf("no certificates found in ca_cert %s", opts.CACert)
			}
		}
		if opts.CAPath != "" {
			entries, err := os.ReadDir(opts.CAPath)
			if err != nil {
				return nil, fmt.Errorf("reading ca_path %s: %w", opts.CAPath, err)
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				data, err := os.ReadFile(opts.CAPath + "/" + entry.Name())
				if err != nil {
					continue
				}
				pool.AppendCertsFromPEM(data)
			}
		}
		cfg.RootCAs = pool
	}

	if opts.ClientCert != "" {
		data, err := os.ReadFile(opts.ClientCert)
		if err != nil {
			return nil, fmt.Errorf("reading client_cert %s: %w", opts.ClientCert, err)
		}
		cert, err := tls.X509KeyPair(data, data)
		if err != nil {
			return nil, fmt.Errorf("parsing client_cert %s: %w", opts.ClientCert, err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}
