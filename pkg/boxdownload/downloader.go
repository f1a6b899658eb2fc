package boxdownload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cperrin88/boxkeep/pkg/boxerrors"
	"github.com/cperrin88/boxkeep/pkg/boxurl"
	"github.com/cperrin88/boxkeep/pkg/fsutil"
)

// Downloader fetches a single artifact to a destination path over
// http/https/file/ftp.
type Downloader struct {
	client *http.Client
	opts   Options
}

// Result is the outcome of a successful Fetch: the on-disk path, the
// transport-reported content type (empty for file:// and ftp://, which
// don't surface one), and the exact URL that ultimately succeeded.
type Result struct {
	Path        string
	ContentType string
	SourceURL   string
}

// Fetch tries each URL in candidates in order, stopping at the first
// transport success. A transport-level failure on one candidate advances
// to the next; if every candidate fails, a DownloaderError is returned
// wrapping the last failure. destPath is the final on-disk location; the
// download lands in a sibling temp file and is only moved into place once
// complete.
func (d *Downloader) Fetch(ctx context.Context, candidates []string, destPath string) (*Result, error) {
	if len(candidates) == 0 {
		return nil, boxerrors.New(boxerrors.KindDownloaderError, "no candidate URLs to fetch")
	}

	var lastErr error
	for _, candidate := range candidates {
		result, err := d.fetchOne(ctx, candidate, destPath)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return nil, boxerrors.Wrap(boxerrors.KindDownloaderError, "all candidate URLs failed", lastErr)
}

func (d *Downloader) fetchOne(ctx context.Context, rawURL, destPath string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", boxurl.Scrub(rawURL), err)
	}

	switch parsed.Scheme {
	case "http", "https":
		return d.fetchHTTP(ctx, rawURL, destPath)
	case "file":
		return d.fetchFile(parsed, destPath)
	case "ftp":
		return d.fetchFTP(ctx, parsed, destPath)
	default:
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
}

func (d *Downloader) fetchHTTP(ctx context.Context, rawURL, destPath string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if d.opts.Auth != nil {
		if err := d.opts.Auth.Apply(req); err != nil {
			return nil, fmt.Errorf("applying auth: %w", err)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", boxurl.Scrub(rawURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, boxurl.Scrub(rawURL))
	}

	if err := writeToTemp(resp.Body, destPath); err != nil {
		return nil, err
	}

	return &Result{Path: destPath, ContentType: resp.Header.Get("Content-Type"), SourceURL: rawURL}, nil
}

func (d *Downloader) fetchFile(parsed *url.URL, destPath string) (*Result, error) {
	src := parsed.Path
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	if err := writeToTemp(f, destPath); err != nil {
		return nil, err
	}

	return &Result{Path: destPath, SourceURL: parsed.String()}, nil
}

func writeToTemp(r io.Reader, destPath string) error {
	if err := fsutil.EnsureFileDir(destPath); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "boxdl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}

	if err := fsutil.Move(tmpPath, destPath); err != nil {
		return fmt.Errorf("finalizing %s: %w", destPath, err)
	}
	if err := os.Chmod(destPath, fsutil.FileModeSecure); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", destPath, err)
	}

	return nil
}
