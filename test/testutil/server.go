// Package testutil provides the httptest-backed fixtures shared by the
// box-add integration tests: a routed fixture server and a throwaway
// config file.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// Route is one path/response pair served by NewFixtureServer.
type Route struct {
	Path        string
	Body        []byte
	ContentType string
}

// NewFixtureServer starts an httptest.Server serving each route at its
// path and returns it; the server is closed through t.Cleanup when the
// test ends.
func NewFixtureServer(t *testing.T, routes ...Route) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for _, route := range routes {
		route := route
		mux.HandleFunc(route.Path, func(w http.ResponseWriter, _ *http.Request) {
			if route.ContentType != "" {
				w.Header().Set("Content-Type", route.ContentType)
			}
			_, _ = w.Write(route.Body)
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// WriteTempConfig writes a minimal box-add config YAML under a temp
// directory and returns its path.
func WriteTempConfig(t *testing.T, collectionDir, tmpDir string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	doc := "settings:\n" +
		"  collection_dir: " + collectionDir + "\n" +
		"  tmp_dir: " + tmpDir + "\n" +
		"  log_level: error\n"

	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
