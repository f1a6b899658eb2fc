package boxdownload_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/cperrin88/boxkeep/pkg/boxauth"
	"github.com/cperrin88/boxkeep/pkg/boxdownload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAppliesAuthenticator(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dl, err := boxdownload.NewFactory().Build(boxdownload.Options{
		Auth: boxauth.BearerAuth{Token: "secret-token"},
	})
	require.NoError(t, err)

	_, err = dl.Fetch(context.Background(), []string{srv.URL}, filepath.Join(t.TempDir(), "box.box"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotHeader)
}

func TestBuildRejectsUnreadableCACert(t *testing.T) {
	_, err := boxdownload.NewFactory().Build(boxdownload.Options{CACert: "/nonexistent/ca.pem"})
	assert.Error(t, err)
}
