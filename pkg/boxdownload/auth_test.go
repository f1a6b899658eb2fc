package boxdownload_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/cperrin88/boxkeep/pkg/boxauth/mocks"
	"github.com/cperrin88/boxkeep/pkg/boxdownload"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFetchAppliesAuthenticator(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	auth.EXPECT().Apply(gomock.Any()).DoAndReturn(func(req *http.Request) error {
		req.Header.Set("Authorization", "Bearer test-token")
		return nil
	})

	dl, err := boxdownload.NewFactory().Build(boxdownload.Options{Auth: auth})
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "box.box")
	_, err = dl.Fetch(context.Background(), []string{srv.URL}, dest)
	require.NoError(t, err)
	require.Equal(t, "Bearer test-token", gotAuth)
}

func TestFetchPropagatesAuthenticatorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	auth.EXPECT().Apply(gomock.Any()).Return(assertError{"auth failed"})

	dl, err := boxdownload.NewFactory().Build(boxdownload.Options{Auth: auth})
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "box.box")
	_, err = dl.Fetch(context.Background(), []string{srv.URL}, dest)
	require.Error(t, err)
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
