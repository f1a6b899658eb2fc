package boxerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapIsSentinel(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindBoxChecksumMismatch, "checksum mismatch for foo.box", cause)

	assert.True(t, errors.Is(err, ErrBoxChecksumMismatch))
	assert.False(t, errors.Is(err, ErrBoxAlreadyExists))

	kind, ok := GetKind(err)
	require.True(t, ok)
	assert.Equal(t, KindBoxChecksumMismatch, kind)
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(KindBoxServerNotSet, "no server configured", nil)
	assert.Equal(t, "no server configured", err.Error())
	assert.True(t, errors.Is(err, ErrBoxServerNotSet))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := New(KindDownloaderError, "fetch failed")
	wrapped := Wrap(KindDownloaderError, "fetch failed", errors.New("connection refused"))
	assert.NotEqual(t, err.Error(), wrapped.Error())
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestGetKindNonBoxError(t *testing.T) {
	_, ok := GetKind(errors.New("plain"))
	assert.False(t, ok)
}
