//go:build integration

package main

import (
	"bytes"
	"os"
	"testing"
)

// testCapture redirects os.Stdout for the duration of a command run so an
// integration test can assert on printed output.
type testCapture struct {
	old *os.File
	r   *os.File
	w   *os.File
}

func (c *testCapture) start(t *testing.T) {
	t.Helper()
	c.old = os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	c.r, c.w = r, w
	os.Stdout = w
}

func (c *testCapture) stop() string {
	_ = c.w.Close()
	os.Stdout = c.old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(c.r)
	return buf.String()
}
