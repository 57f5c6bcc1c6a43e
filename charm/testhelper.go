// ABOUTME: Test utilities for creating isolated charm clients
// ABOUTME: Backs each client with a badger store in the test's temp directory

package charm

import (
	"path/filepath"
	"testing"
)

// NewTestClient opens a local, never-syncing client that is closed when the
// test ends.
func NewTestClient(t testing.TB) *Client {
	t.Helper()

	cfg := &Config{Host: "localhost", AutoSync: false}
	c, err := OpenLocal(filepath.Join(t.TempDir(), AppName), cfg)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Logf("Warning: failed to close test store: %v", err)
		}
	})
	return c
}
