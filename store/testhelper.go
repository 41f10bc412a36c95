// ABOUTME: Test utilities for creating isolated stores
// ABOUTME: Uses temporary directories so each test gets a fresh BadgerDB
package store

import (
	"testing"
)

// NewTestStore creates a store in a temp directory, cleaned up with the test.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
