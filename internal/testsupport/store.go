package testsupport

import (
	"testing"

	"subseg/internal/llmcache"
)

// MustOpenCache opens an llmcache.Store for tests and registers cleanup.
func MustOpenCache(t testing.TB, path string) *llmcache.Store {
	t.Helper()

	store, err := llmcache.Open(path)
	if err != nil {
		t.Fatalf("llmcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
