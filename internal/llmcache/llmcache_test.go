package llmcache

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type countingCompleter struct {
	mu     sync.Mutex
	calls  int
	answer string
	err    error
}

func (c *countingCompleter) CompleteJSON(context.Context, string, string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.answer, c.err
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	key := Key("model-a", "sys", "user")
	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get on empty store = %v, %v", ok, err)
	}
	if err := store.Put(ctx, key, "model-a", "user", `{"ok":true}`); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok || got != `{"ok":true}` {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}
	entry, ok, err := store.Lookup(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	if entry.Hits != 1 || entry.Model != "model-a" || entry.Prompt != "user" || entry.CreatedAt.IsZero() {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestKeyDistinguishesParts(t *testing.T) {
	if Key("m", "ab", "c") == Key("m", "a", "bc") {
		t.Fatal("keys must not collide when prompt boundaries move")
	}
	if Key("m1", "s", "u") == Key("m2", "s", "u") {
		t.Fatal("keys must differ per model")
	}
}

func TestStatsAndClear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	for i, model := range []string{"m1", "m1", "m2"} {
		key := Key(model, "s", strings.Repeat("x", i+1))
		if err := store.Put(ctx, key, model, "p", "{}"); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 3 || stats.Models["m1"] != 2 || stats.Models["m2"] != 1 || stats.SizeBytes == 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	removed, err := store.Clear(ctx, "m1")
	if err != nil || removed != 2 {
		t.Fatalf("Clear(m1) = %d, %v", removed, err)
	}
	removed, err = store.Clear(ctx, "")
	if err != nil || removed != 1 {
		t.Fatalf("Clear(all) = %d, %v", removed, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put(ctx, "k", "m", "p", "r"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if got, ok, _ := reopened.Get(ctx, "k"); !ok || got != "r" {
		t.Fatalf("entry lost after reopen: %q %v", got, ok)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestCompleterCachesValidResponses(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	inner := &countingCompleter{answer: `{"choice":"1"}`}
	c := Wrap(store, inner, "model", WithValidator(func(string) error { return nil }))

	for i := 0; i < 3; i++ {
		got, err := c.CompleteJSON(ctx, "sys", "user")
		if err != nil || got != `{"choice":"1"}` {
			t.Fatalf("CompleteJSON = %q, %v", got, err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", inner.calls)
	}
}

func TestCompleterSkipsInvalidAndErrors(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	invalid := &countingCompleter{answer: "garbage"}
	c := Wrap(store, invalid, "model", WithValidator(func(string) error { return errors.New("bad") }))
	for i := 0; i < 2; i++ {
		if got, err := c.CompleteJSON(ctx, "sys", "user"); err != nil || got != "garbage" {
			t.Fatalf("CompleteJSON = %q, %v", got, err)
		}
	}
	if invalid.calls != 2 {
		t.Fatalf("invalid responses must not be cached, calls=%d", invalid.calls)
	}

	failing := &countingCompleter{err: errors.New("network down")}
	c = Wrap(store, failing, "model")
	if _, err := c.CompleteJSON(ctx, "sys", "other"); err == nil {
		t.Fatal("expected upstream error")
	}
	stats, _ := store.Stats(ctx)
	if stats.Entries != 0 {
		t.Fatalf("expected empty cache, got %+v", stats)
	}
}

func TestCompleterWithoutStore(t *testing.T) {
	inner := &countingCompleter{answer: "{}"}
	c := Wrap(nil, inner, "model")
	if _, err := c.CompleteJSON(context.Background(), "s", "u"); err != nil || inner.calls != 1 {
		t.Fatalf("passthrough failed: calls=%d err=%v", inner.calls, err)
	}
}
