package llmcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	busyAttempts  = 5
	busyFirstWait = 10 * time.Millisecond
	busyMaxWait   = 200 * time.Millisecond
)

// Store keeps validated LLM responses in a SQLite file keyed by model and prompts.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one stored response with its bookkeeping columns.
type Entry struct {
	Key       string
	Model     string
	Prompt    string
	Response  string
	CreatedAt time.Time
	Hits      int
}

// Stats describes what the cache holds and how much disk it uses.
type Stats struct {
	Path      string
	Entries   int
	Hits      int
	Models    map[string]int
	SizeBytes int64
}

// Open opens the cache at path, creating the file and its tables if needed.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	if err := migrate(context.Background(), db, path); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database handle. It is safe on a nil store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path is the database file location.
func (s *Store) Path() string {
	return s.path
}

// Key hashes model and prompts into a cache key. Parts are NUL separated so
// moving text between prompts changes the key.
func Key(model, systemPrompt, userPrompt string) string {
	h := sha256.New()
	for _, part := range []string{model, systemPrompt, userPrompt} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the response stored under key and bumps its hit counter.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	entry, ok, err := s.Lookup(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	err = s.write(ctx, "UPDATE responses SET hits = hits + 1, last_hit_at = ? WHERE key = ?", timestamp(), key)
	if err != nil {
		return "", false, fmt.Errorf("record cache hit: %w", err)
	}
	return entry.Response, true, nil
}

// Put inserts the response, replacing any earlier one for the same key.
func (s *Store) Put(ctx context.Context, key, model, prompt, response string) error {
	const upsert = `INSERT INTO responses (key, model, prompt, response, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET response = excluded.response, created_at = excluded.created_at`
	if err := s.write(ctx, upsert, key, model, prompt, response, timestamp()); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Lookup reads the whole entry without counting a hit.
func (s *Store) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	var (
		e       Entry
		created string
	)
	row := s.db.QueryRowContext(ctx,
		"SELECT key, model, prompt, response, created_at, hits FROM responses WHERE key = ?", key)
	switch err := row.Scan(&e.Key, &e.Model, &e.Prompt, &e.Response, &created, &e.Hits); {
	case errors.Is(err, sql.ErrNoRows):
		return Entry{}, false, nil
	case err != nil:
		return Entry{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return e, true, nil
}

// Stats counts entries per model and sums hits. SizeBytes includes the WAL
// and shared-memory side files.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT model, COUNT(*), COALESCE(SUM(hits), 0) FROM responses GROUP BY model")
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()

	out := Stats{Path: s.path, Models: map[string]int{}}
	for rows.Next() {
		var model string
		var n, hits int
		if err := rows.Scan(&model, &n, &hits); err != nil {
			return Stats{}, fmt.Errorf("cache stats: %w", err)
		}
		out.Models[model] = n
		out.Entries += n
		out.Hits += hits
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	for _, file := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		if info, err := os.Stat(file); err == nil {
			out.SizeBytes += info.Size()
		}
	}
	return out, nil
}

// Clear removes the entries of one model, or all entries when model is
// blank, and reports how many rows went.
func (s *Store) Clear(ctx context.Context, model string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if model = strings.TrimSpace(model); model == "" {
		res, err = s.db.ExecContext(ctx, "DELETE FROM responses")
	} else {
		res, err = s.db.ExecContext(ctx, "DELETE FROM responses WHERE model = ?", model)
	}
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

// write runs a statement, retrying while another connection holds the lock.
func (s *Store) write(ctx context.Context, query string, args ...any) error {
	wait := busyFirstWait
	for attempt := 1; ; attempt++ {
		_, err := s.db.ExecContext(ctx, query, args...)
		if err == nil || !busy(err) || attempt == busyAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, busyMaxWait)
	}
}

// busy matches SQLITE_BUSY (code 5) from modernc.org/sqlite.
func busy(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) && coded.Code() == 5 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
