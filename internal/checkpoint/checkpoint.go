// Package checkpoint persists each pipeline stage's output as a plain text
// file with one unit per line, so runs can resume or be inspected.
package checkpoint

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

// Stage names a checkpointed pipeline stage.
type Stage string

const (
	StageMark      Stage = "mark"
	StageComma     Stage = "comma"
	StageConnector Stage = "connector"
	StageNLP       Stage = "nlp"
	StageMeaning   Stage = "meaning"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageMark, StageComma, StageConnector, StageNLP, StageMeaning}

// FileName returns the checkpoint file name for stage.
func (s Stage) FileName() string {
	return "split_by_" + string(s) + ".txt"
}

const (
	lockFileName     = ".subseg.lock"
	manifestFileName = ".subseg-manifest.toml"
)

// manifest maps each stage to the signature of the settings its checkpoint
// was produced with.
type manifest struct {
	Signatures map[string]string `toml:"signatures"`
}

// ErrLocked is returned by Lock when another run holds the output directory.
var ErrLocked = errors.New("output directory is locked by another run")

// Store reads and writes checkpoint files in one directory.
type Store struct {
	dir string
}

// NewStore creates dir if needed and returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("checkpoint dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the checkpoint files.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the checkpoint file path for stage.
func (s *Store) Path(stage Stage) string {
	return filepath.Join(s.dir, stage.FileName())
}

// Exists reports whether a checkpoint file for stage is present.
func (s *Store) Exists(stage Stage) bool {
	info, err := os.Stat(s.Path(stage))
	return err == nil && !info.IsDir()
}

// Write replaces the checkpoint for stage with lines, one per line, trimmed.
// Blank lines are skipped. It returns the number of lines written.
func (s *Store) Write(stage Stage, lines []string) (int, error) {
	var b strings.Builder
	written := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
		written++
	}
	if err := replaceFile(s.Path(stage), []byte(b.String())); err != nil {
		return 0, fmt.Errorf("write %s checkpoint: %w", stage, err)
	}
	return written, nil
}

// Read returns the trimmed, non-empty lines of the checkpoint for stage.
func (s *Store) Read(stage Stage) ([]string, error) {
	f, err := os.Open(s.Path(stage))
	if err != nil {
		return nil, fmt.Errorf("read %s checkpoint: %w", stage, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s checkpoint: %w", stage, err)
	}
	return lines, nil
}

// Remove deletes the checkpoint for stage and its recorded signature.
func (s *Store) Remove(stage Stage) error {
	if err := os.Remove(s.Path(stage)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s checkpoint: %w", stage, err)
	}
	return s.updateManifest(func(m *manifest) { delete(m.Signatures, string(stage)) })
}

// Record stores the settings signature the checkpoint for stage was built with.
func (s *Store) Record(stage Stage, signature string) error {
	return s.updateManifest(func(m *manifest) { m.Signatures[string(stage)] = signature })
}

// Signature returns the recorded signature for stage, or "" when none is.
func (s *Store) Signature(stage Stage) (string, error) {
	m, err := s.readManifest()
	if err != nil {
		return "", err
	}
	return m.Signatures[string(stage)], nil
}

// Usable reports whether the checkpoint for stage exists and was produced
// with signature.
func (s *Store) Usable(stage Stage, signature string) bool {
	if !s.Exists(stage) {
		return false
	}
	recorded, err := s.Signature(stage)
	return err == nil && recorded != "" && recorded == signature
}

func (s *Store) readManifest() (manifest, error) {
	m := manifest{Signatures: map[string]string{}}
	data, err := os.ReadFile(filepath.Join(s.dir, manifestFileName))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("read checkpoint manifest: %w", err)
	}
	if err := toml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode checkpoint manifest: %w", err)
	}
	if m.Signatures == nil {
		m.Signatures = map[string]string{}
	}
	return m, nil
}

// updateManifest applies change and rewrites the manifest. An unreadable
// manifest is replaced; its checkpoints simply lose their signatures.
func (s *Store) updateManifest(change func(*manifest)) error {
	m, err := s.readManifest()
	if err != nil {
		m = manifest{Signatures: map[string]string{}}
	}
	change(&m)
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode checkpoint manifest: %w", err)
	}
	if err := replaceFile(filepath.Join(s.dir, manifestFileName), data); err != nil {
		return fmt.Errorf("write checkpoint manifest: %w", err)
	}
	return nil
}

// Lock takes an exclusive, non-blocking lock on the directory. The returned
// function releases it.
func (s *Store) Lock() (func() error, error) {
	lock := flock.New(filepath.Join(s.dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, s.dir)
	}
	return lock.Unlock, nil
}

// replaceFile writes data next to path and renames it into place, so readers
// see either the old checkpoint or the complete new one.
func replaceFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
