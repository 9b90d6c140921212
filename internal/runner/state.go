package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StateStore records run outcomes so `patchgate report` can show them later.
// Nothing in it is read back when deciding a run.
type StateStore struct {
	baseDir string
}

// NewStateStore creates a store at the given base directory (e.g. .patchgate/run).
func NewStateStore(baseDir string) *StateStore {
	return &StateStore{baseDir: baseDir}
}

func (s *StateStore) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

func (s *StateStore) commitPath(commit string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(commit)
	return filepath.Join(s.baseDir, "commits", name+".json")
}

// ReadLastRun loads the most recent outcome.
func (s *StateStore) ReadLastRun() (*Outcome, error) {
	return readOutcome(s.lastRunPath())
}

// ReadCommit loads the most recent outcome recorded for commit.
func (s *StateStore) ReadCommit(commit string) (*Outcome, error) {
	return readOutcome(s.commitPath(commit))
}

// WriteOutcome saves out both as the last run and under its commit.
func (s *StateStore) WriteOutcome(out Outcome) error {
	if err := writeJSON(s.commitPath(out.Commit), out); err != nil {
		return err
	}
	return writeJSON(s.lastRunPath(), out)
}

// Reset clears the state directory.
func (s *StateStore) Reset() error {
	return os.RemoveAll(s.baseDir)
}

func readOutcome(path string) (*Outcome, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is under the configured state dir
	if os.IsNotExist(err) {
		return nil, nil // Not found is clean state
	}
	if err != nil {
		return nil, fmt.Errorf("opening outcome file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out Outcome
	if err := json.NewDecoder(f).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding outcome: %w", err)
	}
	return &out, nil
}

func writeJSON(path string, v any) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path) //nolint:gosec // G304: path is under the configured state dir
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
