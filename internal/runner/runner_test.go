package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/bartekus/patchgate/internal/linter"
	"github.com/bartekus/patchgate/internal/logging"
	"github.com/bartekus/patchgate/internal/notes"
	"github.com/bartekus/patchgate/internal/policy"
	"github.com/bartekus/patchgate/internal/vcs"
)

// MockRepo implements vcs.Repository for testing.
type MockRepo struct {
	author    string
	message   string
	note      string
	hasNote   bool
	lookupErr error

	noteLookups int
	objectReads []string
}

func (m *MockRepo) Author(_ context.Context, ref string) (string, error) {
	if ref == "bad" {
		return "", errors.New("unknown revision")
	}
	return m.author, nil
}

func (m *MockRepo) Message(context.Context, string) (string, error) {
	return m.message, nil
}

func (m *MockRepo) FindNote(context.Context, string) (vcs.NoteLookup, error) {
	m.noteLookups++
	if m.lookupErr != nil {
		return vcs.NoteLookup{}, m.lookupErr
	}
	if !m.hasNote {
		return vcs.NoNote(), nil
	}
	return vcs.NoteFound("note-object"), nil
}

func (m *MockRepo) ReadObject(_ context.Context, id string) (string, error) {
	m.objectReads = append(m.objectReads, id)
	return m.note, nil
}

// MockLinter implements Linter for testing.
type MockLinter struct {
	err    error
	called bool
	commit string
	ignore []string
}

func (m *MockLinter) Lint(_ context.Context, commit string, ignore *policy.Set) error {
	m.called = true
	m.commit = commit
	m.ignore = ignore.Items()
	return m.err
}

func testPolicy() *policy.Policy {
	p := policy.Default()
	p.Ignore = []string{"X"}
	p.Restricted.Ignore = []string{"R"}
	return p
}

func newTestRunner(t *testing.T, repo *MockRepo, lint *MockLinter, store *StateStore) *Runner {
	t.Helper()
	return NewRunner(&Deps{
		Repo:   repo,
		Linter: lint,
		Policy: testPolicy(),
		Log:    logging.Test(t),
		Store:  store,
	})
}

func TestRunner_ExemptMaintainer(t *testing.T) {
	repo := &MockRepo{author: "Linus Torvalds", message: "Linux 6.9\n", hasNote: true, note: "checkpatch-ignore=Y"}
	lint := &MockLinter{}
	store := NewStateStore(t.TempDir())

	out, err := newTestRunner(t, repo, lint, store).Run(context.Background(), RunContext{Commit: "abc"})
	require.NoError(t, err)

	assert.Equal(t, StatusExempt, out.Status)
	assert.Equal(t, policy.ReasonMaintainer, out.Reason)
	assert.False(t, lint.called)
	assert.Zero(t, repo.noteLookups)
	assert.Empty(t, repo.objectReads)

	last, err := store.ReadLastRun()
	require.NoError(t, err)
	assert.Equal(t, StatusExempt, last.Status)
}

func TestRunner_ExemptCoverLetter(t *testing.T) {
	repo := &MockRepo{author: "Alice Dev", message: "series\n\n--- b4-submit-tracking ---\n{}\n"}
	lint := &MockLinter{}

	out, err := newTestRunner(t, repo, lint, nil).Run(context.Background(), RunContext{Commit: "abc"})
	require.NoError(t, err)
	assert.Equal(t, StatusExempt, out.Status)
	assert.Equal(t, policy.ReasonCoverLetter, out.Reason)
	assert.False(t, lint.called)
	assert.Zero(t, repo.noteLookups)
}

func TestRunner_Pass(t *testing.T) {
	repo := &MockRepo{author: "Alice Dev", message: "fix\n", hasNote: true, note: "checkpatch-ignore=X,Y\n"}
	lint := &MockLinter{}
	store := NewStateStore(t.TempDir())

	out, err := newTestRunner(t, repo, lint, store).Run(context.Background(), RunContext{Commit: "abc"})
	require.NoError(t, err)

	assert.True(t, lint.called)
	assert.Equal(t, "abc", lint.commit)
	assert.Equal(t, []string{"X", "Y"}, lint.ignore)
	assert.Equal(t, StatusPass, out.Status)

	rec, err := store.ReadCommit("abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, rec.Ignore)
}

func TestRunner_Restricted(t *testing.T) {
	repo := &MockRepo{author: "Alice Dev", message: "fix\n"}

	lint := &MockLinter{}
	_, err := newTestRunner(t, repo, lint, nil).Run(context.Background(), RunContext{Commit: "abc", Restricted: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "R"}, lint.ignore)

	lint = &MockLinter{}
	_, err = newTestRunner(t, repo, lint, nil).Run(context.Background(), RunContext{Commit: "abc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, lint.ignore)
}

func TestRunner_LinterFailure(t *testing.T) {
	repo := &MockRepo{author: "Alice Dev", message: "fix\n"}
	lint := &MockLinter{err: &linter.Error{Commit: "abc", ExitCode: 1}}
	store := NewStateStore(t.TempDir())

	out, err := newTestRunner(t, repo, lint, store).Run(context.Background(), RunContext{Commit: "abc"})
	var lintErr *linter.Error
	require.True(t, errors.As(err, &lintErr))
	assert.Equal(t, StatusFail, out.Status)

	last, err := store.ReadLastRun()
	require.NoError(t, err)
	assert.Equal(t, StatusFail, last.Status)
}

func TestRunner_MalformedNoteIsAdvisory(t *testing.T) {
	repo := &MockRepo{author: "Alice Dev", message: "fix\n", hasNote: true, note: "checkpatch-ignoreA,B\nfoo=A,B\n"}
	lint := &MockLinter{}
	lggr, logs := logging.TestObserved(t, zapcore.WarnLevel)

	r := NewRunner(&Deps{Repo: repo, Linter: lint, Policy: testPolicy(), Log: lggr})
	out, err := r.Run(context.Background(), RunContext{Commit: "abc"})
	require.NoError(t, err)

	assert.Equal(t, []string{"X"}, lint.ignore)
	assert.Len(t, out.Warnings, 2)
	assert.Equal(t, 2, logs.FilterMessage("Ignoring line in commit notes").Len())
}

func TestRunner_StrictNotes(t *testing.T) {
	repo := &MockRepo{author: "Alice Dev", message: "fix\n", hasNote: true, note: "foo=A\n"}
	lint := &MockLinter{}

	r := NewRunner(&Deps{Repo: repo, Linter: lint, Policy: testPolicy(), Log: logging.Test(t), StrictNotes: true})
	out, err := r.Run(context.Background(), RunContext{Commit: "abc"})

	var rejected *NotesRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Len(t, rejected.Warnings, 1)
	assert.Equal(t, StatusError, out.Status)
	assert.False(t, lint.called)
}

func TestRunner_NoteLookupFailure(t *testing.T) {
	repo := &MockRepo{author: "Alice Dev", message: "fix\n", lookupErr: errors.New("bad object")}
	lint := &MockLinter{}

	_, err := newTestRunner(t, repo, lint, nil).Run(context.Background(), RunContext{Commit: "abc"})
	var lookupErr *notes.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.False(t, lint.called)
}

func TestRunner_UnresolvableCommit(t *testing.T) {
	repo := &MockRepo{}
	lint := &MockLinter{}

	_, err := newTestRunner(t, repo, lint, nil).Run(context.Background(), RunContext{Commit: "bad"})
	var resErr *vcs.ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.False(t, lint.called)
	assert.Zero(t, repo.noteLookups)
}

func TestRunner_NotesObjectSkipsLookup(t *testing.T) {
	repo := &MockRepo{author: "Alice Dev", message: "fix\n", note: "checkpatch-ignore=Z"}
	lint := &MockLinter{}

	_, err := newTestRunner(t, repo, lint, nil).Run(context.Background(), RunContext{Commit: "abc", NotesObject: "given"})
	require.NoError(t, err)
	assert.Zero(t, repo.noteLookups)
	assert.Equal(t, []string{"given"}, repo.objectReads)
	assert.Equal(t, []string{"X", "Z"}, lint.ignore)
}

func TestRunner_Evaluate(t *testing.T) {
	repo := &MockRepo{author: "Alice Dev", message: "fix\n", hasNote: true, note: "checkpatch-ignore=X, Y"}

	ev, err := newTestRunner(t, repo, &MockLinter{}, nil).Evaluate(context.Background(), RunContext{Commit: "abc"})
	require.NoError(t, err)
	assert.Equal(t, policy.DecisionProceed, ev.Decision.Kind)
	assert.Equal(t, 2, ev.Decision.Suppress.Len())
	assert.True(t, ev.Note.Present)
}

func TestNewRunContext(t *testing.T) {
	dir := t.TempDir()
	p := policy.Default()

	_, err := NewRunContext("  ", "", dir, p)
	assert.ErrorIs(t, err, ErrMissingCommit)

	rc, err := NewRunContext("abc", "", dir, p)
	require.NoError(t, err)
	assert.False(t, rc.Restricted)

	require.NoError(t, os.Mkdir(filepath.Join(dir, policy.DefaultMarkerPath), 0o750))
	rc, err = NewRunContext("abc", " obj ", dir, p)
	require.NoError(t, err)
	assert.True(t, rc.Restricted)
	assert.Equal(t, "obj", rc.NotesObject)
}

func TestNewRunContext_RejectsOptionLikeRefs(t *testing.T) {
	p := policy.Default()

	tests := []struct {
		name        string
		commit      string
		notesObject string
	}{
		{name: "commit", commit: "--output=/tmp/x"},
		{name: "commit after trim", commit: "  -n1"},
		{name: "notes object", commit: "abc", notesObject: "--batch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunContext(tt.commit, tt.notesObject, t.TempDir(), p)
			assert.ErrorIs(t, err, ErrInvalidRef)
		})
	}
}

func TestRunner_ExemptSurvivesStateWriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))
	store := NewStateStore(blocker)

	log, logs := logging.TestObserved(t, zapcore.ErrorLevel)
	deps := &Deps{Repo: &MockRepo{author: "Linus Torvalds", message: "Linux 6.9\n"}, Linter: &MockLinter{}, Policy: policy.Default(), Log: log, Store: store}

	out, err := NewRunner(deps).Run(context.Background(), RunContext{Commit: "abc"})
	require.NoError(t, err)
	assert.Equal(t, StatusExempt, out.Status)
	assert.Equal(t, 1, logs.FilterMessage("Failed to record outcome").Len())

	// A clean checkpatch run still reports the failed write.
	deps.Repo = &MockRepo{author: "Alice Dev", message: "fix\n"}
	_, err = NewRunner(deps).Run(context.Background(), RunContext{Commit: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing outcome for abc")
}
