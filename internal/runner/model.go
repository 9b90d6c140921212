package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bartekus/patchgate/internal/notes"
	"github.com/bartekus/patchgate/internal/policy"
	"github.com/bartekus/patchgate/internal/vcs"
)

// Status represents the outcome of a run.
type Status string

const (
	StatusExempt Status = "exempt"
	StatusPass   Status = "pass"
	StatusFail   Status = "fail"
	StatusError  Status = "error"
)

// ErrMissingCommit is returned when no commit reference was supplied.
var ErrMissingCommit = errors.New("commit reference missing: set LIMMAT_COMMIT or pass --commit")

// ErrInvalidRef is returned for a commit or note object that git would parse as an option.
var ErrInvalidRef = errors.New("invalid reference")

// RunContext is the process context of one run, captured once at startup.
type RunContext struct {
	Commit      string
	NotesObject string
	WorkDir     string
	Restricted  bool
}

// NewRunContext validates the inputs and checks for the restricted-environment marker under workDir.
func NewRunContext(commit, notesObject, workDir string, p *policy.Policy) (RunContext, error) {
	commit = strings.TrimSpace(commit)
	if commit == "" {
		return RunContext{}, ErrMissingCommit
	}
	notesObject = strings.TrimSpace(notesObject)
	for _, ref := range []string{commit, notesObject} {
		if strings.HasPrefix(ref, "-") {
			return RunContext{}, fmt.Errorf("%w %q: must not start with '-'", ErrInvalidRef, ref)
		}
	}
	return RunContext{
		Commit:      commit,
		NotesObject: notesObject,
		WorkDir:     workDir,
		Restricted:  p.InRestrictedEnv(workDir),
	}, nil
}

// Evaluation is everything decided about a commit before checkpatch runs.
type Evaluation struct {
	Metadata vcs.CommitMetadata
	Decision policy.Decision
	Note     notes.Note
	Warnings []notes.Warning
}

// NotesRejectedError is returned in strict mode when the note had lines that were skipped.
type NotesRejectedError struct {
	Commit   string
	Warnings []notes.Warning
}

func (e *NotesRejectedError) Error() string {
	return fmt.Sprintf("notes for %s have %d invalid line(s)", e.Commit, len(e.Warnings))
}

// Outcome is the summary of a run.
// Matches .patchgate/run/last-run.json schema.
type Outcome struct {
	Commit     string   `json:"commit"`
	Status     Status   `json:"status"`
	Restricted bool     `json:"restricted"`
	Reason     string   `json:"reason,omitempty"`
	Ignore     []string `json:"ignore,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Note       string   `json:"note,omitempty"`
}

func newOutcome(rc RunContext, ev Evaluation) Outcome {
	out := Outcome{
		Commit:     rc.Commit,
		Restricted: rc.Restricted,
		Reason:     ev.Decision.Reason,
	}
	if ev.Decision.Suppress != nil {
		out.Ignore = ev.Decision.Suppress.Items()
	}
	for _, w := range ev.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out
}
