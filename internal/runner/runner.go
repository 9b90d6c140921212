// Package runner drives one patchgate run: resolve the commit, apply the
// exemption rules, merge the suppression layers and hand off to checkpatch.
package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bartekus/patchgate/internal/notes"
	"github.com/bartekus/patchgate/internal/policy"
	"github.com/bartekus/patchgate/internal/vcs"
)

// Linter checks one commit with a set of message types ignored.
type Linter interface {
	Lint(ctx context.Context, commit string, ignore *policy.Set) error
}

// Deps contains the collaborators of a run.
type Deps struct {
	Repo   vcs.Repository
	Linter Linter
	Policy *policy.Policy
	Log    *zap.SugaredLogger
	// Store is optional; when nil nothing is persisted.
	Store       *StateStore
	StrictNotes bool
}

// Runner executes the gate for a single commit.
type Runner struct {
	deps       *Deps
	classifier *policy.Classifier
}

// NewRunner creates a runner with the exemption rules of deps.Policy.
func NewRunner(deps *Deps) *Runner {
	return &Runner{
		deps:       deps,
		classifier: policy.NewClassifier(deps.Policy.Rules()...),
	}
}

// Evaluate decides what to do with the commit without running checkpatch.
// Exempt commits return before the note store is touched.
func (r *Runner) Evaluate(ctx context.Context, rc RunContext) (Evaluation, error) {
	log := r.deps.Log.With("commit", rc.Commit)

	meta, err := vcs.ResolveMetadata(ctx, r.deps.Repo, rc.Commit)
	if err != nil {
		return Evaluation{}, err
	}
	ev := Evaluation{Metadata: meta}

	if ex, ok := r.classifier.Classify(meta); ok {
		log.Infow("Ignoring commit", "rule", ex.Rule, "reason", ex.Reason, "author", meta.Author)
		ev.Decision = policy.Exempt(ex.Reason)
		return ev, nil
	}

	note, err := r.readNote(ctx, rc)
	if err != nil {
		return Evaluation{}, err
	}
	ev.Note = note
	if note.Present {
		log.Debugw("Read commit note", "object", note.Object)
	}

	parsed := notes.Parse(note)
	ev.Warnings = parsed.Warnings
	for _, w := range parsed.Warnings {
		fields := []any{"line", w.Line, "text", w.Text, "reason", w.Reason}
		if w.Suggestion != "" {
			fields = append(fields, "suggestion", w.Suggestion)
		}
		log.Warnw("Ignoring line in commit notes", fields...)
	}
	if r.deps.StrictNotes && len(parsed.Warnings) > 0 {
		return ev, &NotesRejectedError{Commit: rc.Commit, Warnings: parsed.Warnings}
	}

	ev.Decision = policy.Proceed(r.deps.Policy.Suppressions(rc.Restricted, parsed))
	log.Debugw("Suppression set", "restricted", rc.Restricted, "ignore", ev.Decision.Suppress.String())
	return ev, nil
}

func (r *Runner) readNote(ctx context.Context, rc RunContext) (notes.Note, error) {
	if rc.NotesObject != "" {
		return notes.ReadObject(ctx, r.deps.Repo, rc.Commit, rc.NotesObject)
	}
	return notes.Read(ctx, r.deps.Repo, rc.Commit)
}

// Run evaluates the commit and, unless it is exempt, runs checkpatch on it.
// A nil error means the commit is exempt or clean.
func (r *Runner) Run(ctx context.Context, rc RunContext) (Outcome, error) {
	ev, err := r.Evaluate(ctx, rc)
	out := newOutcome(rc, ev)
	if err != nil {
		out.Status = StatusError
		out.Note = err.Error()
		return out, r.finish(out, err)
	}

	if ev.Decision.IsExempt() {
		out.Status = StatusExempt
		return out, r.finish(out, nil)
	}

	r.deps.Log.Debugw("Running checkpatch", "commit", rc.Commit, "ignore", ev.Decision.Suppress.String())
	if err := r.deps.Linter.Lint(ctx, rc.Commit, ev.Decision.Suppress); err != nil {
		r.deps.Log.Errorw("checkpatch failed", "commit", rc.Commit, "error", err)
		out.Status = StatusFail
		out.Note = err.Error()
		return out, r.finish(out, err)
	}

	out.Status = StatusPass
	return out, r.finish(out, nil)
}

// finish persists out when a store is configured and returns runErr.
// A failed write only fails a run that passed checkpatch; exempt runs and
// runs that already failed log it and keep their result.
func (r *Runner) finish(out Outcome, runErr error) error {
	if r.deps.Store == nil {
		return runErr
	}
	if err := r.deps.Store.WriteOutcome(out); err != nil {
		if runErr != nil || out.Status == StatusExempt {
			r.deps.Log.Errorw("Failed to record outcome", "commit", out.Commit, "status", out.Status, "error", err)
			return runErr
		}
		return fmt.Errorf("writing outcome for %s: %w", out.Commit, err)
	}
	return runErr
}
