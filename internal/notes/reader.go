// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notes reads and parses the per-commit settings a reviewer attaches
// with `git notes --ref limmat edit <commit>`.
package notes

import (
	"context"
	"fmt"

	"github.com/bartekus/patchgate/internal/vcs"
)

// Note is the raw text of a commit's note. Present is false when the commit
// has no note at all, which is different from a note with empty text.
type Note struct {
	Object  string
	Text    string
	Present bool
}

// LookupError is returned when the note store itself could not be read.
type LookupError struct {
	Ref   string
	Cause error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("reading notes for %q: %v", e.Ref, e.Cause)
}

func (e *LookupError) Unwrap() error { return e.Cause }

// Read returns the note attached to ref, or an absent Note when there is none.
func Read(ctx context.Context, repo vcs.Repository, ref string) (Note, error) {
	lookup, err := repo.FindNote(ctx, ref)
	if err != nil {
		return Note{}, &LookupError{Ref: ref, Cause: err}
	}
	if !lookup.Found {
		return Note{}, nil
	}
	return ReadObject(ctx, repo, ref, lookup.Object)
}

// ReadObject reads a note whose object id is already known, skipping the lookup.
func ReadObject(ctx context.Context, repo vcs.Repository, ref, object string) (Note, error) {
	text, err := repo.ReadObject(ctx, object)
	if err != nil {
		return Note{}, &LookupError{Ref: ref, Cause: err}
	}
	return Note{Object: object, Text: text, Present: true}, nil
}
