// SPDX-License-Identifier: AGPL-3.0-or-later

// Package vcs is the version-control boundary of patchgate: commit metadata
// lookup and access to the notes attached to a commit.
package vcs

import (
	"context"
	"fmt"
)

// DefaultNotesRef is the notes namespace the review runner attaches per-commit settings to.
const DefaultNotesRef = "limmat"

// CommitMetadata is what the exemption rules look at.
type CommitMetadata struct {
	Ref     string
	Author  string
	Message string
}

// NoteLookup is the result of looking for a note on a commit.
// A zero value means no note is attached.
type NoteLookup struct {
	Found  bool
	Object string
}

// NoNote reports that the commit has no note.
func NoNote() NoteLookup { return NoteLookup{} }

// NoteFound reports the object id of the note blob.
func NoteFound(object string) NoteLookup { return NoteLookup{Found: true, Object: object} }

// Repository is the set of lookups patchgate needs from version control.
type Repository interface {
	// Author returns the author name of ref.
	Author(ctx context.Context, ref string) (string, error)

	// Message returns the full raw commit message of ref.
	Message(ctx context.Context, ref string) (string, error)

	// FindNote locates the note attached to ref. A missing note is NoNote() with a nil error;
	// an error means the note store could not be read.
	FindNote(ctx context.Context, ref string) (NoteLookup, error)

	// ReadObject returns the text content of a blob.
	ReadObject(ctx context.Context, object string) (string, error)
}

// ResolutionError is returned when a commit reference cannot be resolved.
type ResolutionError struct {
	Ref   string
	Cause error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving commit %q: %v", e.Ref, e.Cause)
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

// ResolveMetadata fetches author and message for ref.
func ResolveMetadata(ctx context.Context, repo Repository, ref string) (CommitMetadata, error) {
	author, err := repo.Author(ctx, ref)
	if err != nil {
		return CommitMetadata{}, &ResolutionError{Ref: ref, Cause: err}
	}
	msg, err := repo.Message(ctx, ref)
	if err != nil {
		return CommitMetadata{}, &ResolutionError{Ref: ref, Cause: err}
	}
	return CommitMetadata{
		Ref:     ref,
		Author:  author,
		Message: msg,
	}, nil
}
