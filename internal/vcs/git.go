// SPDX-License-Identifier: AGPL-3.0-or-later

package vcs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// GitCLI implements Repository by shelling out to the git binary.
type GitCLI struct {
	repoRoot string
	notesRef string
}

// NewGitCLI creates a GitCLI rooted at repoRoot reading notes from notesRef.
func NewGitCLI(repoRoot, notesRef string) *GitCLI {
	if notesRef == "" {
		notesRef = DefaultNotesRef
	}
	return &GitCLI{repoRoot: repoRoot, notesRef: notesRef}
}

func (g *GitCLI) Author(ctx context.Context, ref string) (string, error) {
	out, err := g.output(ctx, "log", "-n1", "--format=%an", ref, "--")
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(out, "\n"), nil
}

// Message returns the raw body as printed by %B. git appends one newline
// after the message which is kept so trailer markers on the last line still match.
func (g *GitCLI) Message(ctx context.Context, ref string) (string, error) {
	return g.output(ctx, "log", "-n1", "--format=%B", ref, "--")
}

// FindNote runs `git notes list`. Exit status 1 is how git reports that
// the object has no note (or that the notes ref does not exist yet).
func (g *GitCLI) FindNote(ctx context.Context, ref string) (NoteLookup, error) {
	out, err := g.output(ctx, "notes", "--ref="+g.notesRef, "list", ref)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return NoNote(), nil
		}
		return NoteLookup{}, err
	}
	obj := strings.TrimSpace(out)
	if obj == "" {
		return NoNote(), nil
	}
	return NoteFound(obj), nil
}

func (g *GitCLI) ReadObject(ctx context.Context, object string) (string, error) {
	return g.output(ctx, "cat-file", "-p", object)
}

func (g *GitCLI) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.repoRoot
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if stderr != "" {
				return "", fmt.Errorf("git %s: %w: %s", args[0], err, stderr)
			}
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
