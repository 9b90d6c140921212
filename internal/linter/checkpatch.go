// SPDX-License-Identifier: AGPL-3.0-or-later

// Package linter runs checkpatch.pl against a single commit.
package linter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/bartekus/patchgate/internal/policy"
)

// DefaultScript is where checkpatch.pl lives in a kernel tree.
const DefaultScript = "scripts/checkpatch.pl"

// Error is returned when checkpatch reported problems or could not be run.
// ExitCode is checkpatch's exit status, or -1 if it never started.
type Error struct {
	Commit   string
	ExitCode int
	Cause    error
}

func (e *Error) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("checkpatch could not run on %s: %v", e.Commit, e.Cause)
	}
	return fmt.Sprintf("checkpatch failed on %s (exit %d)", e.Commit, e.ExitCode)
}

func (e *Error) Unwrap() error { return e.Cause }

// Checkpatch invokes the checkpatch.pl script of a kernel tree.
type Checkpatch struct {
	Script string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Checkpatch running script from dir, streaming its output to the process's stdout/stderr.
func New(script, dir string) *Checkpatch {
	if script == "" {
		script = DefaultScript
	}
	return &Checkpatch{Script: script, Dir: dir, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Args returns the command line for commit with the given ignore set, without the script itself.
func Args(commit string, ignore *policy.Set) []string {
	args := []string{"--git", "--show-types"}
	if ignore != nil && ignore.Len() > 0 {
		args = append(args, "--ignore="+ignore.String())
	}
	return append(args, "--codespell", commit)
}

// Lint runs checkpatch once. There is no retry: findings are not transient.
func (c *Checkpatch) Lint(ctx context.Context, commit string, ignore *policy.Set) error {
	cmd := exec.CommandContext(ctx, c.Script, Args(commit, ignore)...) //nolint:gosec // G204: script path comes from configuration
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Error{Commit: commit, ExitCode: exitErr.ExitCode(), Cause: err}
		}
		return &Error{Commit: commit, ExitCode: -1, Cause: err}
	}
	return nil
}
