// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bartekus/patchgate/cmd/patchgate/internal/clierr"
	"github.com/bartekus/patchgate/internal/linter"
	"github.com/bartekus/patchgate/internal/logging"
	"github.com/bartekus/patchgate/internal/notes"
	"github.com/bartekus/patchgate/internal/policy"
	"github.com/bartekus/patchgate/internal/runner"
	"github.com/bartekus/patchgate/internal/vcs"
)

const (
	defaultPolicyFile = ".patchgate.yaml"
	defaultStateDir   = ".patchgate/run"

	backendGit   = "git"
	backendGoGit = "go-git"
)

// settings is the resolved configuration of a single invocation.
type settings struct {
	Commit      string
	NotesObject string
	Repo        string
	Backend     string
	NotesRef    string
	Checkpatch  string
	Policy      string
	StateDir    string
	StrictNotes bool
	Verbose     bool
}

// addRunFlags registers the flags shared by commands that evaluate a commit.
// Flags in alphabetical order for deterministic help output
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", backendGit, "git access: git (git binary) or go-git (in-process)")
	cmd.Flags().String("commit", "", "commit to check (default $LIMMAT_COMMIT)")
	cmd.Flags().String("notes-ref", vcs.DefaultNotesRef, "notes ref holding per-commit settings")
	cmd.Flags().Bool("strict-notes", false, "fail when the commit note has invalid lines")
}

// newViper binds cmd's flags and the environment. Flags win over environment;
// the commit also comes from LIMMAT_COMMIT, which the review runner sets.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("PATCHGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("commit", "PATCHGATE_COMMIT", "LIMMAT_COMMIT"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("notes-object", "PATCHGATE_NOTES_OBJECT", "LIMMAT_NOTES_OBJECT"); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return v, nil
}

func loadSettings(cmd *cobra.Command, args []string) (settings, error) {
	v, err := newViper(cmd)
	if err != nil {
		return settings{}, clierr.Wrap(clierr.ExitUsage, "binding configuration", err)
	}

	s := settings{
		Commit:      v.GetString("commit"),
		NotesObject: v.GetString("notes-object"),
		Repo:        v.GetString("repo"),
		Backend:     v.GetString("backend"),
		NotesRef:    v.GetString("notes-ref"),
		Checkpatch:  v.GetString("checkpatch"),
		Policy:      v.GetString("policy"),
		StateDir:    v.GetString("state-dir"),
		StrictNotes: v.GetBool("strict-notes"),
		Verbose:     v.GetBool("verbose"),
	}
	if len(args) > 0 {
		s.Commit = args[0]
	}
	if s.Repo == "" {
		s.Repo = "."
	}
	return s, nil
}

// optionalCommitArg accepts at most one positional commit; extra arguments are a usage error.
func optionalCommitArg(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return clierr.Wrap(clierr.ExitUsage, "invalid arguments", err)
	}
	return nil
}

// resolve anchors a relative path at the repo directory.
func (s settings) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Repo, path)
}

func (s settings) loadPolicy() (*policy.Policy, error) {
	p, err := policy.LoadOptional(s.resolve(s.Policy))
	if err != nil {
		return nil, clierr.Wrapf(clierr.ExitUsage, err, "loading policy %s", s.Policy)
	}
	return p, nil
}

func (s settings) openRepository() (vcs.Repository, error) {
	switch s.Backend {
	case backendGit:
		return vcs.NewGitCLI(s.Repo, s.NotesRef), nil
	case backendGoGit:
		repo, err := vcs.OpenGoGit(s.Repo, s.NotesRef)
		if err != nil {
			return nil, clierr.Wrapf(clierr.ExitResolution, err, "opening repository %s", s.Repo)
		}
		return repo, nil
	default:
		return nil, clierr.Newf(clierr.ExitUsage, "invalid backend: %s (must be '%s' or '%s')", s.Backend, backendGit, backendGoGit)
	}
}

// setup builds the runner and run context for cmd. Every input is read here, once.
func setup(cmd *cobra.Command, args []string) (*runner.Runner, runner.RunContext, *zap.SugaredLogger, error) {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return nil, runner.RunContext{}, nil, err
	}
	log := logging.New(cmd.ErrOrStderr(), logging.Config{Verbose: s.Verbose})

	p, err := s.loadPolicy()
	if err != nil {
		return nil, runner.RunContext{}, log, err
	}

	rc, err := runner.NewRunContext(s.Commit, s.NotesObject, s.Repo, p)
	if err != nil {
		return nil, runner.RunContext{}, log, clierr.Wrap(clierr.ExitUsage, "reading process context", err)
	}

	repo, err := s.openRepository()
	if err != nil {
		return nil, runner.RunContext{}, log, err
	}

	lint := linter.New(s.Checkpatch, s.Repo)
	lint.Stdout = cmd.OutOrStdout()
	lint.Stderr = cmd.ErrOrStderr()

	deps := &runner.Deps{
		Repo:        repo,
		Linter:      lint,
		Policy:      p,
		Log:         log,
		StrictNotes: s.StrictNotes,
	}
	if s.StateDir != "" {
		deps.Store = runner.NewStateStore(s.resolve(s.StateDir))
	}
	return runner.NewRunner(deps), rc, log, nil
}

// exitError attaches the exit code for err's class.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var (
		exitErr   *clierr.ExitError
		lintErr   *linter.Error
		resErr    *vcs.ResolutionError
		lookupErr *notes.LookupError
		rejected  *runner.NotesRejectedError
	)
	switch {
	case errors.As(err, &exitErr):
		return err
	case errors.As(err, &lintErr):
		return clierr.Wrap(clierr.ExitFindings, "check failed", err)
	case errors.As(err, &resErr):
		return clierr.Wrap(clierr.ExitResolution, "fatal", err)
	case errors.As(err, &lookupErr):
		return clierr.Wrap(clierr.ExitNotes, "fatal", err)
	case errors.As(err, &rejected):
		return clierr.Wrap(clierr.ExitUsage, "notes rejected", err)
	default:
		return err
	}
}

func writeLine(cmd *cobra.Command, format string, args ...any) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
