// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/patchgate/internal/linter"
	"github.com/bartekus/patchgate/internal/runner"
)

// NewCheckCommand returns the `patchgate check` command, the one review runners invoke.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [commit]",
		Short: "Run checkpatch on a commit unless policy exempts it",
		Long: `Check resolves the commit (argument, --commit or $LIMMAT_COMMIT), skips it if it is a
release or b4 cover-letter commit, and otherwise runs checkpatch.pl with the merged ignore list.
Per-commit ignores are read from notes, e.g.:

  git notes --ref limmat edit <commit>
  checkpatch-ignore=FOO,BAR

Exit status is 0 when the commit is exempt or clean and non-zero otherwise.`,
		Args: optionalCommitArg,
		RunE: runCheck,
	}

	addRunFlags(cmd)
	cmd.Flags().String("checkpatch", linter.DefaultScript, "path to checkpatch.pl, relative to --repo")
	cmd.Flags().String("state-dir", "", "record outcomes in this directory (disabled when empty)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	r, rc, log, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	out, err := r.Run(cmd.Context(), rc)
	if err != nil {
		return exitError(err)
	}

	if out.Status == runner.StatusExempt {
		return nil
	}
	log.Infow("checkpatch passed", "commit", out.Commit)
	return nil
}
