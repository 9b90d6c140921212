// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/patchgate/internal/runner"
)

// NewReportCommand returns the `patchgate report` command.
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [commit]",
		Short: "Show the last recorded outcome",
		Long:  "Report prints the outcome recorded by `patchgate check --state-dir`, for the last run or for a given commit.",
		Args:  optionalCommitArg,
		RunE:  runReport,
	}

	cmd.Flags().Bool("json", false, "Output results in JSON")
	cmd.Flags().Bool("reset", false, "Clear recorded outcomes")
	cmd.Flags().String("state-dir", defaultStateDir, "Directory outcomes are recorded in")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}
	store := runner.NewStateStore(s.resolve(s.StateDir))

	if reset, _ := cmd.Flags().GetBool("reset"); reset {
		return store.Reset()
	}

	var out *runner.Outcome
	if len(args) > 0 {
		out, err = store.ReadCommit(args[0])
	} else {
		out, err = store.ReadLastRun()
	}
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	if out == nil {
		return writeLine(cmd, "No run state found.")
	}

	if err := writeLine(cmd, "Commit: %s", out.Commit); err != nil {
		return err
	}
	if err := writeLine(cmd, "Status: %s", out.Status); err != nil {
		return err
	}
	if out.Reason != "" {
		if err := writeLine(cmd, "Reason: %s", out.Reason); err != nil {
			return err
		}
	}
	if out.Note != "" {
		if err := writeLine(cmd, "Note: %s", out.Note); err != nil {
			return err
		}
	}
	for _, w := range out.Warnings {
		if err := writeLine(cmd, "Warning: %s", w); err != nil {
			return err
		}
	}
	if len(out.Ignore) > 0 {
		return writeLine(cmd, "Ignored: %s", strings.Join(out.Ignore, ","))
	}
	return nil
}
