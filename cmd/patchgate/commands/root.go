// SPDX-License-Identifier: AGPL-3.0-or-later

/*
patchgate - a per-commit policy filter in front of checkpatch.pl.
It decides whether a commit is checked at all, merges the ignore lists that apply to it, and runs checkpatch with them on behalf of a continuous-review runner.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the patchgate root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("PATCHGATE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "patchgate",
		Short:         "patchgate - checkpatch policy filter for review runners",
		Long:          "patchgate decides per commit whether and how to run checkpatch.pl, honouring per-commit overrides stored in git notes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().String("repo", ".", "kernel tree to operate in")
	cmd.PersistentFlags().String("policy", defaultPolicyFile, "policy file (used only if it exists)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of patchgate",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "patchgate version %s\n", version)
		},
	})

	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewExplainCommand())
	cmd.AddCommand(NewReportCommand())

	return cmd
}
