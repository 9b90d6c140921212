// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/patchgate/cmd/patchgate/internal/clierr"
	"github.com/bartekus/patchgate/internal/runner"
)

// explainReport is the JSON form of `patchgate explain`.
type explainReport struct {
	Commit     string   `json:"commit"`
	Author     string   `json:"author"`
	Decision   string   `json:"decision"`
	Reason     string   `json:"reason,omitempty"`
	Restricted bool     `json:"restricted"`
	Note       bool     `json:"note"`
	Ignore     []string `json:"ignore"`
	Warnings   []string `json:"warnings"`
}

// NewExplainCommand returns the `patchgate explain` command.
func NewExplainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [commit]",
		Short: "Show the policy decision for a commit without running checkpatch",
		Long:  "Explain evaluates exemption rules and merges the ignore lists exactly like check, then prints the result instead of running checkpatch. Useful after editing a commit note.",
		Args:  optionalCommitArg,
		RunE:  runExplain,
	}

	addRunFlags(cmd)
	cmd.Flags().String("format", "text", "Output format: text (default) or json")

	return cmd
}

func runExplain(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag != "text" && formatFlag != "json" {
		return clierr.Newf(clierr.ExitUsage, "invalid format: %s (must be 'text' or 'json')", formatFlag)
	}

	r, rc, log, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ev, err := r.Evaluate(cmd.Context(), rc)
	if err != nil {
		return exitError(err)
	}
	report := buildExplainReport(rc, ev)

	switch formatFlag {
	case "json":
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		jsonData = append(jsonData, '\n')
		if _, err := cmd.OutOrStdout().Write(jsonData); err != nil {
			return fmt.Errorf("writing JSON output: %w", err)
		}
		return nil
	default:
		if _, err := cmd.OutOrStdout().Write([]byte(formatExplainText(report))); err != nil {
			return fmt.Errorf("writing text output: %w", err)
		}
		return nil
	}
}

func buildExplainReport(rc runner.RunContext, ev runner.Evaluation) explainReport {
	report := explainReport{
		Commit:     rc.Commit,
		Author:     ev.Metadata.Author,
		Decision:   string(ev.Decision.Kind),
		Reason:     ev.Decision.Reason,
		Restricted: rc.Restricted,
		Note:       ev.Note.Present,
		Ignore:     []string{},
		Warnings:   []string{},
	}
	if ev.Decision.Suppress != nil {
		report.Ignore = ev.Decision.Suppress.Items()
	}
	for _, w := range ev.Warnings {
		report.Warnings = append(report.Warnings, w.String())
	}
	return report
}

func formatExplainText(r explainReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "commit:     %s\n", r.Commit)
	fmt.Fprintf(&b, "author:     %s\n", r.Author)
	fmt.Fprintf(&b, "decision:   %s\n", r.Decision)
	if r.Reason != "" {
		fmt.Fprintf(&b, "reason:     %s\n", r.Reason)
		return b.String()
	}
	fmt.Fprintf(&b, "restricted: %t\n", r.Restricted)
	fmt.Fprintf(&b, "note:       %t\n", r.Note)
	b.WriteString("ignore:\n")
	for _, t := range r.Ignore {
		fmt.Fprintf(&b, "  - %s\n", t)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("warnings:\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}
