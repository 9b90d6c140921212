package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/patchgate/internal/testutil/golden"
)

func TestExplain_TextGolden(t *testing.T) {
	dir := kernelTree(t, "1")
	runGit(t, dir, "notes", "--ref=limmat", "add", "-m", "checkpatch-ignore=FOO, BAR\nfoo=1", "HEAD")

	for _, backend := range []string{backendGit, backendGoGit} {
		t.Run(backend, func(t *testing.T) {
			out, _, err := execute(t, "explain", "--repo", dir, "--backend", backend, "HEAD")
			require.NoError(t, err)
			golden.Assert(t, golden.TestdataDir(t), "explain_text", out)
		})
	}
}

func TestExplain_ExemptGolden(t *testing.T) {
	dir := kernelTree(t, "1")
	runGit(t, dir, "commit", "--allow-empty", "-m", "cover: series\n\n--- b4-submit-tracking ---\n{}")

	out, _, err := execute(t, "explain", "--repo", dir, "HEAD")
	require.NoError(t, err)
	golden.Assert(t, golden.TestdataDir(t), "explain_exempt", out)
}

func TestExplain_JSON(t *testing.T) {
	dir := kernelTree(t, "1")

	out, _, err := execute(t, "explain", "--repo", dir, "--format", "json", "HEAD")
	require.NoError(t, err)

	var report explainReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "proceed", report.Decision)
	assert.False(t, report.Note)
	assert.Contains(t, report.Ignore, "GERRIT_CHANGE_ID")
	assert.Empty(t, report.Warnings)
}

func TestExplain_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "explain", "--format", "yaml", "HEAD")
	assert.ErrorContains(t, err, "invalid format")
}
