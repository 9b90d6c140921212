package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore(t *testing.T) {
	store := NewStateStore(t.TempDir())

	last, err := store.ReadLastRun()
	require.NoError(t, err)
	assert.Nil(t, last)

	out := Outcome{Commit: "origin/main", Status: StatusPass, Ignore: []string{"A"}}
	require.NoError(t, store.WriteOutcome(out))

	got, err := store.ReadCommit("origin/main")
	require.NoError(t, err)
	assert.Equal(t, &out, got)

	last, err = store.ReadLastRun()
	require.NoError(t, err)
	assert.Equal(t, &out, last)

	require.NoError(t, store.Reset())
	last, err = store.ReadLastRun()
	require.NoError(t, err)
	assert.Nil(t, last)
}
