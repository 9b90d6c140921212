package notes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/patchgate/internal/vcs"
)

type fakeRepo struct {
	vcs.Repository
	lookup    vcs.NoteLookup
	lookupErr error
	objects   map[string]string
	reads     int
}

func (f *fakeRepo) FindNote(context.Context, string) (vcs.NoteLookup, error) {
	return f.lookup, f.lookupErr
}

func (f *fakeRepo) ReadObject(_ context.Context, id string) (string, error) {
	f.reads++
	text, ok := f.objects[id]
	if !ok {
		return "", errors.New("fatal: Not a valid object name " + id)
	}
	return text, nil
}

func TestRead_NoNote(t *testing.T) {
	repo := &fakeRepo{lookup: vcs.NoNote()}

	note, err := Read(context.Background(), repo, "abc")
	require.NoError(t, err)
	assert.False(t, note.Present)
	assert.Zero(t, repo.reads)

	res := Parse(note)
	assert.Empty(t, res.Overrides)
	assert.Empty(t, res.Warnings)
}

func TestRead_Found(t *testing.T) {
	repo := &fakeRepo{
		lookup:  vcs.NoteFound("n1"),
		objects: map[string]string{"n1": "checkpatch-ignore=A\n"},
	}

	note, err := Read(context.Background(), repo, "abc")
	require.NoError(t, err)
	assert.Equal(t, Note{Object: "n1", Text: "checkpatch-ignore=A\n", Present: true}, note)
}

func TestRead_EmptyNoteIsPresent(t *testing.T) {
	repo := &fakeRepo{
		lookup:  vcs.NoteFound("n1"),
		objects: map[string]string{"n1": ""},
	}

	note, err := Read(context.Background(), repo, "abc")
	require.NoError(t, err)
	assert.True(t, note.Present)

	res := Parse(note)
	assert.Empty(t, res.Overrides)
	assert.Empty(t, res.Warnings)
}

func TestRead_LookupFailure(t *testing.T) {
	cause := errors.New("object store corrupt")
	repo := &fakeRepo{lookupErr: cause}

	_, err := Read(context.Background(), repo, "abc")
	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "abc", lookupErr.Ref)
	assert.ErrorIs(t, err, cause)
}

func TestRead_ObjectFailure(t *testing.T) {
	repo := &fakeRepo{lookup: vcs.NoteFound("missing"), objects: map[string]string{}}

	_, err := Read(context.Background(), repo, "abc")
	var lookupErr *LookupError
	assert.True(t, errors.As(err, &lookupErr))
}
