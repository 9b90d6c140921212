// SPDX-License-Identifier: AGPL-3.0-or-later

package vcs

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// maxNoteFanout is the deepest directory fanout searched in a notes tree.
const maxNoteFanout = 3

// GoGit implements Repository in-process with go-git, without requiring a git binary.
type GoGit struct {
	repo     *git.Repository
	notesRef plumbing.ReferenceName
}

// OpenGoGit opens the repository containing repoRoot.
func OpenGoGit(repoRoot, notesRef string) (*GoGit, error) {
	repo, err := git.PlainOpenWithOptions(repoRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", repoRoot, err)
	}
	return &GoGit{repo: repo, notesRef: notesRefName(notesRef)}, nil
}

func notesRefName(name string) plumbing.ReferenceName {
	if name == "" {
		name = DefaultNotesRef
	}
	if strings.HasPrefix(name, "refs/") {
		return plumbing.ReferenceName(name)
	}
	return plumbing.NewNoteReferenceName(name)
}

func (g *GoGit) Author(_ context.Context, ref string) (string, error) {
	c, err := g.commit(ref)
	if err != nil {
		return "", err
	}
	return c.Author.Name, nil
}

func (g *GoGit) Message(_ context.Context, ref string) (string, error) {
	c, err := g.commit(ref)
	if err != nil {
		return "", err
	}
	return c.Message, nil
}

// FindNote looks the commit hash up in the tree of the notes ref head,
// trying the flat layout first and then git's two-hex-digit fanout directories.
func (g *GoGit) FindNote(_ context.Context, ref string) (NoteLookup, error) {
	target, err := g.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return NoteLookup{}, fmt.Errorf("resolving %s: %w", ref, err)
	}

	head, err := g.repo.Reference(g.notesRef, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return NoNote(), nil
	}
	if err != nil {
		return NoteLookup{}, fmt.Errorf("reading %s: %w", g.notesRef, err)
	}

	notesCommit, err := g.repo.CommitObject(head.Hash())
	if err != nil {
		return NoteLookup{}, fmt.Errorf("reading notes commit %s: %w", head.Hash(), err)
	}
	tree, err := notesCommit.Tree()
	if err != nil {
		return NoteLookup{}, fmt.Errorf("reading notes tree: %w", err)
	}

	for _, path := range notePaths(target.String()) {
		entry, err := tree.FindEntry(path)
		if err == nil {
			return NoteFound(entry.Hash.String()), nil
		}
		if errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			continue
		}
		return NoteLookup{}, fmt.Errorf("searching notes tree for %s: %w", path, err)
	}
	return NoNote(), nil
}

func (g *GoGit) ReadObject(_ context.Context, id string) (string, error) {
	if _, err := hex.DecodeString(id); err != nil || len(id) != 40 {
		return "", fmt.Errorf("invalid object id %q", id)
	}
	blob, err := g.repo.BlobObject(plumbing.NewHash(id))
	if err != nil {
		return "", fmt.Errorf("reading object %s: %w", id, err)
	}
	r, err := blob.Reader()
	if err != nil {
		return "", fmt.Errorf("reading object %s: %w", id, err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading object %s: %w", id, err)
	}
	return string(data), nil
}

func (g *GoGit) commit(ref string) (*object.Commit, error) {
	h, err := g.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", ref, err)
	}
	c, err := g.repo.CommitObject(*h)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", h, err)
	}
	return c, nil
}

// notePaths lists the paths a note for hash may live at: "abcd...",
// "ab/cd...", "ab/cd/ef...".
func notePaths(hash string) []string {
	paths := make([]string, 0, maxNoteFanout)
	for depth := 0; depth < maxNoteFanout && 2*depth < len(hash); depth++ {
		var b strings.Builder
		for i := 0; i < depth; i++ {
			b.WriteString(hash[2*i : 2*i+2])
			b.WriteByte('/')
		}
		b.WriteString(hash[2*depth:])
		paths = append(paths, b.String())
	}
	return paths
}
