package repo

import (
	"errors"
	"fmt"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/odvcencio/objscope/pkg/object"
)

// FilterUnreachable returns the candidates whose NewOID is not reachable
// from HEAD or any ref of the repository at r.RootDir. Unlike the loose
// object reader it goes through go-git, so packed objects and packed refs
// are followed. Candidate order is preserved.
func (r *Repo) FilterUnreachable(candidates []ReflogEntry) ([]ReflogEntry, error) {
	reachable, err := r.ReachableCommits()
	if err != nil {
		return nil, err
	}
	out := make([]ReflogEntry, 0, len(candidates))
	for _, c := range candidates {
		if c.NewOID.IsZero() {
			continue
		}
		if _, ok := reachable[c.NewOID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ReachableCommits returns every commit reachable from HEAD and from all
// refs. Annotated tags are peeled; refs to non-commits are skipped.
func (r *Repo) ReachableCommits() (map[object.OID]struct{}, error) {
	g, err := gitlib.PlainOpen(r.RootDir)
	if err != nil {
		return nil, fmt.Errorf("reachable commits: open %s: %w", r.RootDir, err)
	}

	var roots []plumbing.Hash
	if head, err := g.Head(); err == nil {
		roots = append(roots, head.Hash())
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, fmt.Errorf("reachable commits: head: %w", err)
	}

	refs, err := g.References()
	if err != nil {
		return nil, fmt.Errorf("reachable commits: refs: %w", err)
	}
	defer refs.Close()
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		if h, ok := peelToCommit(g, ref.Hash()); ok {
			roots = append(roots, h)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reachable commits: refs: %w", err)
	}

	out := make(map[object.OID]struct{})
	stack := append([]plumbing.Hash(nil), roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		oid := object.OID(h.String())
		if _, ok := out[oid]; ok {
			continue
		}
		c, err := g.CommitObject(h)
		if err != nil {
			// Shallow or partially missing history ends the walk here.
			continue
		}
		out[oid] = struct{}{}
		stack = append(stack, c.ParentHashes...)
	}
	return out, nil
}

func peelToCommit(g *gitlib.Repository, h plumbing.Hash) (plumbing.Hash, bool) {
	if h == plumbing.ZeroHash {
		return plumbing.ZeroHash, false
	}
	if _, err := g.CommitObject(h); err == nil {
		return h, true
	}
	cur := h
	for i := 0; i < 8; i++ {
		tag, err := g.TagObject(cur)
		if err != nil {
			return plumbing.ZeroHash, false
		}
		switch tag.TargetType {
		case plumbing.CommitObject:
			return tag.Target, true
		case plumbing.TagObject:
			cur = tag.Target
		default:
			return plumbing.ZeroHash, false
		}
	}
	return plumbing.ZeroHash, false
}
