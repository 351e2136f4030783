package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gitobject "github.com/go-git/go-git/v5/plumbing/object"

	"github.com/odvcencio/objscope/pkg/object"
	"github.com/odvcencio/objscope/pkg/object/objecttest"
)

// gitCommit writes name=content in the worktree and commits it with go-git.
func gitCommit(t *testing.T, g *gitlib.Repository, dir, name, content, msg string, when int64) object.OID {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	wt, err := g.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
	sig := &gitobject.Signature{Name: "Tester", Email: "tester@example.com", When: time.Unix(when, 0)}
	h, err := wt.Commit(msg, &gitlib.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		t.Fatalf("Commit(%q): %v", msg, err)
	}
	return object.OID(h.String())
}

func initGitRepo(t *testing.T) (*gitlib.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	g, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	return g, dir
}

func TestDecodeObjectReadsGoGitCommits(t *testing.T) {
	g, dir := initGitRepo(t)
	first := gitCommit(t, g, dir, "a.txt", "alpha\n", "first", 100)
	second := gitCommit(t, g, dir, "b.txt", "beta\n", "second", 200)

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	obj, err := r.DecodeObject(second)
	if err != nil {
		t.Fatalf("DecodeObject(%s): %v", second, err)
	}
	if obj.Kind != object.KindCommit {
		t.Fatalf("Kind = %v, want commit", obj.Kind)
	}
	if ps := obj.Parents(); len(ps) != 1 || ps[0] != first {
		t.Fatalf("Parents = %v, want [%s]", ps, first)
	}

	gc, err := g.CommitObject(plumbing.NewHash(string(second)))
	if err != nil {
		t.Fatalf("go-git CommitObject: %v", err)
	}
	if obj.TreeOID() != object.OID(gc.TreeHash.String()) {
		t.Fatalf("TreeOID = %s, want %s", obj.TreeOID(), gc.TreeHash)
	}

	tree, err := r.DecodeObject(obj.TreeOID())
	if err != nil {
		t.Fatalf("DecodeObject(tree): %v", err)
	}
	if len(tree.Entries) != 2 || tree.Entries[0].Path != "a.txt" || tree.Entries[1].Path != "b.txt" {
		t.Fatalf("tree entries = %#v, want a.txt and b.txt", tree.Entries)
	}

	blob, err := r.DecodeObject(tree.Entries[1].OID)
	if err != nil {
		t.Fatalf("DecodeObject(blob): %v", err)
	}
	if blob.Kind != object.KindBlob || blob.Content != "beta\n" {
		t.Fatalf("blob = %#v, want beta", blob)
	}
}

func TestOpenSearchesUpward(t *testing.T) {
	_, dir := initGitRepo(t)
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	r, err := Open(nested)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if r.RootDir != want {
		t.Fatalf("RootDir = %q, want %q", r.RootDir, want)
	}
	if r.GitDir != filepath.Join(want, ".git") {
		t.Fatalf("GitDir = %q", r.GitDir)
	}
}

func TestOpenOutsideRepository(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected error opening a directory without .git")
	}
}

func TestFilterUnreachable(t *testing.T) {
	g, dir := initGitRepo(t)
	first := gitCommit(t, g, dir, "a.txt", "alpha\n", "first", 100)
	second := gitCommit(t, g, dir, "a.txt", "alpha 2\n", "second", 200)

	r := At(dir)

	// A commit HEAD once pointed at that no ref reaches any more.
	dangling := objecttest.WriteObject(t, r.GitDir, "commit", []byte(fmt.Sprintf(
		"tree %s\nparent %s\nauthor Tester <tester@example.com> 300 +0000\ncommitter Tester <tester@example.com> 300 +0000\n\nlost\n",
		mustTree(t, r, second), second)))

	objecttest.WriteReflog(t, r.GitDir, "HEAD",
		objecttest.ReflogLine(object.ZeroOID, first, "Tester", 100, "commit (initial)", "first"),
		objecttest.ReflogLine(first, second, "Tester", 200, "commit", "second"),
		objecttest.ReflogLine(second, dangling, "Tester", 300, "commit", "lost"),
		objecttest.ReflogLine(dangling, second, "Tester", 400, "reset", "moving to HEAD~1"),
	)

	entries, err := r.ReadHeadReflog()
	if err != nil {
		t.Fatalf("ReadHeadReflog: %v", err)
	}
	ghosts := FindGhosts(entries)
	if len(ghosts) != 3 {
		t.Fatalf("ghost candidates = %d, want 3", len(ghosts))
	}

	got, err := r.FilterUnreachable(ghosts)
	if err != nil {
		t.Fatalf("FilterUnreachable: %v", err)
	}
	if len(got) != 1 || got[0].NewOID != dangling {
		t.Fatalf("unreachable = %#v, want only %s", got, dangling)
	}
}

func TestFilterUnreachableNotARepository(t *testing.T) {
	r := At(t.TempDir())
	if _, err := r.FilterUnreachable(nil); err == nil {
		t.Fatal("expected error without a repository")
	}
}

func mustTree(t *testing.T, r *Repo, commit object.OID) object.OID {
	t.Helper()
	obj, err := r.DecodeObject(commit)
	if err != nil {
		t.Fatalf("DecodeObject(%s): %v", commit, err)
	}
	return obj.TreeOID()
}
