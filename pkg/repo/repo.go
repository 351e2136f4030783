package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/objscope/pkg/object"
)

// Repo represents a Git repository opened for reading.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // .git/ directory
	Store   *object.Store // loose object reader
}

// At returns a Repo for root without checking that root/.git exists.
// Reads against a missing directory behave like reads of absent files.
func At(root string) *Repo {
	gitDir := filepath.Join(root, ".git")
	return &Repo{
		RootDir: root,
		GitDir:  gitDir,
		Store:   object.NewStore(gitDir),
	}
}

// Open searches upward from path for a .git/ directory and opens the
// repository. Returns an error if no .git/ directory is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		info, err := os.Stat(filepath.Join(cur, ".git"))
		if err == nil && info.IsDir() {
			return At(cur), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a git repository (or any parent up to /): %s", abs)
		}
		cur = parent
	}
}

// DecodeObject decodes the loose object oid. See object.Store.Decode for
// the error contract.
func (r *Repo) DecodeObject(oid object.OID) (*object.Object, error) {
	return r.Store.Decode(oid)
}
