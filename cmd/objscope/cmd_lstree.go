package main

import (
	"fmt"

	"github.com/odvcencio/objscope/pkg/object"
	"github.com/odvcencio/objscope/pkg/repo"
	"github.com/spf13/cobra"
)

func newLsTreeCmd() *cobra.Command {
	var recursive, asJSON bool

	cmd := &cobra.Command{
		Use:   "ls-tree <tree-or-commit>",
		Short: "List the entries of a tree (a commit lists its root tree)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			oid, err := r.ResolveRef(args[0])
			if err != nil {
				return fmt.Errorf("ls-tree: %w", err)
			}
			obj, err := r.DecodeObject(oid)
			if err != nil {
				return fmt.Errorf("ls-tree: %w", err)
			}
			if obj.Kind == object.KindCommit {
				obj, err = r.DecodeObject(obj.TreeOID())
				if err != nil {
					return fmt.Errorf("ls-tree: root tree: %w", err)
				}
			}
			if obj.Kind != object.KindTree {
				return fmt.Errorf("ls-tree: %s is a %s, not a tree", oid, obj.Kind)
			}

			entries := obj.Entries
			if recursive {
				entries = flattenTree(r, "", obj.Entries)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if entries == nil {
					entries = []object.TreeEntry{}
				}
				return writeJSON(out, entries)
			}
			fmt.Fprint(out, object.FormatTree(entries))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subtrees")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

// flattenTree expands subtrees with one fresh decode per subtree. Subtrees
// that cannot be decoded (packed, missing, corrupt) are listed as-is.
func flattenTree(r *repo.Repo, prefix string, entries []object.TreeEntry) []object.TreeEntry {
	var out []object.TreeEntry
	for _, e := range entries {
		e.Path = prefix + e.Path
		if e.Kind != object.KindTree {
			out = append(out, e)
			continue
		}
		sub, ok := r.Store.Lookup(e.OID)
		if !ok || sub.Kind != object.KindTree {
			out = append(out, e)
			continue
		}
		out = append(out, flattenTree(r, e.Path+"/", sub.Entries)...)
	}
	return out
}
