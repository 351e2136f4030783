package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/objscope/pkg/object"
	"github.com/spf13/cobra"
)

func newCatCmd() *cobra.Command {
	var showType, showSize, asJSON bool

	cmd := &cobra.Command{
		Use:   "cat <oid-or-ref>",
		Short: "Decode a loose object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}

			oid, err := r.ResolveRef(args[0])
			if err != nil {
				return fmt.Errorf("cat: %w", err)
			}
			obj, err := r.DecodeObject(oid)
			if err != nil {
				if errors.Is(err, object.ErrNotFound) {
					return fmt.Errorf("cat: object %s not found (packed objects are not read)", oid)
				}
				return fmt.Errorf("cat: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return writeJSON(out, obj)
			case showType:
				fmt.Fprintln(out, obj.Kind)
			case showSize:
				fmt.Fprintln(out, obj.Size)
			default:
				fmt.Fprint(out, obj.Content)
				if obj.Content != "" && !strings.HasSuffix(obj.Content, "\n") {
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object kind")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the declared size")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decoded object as JSON")
	cmd.MarkFlagsMutuallyExclusive("type", "size", "json")
	return cmd
}
