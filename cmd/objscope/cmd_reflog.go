package main

import (
	"fmt"

	"github.com/odvcencio/objscope/pkg/repo"
	"github.com/spf13/cobra"
)

func newReflogCmd() *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reflog [ref]",
		Short: "Show ref update history, most recent first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Reflog.Limit
			}

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			entries, err := r.ReadReflog(ref, limit)
			if err != nil {
				return err
			}
			return printEntries(cmd, entries, asJSON)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func printEntries(cmd *cobra.Command, entries []repo.ReflogEntry, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		if entries == nil {
			entries = []repo.ReflogEntry{}
		}
		return writeJSON(out, entries)
	}
	for _, e := range entries {
		fmt.Fprintln(out, formatReflogEntry(e))
	}
	return nil
}
