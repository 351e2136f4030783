package main

import (
	"github.com/odvcencio/objscope/pkg/repo"
	"github.com/spf13/cobra"
)

func newGhostsCmd() *cobra.Command {
	var limit int
	var unreachable, asJSON bool

	cmd := &cobra.Command{
		Use:   "ghosts",
		Short: "List commits HEAD has pointed at, one per commit, most recent first",
		Long: `List one reflog entry per distinct commit HEAD has pointed at.

Every such commit is a candidate: the list also contains commits that a
branch or tag still reaches. Pass --unreachable to keep only commits that
no ref reaches, which walks the full history of every ref.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("unreachable") {
				unreachable = cfg.Ghosts.Unreachable
			}

			entries, err := r.ReadHeadReflog()
			if err != nil {
				return err
			}
			ghosts := repo.FindGhosts(entries)
			if unreachable {
				ghosts, err = r.FilterUnreachable(ghosts)
				if err != nil {
					return err
				}
			}
			if limit > 0 && len(ghosts) > limit {
				ghosts = ghosts[:limit]
			}
			return printEntries(cmd, ghosts, asJSON)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum candidates to show (0 for all)")
	cmd.Flags().BoolVar(&unreachable, "unreachable", false, "drop candidates reachable from any ref")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print candidates as JSON")
	return cmd
}
