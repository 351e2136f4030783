package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/odvcencio/objscope/pkg/config"
	"github.com/odvcencio/objscope/pkg/repo"
	"github.com/spf13/cobra"
)

// flagValue returns the value of a local or inherited flag, or "" when the
// command was built without it (as in tests running a subcommand alone).
func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	path := strings.TrimSpace(flagValue(cmd, "repo"))
	if path == "" {
		path = "."
	}
	return repo.Open(path)
}

// loadConfig reads --config, or the repository's config file when the
// current directory is inside a repository. Outside one it returns the
// defaults so that commands can report the real error themselves.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if p := strings.TrimSpace(flagValue(cmd, "config")); p != "" {
		return config.Load(p)
	}
	r, err := openRepo(cmd)
	if err != nil {
		return config.Load(config.Path(""))
	}
	return config.Load(config.Path(r.GitDir))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatReflogEntry(e repo.ReflogEntry) string {
	ts := e.Time().Format(time.RFC3339)
	return fmt.Sprintf("%s %s %s: %s", e.NewOID.Short(), ts, e.Action, e.Message)
}
