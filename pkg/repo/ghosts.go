package repo

import "github.com/odvcencio/objscope/pkg/object"

// FindGhosts returns one entry per distinct NewOID, keeping the first
// occurrence in the order given. With most-recent-first input (as
// ReadReflog returns) that is the latest move of HEAD onto each commit.
//
// The result is a list of candidates: every commit HEAD ever pointed at,
// whether or not a ref still reaches it. FilterUnreachable narrows it.
func FindGhosts(entries []ReflogEntry) []ReflogEntry {
	seen := make(map[object.OID]struct{}, len(entries))
	out := make([]ReflogEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.NewOID]; ok {
			continue
		}
		seen[e.NewOID] = struct{}{}
		out = append(out, e)
	}
	return out
}
