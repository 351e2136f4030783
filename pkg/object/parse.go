package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// BinaryScanLimit bounds how many leading bytes IsBinary inspects.
const BinaryScanLimit = 8000

// IsBinary reports whether data looks binary: a NUL byte within the first
// BinaryScanLimit bytes. Later NULs are not looked for.
func IsBinary(data []byte) bool {
	if len(data) > BinaryScanLimit {
		data = data[:BinaryScanLimit]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// ClassifyContent returns the display form of blob-like content: the text
// itself, or BinaryMarker when IsBinary holds.
func ClassifyContent(data []byte) (content string, binary bool) {
	if IsBinary(data) {
		return BinaryMarker, true
	}
	return string(data), false
}

// rawIDLen is the size of a binary SHA-1 id inside tree records.
const rawIDLen = 20

// ParseTree decodes tree records of the form "<mode> <path>\0<20-byte id>".
// Parsing stops at the first record that cannot be read completely; entries
// read before it are returned and no partial entry is ever emitted.
func ParseTree(data []byte) []TreeEntry {
	var entries []TreeEntry
	cur := 0
	for cur < len(data) {
		sp := bytes.IndexByte(data[cur:], ' ')
		if sp < 0 {
			break
		}
		mode := string(data[cur : cur+sp])
		pathStart := cur + sp + 1

		nul := bytes.IndexByte(data[pathStart:], 0)
		if nul < 0 {
			break
		}
		path := string(data[pathStart : pathStart+nul])
		idStart := pathStart + nul + 1

		if idStart+rawIDLen > len(data) {
			break
		}
		id := hex.EncodeToString(data[idStart : idStart+rawIDLen])

		entries = append(entries, TreeEntry{
			Mode: mode,
			Path: path,
			OID:  OID(id),
			Kind: kindForMode(mode),
		})
		cur = idStart + rawIDLen
	}
	return entries
}

func kindForMode(mode string) Kind {
	if mode == TreeModeDir || mode == TreeModeDirPadded {
		return KindTree
	}
	return KindBlob
}

// FormatTree renders entries one per line as "<mode> <kind> <oid>\t<path>",
// the listing stored as a tree object's Content.
func FormatTree(entries []TreeEntry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s %s\t%s\n", e.Mode, e.Kind, e.OID, e.Path)
	}
	return b.String()
}

// headerLines calls fn for each line of a commit or tag header, stopping at
// the blank line that starts the message.
func headerLines(text string, fn func(key, val string)) {
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			return
		}
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		fn(key, strings.TrimSpace(val))
	}
}

// ParseCommit extracts the root tree and the parents, in order, from a
// commit's header. Author, committer and signature lines are skipped.
func ParseCommit(text string) CommitInfo {
	info := CommitInfo{Parents: []OID{}}
	headerLines(text, func(key, val string) {
		switch key {
		case "tree":
			info.Tree = OID(val)
		case "parent":
			info.Parents = append(info.Parents, OID(val))
		}
	})
	return info
}

// ParseTag extracts the target and name from an annotated tag's header.
func ParseTag(text string) TagInfo {
	var info TagInfo
	headerLines(text, func(key, val string) {
		switch key {
		case "object":
			info.Target = OID(val)
		case "type":
			info.TargetKind = ParseKind(val)
		case "tag":
			info.Name = val
		}
	})
	return info
}
