package repo

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/objscope/pkg/object"
)

// ActionUnknown labels reflog lines whose trailer has no "<action>: " prefix.
const ActionUnknown = "unknown"

// ReflogEntry is one line of a reflog.
type ReflogEntry struct {
	OldOID    object.OID `json:"oldOid"`
	NewOID    object.OID `json:"newOid"`
	Author    string     `json:"author"`
	Email     string     `json:"email,omitempty"`
	Timestamp int64      `json:"timestamp"`
	Timezone  string     `json:"timezone,omitempty"`
	Action    string     `json:"action"`
	Message   string     `json:"message"`
}

// Time returns the entry timestamp as a UTC time.
func (e ReflogEntry) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// ParseReflogLine parses one reflog line of the form
//
//	<old> <new> <name> <<email>> <timestamp> <tz>\t<action>: <message>
//
// It always returns an entry. ok is false when the line did not have that
// shape and fields had to be taken positionally; Action is then
// ActionUnknown unless an action could still be split off.
func ParseReflogLine(line string) (entry ReflogEntry, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	head, trailer, hasTab := strings.Cut(line, "\t")

	fields := strings.SplitN(head, " ", 3)
	if len(fields) > 0 {
		entry.OldOID = object.OID(fields[0])
	}
	if len(fields) > 1 {
		entry.NewOID = object.OID(fields[1])
	}
	ok = len(fields) == 3 && entry.OldOID.Valid() && entry.NewOID.Valid()

	rest := ""
	if len(fields) == 3 {
		rest = fields[2]
	}
	ident, tail, identOK := parseIdentity(rest)
	if identOK {
		entry.Author = ident.name
		entry.Email = ident.email
		entry.Timestamp = ident.when
		entry.Timezone = ident.tz
	} else {
		ok = false
	}

	if !hasTab {
		ok = false
		trailer = tail
	}

	action, msg, cut := strings.Cut(trailer, ": ")
	if !cut {
		// Git writes "action:" with nothing after it for empty messages.
		action, msg, cut = strings.Cut(trailer, ":")
		cut = cut && msg == ""
	}
	if cut && strings.TrimSpace(action) != "" {
		entry.Action = action
		entry.Message = msg
	} else {
		entry.Action = ActionUnknown
		entry.Message = trailer
		ok = false
	}
	return entry, ok
}

type identity struct {
	name  string
	email string
	when  int64
	tz    string
}

// parseIdentity reads "<name> <<email>> <timestamp> <tz>" from the start of
// s and returns whatever follows. When the email brackets are missing the
// whole of s is returned as the tail.
func parseIdentity(s string) (identity, string, bool) {
	var id identity
	lt := strings.Index(s, " <")
	if lt < 0 {
		return id, s, false
	}
	gt := strings.Index(s[lt:], ">")
	if gt < 0 {
		return id, s, false
	}
	gt += lt
	id.name = s[:lt]
	id.email = s[lt+2 : gt]

	after := strings.TrimLeft(s[gt+1:], " ")
	parts := strings.SplitN(after, " ", 3)
	if len(parts) < 2 {
		return id, after, false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return id, after, false
	}
	id.when = ts
	id.tz = parts[1]
	tail := ""
	if len(parts) == 3 {
		tail = parts[2]
	}
	return id, tail, true
}

// ParseReflog parses every non-empty line of r. Entries come back most
// recent first. Lines that do not match the expected shape still produce
// an entry; they are logged at debug level and never abort the parse.
func ParseReflog(r io.Reader) ([]ReflogEntry, error) {
	var entries []ReflogEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, ok := ParseReflogLine(line)
		if !ok {
			slog.Debug("malformed reflog line",
				slog.Int("line", lineNo),
				slog.String("text", line),
			)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse reflog: %w", err)
	}

	// Return newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// ReadReflog reads the log of ref, most recent entry first. An empty ref or
// "HEAD" reads logs/HEAD, "refs/..." is used as given, and a bare name is
// taken as a branch. A missing log yields no entries and no error. A
// positive limit truncates the result.
func (r *Repo) ReadReflog(ref string, limit int) ([]ReflogEntry, error) {
	logPath := filepath.Join(r.GitDir, "logs", filepath.FromSlash(reflogRefName(ref)))
	f, err := os.Open(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	entries, err := ParseReflog(f)
	if err != nil {
		return nil, fmt.Errorf("read reflog %s: %w", logPath, err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ReadHeadReflog reads the whole HEAD log, most recent entry first.
func (r *Repo) ReadHeadReflog() ([]ReflogEntry, error) {
	return r.ReadReflog("HEAD", 0)
}

func reflogRefName(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "HEAD" {
		return "HEAD"
	}
	if strings.HasPrefix(ref, "refs/") {
		return ref
	}
	return "refs/heads/" + ref
}
