// Package objecttest writes loose objects and reflogs for tests.
package objecttest

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/odvcencio/objscope/pkg/object"
)

// Envelope returns the uncompressed "<type> <len>\0<data>" form.
func Envelope(tag string, data []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", tag, len(data))
	out := make([]byte, 0, len(header)+len(data))
	out = append(out, header...)
	return append(out, data...)
}

// Deflate zlib-compresses data the way Git writes loose objects.
func Deflate(t testing.TB, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

// HashOf returns the SHA-1 id Git would assign to the envelope.
func HashOf(tag string, data []byte) object.OID {
	sum := sha1.Sum(Envelope(tag, data))
	return object.OID(hex.EncodeToString(sum[:]))
}

// NewRepo creates root/.git/objects and returns the .git directory.
func NewRepo(t testing.TB, root string) string {
	t.Helper()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(filepath.Join(gitDir, "objects"), 0o755); err != nil {
		t.Fatalf("mkdir objects: %v", err)
	}
	return gitDir
}

// WriteRaw stores raw bytes as the loose object file for oid.
func WriteRaw(t testing.TB, gitDir string, oid object.OID, raw []byte) {
	t.Helper()
	dir := filepath.Join(gitDir, "objects", string(oid[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, string(oid[2:])), raw, 0o444); err != nil {
		t.Fatalf("write object %s: %v", oid, err)
	}
}

// WriteObject compresses and stores an object under its SHA-1 id and
// returns that id.
func WriteObject(t testing.TB, gitDir, tag string, data []byte) object.OID {
	t.Helper()
	oid := HashOf(tag, data)
	WriteRaw(t, gitDir, oid, Deflate(t, Envelope(tag, data)))
	return oid
}

// TreeRecord encodes one "<mode> <path>\0<20 raw bytes>" tree record.
func TreeRecord(t testing.TB, mode, path string, oid object.OID) []byte {
	t.Helper()
	raw, err := hex.DecodeString(string(oid))
	if err != nil || len(raw) != 20 {
		t.Fatalf("tree record oid %q: not a 40-char hex id", oid)
	}
	rec := make([]byte, 0, len(mode)+len(path)+22)
	rec = append(rec, mode...)
	rec = append(rec, ' ')
	rec = append(rec, path...)
	rec = append(rec, 0)
	return append(rec, raw...)
}

// ReflogLine formats a reflog line as Git writes it.
func ReflogLine(oldOID, newOID object.OID, name string, ts int64, action, msg string) string {
	return fmt.Sprintf("%s %s %s <%s@example.com> %d +0000\t%s: %s",
		oldOID, newOID, name, strings.ToLower(name), ts, action, msg)
}

// WriteReflog writes lines to gitDir/logs/<ref>, oldest first.
func WriteReflog(t testing.TB, gitDir, ref string, lines ...string) {
	t.Helper()
	path := filepath.Join(gitDir, "logs", filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write reflog: %v", err)
	}
}
