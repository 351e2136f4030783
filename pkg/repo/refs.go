package repo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/objscope/pkg/object"
)

// ErrRefNotFound is returned by ResolveRef when no loose or packed ref
// matches the name.
var ErrRefNotFound = errors.New("ref not found")

const maxSymrefDepth = 5

// ResolveRef turns name into an object id. A full object id is returned
// as-is. Otherwise name is tried as given, then under refs/, refs/tags/ and
// refs/heads/, in the order git uses. Symbolic refs are followed.
func (r *Repo) ResolveRef(name string) (object.OID, error) {
	name = strings.TrimSpace(name)
	if oid := object.OID(strings.ToLower(name)); oid.Valid() {
		return oid, nil
	}
	if name == "" {
		return "", fmt.Errorf("resolve ref: empty name")
	}
	return r.resolveRef(name, 0)
}

func (r *Repo) resolveRef(name string, depth int) (object.OID, error) {
	if depth > maxSymrefDepth {
		return "", fmt.Errorf("resolve ref %s: symbolic ref loop", name)
	}

	var packed map[string]object.OID
	for _, full := range refCandidates(name) {
		data, err := os.ReadFile(filepath.Join(r.GitDir, filepath.FromSlash(full)))
		if err == nil {
			value := strings.TrimSpace(string(data))
			if target, ok := strings.CutPrefix(value, "ref: "); ok {
				return r.resolveRef(strings.TrimSpace(target), depth+1)
			}
			oid := object.OID(value)
			if !oid.Valid() {
				return "", fmt.Errorf("resolve ref %s: %q is not an object id", full, value)
			}
			return oid, nil
		}
		if !os.IsNotExist(err) && !isDirErr(err) {
			return "", fmt.Errorf("resolve ref %s: %w", full, err)
		}

		if packed == nil {
			packed, err = r.packedRefs()
			if err != nil {
				return "", err
			}
		}
		if oid, ok := packed[full]; ok {
			return oid, nil
		}
	}
	return "", fmt.Errorf("resolve ref %s: %w", name, ErrRefNotFound)
}

func refCandidates(name string) []string {
	if name == "HEAD" || strings.HasPrefix(name, "refs/") {
		return []string{name}
	}
	return []string{
		name,
		"refs/" + name,
		"refs/tags/" + name,
		"refs/heads/" + name,
		"refs/remotes/" + name,
	}
}

// packedRefs reads .git/packed-refs. Peeled lines ("^<oid>") and comments
// are skipped. A missing file yields an empty map.
func (r *Repo) packedRefs() (map[string]object.OID, error) {
	refs := make(map[string]object.OID)
	f, err := os.Open(filepath.Join(r.GitDir, "packed-refs"))
	if err != nil {
		if os.IsNotExist(err) {
			return refs, nil
		}
		return nil, fmt.Errorf("read packed-refs: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '^' {
			continue
		}
		oid, ref, ok := strings.Cut(line, " ")
		if !ok || !object.OID(oid).Valid() {
			continue
		}
		refs[strings.TrimSpace(ref)] = object.OID(oid)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read packed-refs: %w", err)
	}
	return refs, nil
}

// isDirErr reports whether err came from reading a directory as a file,
// which happens when a short name matches a ref namespace like "heads".
func isDirErr(err error) bool {
	var pathErr *os.PathError
	if !errors.As(err, &pathErr) {
		return false
	}
	info, statErr := os.Stat(pathErr.Path)
	return statErr == nil && info.IsDir()
}
