package object

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Store reads loose objects from a Git object directory with the usual
// 2-character fan-out layout: objects/ab/cdef0123...
//
// A Store holds no state beyond its root and is safe for concurrent use.
type Store struct {
	root string
}

// NewStore creates a Store for the given .git directory.
func NewStore(gitDir string) *Store {
	return &Store{root: gitDir}
}

// Path returns the filesystem path of the loose object for oid, or "" when
// oid is too short to split.
func (s *Store) Path(oid OID) string {
	if len(oid) < 3 {
		return ""
	}
	return filepath.Join(s.root, "objects", string(oid[:2]), string(oid[2:]))
}

// Has reports whether a loose object file exists for oid.
func (s *Store) Has(oid OID) bool {
	if !oid.Valid() {
		return false
	}
	_, err := os.Stat(s.Path(oid))
	return err == nil
}

// Decode reads, inflates and parses the loose object named by oid.
//
// A malformed id or a missing file yields ErrNotFound. A file that is not
// zlib data yields ErrCorruptObject, and inflated data without a valid
// header yields ErrInvalidFormat. All errors are *DecodeError values.
func (s *Store) Decode(oid OID) (*Object, error) {
	if !oid.Valid() {
		return nil, &DecodeError{OID: oid, Err: fmt.Errorf("%w: malformed id", ErrNotFound)}
	}

	raw, err := os.ReadFile(s.Path(oid))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &DecodeError{OID: oid, Err: ErrNotFound}
		}
		return nil, &DecodeError{OID: oid, Err: fmt.Errorf("read: %w", err)}
	}

	buf, err := Inflate(raw)
	if err != nil {
		return nil, &DecodeError{OID: oid, Err: err}
	}
	tag, size, off, err := SplitHeader(buf)
	if err != nil {
		return nil, &DecodeError{OID: oid, Err: err}
	}
	return assemble(oid, ParseKind(tag), size, buf[off:]), nil
}

// assemble builds the Object for already-split content.
func assemble(oid OID, kind Kind, size int64, content []byte) *Object {
	obj := &Object{
		Kind:       kind,
		OID:        oid,
		Size:       size,
		ContentLen: len(content),
	}
	switch kind {
	case KindTree:
		obj.Entries = ParseTree(content)
		obj.Content = FormatTree(obj.Entries)
	case KindCommit:
		text := string(content)
		info := ParseCommit(text)
		obj.Commit = &info
		obj.Content = text
	case KindTag:
		obj.Content, obj.Binary = ClassifyContent(content)
		if !obj.Binary {
			info := ParseTag(obj.Content)
			obj.Tag = &info
		}
	default:
		obj.Content, obj.Binary = ClassifyContent(content)
	}
	return obj
}

// Lookup decodes oid and reports only whether an object was produced.
// Failures other than a missing object are logged as warnings; a missing
// object is routine and logged at debug level.
func (s *Store) Lookup(oid OID) (*Object, bool) {
	obj, err := s.Decode(oid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Debug("object not found", slog.String("oid", string(oid)))
		} else {
			slog.Warn("could not decode object",
				slog.String("oid", string(oid)),
				slog.Any("error", err),
			)
		}
		return nil, false
	}
	return obj, true
}
