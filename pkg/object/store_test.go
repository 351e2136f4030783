package object_test

import (
	"bytes"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/odvcencio/objscope/pkg/object"
	"github.com/odvcencio/objscope/pkg/object/objecttest"
)

func tempStore(t *testing.T) (*object.Store, string) {
	t.Helper()
	gitDir := objecttest.NewRepo(t, t.TempDir())
	return object.NewStore(gitDir), gitDir
}

func TestStoreDecodeRoundTripsKinds(t *testing.T) {
	s, gitDir := tempStore(t)

	tests := []struct {
		tag  string
		data string
		want object.Kind
	}{
		{"blob", "hello world\n", object.KindBlob},
		{"commit", "tree 76a74ef12f97157c91d4e7d442a8bbf37c68a4e1\n\nmsg", object.KindCommit},
		{"tag", "object 76a74ef12f97157c91d4e7d442a8bbf37c68a4e1\ntype commit\ntag v1\n\nrelease", object.KindTag},
		{"entity", "opaque payload", object.KindUnknown},
		{"", "empty tag", object.KindUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.tag, func(t *testing.T) {
			oid := objecttest.WriteObject(t, gitDir, tc.tag, []byte(tc.data))

			obj, err := s.Decode(oid)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if obj.Kind != tc.want {
				t.Errorf("Kind = %v, want %v", obj.Kind, tc.want)
			}
			if obj.OID != oid {
				t.Errorf("OID = %q, want %q", obj.OID, oid)
			}
			if obj.Size != int64(len(tc.data)) {
				t.Errorf("Size = %d, want %d", obj.Size, len(tc.data))
			}
			if obj.Content != tc.data {
				t.Errorf("Content = %q, want %q", obj.Content, tc.data)
			}
		})
	}
}

func TestStoreDecodeCommit(t *testing.T) {
	s, gitDir := tempStore(t)
	content := "tree 76a74ef12f97157c91d4e7d442a8bbf37c68a4e1\n" +
		"parent a2c3b4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1\n" +
		"\n" +
		"Initial commit"
	oid := objecttest.WriteObject(t, gitDir, "commit", []byte(content))

	obj, err := s.Decode(oid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if obj.Kind != object.KindCommit {
		t.Fatalf("Kind = %v, want commit", obj.Kind)
	}
	if obj.TreeOID() != "76a74ef12f97157c91d4e7d442a8bbf37c68a4e1" {
		t.Fatalf("TreeOID = %q", obj.TreeOID())
	}
	want := []object.OID{"a2c3b4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1"}
	if !reflect.DeepEqual(obj.Parents(), want) {
		t.Fatalf("Parents = %v, want %v", obj.Parents(), want)
	}
	if obj.Entries != nil || obj.Tag != nil {
		t.Fatal("commit carries tree or tag payload")
	}
}

func TestStoreDecodeTree(t *testing.T) {
	s, gitDir := tempStore(t)

	blob := objecttest.WriteObject(t, gitDir, "blob", []byte("package main\n"))
	sub := objecttest.WriteObject(t, gitDir, "tree", objecttest.TreeRecord(t, "100644", "main.go", blob))

	var data []byte
	data = append(data, objecttest.TreeRecord(t, "100644", "go.mod", blob)...)
	data = append(data, objecttest.TreeRecord(t, "40000", "cmd", sub)...)
	oid := objecttest.WriteObject(t, gitDir, "tree", data)

	obj, err := s.Decode(oid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if obj.Kind != object.KindTree {
		t.Fatalf("Kind = %v, want tree", obj.Kind)
	}
	if len(obj.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(obj.Entries))
	}
	if obj.Entries[1].Kind != object.KindTree || obj.Entries[1].OID != sub {
		t.Fatalf("Entries[1] = %#v, want subtree %s", obj.Entries[1], sub)
	}
	if obj.Content != object.FormatTree(obj.Entries) {
		t.Fatalf("Content = %q, want tree listing", obj.Content)
	}
	if obj.Parents() != nil || obj.TreeOID() != "" {
		t.Fatal("tree carries commit payload")
	}

	// Entries are plain ids; following one is a fresh decode.
	child, err := s.Decode(obj.Entries[1].OID)
	if err != nil {
		t.Fatalf("Decode child: %v", err)
	}
	if child.Kind != object.KindTree || len(child.Entries) != 1 {
		t.Fatalf("child = %#v, want one-entry tree", child)
	}
}

func TestStoreDecodeBinaryBlob(t *testing.T) {
	s, gitDir := tempStore(t)
	oid := objecttest.WriteObject(t, gitDir, "blob", []byte{0x89, 'P', 'N', 'G', 0x00, 0x01})

	obj, err := s.Decode(oid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !obj.Binary || obj.Content != object.BinaryMarker {
		t.Fatalf("Content = %q, Binary = %v; want binary marker", obj.Content, obj.Binary)
	}
	if obj.ContentLen != 6 {
		t.Fatalf("ContentLen = %d, want 6", obj.ContentLen)
	}
}

func TestStoreDecodeNotFound(t *testing.T) {
	s, _ := tempStore(t)

	for _, oid := range []object.OID{
		"c0ffee0123456789abcdef0123456789abcdef01",
		"nonexistentoid",
		"",
		"../../../../etc/passwd",
	} {
		obj, err := s.Decode(oid)
		if obj != nil {
			t.Fatalf("Decode(%q) returned object", oid)
		}
		if !errors.Is(err, object.ErrNotFound) {
			t.Fatalf("Decode(%q) err = %v, want ErrNotFound", oid, err)
		}
		if _, ok := s.Lookup(oid); ok {
			t.Fatalf("Lookup(%q) ok = true", oid)
		}
		if s.Has(oid) {
			t.Fatalf("Has(%q) = true", oid)
		}
	}
}

func TestStoreDecodeCorrupt(t *testing.T) {
	s, gitDir := tempStore(t)
	oid := object.OID("c0ffee0123456789abcdef0123456789abcdef01")
	objecttest.WriteRaw(t, gitDir, oid, []byte("definitely not zlib"))

	_, err := s.Decode(oid)
	if !errors.Is(err, object.ErrCorruptObject) {
		t.Fatalf("err = %v, want ErrCorruptObject", err)
	}
	if errors.Is(err, object.ErrNotFound) {
		t.Fatal("corrupt object reported as not found")
	}
	var de *object.DecodeError
	if !errors.As(err, &de) || de.OID != oid {
		t.Fatalf("err = %#v, want *DecodeError for %s", err, oid)
	}
	if _, ok := s.Lookup(oid); ok {
		t.Fatal("Lookup of corrupt object ok = true")
	}
}

func TestStoreDecodeTruncatedStream(t *testing.T) {
	s, gitDir := tempStore(t)
	full := objecttest.Deflate(t, objecttest.Envelope("blob", bytes.Repeat([]byte("abc"), 100)))
	oid := object.OID("0123456789abcdef0123456789abcdef01234567")
	objecttest.WriteRaw(t, gitDir, oid, full[:len(full)/2])

	if _, err := s.Decode(oid); !errors.Is(err, object.ErrCorruptObject) {
		t.Fatalf("err = %v, want ErrCorruptObject", err)
	}
}

func TestStoreDecodeInvalidFormat(t *testing.T) {
	s, gitDir := tempStore(t)
	oid := object.OID("0123456789abcdef0123456789abcdef01234567")
	objecttest.WriteRaw(t, gitDir, oid, objecttest.Deflate(t, []byte("no header here")))

	_, err := s.Decode(oid)
	if !errors.Is(err, object.ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestStoreDecodeDoesNotValidateDeclaredSize(t *testing.T) {
	s, gitDir := tempStore(t)
	oid := object.OID("0123456789abcdef0123456789abcdef01234567")
	objecttest.WriteRaw(t, gitDir, oid, objecttest.Deflate(t, []byte("blob 99\x00short")))

	obj, err := s.Decode(oid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if obj.Size != 99 || obj.ContentLen != 5 || obj.Content != "short" {
		t.Fatalf("obj = %#v, want declared 99, actual 5", obj)
	}
}

func TestStoreDecodeFreshValues(t *testing.T) {
	s, gitDir := tempStore(t)
	oid := objecttest.WriteObject(t, gitDir, "commit", []byte("tree 76a74ef12f97157c91d4e7d442a8bbf37c68a4e1\n\nx"))

	a, err := s.Decode(oid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, err := s.Decode(oid)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a == b || a.Commit == b.Commit {
		t.Fatal("Decode returned shared values")
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("decodes differ: %#v vs %#v", a, b)
	}
}

func TestStoreDecodeConcurrent(t *testing.T) {
	s, gitDir := tempStore(t)
	oid := objecttest.WriteObject(t, gitDir, "blob", []byte("concurrent"))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Decode(oid); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Decode: %v", err)
	}
}

func TestOIDValid(t *testing.T) {
	tests := []struct {
		oid  object.OID
		want bool
	}{
		{"76a74ef12f97157c91d4e7d442a8bbf37c68a4e1", true},
		{object.OID(bytes.Repeat([]byte("ab"), 32)), true},
		{"76A74EF12F97157C91D4E7D442A8BBF37C68A4E1", false},
		{"76a74ef", false},
		{"zz a74ef12f97157c91d4e7d442a8bbf37c68a4e1", false},
	}
	for _, tc := range tests {
		if got := tc.oid.Valid(); got != tc.want {
			t.Errorf("OID(%q).Valid() = %v, want %v", tc.oid, got, tc.want)
		}
	}
	if !object.ZeroOID.IsZero() {
		t.Error("ZeroOID.IsZero() = false")
	}
}
