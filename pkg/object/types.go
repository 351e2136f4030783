package object

import "strings"

// OID is a lowercase hex-encoded object id: 40 characters for SHA-1
// repositories, 64 for SHA-256 ones.
type OID string

// ZeroOID is the reflog sentinel for "ref did not exist".
const ZeroOID OID = "0000000000000000000000000000000000000000"

// Valid reports whether o is a full-length lowercase hex object id.
func (o OID) Valid() bool {
	if len(o) != 40 && len(o) != 64 {
		return false
	}
	for i := 0; i < len(o); i++ {
		c := o[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// IsZero reports whether o consists only of '0' characters.
func (o OID) IsZero() bool {
	return o != "" && strings.Trim(string(o), "0") == ""
}

// Short returns the abbreviated form used in listings.
func (o OID) Short() string {
	if len(o) > 7 {
		return string(o[:7])
	}
	return string(o)
}

// Kind identifies the kind of object stored.
type Kind int

const (
	KindUnknown Kind = iota
	KindBlob
	KindTree
	KindCommit
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindTree:
		return "tree"
	case KindCommit:
		return "commit"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name so JSON output stays readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind maps a header type tag to a Kind. Unrecognized tags map to
// KindUnknown; it never fails.
func ParseKind(tag string) Kind {
	switch tag {
	case "blob":
		return KindBlob
	case "tree":
		return KindTree
	case "commit":
		return KindCommit
	case "tag":
		return KindTag
	default:
		return KindUnknown
	}
}

const (
	// Tree mode strings as Git writes them. Older tools zero-pad the
	// directory mode, so both spellings name a subtree.
	TreeModeDir        = "40000"
	TreeModeDirPadded  = "040000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeGitlink    = "160000"
)

// BinaryMarker replaces the content of objects classified as binary.
const BinaryMarker = "<Binary Data>"

// TreeEntry is one entry in a tree object. Kind is inferred from Mode only;
// the real kind of the child needs a decode of OID.
type TreeEntry struct {
	Mode string `json:"mode"`
	Path string `json:"path"`
	OID  OID    `json:"oid"`
	Kind Kind   `json:"kind"`
}

// CommitInfo holds the references a commit header carries.
type CommitInfo struct {
	Tree    OID   `json:"tree"`
	Parents []OID `json:"parents"`
}

// TagInfo holds the header fields of an annotated tag.
type TagInfo struct {
	Target     OID    `json:"target"`
	TargetKind Kind   `json:"targetKind"`
	Name       string `json:"name"`
}

// Object is one decoded loose object. Only the payload field matching Kind
// is set: Commit for commits, Entries for trees, Tag for tags.
//
// Size is the size declared in the object header. It is not checked
// against the content length; ContentLen carries the actual length for
// callers that want to compare.
type Object struct {
	Kind       Kind   `json:"kind"`
	OID        OID    `json:"oid"`
	Size       int64  `json:"size"`
	ContentLen int    `json:"contentLength"`
	Content    string `json:"content"`
	Binary     bool   `json:"binary,omitempty"`

	Commit  *CommitInfo `json:"commit,omitempty"`
	Entries []TreeEntry `json:"entries,omitempty"`
	Tag     *TagInfo    `json:"tag,omitempty"`
}

// Parents returns the commit's parent ids, or nil for non-commits.
func (o *Object) Parents() []OID {
	if o == nil || o.Commit == nil {
		return nil
	}
	return o.Commit.Parents
}

// TreeOID returns the commit's root tree id, or "" for non-commits.
func (o *Object) TreeOID() OID {
	if o == nil || o.Commit == nil {
		return ""
	}
	return o.Commit.Tree
}
