// Package tag provides a small immutable metadata bag attached to key
// and signature material: which algorithm the bytes belong to, what they
// are for, how they are encoded. The bag is deliberately schema-free so
// that secmem and keymat never couple to any specific metadata set.
package tag

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// Kind identifies one metadata entry.
type Kind string

// Kinds used across the library. Callers may define their own.
const (
	KindAlgorithm Kind = "algorithm"
	KindPurpose   Kind = "purpose"
	KindEncoding  Kind = "encoding"
)

// Entry is one (kind, value) pair. Values must be comparable: Tags are
// compared with == on their entries.
type Entry struct {
	Kind  Kind
	Value any
}

// Tag is an immutable mapping from Kind to an opaque value. The zero
// value is Empty. Tags are copied by reference; they are never mutated
// after construction.
type Tag struct {
	entries map[Kind]any
}

// Empty is the canonical absence-of-metadata value.
var Empty = Tag{}

// New constructs a Tag from entries. Later entries for the same kind
// overwrite earlier ones.
func New(entries ...Entry) Tag {
	if len(entries) == 0 {
		return Empty
	}
	m := make(map[Kind]any, len(entries))
	for _, e := range entries {
		m[e.Kind] = e.Value
	}
	return Tag{entries: m}
}

// Lookup returns the value for kind and whether it is present.
func (t Tag) Lookup(kind Kind) (any, bool) {
	v, ok := t.entries[kind]
	return v, ok
}

// Len returns the number of entries.
func (t Tag) Len() int { return len(t.entries) }

// Equal reports whether two tags carry the same entries.
func (t Tag) Equal(o Tag) bool {
	if len(t.entries) != len(o.entries) {
		return false
	}
	for k, v := range t.entries {
		ov, ok := o.entries[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Hash returns a stable combined hash of the entries. Equal tags hash
// equally regardless of construction order.
func (t Tag) Hash() uint64 {
	kinds := make([]string, 0, len(t.entries))
	for k := range t.entries {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	h := blake3.New()
	for _, k := range kinds {
		_, _ = h.Write([]byte(k))
		_, _ = h.Write([]byte{0})
		fmt.Fprintf(h, "%v", t.entries[Kind(k)])
		_, _ = h.Write([]byte{0})
	}
	return binary.LittleEndian.Uint64(h.Sum(nil)[:8])
}

// String renders the entries in sorted kind order.
func (t Tag) String() string {
	if len(t.entries) == 0 {
		return "tag{}"
	}
	kinds := make([]string, 0, len(t.entries))
	for k := range t.entries {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	out := "tag{"
	for i, k := range kinds {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%v", k, t.entries[Kind(k)])
	}
	return out + "}"
}
