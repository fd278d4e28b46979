package keymat

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"sigil.co/sigil/secmem"
	"sigil.co/sigil/tag"
)

// previewLen is how many leading bytes String renders as hex.
const previewLen = 4

// material is the shared core of PrivateKey, PublicKey, and Signature:
// one pool-owned buffer and one immutable tag.
type material struct {
	buf *secmem.Buffer
	tag tag.Tag
}

// PrivateKey holds private key bytes. The key owns its buffer.
type PrivateKey struct{ material }

// PublicKey holds public key bytes. The key owns its buffer.
type PublicKey struct{ material }

// Signature holds signature bytes. The signature owns its buffer.
type Signature struct{ material }

// NewPrivateKey wraps a pool-owned buffer as a private key. Ownership of
// buf transfers to the returned value.
func NewPrivateKey(buf *secmem.Buffer, t tag.Tag) *PrivateKey {
	return &PrivateKey{material{buf: buf, tag: t}}
}

// NewPublicKey wraps a pool-owned buffer as a public key. Ownership of
// buf transfers to the returned value.
func NewPublicKey(buf *secmem.Buffer, t tag.Tag) *PublicKey {
	return &PublicKey{material{buf: buf, tag: t}}
}

// NewSignature wraps a pool-owned buffer as a signature. Ownership of
// buf transfers to the returned value.
func NewSignature(buf *secmem.Buffer, t tag.Tag) *Signature {
	return &Signature{material{buf: buf, tag: t}}
}

// Len returns the content length in bytes. Valid even after Close.
func (m *material) Len() int { return m.buf.Len() }

// Tag returns the metadata attached at construction.
func (m *material) Tag() tag.Tag { return m.tag }

// Bytes returns the content. The slice points into pool-owned memory;
// do not retain it beyond the value's lifetime. Panics after Close.
func (m *material) Bytes() []byte { return m.buf.Bytes() }

// Released reports whether the value has been closed.
func (m *material) Released() bool { return m.buf.Released() }

// Close releases the underlying buffer back to its pool. Idempotent.
func (m *material) Close() error { return m.buf.Close() }

// Hash returns a stable content hash. Values with identical bytes hash
// equally regardless of their tags. Panics after Close.
func (m *material) Hash() uint64 {
	sum := blake3.Sum256(m.buf.Bytes())
	return binary.LittleEndian.Uint64(sum[:8])
}

// equalContent is constant-time over the byte content only. The tag is
// deliberately excluded: differently-tagged views of identical bytes
// compare equal.
func equalContent(a, b *material) bool {
	if a.buf.Len() != b.buf.Len() {
		return false
	}
	return subtle.ConstantTimeCompare(a.buf.Bytes(), b.buf.Bytes()) == 1
}

// Equal reports whether both keys hold identical bytes. Panics if either
// side has been closed.
func (k *PrivateKey) Equal(o *PrivateKey) bool { return equalContent(&k.material, &o.material) }

// Equal reports whether both keys hold identical bytes. Panics if either
// side has been closed.
func (k *PublicKey) Equal(o *PublicKey) bool { return equalContent(&k.material, &o.material) }

// Equal reports whether both signatures hold identical bytes. Panics if
// either side has been closed.
func (s *Signature) Equal(o *Signature) bool { return equalContent(&s.material, &o.material) }

// render produces the debug string: type, algorithm (or "unknown alg"),
// byte count, and a short hex preview. Never panics and never shows the
// full content.
func (m *material) render(kind string) string {
	alg := "unknown alg"
	if v, ok := m.tag.Lookup(tag.KindAlgorithm); ok {
		alg = fmt.Sprintf("%v", v)
	}
	if m.buf.Released() {
		return fmt.Sprintf("%s(%s, %d bytes, released)", kind, alg, m.buf.Len())
	}
	data := m.buf.Bytes()
	n := previewLen
	if n > len(data) {
		n = len(data)
	}
	return fmt.Sprintf("%s(%s, %d bytes, %s…)", kind, alg, len(data), hex.EncodeToString(data[:n]))
}

func (k *PrivateKey) String() string { return k.render("PrivateKey") }
func (k *PublicKey) String() string  { return k.render("PublicKey") }
func (s *Signature) String() string  { return s.render("Signature") }
