package sigkey

import (
	"fmt"

	"sigil.co/sigil/sigalg"
	"sigil.co/sigil/tag"
)

// tagAlgorithm extracts the algorithm descriptor from a tag. Key
// material used with the tagged construction path must carry one.
func tagAlgorithm(t tag.Tag) (sigalg.Algorithm, error) {
	v, ok := t.Lookup(tag.KindAlgorithm)
	if !ok {
		return "", sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-101",
			"key material tag carries no algorithm")
	}
	alg, ok := v.(sigalg.Algorithm)
	if !ok {
		return "", sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-102",
			fmt.Sprintf("tag algorithm has unexpected type %T", v))
	}
	return alg, nil
}

// tagPurpose extracts the purpose descriptor, falling back to the
// purpose implied by the key type when the tag carries none.
func tagPurpose(t tag.Tag, fallback sigalg.Purpose) (sigalg.Purpose, error) {
	v, ok := t.Lookup(tag.KindPurpose)
	if !ok {
		return fallback, nil
	}
	purpose, ok := v.(sigalg.Purpose)
	if !ok {
		return "", sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-103",
			fmt.Sprintf("tag purpose has unexpected type %T", v))
	}
	return purpose, nil
}
