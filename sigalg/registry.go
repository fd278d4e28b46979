package sigalg

import (
	"fmt"
	"sort"
	"sync"
)

// Pair is one registry coordinate. Exactly one delegate is registered
// per pair.
type Pair struct {
	Algorithm Algorithm
	Purpose   Purpose
}

var (
	mu        sync.RWMutex
	delegates = map[Pair]any{}
)

// RegisterSigning adds a signing delegate for (alg, purpose).
// Registration is additive and performed once per pair, typically from a
// backend's init. Registering a pair twice is a conflict error, not
// last-write-wins: two backends competing for the same pair is a build
// misconfiguration that must surface loudly.
func RegisterSigning(alg Algorithm, purpose Purpose, fn SignFunc) error {
	if fn == nil {
		return NewError(KindRegistry, "SIGIL-REG-010", "nil signing delegate")
	}
	return register(Pair{alg, purpose}, fn)
}

// RegisterVerification adds a verification delegate for (alg, purpose).
// Same conflict policy as RegisterSigning.
func RegisterVerification(alg Algorithm, purpose Purpose, fn VerifyFunc) error {
	if fn == nil {
		return NewError(KindRegistry, "SIGIL-REG-010", "nil verification delegate")
	}
	return register(Pair{alg, purpose}, fn)
}

func register(p Pair, fn any) error {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := delegates[p]; exists {
		return NewError(KindRegistry, "SIGIL-REG-002",
			fmt.Sprintf("delegate already registered for (%s, %s)", p.Algorithm, p.Purpose))
	}
	delegates[p] = fn
	return nil
}

// MustRegisterSigning is like RegisterSigning but panics on error.
func MustRegisterSigning(alg Algorithm, purpose Purpose, fn SignFunc) {
	if err := RegisterSigning(alg, purpose, fn); err != nil {
		panic(err)
	}
}

// MustRegisterVerification is like RegisterVerification but panics on
// error.
func MustRegisterVerification(alg Algorithm, purpose Purpose, fn VerifyFunc) {
	if err := RegisterVerification(alg, purpose, fn); err != nil {
		panic(err)
	}
}

// ResolveSigning returns the signing delegate registered for
// (alg, purpose), or an unsupported-combination error.
func ResolveSigning(alg Algorithm, purpose Purpose) (SignFunc, error) {
	mu.RLock()
	fn, ok := delegates[Pair{alg, purpose}]
	mu.RUnlock()
	if !ok {
		return nil, NewError(KindRegistry, "SIGIL-REG-001",
			fmt.Sprintf("no delegate registered for (%s, %s)", alg, purpose))
	}
	sign, ok := fn.(SignFunc)
	if !ok {
		return nil, NewError(KindRegistry, "SIGIL-REG-003",
			fmt.Sprintf("delegate for (%s, %s) is not a signing delegate", alg, purpose))
	}
	return sign, nil
}

// ResolveVerification returns the verification delegate registered for
// (alg, purpose), or an unsupported-combination error.
func ResolveVerification(alg Algorithm, purpose Purpose) (VerifyFunc, error) {
	mu.RLock()
	fn, ok := delegates[Pair{alg, purpose}]
	mu.RUnlock()
	if !ok {
		return nil, NewError(KindRegistry, "SIGIL-REG-001",
			fmt.Sprintf("no delegate registered for (%s, %s)", alg, purpose))
	}
	verify, ok := fn.(VerifyFunc)
	if !ok {
		return nil, NewError(KindRegistry, "SIGIL-REG-003",
			fmt.Sprintf("delegate for (%s, %s) is not a verification delegate", alg, purpose))
	}
	return verify, nil
}

// Pairs returns every registered (algorithm, purpose) coordinate,
// sorted.
func Pairs() []Pair {
	mu.RLock()
	out := make([]Pair, 0, len(delegates))
	for p := range delegates {
		out = append(out, p)
	}
	mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Algorithm != out[j].Algorithm {
			return out[i].Algorithm < out[j].Algorithm
		}
		return out[i].Purpose < out[j].Purpose
	})
	return out
}
