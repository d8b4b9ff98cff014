// Package randseed is a convenience helper for callers who want a fresh,
// securely random seed rather than supplying one of their own: the core
// signing algorithms never call this package themselves (the spec is
// explicit that the core carries no implicit RNG — seeds are always a
// caller-supplied parameter), but callers provisioning new keys need
// *some* source of randomness, and a ChaCha-based CSPRNG is what this
// module's corpus uses for that job.
package randseed

import (
	"fmt"
	"io"

	prngchacha "github.com/sixafter/prng-chacha"
)

// Generate fills and returns a freshly allocated seed of length n, read
// from a ChaCha20-based cryptographically secure random source.
func Generate(n int) ([]byte, error) {
	reader, err := prngchacha.NewReader()
	if err != nil {
		return nil, fmt.Errorf("randseed: failed to construct reader: %w", err)
	}
	seed := make([]byte, n)
	if _, err := io.ReadFull(reader, seed); err != nil {
		return nil, fmt.Errorf("randseed: failed to read %d random bytes: %w", n, err)
	}
	return seed, nil
}
