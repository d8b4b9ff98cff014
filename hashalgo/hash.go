// Package hashalgo provides the parameterised hash abstraction shared by the
// seed-derivation and KES-composition layers: a fixed-output hash function
// plus the two derived operations, hash_concat and expand_seed, that the
// rest of the module builds on.
package hashalgo

import (
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/blake2b"
)

// Seed-expansion domain-separation prefixes. These exact byte values (not
// 0x00/0x01) are required for byte-for-byte parity with the reference
// implementation; do not change them. Exported so internal/seedutil can
// derive the same left/right sub-seeds ExpandSeed does, for callers (KES
// composition) that need a length other than OutputSize().
const (
	LeftPrefix  = 0x01
	RightPrefix = 0x02
)

// Algorithm is a hash function used by the KES composition layer and by
// seed derivation. Implementations are stateless and safe for concurrent
// use.
type Algorithm interface {
	// Name identifies the algorithm, e.g. "Blake2b256".
	Name() string

	// OutputSize is the fixed length, in bytes, of Hash's result.
	OutputSize() int

	// Hash returns the digest of input.
	Hash(input []byte) []byte

	// HashConcat returns Hash(a || b) without requiring the caller to
	// allocate the concatenation themselves.
	HashConcat(a, b []byte) []byte

	// ExpandSeed derives the left and right child seeds of seed via
	// domain-separated hashing: left = Hash(0x01 || seed), right =
	// Hash(0x02 || seed).
	ExpandSeed(seed []byte) (left, right []byte)
}

func expandSeed(h Algorithm, seed []byte) (left, right []byte) {
	lin := make([]byte, 0, len(seed)+1)
	lin = append(lin, LeftPrefix)
	lin = append(lin, seed...)
	rin := make([]byte, 0, len(seed)+1)
	rin = append(rin, RightPrefix)
	rin = append(rin, seed...)
	return h.Hash(lin), h.Hash(rin)
}

func hashConcat(h Algorithm, a, b []byte) []byte {
	buf := make([]byte, 0, len(a)+len(b))
	buf = append(buf, a...)
	buf = append(buf, b...)
	return h.Hash(buf)
}

// Blake2bAlgorithm256 is Blake2b-256. It is the hash used by mainnet KES
// composition (Sum/CompactSum over Ed25519).
type Blake2bAlgorithm256 struct{}

// Blake2b256 is the singleton Blake2b-256 algorithm value.
var Blake2b256 Algorithm = Blake2bAlgorithm256{}

func (Blake2bAlgorithm256) Name() string     { return "Blake2b256" }
func (Blake2bAlgorithm256) OutputSize() int  { return 32 }
func (a Blake2bAlgorithm256) Hash(input []byte) []byte {
	sum := blake2b.Sum256(input)
	return sum[:]
}
func (a Blake2bAlgorithm256) HashConcat(x, y []byte) []byte { return hashConcat(a, x, y) }
func (a Blake2bAlgorithm256) ExpandSeed(seed []byte) ([]byte, []byte) {
	return expandSeed(a, seed)
}

// Blake2bAlgorithm512 is Blake2b-512.
type Blake2bAlgorithm512 struct{}

// Blake2b512 is the singleton Blake2b-512 algorithm value.
var Blake2b512 Algorithm = Blake2bAlgorithm512{}

func (Blake2bAlgorithm512) Name() string    { return "Blake2b512" }
func (Blake2bAlgorithm512) OutputSize() int { return 64 }
func (a Blake2bAlgorithm512) Hash(input []byte) []byte {
	sum := blake2b.Sum512(input)
	return sum[:]
}
func (a Blake2bAlgorithm512) HashConcat(x, y []byte) []byte { return hashConcat(a, x, y) }
func (a Blake2bAlgorithm512) ExpandSeed(seed []byte) ([]byte, []byte) {
	return expandSeed(a, seed)
}

// SHA512Algorithm is SHA-512. The DSIGN and VRF packages do not use this
// value: they hash through crypto/ed25519 and crypto/sha512 directly.
type SHA512Algorithm struct{}

// SHA512 is the singleton SHA-512 algorithm value.
var SHA512 Algorithm = SHA512Algorithm{}

func (SHA512Algorithm) Name() string    { return "SHA512" }
func (SHA512Algorithm) OutputSize() int { return 64 }
func (a SHA512Algorithm) Hash(input []byte) []byte {
	sum := sha512.Sum512(input)
	return sum[:]
}
func (a SHA512Algorithm) HashConcat(x, y []byte) []byte { return hashConcat(a, x, y) }
func (a SHA512Algorithm) ExpandSeed(seed []byte) ([]byte, []byte) {
	return expandSeed(a, seed)
}

// SHA256Algorithm is SHA-256.
type SHA256Algorithm struct{}

// SHA256 is the singleton SHA-256 algorithm value.
var SHA256 Algorithm = SHA256Algorithm{}

func (SHA256Algorithm) Name() string    { return "SHA256" }
func (SHA256Algorithm) OutputSize() int { return 32 }
func (a SHA256Algorithm) Hash(input []byte) []byte {
	sum := sha256.Sum256(input)
	return sum[:]
}
func (a SHA256Algorithm) HashConcat(x, y []byte) []byte { return hashConcat(a, x, y) }
func (a SHA256Algorithm) ExpandSeed(seed []byte) ([]byte, []byte) {
	return expandSeed(a, seed)
}
