// Package vrfinternal holds the pieces of the ECVRF-EDWARDS25519-SHA512-ELL2
// suite shared by the draft-03 and draft-13 (batch-compatible) wire
// variants: key splitting, Elligator2 hash-to-curve, nonce generation,
// challenge hashing, and the cofactor-cleared proof-to-hash step. The
// group arithmetic itself (scalar multiplication, point addition,
// Elligator2 mapping) is delegated to filippo.io/edwards25519 and the
// edwards25519-extra hash-to-curve suite; this package only sequences the
// IETF draft steps around them.
package vrfinternal

import (
	"crypto/sha512"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"gitlab.com/yawning/edwards25519-extra.git/h2c"
)

const (
	// SuiteByte identifies the ECVRF-EDWARDS25519-SHA512-ELL2 suite.
	SuiteByte = 0x04

	twoString   = 0x02
	threeString = 0x03
	zeroString  = 0x00

	// SeedSize is the length of a VRF key-generation seed.
	SeedSize = 32

	// VerificationKeySize is the length of an encoded verification key.
	VerificationKeySize = 32

	// SigningKeySize is the length of the seed||pk compound a signing
	// key holds.
	SigningKeySize = 64

	// OutputSize is the length of proof_to_hash's output beta.
	OutputSize = 64

	// ChallengeSize is the full (untruncated) length of the challenge
	// scalar before any draft-03-specific truncation.
	ChallengeSize = 32

	// TruncatedChallengeSize is the draft-03 wire length of the
	// challenge component (the first 16 bytes of the full challenge).
	TruncatedChallengeSize = 16
)

// h2cDST is the domain-separation tag for the suite's hash-to-curve step:
// "ECVRF_" || h2c_suite_ID_string || suite_string.
var h2cDST = []byte("ECVRF_edwards25519_XMD:SHA-512_ELL2_NU_\x04")

// Errors returned across the vrf/draft03 and vrf/draft13 packages.
var (
	ErrMalformed   = errors.New("vrf: malformed input")
	ErrInvalidProof = errors.New("vrf: challenge recomputation failed")
)

// ExpandedSecret is the secret scalar x and nonce-derivation prefix
// recovered from a 32-byte seed, per RFC 8032 §5.1.5 steps 1-2.
type ExpandedSecret struct {
	X      *edwards25519.Scalar
	Prefix [32]byte
}

// ExpandSecret derives x and the nonce prefix from a 32-byte seed.
func ExpandSecret(seed []byte) (*ExpandedSecret, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes", ErrMalformed, SeedSize)
	}
	h := sha512.Sum512(seed)

	clamped := h[:32]
	x, err := edwards25519.NewScalar().SetBytesWithClamping(clamped)
	if err != nil {
		return nil, fmt.Errorf("vrf: failed to clamp secret scalar: %w", err)
	}

	es := &ExpandedSecret{X: x}
	copy(es.Prefix[:], h[32:])
	return es, nil
}

// DerivePublicKey returns the compressed public key Y = x*B.
func DerivePublicKey(x *edwards25519.Scalar) []byte {
	Y := edwards25519.NewIdentityPoint().ScalarBaseMult(x)
	return Y.Bytes()
}

// HashToCurve implements ECVRF_hash_to_curve for the ELL2 suite: it hashes
// pk || alpha into a curve point with the edwards25519_XMD:SHA-512_ELL2_NU
// hash-to-curve suite under h2cDST, which does its own expand-message
// hashing before the Elligator2 map. Both wire variants use it; there is
// no separate step that clears the high bit of a 32-byte representative
// before the map.
func HashToCurve(pk, alpha []byte) (*edwards25519.Point, error) {
	msg := make([]byte, 0, len(pk)+len(alpha))
	msg = append(msg, pk...)
	msg = append(msg, alpha...)
	return h2c.Edwards25519_XMD_SHA512_ELL2_NU(h2cDST, msg)
}

// NonceGeneration implements ECVRF_nonce_generation: k = SHA512(prefix ||
// h_string) mod L.
func NonceGeneration(prefix [32]byte, hString []byte) (*edwards25519.Scalar, error) {
	var digest [64]byte
	h := sha512.New()
	h.Write(prefix[:])
	h.Write(hString)
	h.Sum(digest[:0])
	k, err := edwards25519.NewScalar().SetUniformBytes(digest[:])
	if err != nil {
		return nil, fmt.Errorf("vrf: failed to derive nonce scalar: %w", err)
	}
	return k, nil
}

// ChallengeHash implements ECVRF_hash_points: it hashes the suite byte,
// separator 0x02, the point_to_string encodings of every supplied point,
// and a trailing zero byte, and returns the challenge scalar c built from
// the first 16 bytes of the SHA-512 digest (the upper 16 bytes of its
// 32-byte encoding are zero). Both wire variants use this truncated c;
// draft-03 serialises its first 16 bytes.
func ChallengeHash(points ...*edwards25519.Point) (*edwards25519.Scalar, error) {
	h := sha512.New()
	h.Write([]byte{SuiteByte, twoString})
	for _, p := range points {
		h.Write(p.Bytes())
	}
	h.Write([]byte{zeroString})
	var digest [64]byte
	h.Sum(digest[:0])

	var cBytes [32]byte
	copy(cBytes[:16], digest[:16])
	c, err := edwards25519.NewScalar().SetCanonicalBytes(cBytes[:])
	if err != nil {
		return nil, fmt.Errorf("vrf: failed to derive challenge scalar: %w", err)
	}
	return c, nil
}

// GammaToHash implements ECVRF_proof_to_hash's core: it cofactor-clears
// gamma, then returns SHA512(suite_byte || 0x03 || point_to_string(8*gamma)
// || 0x00).
func GammaToHash(gamma *edwards25519.Point) []byte {
	cleared := edwards25519.NewIdentityPoint().MultByCofactor(gamma)
	h := sha512.New()
	h.Write([]byte{SuiteByte, threeString})
	h.Write(cleared.Bytes())
	h.Write([]byte{zeroString})
	return h.Sum(nil)
}

// DecodePoint decompresses and validates a 32-byte point encoding,
// rejecting non-canonical encodings per RFC 8032 decode semantics.
func DecodePoint(b []byte) (*edwards25519.Point, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: point must be 32 bytes", ErrMalformed)
	}
	p, err := edwards25519.NewIdentityPoint().SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}
