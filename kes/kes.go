// Package kes defines the capability set that every key-evolving signature
// algorithm in this module implements — base (Single, CompactSingle) and
// composition (Sum, CompactSum) alike — so that Sum and CompactSum can
// recurse over an arbitrary child algorithm through a single interface
// rather than a generic type tower. A depth-7 Sum/CompactSum instance over
// Ed25519 is built by nesting constructors seven times (see sum.NewTower /
// compactsum.NewTower), which keeps the "small tower of eight monomorphised
// depths" from the design notes a matter of composition, not generics.
package kes

import (
	"errors"

	"github.com/FractionEstate/cardano-base-rust-sub001/cborx"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/directserial"
)

// Errors shared by every KES algorithm.
var (
	// ErrPeriodOutOfRange is returned when a period t is not in [0, T).
	ErrPeriodOutOfRange = errors.New("kes: period out of range")

	// ErrExpired is returned by Update when asked to evolve past the
	// final period.
	ErrExpired = errors.New("kes: key has expired")

	// ErrVerificationFailed is returned by Verify on any mismatch:
	// wrong key, wrong message, wrong period, or a corrupted signature.
	ErrVerificationFailed = errors.New("kes: signature verification failed")

	// ErrMalformed is returned when a signature or verification key has
	// the wrong wire length or fails to parse.
	ErrMalformed = errors.New("kes: malformed input")
)

// SigningKey is the opaque secret state of a KES algorithm at some period.
// Every concrete signing key type, base or composite, implements Forget
// plus the raw/direct-serialise escape hatches the key material lifecycle
// permits (rule 4: no CBOR, but a seed-level backup path is allowed).
// Composite types additionally forget their children when asked, and their
// raw/direct forms recurse: child bytes, then the locked seed reserved for
// the other subtree, then both verification keys (see package directserial).
type SigningKey interface {
	// Forget zeroes and releases every locked region the key owns. It
	// is idempotent and safe to call multiple times.
	Forget()

	// RawSerialise returns the key's raw wire-adjacent bytes: the seed
	// for a base algorithm, or the recursive child/seed/vk0/vk1 bundle
	// for a composite. Never CBOR-encoded; this is a backup path, not
	// the wire codec (key material lifecycle rule 4).
	RawSerialise() []byte

	// DirectSize reports the exact number of bytes DirectSerialise will
	// push.
	DirectSize() int

	// DirectSerialise pushes the key's bytes through push without ever
	// materialising them on the heap in an unpinned form.
	DirectSerialise(push directserial.PushFunc) error
}

// Algorithm is the capability set Sum and CompactSum recurse over. Single
// and CompactSingle are the depth-0 leaves; Sum/CompactSum instances are
// themselves Algorithms, so a tower is built by repeated composition.
type Algorithm interface {
	// Name identifies the algorithm for diagnostics, e.g.
	// "SumSingleEd25519" for a depth-1 Sum over Single.
	Name() string

	// TotalPeriods is T, the number of periods this algorithm's keys
	// are valid for.
	TotalPeriods() uint64

	// VerificationKeySize is the fixed wire length of a verification
	// key.
	VerificationKeySize() int

	// SignatureSize is the fixed wire length of a signature.
	SignatureSize() int

	// SigningKeyRawSize is the fixed length of the bytes RawSerialise /
	// DirectSerialise produce for a signing key of this algorithm: the
	// seed size for a base algorithm, or the recursive
	// child+seed+vk0+vk1 bundle size for a composite. Knowing this size
	// up front lets Sum/CompactSum slice a flat byte buffer into its
	// child's share without a speculative partial deserialise.
	SigningKeyRawSize() int

	// GenKey deterministically derives a signing key at period 0 from
	// seed. The seed is consumed.
	GenKey(seed []byte) (SigningKey, error)

	// RawDeserialiseSigningKey parses exactly SigningKeyRawSize() bytes
	// produced by RawSerialise back into a live signing key at the same
	// period the serialised key was at, the inverse of
	// SigningKey.RawSerialise.
	RawDeserialiseSigningKey(b []byte) (SigningKey, error)

	// DirectDeserialiseSigningKey is the streaming counterpart of
	// RawDeserialiseSigningKey: it pulls exactly SigningKeyRawSize()
	// bytes through pull, reconstructing the key without ever holding
	// the pulled seed bytes in ordinary, unpinned memory (the public
	// verification keys of a composite are pulled into ordinary memory).
	DirectDeserialiseSigningKey(pull directserial.PullFunc) (SigningKey, error)

	// DeriveVerificationKey returns the verification key for sk. It
	// depends only on the seed sk was generated from and the period at
	// which sk was generated (always 0), not on sk's current period.
	DeriveVerificationKey(sk SigningKey) ([]byte, error)

	// Sign produces a signature over message at period using sk, which
	// must itself currently be at period.
	Sign(ctx []byte, period uint64, message []byte, sk SigningKey) ([]byte, error)

	// Verify checks sig over message at period under vk.
	Verify(ctx []byte, vk []byte, period uint64, message []byte, sig []byte) error

	// Update evolves sk from period to period+1, zeroing everything
	// that permitted signing at period before returning. It returns
	// ErrExpired (and a nil key) if period+1 == TotalPeriods().
	Update(sk SigningKey, period uint64) (SigningKey, error)

	// Forget is equivalent to sk.Forget(); provided so callers can
	// release a key through the Algorithm value alone.
	Forget(sk SigningKey)
}

// CompactAlgorithm is implemented by the Compact variants (CompactSingle,
// CompactSum): their signatures embed the signer's verification key, so it
// can be recovered without a side channel. For a composite CompactSum,
// reconstructing its own embedded verification key requires knowing which
// side of each level of the tree was active, which period alone
// determines; ExtractVerificationKey therefore takes the period the
// signature was produced at, not just the signature bytes.
type CompactAlgorithm interface {
	Algorithm

	// ExtractVerificationKey recovers the embedded verification key
	// from a signature produced by this algorithm at period.
	ExtractVerificationKey(sig []byte, period uint64) ([]byte, error)
}

// EncodeVerificationKey wraps a KES verification key (or raw signature
// bytes) as a canonical CBOR byte string. Unlike signing keys, which have
// no wire codec at all (rule 4 of the key material lifecycle),
// verification keys and signatures are freely CBOR-encodable regardless
// of which concrete Algorithm produced them.
func EncodeVerificationKey(vk []byte) ([]byte, error) {
	return cborx.RawBytes(vk)
}

// DecodeVerificationKey decodes a CBOR byte string produced by
// EncodeVerificationKey, checking it is exactly size bytes.
func DecodeVerificationKey(data []byte, size int) ([]byte, error) {
	return cborx.DecodeRawBytes(data, size)
}

// EncodeSignature wraps a KES signature as a canonical CBOR byte string.
func EncodeSignature(sig []byte) ([]byte, error) {
	return cborx.RawBytes(sig)
}

// DecodeSignature decodes a CBOR byte string produced by EncodeSignature,
// checking it is exactly size bytes.
func DecodeSignature(data []byte, size int) ([]byte, error) {
	return cborx.DecodeRawBytes(data, size)
}
