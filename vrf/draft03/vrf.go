// Package draft03 implements the 80-byte "draft-03" wire variant of
// ECVRF-EDWARDS25519-SHA512-ELL2: proof = Gamma(32) || c(16) || s(32).
package draft03

import (
	"fmt"

	"filippo.io/edwards25519"

	"github.com/FractionEstate/cardano-base-rust-sub001/cborx"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/directserial"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/memlock"
	"github.com/FractionEstate/cardano-base-rust-sub001/vrf/vrfinternal"
)

const (
	// SeedSize is the length of a key-generation seed.
	SeedSize = vrfinternal.SeedSize

	// VerificationKeySize is the length of an encoded verification key.
	VerificationKeySize = vrfinternal.VerificationKeySize

	// SigningKeySize is the length of the seed||pk compound a signing
	// key holds internally.
	SigningKeySize = vrfinternal.SigningKeySize

	// ProofSize is the length of a draft-03 proof.
	ProofSize = 32 + vrfinternal.TruncatedChallengeSize + 32

	// OutputSize is the length of a proof_to_hash output.
	OutputSize = vrfinternal.OutputSize

	// SuiteByte identifies the ECVRF-EDWARDS25519-SHA512-ELL2 suite.
	SuiteByte = vrfinternal.SuiteByte
)

// VerificationKey is a 32-byte ECVRF verification key.
type VerificationKey [VerificationKeySize]byte

// Proof is an 80-byte draft-03 ECVRF proof.
type Proof [ProofSize]byte

// Output is the 64-byte pseudorandom output beta.
type Output [OutputSize]byte

// SigningKey holds the 64-byte (seed || pk) compound in page-locked
// memory.
type SigningKey struct {
	region *memlock.Region
}

// GenKey deterministically derives a signing key from a 32-byte seed.
func GenKey(seed []byte) (*SigningKey, error) {
	es, err := vrfinternal.ExpandSecret(seed)
	if err != nil {
		return nil, err
	}
	pk := vrfinternal.DerivePublicKey(es.X)

	region, err := memlock.Allocate(SigningKeySize)
	if err != nil {
		return nil, err
	}
	copy(region.Bytes()[:32], seed)
	copy(region.Bytes()[32:], pk)
	return &SigningKey{region: region}, nil
}

// DeriveVerificationKey returns the verification key half of sk's compound.
func (sk *SigningKey) DeriveVerificationKey() VerificationKey {
	var vk VerificationKey
	copy(vk[:], sk.region.Bytes()[32:])
	return vk
}

// Forget zeroes and releases sk's locked region. It is idempotent.
func (sk *SigningKey) Forget() {
	sk.region.Drop()
}

// RawSerialiseSigningKey emits exactly the 32-byte seed half of sk's
// compound (never the derived public key half), matching the "signing
// keys have no wire codec" discipline: this is a backup escape hatch, not
// a CBOR path.
func RawSerialiseSigningKey(sk *SigningKey) []byte {
	out := make([]byte, SeedSize)
	copy(out, sk.region.Bytes()[:SeedSize])
	return out
}

// RawDeserialiseSigningKey expands a 32-byte seed back into a freshly
// allocated locked signing key.
func RawDeserialiseSigningKey(seed []byte) (*SigningKey, error) {
	return GenKey(seed)
}

// DirectSize is the number of bytes DirectSerialise pushes: the 32-byte
// seed only.
func (sk *SigningKey) DirectSize() int { return SeedSize }

// DirectSerialise pushes the 32-byte seed half of the locked compound
// through a pinned staging buffer, so the copy in flight is page-locked
// for the duration of the push.
func (sk *SigningKey) DirectSerialise(push directserial.PushFunc) error {
	return directserial.PushPinned(push, sk.region.Bytes()[:SeedSize])
}

// DirectDeserialiseSigningKey pulls a 32-byte seed into a pinned staging
// buffer and expands it directly into a freshly allocated locked signing
// key, without ever holding the seed in ordinary, swappable memory.
func DirectDeserialiseSigningKey(pull directserial.PullFunc) (*SigningKey, error) {
	staging, err := directserial.PullPinned(pull, SeedSize)
	if err != nil {
		return nil, err
	}
	defer staging.Drop()

	var sk *SigningKey
	err = staging.WithPointer(func(seed []byte) error {
		var genErr error
		sk, genErr = GenKey(seed)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return sk, nil
}

// Prove computes the ECVRF proof over alpha under sk.
func Prove(alpha []byte, sk *SigningKey) (Proof, error) {
	var proof Proof

	seed := sk.region.Bytes()[:32]
	pk := sk.region.Bytes()[32:]

	es, err := vrfinternal.ExpandSecret(seed)
	if err != nil {
		return proof, err
	}

	H, err := vrfinternal.HashToCurve(pk, alpha)
	if err != nil {
		return proof, fmt.Errorf("vrf: hash_to_curve failed: %w", err)
	}
	hString := H.Bytes()

	gamma := edwards25519.NewIdentityPoint().ScalarMult(es.X, H)

	k, err := vrfinternal.NonceGeneration(es.Prefix, hString)
	if err != nil {
		return proof, err
	}
	kB := edwards25519.NewIdentityPoint().ScalarBaseMult(k)
	kH := edwards25519.NewIdentityPoint().ScalarMult(k, H)

	c, err := vrfinternal.ChallengeHash(H, gamma, kB, kH)
	if err != nil {
		return proof, err
	}

	s := edwards25519.NewScalar().Multiply(c, es.X)
	s.Add(s, k)

	copy(proof[:32], gamma.Bytes())
	copy(proof[32:32+16], c.Bytes()[:16])
	copy(proof[32+16:], s.Bytes())
	return proof, nil
}

// Verify checks proof over alpha under vk, returning the output beta on
// success.
func Verify(vk VerificationKey, proof Proof, alpha []byte) (Output, bool) {
	var zero Output

	gamma, err := vrfinternal.DecodePoint(proof[:32])
	if err != nil {
		return zero, false
	}

	var cBytes [32]byte
	copy(cBytes[:16], proof[32:48])
	c, err := edwards25519.NewScalar().SetCanonicalBytes(cBytes[:])
	if err != nil {
		return zero, false
	}

	s, err := edwards25519.NewScalar().SetCanonicalBytes(proof[48:80])
	if err != nil {
		return zero, false
	}

	Y, err := vrfinternal.DecodePoint(vk[:])
	if err != nil {
		return zero, false
	}
	if cY := edwards25519.NewIdentityPoint().MultByCofactor(Y); cY.Equal(edwards25519.NewIdentityPoint()) == 1 {
		return zero, false // low-order public key, reject
	}

	H, err := vrfinternal.HashToCurve(vk[:], alpha)
	if err != nil {
		return zero, false
	}

	negY := edwards25519.NewIdentityPoint().Negate(Y)
	U := edwards25519.NewIdentityPoint().VarTimeDoubleScalarBaseMult(c, negY, s)

	negGamma := edwards25519.NewIdentityPoint().Negate(gamma)
	V := edwards25519.NewIdentityPoint().VarTimeMultiScalarMult(
		[]*edwards25519.Scalar{s, c},
		[]*edwards25519.Point{H, negGamma},
	)

	cPrime, err := vrfinternal.ChallengeHash(H, gamma, U, V)
	if err != nil {
		return zero, false
	}
	if c.Equal(cPrime) == 0 {
		return zero, false
	}

	var beta Output
	copy(beta[:], vrfinternal.GammaToHash(gamma))
	return beta, true
}

// ProofToHash recomputes beta from a proof without verifying it against an
// alpha/public key; callers must only use it on proofs already known to
// have come from Prove or a successful Verify.
func ProofToHash(proof Proof) (Output, error) {
	var out Output
	gamma, err := vrfinternal.DecodePoint(proof[:32])
	if err != nil {
		return out, err
	}
	copy(out[:], vrfinternal.GammaToHash(gamma))
	return out, nil
}

// MarshalCBOR encodes vk as a canonical CBOR byte string.
func (vk VerificationKey) MarshalCBOR() ([]byte, error) {
	return cborx.RawBytes(vk[:])
}

// UnmarshalCBOR decodes a CBOR byte string produced by MarshalCBOR.
func (vk *VerificationKey) UnmarshalCBOR(data []byte) error {
	b, err := cborx.DecodeRawBytes(data, VerificationKeySize)
	if err != nil {
		return err
	}
	copy(vk[:], b)
	return nil
}

// MarshalCBOR encodes proof as a canonical CBOR byte string.
func (p Proof) MarshalCBOR() ([]byte, error) {
	return cborx.RawBytes(p[:])
}

// UnmarshalCBOR decodes a CBOR byte string produced by MarshalCBOR.
func (p *Proof) UnmarshalCBOR(data []byte) error {
	b, err := cborx.DecodeRawBytes(data, ProofSize)
	if err != nil {
		return err
	}
	copy(p[:], b)
	return nil
}

// RawSerialiseVerificationKey returns vk's 32-byte wire encoding.
func RawSerialiseVerificationKey(vk VerificationKey) []byte {
	out := make([]byte, VerificationKeySize)
	copy(out, vk[:])
	return out
}

// RawDeserialiseVerificationKey parses a 32-byte verification key.
func RawDeserialiseVerificationKey(b []byte) (VerificationKey, error) {
	var vk VerificationKey
	if len(b) != VerificationKeySize {
		return vk, fmt.Errorf("%w: verification key must be %d bytes", vrfinternal.ErrMalformed, VerificationKeySize)
	}
	copy(vk[:], b)
	return vk, nil
}

// RawSerialiseProof returns proof's 80-byte wire encoding.
func RawSerialiseProof(p Proof) []byte {
	out := make([]byte, ProofSize)
	copy(out, p[:])
	return out
}

// RawDeserialiseProof parses an 80-byte proof.
func RawDeserialiseProof(b []byte) (Proof, error) {
	var p Proof
	if len(b) != ProofSize {
		return p, fmt.Errorf("%w: proof must be %d bytes", vrfinternal.ErrMalformed, ProofSize)
	}
	copy(p[:], b)
	return p, nil
}
