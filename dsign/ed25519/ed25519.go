// Package ed25519 implements the DSIGN algorithm used throughout this
// module: RFC 8032 Ed25519 signatures, in a standard variant and a
// memory-locked variant whose signing key lives in a page-locked region.
package ed25519

import (
	stded25519 "crypto/ed25519"
	"errors"
	"fmt"

	"github.com/FractionEstate/cardano-base-rust-sub001/cborx"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/directserial"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/memlock"
)

const (
	// SeedSize is the length, in bytes, of a signing-key seed.
	SeedSize = 32

	// VerificationKeySize is the length, in bytes, of an Ed25519
	// verification key.
	VerificationKeySize = 32

	// SigningKeySize is the length, in bytes, of the compound
	// (seed || verification key) a signing key holds internally.
	SigningKeySize = 64

	// SignatureSize is the length, in bytes, of an Ed25519 signature.
	SignatureSize = 64
)

// Errors returned by this package.
var (
	ErrMalformed          = errors.New("ed25519: malformed input")
	ErrVerificationFailed = errors.New("ed25519: signature verification failed")
)

// VerificationKey is a 32-byte Ed25519 public key.
type VerificationKey [VerificationKeySize]byte

// Signature is a 64-byte Ed25519 signature.
type Signature [SignatureSize]byte

// SigningKey holds the 64-byte (seed || verification key) compound in
// ordinary memory. Use LockedSigningKey when the key must be held in
// page-locked memory instead.
type SigningKey struct {
	compound [SigningKeySize]byte
}

// GenKey deterministically derives a signing key from a 32-byte seed. The
// seed is consumed: callers should not reuse it afterward.
func GenKey(seed []byte) (*SigningKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrMalformed, SeedSize, len(seed))
	}
	priv := stded25519.NewKeyFromSeed(seed)
	sk := &SigningKey{}
	copy(sk.compound[:SeedSize], priv[:SeedSize])
	copy(sk.compound[SeedSize:], priv[SeedSize:])
	return sk, nil
}

// DeriveVerificationKey returns the verification key paired with sk.
func (sk *SigningKey) DeriveVerificationKey() VerificationKey {
	var vk VerificationKey
	copy(vk[:], sk.compound[SeedSize:])
	return vk
}

// Sign produces a deterministic Ed25519 signature over message.
func Sign(message []byte, sk *SigningKey) Signature {
	priv := stded25519.PrivateKey(sk.compound[:])
	sig := stded25519.Sign(priv, message)
	var out Signature
	copy(out[:], sig)
	return out
}

// Verify checks sig over message under vk.
func Verify(vk VerificationKey, message []byte, sig Signature) error {
	if !stded25519.Verify(vk[:], message, sig[:]) {
		return ErrVerificationFailed
	}
	return nil
}

// Forget overwrites the standard (unlocked) signing key's compound with
// zeros in place; the key holds no locked memory to release. It exists so
// SigningKey satisfies the same forget-before-drop discipline as
// LockedSigningKey.
func (sk *SigningKey) Forget() {
	for i := range sk.compound {
		sk.compound[i] = 0
	}
}

// MarshalCBOR encodes vk as a canonical CBOR byte string. Verification
// keys, unlike signing keys, have a wire codec (rule 5 of the key
// material lifecycle: only secrets are excluded from CBOR).
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

// MarshalCBOR encodes sig as a canonical CBOR byte string.
func (sig Signature) MarshalCBOR() ([]byte, error) {
	return cborx.RawBytes(sig[:])
}

// UnmarshalCBOR decodes a CBOR byte string produced by MarshalCBOR.
func (sig *Signature) UnmarshalCBOR(data []byte) error {
	b, err := cborx.DecodeRawBytes(data, SignatureSize)
	if err != nil {
		return err
	}
	copy(sig[:], b)
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
		return vk, fmt.Errorf("%w: verification key must be %d bytes, got %d", ErrMalformed, VerificationKeySize, len(b))
	}
	copy(vk[:], b)
	return vk, nil
}

// RawSerialiseSignature returns sig's 64-byte wire encoding.
func RawSerialiseSignature(sig Signature) []byte {
	out := make([]byte, SignatureSize)
	copy(out, sig[:])
	return out
}

// RawDeserialiseSignature parses a 64-byte signature.
func RawDeserialiseSignature(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureSize {
		return sig, fmt.Errorf("%w: signature must be %d bytes, got %d", ErrMalformed, SignatureSize, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// RawSerialiseSigningKey emits exactly the 32-byte seed (never the derived
// verification key half), matching the "signing keys have no wire codec"
// discipline: this is a backup escape hatch, not a CBOR path.
func RawSerialiseSigningKey(sk *SigningKey) []byte {
	out := make([]byte, SeedSize)
	copy(out, sk.compound[:SeedSize])
	return out
}

// RawDeserialiseSigningKey expands a 32-byte seed back into the 64-byte
// compound.
func RawDeserialiseSigningKey(seed []byte) (*SigningKey, error) {
	return GenKey(seed)
}

// DirectSize is the number of bytes DirectSerialise pushes: the 32-byte
// seed only.
func (sk *SigningKey) DirectSize() int { return SeedSize }

// DirectSerialise pushes the 32-byte seed half of the compound.
func (sk *SigningKey) DirectSerialise(push directserial.PushFunc) error {
	return directserial.Push(push, sk.compound[:SeedSize])
}

// DirectDeserialiseSigningKey pulls a 32-byte seed and expands it into a
// fresh signing key.
func DirectDeserialiseSigningKey(pull directserial.PullFunc) (*SigningKey, error) {
	var seed [SeedSize]byte
	if err := directserial.Pull(pull, seed[:]); err != nil {
		return nil, err
	}
	defer func() {
		for i := range seed {
			seed[i] = 0
		}
	}()
	return GenKey(seed[:])
}

// LockedSigningKey is semantically identical to SigningKey, but its
// 64-byte compound lives in a page-locked, zero-on-drop memlock.Region.
type LockedSigningKey struct {
	region *memlock.Region
}

// GenKeyLocked deterministically derives a locked signing key from a
// 32-byte seed.
func GenKeyLocked(seed []byte) (*LockedSigningKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrMalformed, SeedSize, len(seed))
	}
	region, err := memlock.Allocate(SigningKeySize)
	if err != nil {
		return nil, err
	}
	priv := stded25519.NewKeyFromSeed(seed)
	copy(region.Bytes(), priv)
	return &LockedSigningKey{region: region}, nil
}

// DeriveVerificationKey returns the verification key paired with sk.
func (sk *LockedSigningKey) DeriveVerificationKey() VerificationKey {
	var vk VerificationKey
	copy(vk[:], sk.region.Bytes()[SeedSize:])
	return vk
}

// SignLocked produces a deterministic Ed25519 signature over message.
func SignLocked(message []byte, sk *LockedSigningKey) Signature {
	priv := stded25519.PrivateKey(sk.region.Bytes())
	sig := stded25519.Sign(priv, message)
	var out Signature
	copy(out[:], sig)
	return out
}

// Forget zeroes and releases the locked region. It is idempotent.
func (sk *LockedSigningKey) Forget() {
	sk.region.Drop()
}

// Clone allocates a fresh locked region and copies sk's compound into it.
func (sk *LockedSigningKey) Clone() (*LockedSigningKey, error) {
	r, err := sk.region.Clone()
	if err != nil {
		return nil, err
	}
	return &LockedSigningKey{region: r}, nil
}

// RawSerialiseLockedSigningKey emits exactly the 32-byte seed half of sk's
// locked compound (never the derived verification key half), matching the
// "signing keys have no wire codec" discipline: this is a backup escape
// hatch, not a CBOR path.
func RawSerialiseLockedSigningKey(sk *LockedSigningKey) []byte {
	out := make([]byte, SeedSize)
	copy(out, sk.region.Bytes()[:SeedSize])
	return out
}

// RawDeserialiseLockedSigningKey expands a 32-byte seed back into a freshly
// allocated locked signing key.
func RawDeserialiseLockedSigningKey(seed []byte) (*LockedSigningKey, error) {
	return GenKeyLocked(seed)
}

// DirectSize is the number of bytes DirectSerialise pushes.
func (sk *LockedSigningKey) DirectSize() int { return SeedSize }

// DirectSerialise pushes the 32-byte seed half of the locked compound
// through a pinned staging buffer, so the copy in flight is page-locked
// (never swappable) for the duration of the push, not just zeroed
// afterward.
func (sk *LockedSigningKey) DirectSerialise(push directserial.PushFunc) error {
	return directserial.PushPinned(push, sk.region.Bytes()[:SeedSize])
}

// DirectDeserialiseLockedSigningKey pulls a 32-byte seed into a pinned
// staging buffer and expands it directly into a freshly allocated locked
// region, without ever holding the seed in ordinary, swappable memory.
func DirectDeserialiseLockedSigningKey(pull directserial.PullFunc) (*LockedSigningKey, error) {
	staging, err := directserial.PullPinned(pull, SeedSize)
	if err != nil {
		return nil, err
	}
	defer staging.Drop()

	var sk *LockedSigningKey
	err = staging.WithPointer(func(seed []byte) error {
		var genErr error
		sk, genErr = GenKeyLocked(seed)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return sk, nil
}
