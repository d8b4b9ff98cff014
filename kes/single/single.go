// Package single implements the Single KES base algorithm: exactly one
// period, built directly over Ed25519 DSIGN.
package single

import (
	"fmt"

	dsign "github.com/FractionEstate/cardano-base-rust-sub001/dsign/ed25519"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/directserial"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes"
)

// TotalPeriods is the number of periods a Single key is valid for.
const TotalPeriods = 1

// Ed25519 is the Single KES algorithm over Ed25519 DSIGN.
type Ed25519 struct{}

// Algorithm is the singleton Single-over-Ed25519 algorithm value.
var Algorithm kes.Algorithm = Ed25519{}

func (Ed25519) Name() string            { return "SingleEd25519" }
func (Ed25519) TotalPeriods() uint64     { return TotalPeriods }
func (Ed25519) VerificationKeySize() int { return dsign.VerificationKeySize }
func (Ed25519) SignatureSize() int       { return dsign.SignatureSize }

// SigningKeyRawSize is the DSIGN seed size: a Single signing key holds
// nothing beyond the wrapped Ed25519 key.
func (Ed25519) SigningKeyRawSize() int { return dsign.SeedSize }

// SigningKey wraps a locked Ed25519 DSIGN signing key.
type SigningKey struct {
	sk *dsign.LockedSigningKey
}

// Forget zeroes and releases the underlying locked DSIGN key.
func (k *SigningKey) Forget() {
	if k.sk != nil {
		k.sk.Forget()
		k.sk = nil
	}
}

// RawSerialise emits the wrapped DSIGN key's 32-byte seed.
func (k *SigningKey) RawSerialise() []byte {
	return dsign.RawSerialiseLockedSigningKey(k.sk)
}

// DirectSize is the number of bytes DirectSerialise pushes.
func (k *SigningKey) DirectSize() int { return k.sk.DirectSize() }

// DirectSerialise pushes the wrapped DSIGN key's seed through a pinned
// staging buffer.
func (k *SigningKey) DirectSerialise(push directserial.PushFunc) error {
	return k.sk.DirectSerialise(push)
}

func (Ed25519) GenKey(seed []byte) (kes.SigningKey, error) {
	sk, err := dsign.GenKeyLocked(seed)
	if err != nil {
		return nil, err
	}
	return &SigningKey{sk: sk}, nil
}

// RawDeserialiseSigningKey expands a 32-byte seed back into a Single
// signing key.
func (Ed25519) RawDeserialiseSigningKey(b []byte) (kes.SigningKey, error) {
	sk, err := dsign.RawDeserialiseLockedSigningKey(b)
	if err != nil {
		return nil, err
	}
	return &SigningKey{sk: sk}, nil
}

// DirectDeserialiseSigningKey pulls a 32-byte seed into a pinned staging
// buffer and expands it directly into a Single signing key.
func (Ed25519) DirectDeserialiseSigningKey(pull directserial.PullFunc) (kes.SigningKey, error) {
	sk, err := dsign.DirectDeserialiseLockedSigningKey(pull)
	if err != nil {
		return nil, err
	}
	return &SigningKey{sk: sk}, nil
}

func (Ed25519) DeriveVerificationKey(skIface kes.SigningKey) ([]byte, error) {
	sk, ok := skIface.(*SigningKey)
	if !ok {
		return nil, fmt.Errorf("%w: not a single.SigningKey", kes.ErrMalformed)
	}
	vk := sk.sk.DeriveVerificationKey()
	return vk[:], nil
}

func (Ed25519) Sign(ctx []byte, period uint64, message []byte, skIface kes.SigningKey) ([]byte, error) {
	if period != 0 {
		return nil, kes.ErrPeriodOutOfRange
	}
	sk, ok := skIface.(*SigningKey)
	if !ok {
		return nil, fmt.Errorf("%w: not a single.SigningKey", kes.ErrMalformed)
	}
	sig := dsign.SignLocked(contextualise(ctx, message), sk.sk)
	return sig[:], nil
}

func (Ed25519) Verify(ctx []byte, vk []byte, period uint64, message []byte, sig []byte) error {
	if period != 0 {
		return kes.ErrPeriodOutOfRange
	}
	vkArr, err := dsign.RawDeserialiseVerificationKey(vk)
	if err != nil {
		return err
	}
	sigArr, err := dsign.RawDeserialiseSignature(sig)
	if err != nil {
		return err
	}
	if err := dsign.Verify(vkArr, contextualise(ctx, message), sigArr); err != nil {
		return kes.ErrVerificationFailed
	}
	return nil
}

// Update always returns ErrExpired: a Single key is valid for exactly one
// period.
func (Ed25519) Update(skIface kes.SigningKey, period uint64) (kes.SigningKey, error) {
	sk, ok := skIface.(*SigningKey)
	if !ok {
		return nil, fmt.Errorf("%w: not a single.SigningKey", kes.ErrMalformed)
	}
	sk.Forget()
	return nil, kes.ErrExpired
}

func (Ed25519) Forget(skIface kes.SigningKey) {
	skIface.Forget()
}

// contextualise prepends ctx to message when ctx is non-empty, matching the
// convention shared by every KES algorithm in this module: a context is
// domain-separation data signed alongside the message, not a protocol
// detail of any one base algorithm.
func contextualise(ctx, message []byte) []byte {
	if len(ctx) == 0 {
		return message
	}
	out := make([]byte, 0, len(ctx)+len(message))
	out = append(out, ctx...)
	out = append(out, message...)
	return out
}
