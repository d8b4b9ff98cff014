// Package compactsum implements the CompactSum KES composition: the same
// recursive binary-tree construction as Sum, but over CompactAlgorithm
// children, so that the currently-active child's verification key never
// needs to be repeated in the parent signature — it is recovered from the
// child signature itself.
package compactsum

import (
	"fmt"

	"github.com/FractionEstate/cardano-base-rust-sub001/hashalgo"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/directserial"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/memlock"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/seedutil"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes"
)

// CompactSum is a KES algorithm whose verification key is H(vk0 || vk1),
// like Sum, but whose signature carries only the inactive side's
// verification key: the active side's is extracted from the embedded
// child signature.
type CompactSum struct {
	child kes.CompactAlgorithm
	hash  hashalgo.Algorithm
}

// New constructs the CompactSum composition over child using hash for
// both the parent verification-key hash and the seed-expansion tree.
func New(child kes.CompactAlgorithm, hash hashalgo.Algorithm) *CompactSum {
	return &CompactSum{child: child, hash: hash}
}

// NewTower builds a depth-d CompactSum tower over base: depth 0 returns
// base itself, depth 1 is CompactSum(base), depth 2 is
// CompactSum(CompactSum(base)), and so on. Mainnet Cardano's KES key is
// depth 7 over CompactSingle/Ed25519 (128 periods).
func NewTower(depth int, base kes.CompactAlgorithm, hash hashalgo.Algorithm) kes.CompactAlgorithm {
	algo := base
	for i := 0; i < depth; i++ {
		algo = New(algo, hash)
	}
	return algo
}

func (s *CompactSum) Name() string { return "CompactSum" + s.child.Name() }

func (s *CompactSum) TotalPeriods() uint64 { return 2 * s.child.TotalPeriods() }

func (s *CompactSum) VerificationKeySize() int { return s.hash.OutputSize() }

// SignatureSize is the child's (compact) signature size plus exactly one
// verification key — the inactive side's — rather than two.
func (s *CompactSum) SignatureSize() int {
	return s.child.SignatureSize() + s.child.VerificationKeySize()
}

// SigningKeyRawSize is the recursive child signing-key size, plus the
// locked seed reserved for the other subtree, plus both child
// verification keys — the exact layout RawSerialise/DirectSerialise
// produce.
func (s *CompactSum) SigningKeyRawSize() int {
	return s.child.SigningKeyRawSize() + s.hash.OutputSize() + 2*s.child.VerificationKeySize()
}

// SigningKey is the CompactSum signing key tuple: the currently-active
// child signing key, the locked seed reserved for the not-yet-activated
// subtree (nil once consumed), and both child verification keys.
type SigningKey struct {
	active    kes.SigningKey
	otherSeed *memlock.Region
	seedSize  int
	vk0, vk1  []byte
}

// Forget releases the active child key and, if still present, the locked
// seed reserved for the other subtree.
func (sk *SigningKey) Forget() {
	if sk.active != nil {
		sk.active.Forget()
		sk.active = nil
	}
	if sk.otherSeed != nil {
		sk.otherSeed.Drop()
		sk.otherSeed = nil
	}
}

// RawSerialise emits the recursive child || otherSeed || vk0 || vk1
// layout. Once otherSeed has been consumed by the period-tc transition,
// its slot is emitted as all-zero bytes: the forward-security property
// requires the consumed seed to really be gone, and the fixed-size layout
// still lets RawDeserialiseSigningKey slice it back out.
func (sk *SigningKey) RawSerialise() []byte {
	out := make([]byte, 0, len(sk.active.RawSerialise())+sk.seedSize+len(sk.vk0)+len(sk.vk1))
	out = append(out, sk.active.RawSerialise()...)
	if sk.otherSeed != nil {
		out = append(out, sk.otherSeed.Bytes()...)
	} else {
		out = append(out, make([]byte, sk.seedSize)...)
	}
	out = append(out, sk.vk0...)
	out = append(out, sk.vk1...)
	return out
}

// DirectSize is the number of bytes DirectSerialise pushes.
func (sk *SigningKey) DirectSize() int {
	return sk.active.DirectSize() + sk.seedSize + len(sk.vk0) + len(sk.vk1)
}

// DirectSerialise pushes the child key, then the other-subtree seed (or
// its zeroed placeholder once consumed) through a pinned staging buffer,
// then both verification keys.
func (sk *SigningKey) DirectSerialise(push directserial.PushFunc) error {
	if err := sk.active.DirectSerialise(push); err != nil {
		return err
	}
	if sk.otherSeed != nil {
		if err := directserial.PushPinned(push, sk.otherSeed.Bytes()); err != nil {
			return err
		}
	} else {
		if err := directserial.PushPinned(push, make([]byte, sk.seedSize)); err != nil {
			return err
		}
	}
	if err := directserial.Push(push, sk.vk0); err != nil {
		return err
	}
	return directserial.Push(push, sk.vk1)
}

func (s *CompactSum) GenKey(seed []byte) (kes.SigningKey, error) {
	left := seedutil.DeriveLeft(s.hash, seed, s.hash.OutputSize())
	right := seedutil.DeriveRight(s.hash, seed, s.hash.OutputSize())

	sk0, err := s.child.GenKey(left)
	if err != nil {
		return nil, err
	}
	vk0, err := s.child.DeriveVerificationKey(sk0)
	if err != nil {
		sk0.Forget()
		return nil, err
	}

	sk1, err := s.child.GenKey(right)
	if err != nil {
		sk0.Forget()
		return nil, err
	}
	vk1, err := s.child.DeriveVerificationKey(sk1)
	if err != nil {
		sk0.Forget()
		sk1.Forget()
		return nil, err
	}
	sk1.Forget() // the right subtree's key is re-derived from otherSeed at transition time

	otherSeed, err := memlock.Allocate(len(right))
	if err != nil {
		sk0.Forget()
		return nil, err
	}
	copy(otherSeed.Bytes(), right)
	for i := range right {
		right[i] = 0
	}
	for i := range left {
		left[i] = 0
	}

	return &SigningKey{active: sk0, otherSeed: otherSeed, seedSize: s.hash.OutputSize(), vk0: vk0, vk1: vk1}, nil
}

// RawDeserialiseSigningKey parses the child || otherSeed || vk0 || vk1
// layout RawSerialise produces back into a live CompactSum signing key.
// The reconstructed key always carries its otherSeed slot, even when the
// original key had already consumed and zeroed it at the period-tc
// transition. In that case the slot holds zeros, and it is never read
// again: Update reads otherSeed only at the period-tc transition, which
// such a key has already passed.
func (s *CompactSum) RawDeserialiseSigningKey(b []byte) (kes.SigningKey, error) {
	want := s.SigningKeyRawSize()
	if len(b) != want {
		return nil, fmt.Errorf("%w: compactsum signing key must be %d bytes, got %d", kes.ErrMalformed, want, len(b))
	}
	childSize := s.child.SigningKeyRawSize()
	seedSize := s.hash.OutputSize()
	vkSize := s.child.VerificationKeySize()

	childBytes := b[:childSize]
	seedBytes := b[childSize : childSize+seedSize]
	vk0 := append([]byte(nil), b[childSize+seedSize:childSize+seedSize+vkSize]...)
	vk1 := append([]byte(nil), b[childSize+seedSize+vkSize:]...)

	active, err := s.child.RawDeserialiseSigningKey(childBytes)
	if err != nil {
		return nil, err
	}
	otherSeed, err := memlock.Allocate(seedSize)
	if err != nil {
		active.Forget()
		return nil, err
	}
	copy(otherSeed.Bytes(), seedBytes)

	return &SigningKey{active: active, otherSeed: otherSeed, seedSize: seedSize, vk0: vk0, vk1: vk1}, nil
}

// DirectDeserialiseSigningKey pulls the child || otherSeed || vk0 || vk1
// layout through pull, reconstructing the key without holding the pulled
// seed bytes in ordinary, unpinned memory.
func (s *CompactSum) DirectDeserialiseSigningKey(pull directserial.PullFunc) (kes.SigningKey, error) {
	active, err := s.child.DirectDeserialiseSigningKey(pull)
	if err != nil {
		return nil, err
	}
	seedSize := s.hash.OutputSize()
	staging, err := directserial.PullPinned(pull, seedSize)
	if err != nil {
		active.Forget()
		return nil, err
	}
	defer staging.Drop()

	otherSeed, err := memlock.Allocate(seedSize)
	if err != nil {
		active.Forget()
		return nil, err
	}
	if err := staging.WithPointer(func(seed []byte) error {
		copy(otherSeed.Bytes(), seed)
		return nil
	}); err != nil {
		active.Forget()
		otherSeed.Drop()
		return nil, err
	}

	vkSize := s.child.VerificationKeySize()
	vk0 := make([]byte, vkSize)
	if err := directserial.Pull(pull, vk0); err != nil {
		active.Forget()
		otherSeed.Drop()
		return nil, err
	}
	vk1 := make([]byte, vkSize)
	if err := directserial.Pull(pull, vk1); err != nil {
		active.Forget()
		otherSeed.Drop()
		return nil, err
	}

	return &SigningKey{active: active, otherSeed: otherSeed, seedSize: seedSize, vk0: vk0, vk1: vk1}, nil
}

func (s *CompactSum) DeriveVerificationKey(skIface kes.SigningKey) ([]byte, error) {
	sk, ok := skIface.(*SigningKey)
	if !ok {
		return nil, fmt.Errorf("%w: not a compactsum.SigningKey", kes.ErrMalformed)
	}
	return s.hash.HashConcat(sk.vk0, sk.vk1), nil
}

func (s *CompactSum) Sign(ctx []byte, period uint64, message []byte, skIface kes.SigningKey) ([]byte, error) {
	sk, ok := skIface.(*SigningKey)
	if !ok {
		return nil, fmt.Errorf("%w: not a compactsum.SigningKey", kes.ErrMalformed)
	}
	tc := s.child.TotalPeriods()
	if period >= 2*tc {
		return nil, kes.ErrPeriodOutOfRange
	}

	childPeriod := period
	vkOther := sk.vk1
	if period >= tc {
		childPeriod = period - tc
		vkOther = sk.vk0
	}

	sigma, err := s.child.Sign(ctx, childPeriod, message, sk.active)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(sigma)+len(vkOther))
	out = append(out, sigma...)
	out = append(out, vkOther...)
	return out, nil
}

// ExtractVerificationKey recovers the composite's own verification key
// H(vk0 || vk1) from sig, produced at period. It recurses one level at a
// time: the active side's verification key comes from asking the child to
// extract its own, at the child-relative period; the other side's is
// carried directly in sig.
func (s *CompactSum) ExtractVerificationKey(sig []byte, period uint64) ([]byte, error) {
	tc := s.child.TotalPeriods()
	if period >= 2*tc {
		return nil, kes.ErrPeriodOutOfRange
	}

	childSigSize := s.child.SignatureSize()
	childVKSize := s.child.VerificationKeySize()
	if len(sig) != childSigSize+childVKSize {
		return nil, kes.ErrMalformed
	}
	sigma := sig[:childSigSize]
	vkOther := sig[childSigSize:]

	childPeriod := period
	if period >= tc {
		childPeriod = period - tc
	}
	vkActive, err := s.child.ExtractVerificationKey(sigma, childPeriod)
	if err != nil {
		return nil, err
	}

	var vk0, vk1 []byte
	if period < tc {
		vk0, vk1 = vkActive, vkOther
	} else {
		vk0, vk1 = vkOther, vkActive
	}
	return s.hash.HashConcat(vk0, vk1), nil
}

func (s *CompactSum) Verify(ctx []byte, vk []byte, period uint64, message []byte, sig []byte) error {
	tc := s.child.TotalPeriods()
	if period >= 2*tc {
		return kes.ErrPeriodOutOfRange
	}

	childSigSize := s.child.SignatureSize()
	childVKSize := s.child.VerificationKeySize()
	if len(sig) != childSigSize+childVKSize {
		return kes.ErrMalformed
	}
	sigma := sig[:childSigSize]
	vkOther := sig[childSigSize:]

	childPeriod := period
	if period >= tc {
		childPeriod = period - tc
	}
	vkActive, err := s.child.ExtractVerificationKey(sigma, childPeriod)
	if err != nil {
		return err
	}

	var vk0, vk1 []byte
	if period < tc {
		vk0, vk1 = vkActive, vkOther
	} else {
		vk0, vk1 = vkOther, vkActive
	}
	expected := s.hash.HashConcat(vk0, vk1)
	if string(expected) != string(vk) {
		return kes.ErrVerificationFailed
	}

	return s.child.Verify(ctx, vkActive, childPeriod, message, sigma)
}

func (s *CompactSum) Update(skIface kes.SigningKey, period uint64) (kes.SigningKey, error) {
	sk, ok := skIface.(*SigningKey)
	if !ok {
		return nil, fmt.Errorf("%w: not a compactsum.SigningKey", kes.ErrMalformed)
	}
	tc := s.child.TotalPeriods()
	total := 2 * tc

	if period+1 >= total {
		sk.Forget()
		return nil, kes.ErrExpired
	}

	switch {
	case period+1 < tc:
		newActive, err := s.child.Update(sk.active, period)
		if err != nil {
			return nil, err
		}
		sk.active = newActive
		return sk, nil

	case period+1 == tc:
		newActive, err := s.child.GenKey(sk.otherSeed.Bytes())
		if err != nil {
			return nil, err
		}
		sk.active.Forget()
		sk.otherSeed.Drop()
		sk.otherSeed = nil
		sk.active = newActive
		return sk, nil

	default:
		newActive, err := s.child.Update(sk.active, period-tc)
		if err != nil {
			return nil, err
		}
		sk.active = newActive
		return sk, nil
	}
}

func (s *CompactSum) Forget(skIface kes.SigningKey) {
	skIface.Forget()
}
