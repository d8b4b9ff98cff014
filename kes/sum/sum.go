// Package sum implements the Sum KES composition: a recursive binary-tree
// construction that doubles a child algorithm's period count while
// preserving forward security. A depth-d Sum tower is built by nesting
// New d times over a base algorithm (see NewTower).
package sum

import (
	"fmt"

	"github.com/FractionEstate/cardano-base-rust-sub001/hashalgo"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/directserial"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/memlock"
	"github.com/FractionEstate/cardano-base-rust-sub001/internal/seedutil"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes"
)

// Sum is a KES algorithm whose verification key is H(vk0 || vk1) and whose
// period range is the concatenation of its child's two copies.
type Sum struct {
	child kes.Algorithm
	hash  hashalgo.Algorithm
}

// New constructs the Sum composition over child using hash for both the
// parent verification-key hash and the seed-expansion tree.
func New(child kes.Algorithm, hash hashalgo.Algorithm) *Sum {
	return &Sum{child: child, hash: hash}
}

// NewTower builds a depth-d Sum tower over base: depth 0 returns base
// itself, depth 1 is Sum(base), depth 2 is Sum(Sum(base)), and so on.
// Mainnet Cardano uses depth 7 (128 periods) over CompactSingle/Ed25519
// via the compactsum package; Sum's own tower exists for the plain
// (non-compact) variant described by the same recursion.
func NewTower(depth int, base kes.Algorithm, hash hashalgo.Algorithm) kes.Algorithm {
	algo := base
	for i := 0; i < depth; i++ {
		algo = New(algo, hash)
	}
	return algo
}

func (s *Sum) Name() string { return "Sum" + s.child.Name() }

func (s *Sum) TotalPeriods() uint64 { return 2 * s.child.TotalPeriods() }

func (s *Sum) VerificationKeySize() int { return s.hash.OutputSize() }

func (s *Sum) SignatureSize() int {
	return s.child.SignatureSize() + 2*s.child.VerificationKeySize()
}

// SigningKeyRawSize is the recursive child signing-key size, plus the
// locked seed reserved for the other subtree, plus both child
// verification keys — the exact layout RawSerialise/DirectSerialise
// produce.
func (s *Sum) SigningKeyRawSize() int {
	return s.child.SigningKeyRawSize() + s.hash.OutputSize() + 2*s.child.VerificationKeySize()
}

// SigningKey is the Sum signing key tuple: the currently-active child
// signing key, the locked seed reserved for the not-yet-activated
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

func (s *Sum) GenKey(seed []byte) (kes.SigningKey, error) {
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
// layout RawSerialise produces back into a live Sum signing key. The
// reconstructed key always carries its otherSeed slot, even when the
// original key had already consumed and zeroed it at the period-tc
// transition. In that case the slot holds zeros, and it is never read
// again: Update reads otherSeed only at the period-tc transition, which
// such a key has already passed.
func (s *Sum) RawDeserialiseSigningKey(b []byte) (kes.SigningKey, error) {
	want := s.SigningKeyRawSize()
	if len(b) != want {
		return nil, fmt.Errorf("%w: sum signing key must be %d bytes, got %d", kes.ErrMalformed, want, len(b))
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
func (s *Sum) DirectDeserialiseSigningKey(pull directserial.PullFunc) (kes.SigningKey, error) {
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

func (s *Sum) DeriveVerificationKey(skIface kes.SigningKey) ([]byte, error) {
	sk, ok := skIface.(*SigningKey)
	if !ok {
		return nil, fmt.Errorf("%w: not a sum.SigningKey", kes.ErrMalformed)
	}
	return s.hash.HashConcat(sk.vk0, sk.vk1), nil
}

func (s *Sum) Sign(ctx []byte, period uint64, message []byte, skIface kes.SigningKey) ([]byte, error) {
	sk, ok := skIface.(*SigningKey)
	if !ok {
		return nil, fmt.Errorf("%w: not a sum.SigningKey", kes.ErrMalformed)
	}
	tc := s.child.TotalPeriods()
	if period >= 2*tc {
		return nil, kes.ErrPeriodOutOfRange
	}

	childPeriod := period
	if period >= tc {
		childPeriod = period - tc
	}

	sigma, err := s.child.Sign(ctx, childPeriod, message, sk.active)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(sigma)+len(sk.vk0)+len(sk.vk1))
	out = append(out, sigma...)
	out = append(out, sk.vk0...)
	out = append(out, sk.vk1...)
	return out, nil
}

func (s *Sum) Verify(ctx []byte, vk []byte, period uint64, message []byte, sig []byte) error {
	tc := s.child.TotalPeriods()
	if period >= 2*tc {
		return kes.ErrPeriodOutOfRange
	}

	childSigSize := s.child.SignatureSize()
	childVKSize := s.child.VerificationKeySize()
	if len(sig) != childSigSize+2*childVKSize {
		return kes.ErrMalformed
	}
	sigma := sig[:childSigSize]
	vk0 := sig[childSigSize : childSigSize+childVKSize]
	vk1 := sig[childSigSize+childVKSize:]

	expected := s.hash.HashConcat(vk0, vk1)
	if string(expected) != string(vk) {
		return kes.ErrVerificationFailed
	}

	if period < tc {
		return s.child.Verify(ctx, vk0, period, message, sigma)
	}
	return s.child.Verify(ctx, vk1, period-tc, message, sigma)
}

func (s *Sum) Update(skIface kes.SigningKey, period uint64) (kes.SigningKey, error) {
	sk, ok := skIface.(*SigningKey)
	if !ok {
		return nil, fmt.Errorf("%w: not a sum.SigningKey", kes.ErrMalformed)
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

func (s *Sum) Forget(skIface kes.SigningKey) {
	skIface.Forget()
}
