package ed25519_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FractionEstate/cardano-base-rust-sub001/cborx"
	dsign "github.com/FractionEstate/cardano-base-rust-sub001/dsign/ed25519"
)

func TestGenKeyDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x07}, dsign.SeedSize)

	sk1, err := dsign.GenKey(seed)
	require.NoError(t, err)
	sk2, err := dsign.GenKey(seed)
	require.NoError(t, err)

	vk1 := sk1.DeriveVerificationKey()
	vk2 := sk2.DeriveVerificationKey()
	assert.Equal(t, vk1, vk2, "same seed must yield the same verification key")

	sig1 := dsign.Sign([]byte("cardano"), sk1)
	sig2 := dsign.Sign([]byte("cardano"), sk2)
	assert.Equal(t, sig1, sig2, "signing is deterministic for a fixed (sk, message)")
}

func TestSignVerifyRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{42}, dsign.SeedSize)
	sk, err := dsign.GenKey(seed)
	require.NoError(t, err)
	vk := sk.DeriveVerificationKey()

	msg := []byte("cardano")
	sig := dsign.Sign(msg, sk)

	require.NoError(t, dsign.Verify(vk, msg, sig))

	corrupted := sig
	corrupted[0] ^= 0x01
	assert.ErrorIs(t, dsign.Verify(vk, msg, corrupted), dsign.ErrVerificationFailed)
}

func TestRawSerialiseSigningKeyEmitsSeedOnly(t *testing.T) {
	seed := bytes.Repeat([]byte{1}, dsign.SeedSize)
	sk, err := dsign.GenKey(seed)
	require.NoError(t, err)

	raw := dsign.RawSerialiseSigningKey(sk)
	assert.Len(t, raw, dsign.SeedSize)
	assert.Equal(t, seed, raw)

	sk2, err := dsign.RawDeserialiseSigningKey(raw)
	require.NoError(t, err)
	assert.Equal(t, sk.DeriveVerificationKey(), sk2.DeriveVerificationKey())
}

func TestRawSerialiseVerificationKeyRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{9}, dsign.SeedSize)
	sk, err := dsign.GenKey(seed)
	require.NoError(t, err)
	vk := sk.DeriveVerificationKey()

	enc := dsign.RawSerialiseVerificationKey(vk)
	assert.Len(t, enc, dsign.VerificationKeySize)

	got, err := dsign.RawDeserialiseVerificationKey(enc)
	require.NoError(t, err)
	assert.Equal(t, vk, got)

	_, err = dsign.RawDeserialiseVerificationKey(enc[:10])
	assert.ErrorIs(t, err, dsign.ErrMalformed)
}

func TestDirectSerialiseRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{3}, dsign.SeedSize)
	sk, err := dsign.GenKeyLocked(seed)
	require.NoError(t, err)
	defer sk.Forget()

	var buf bytes.Buffer
	err = sk.DirectSerialise(func(p []byte) error {
		_, werr := buf.Write(p)
		return werr
	})
	require.NoError(t, err)
	assert.Equal(t, dsign.SeedSize, buf.Len())

	r := bytes.NewReader(buf.Bytes())
	sk2, err := dsign.DirectDeserialiseLockedSigningKey(func(dst []byte) error {
		_, rerr := r.Read(dst)
		return rerr
	})
	require.NoError(t, err)
	defer sk2.Forget()

	assert.Equal(t, sk.DeriveVerificationKey(), sk2.DeriveVerificationKey())
}

func TestRawSerialiseLockedSigningKeyRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{4}, dsign.SeedSize)
	sk, err := dsign.GenKeyLocked(seed)
	require.NoError(t, err)
	defer sk.Forget()

	raw := dsign.RawSerialiseLockedSigningKey(sk)
	assert.Equal(t, seed, raw)

	sk2, err := dsign.RawDeserialiseLockedSigningKey(raw)
	require.NoError(t, err)
	defer sk2.Forget()
	assert.Equal(t, sk.DeriveVerificationKey(), sk2.DeriveVerificationKey())
}

func TestVerificationKeyCBORRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{6}, dsign.SeedSize)
	sk, err := dsign.GenKey(seed)
	require.NoError(t, err)
	vk := sk.DeriveVerificationKey()

	encoded, err := cborx.Serialise(vk)
	require.NoError(t, err)

	var decoded dsign.VerificationKey
	require.NoError(t, cborx.DecodeFull(encoded, &decoded))
	assert.Equal(t, vk, decoded)

	err = cborx.DecodeFull(append(encoded, 0xFF), &decoded)
	var leftover *cborx.LeftoverError
	assert.ErrorAs(t, err, &leftover)
}

func TestSignatureCBORRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{14}, dsign.SeedSize)
	sk, err := dsign.GenKey(seed)
	require.NoError(t, err)
	sig := dsign.Sign([]byte("cbor"), sk)

	encoded, err := cborx.Serialise(sig)
	require.NoError(t, err)

	var decoded dsign.Signature
	require.NoError(t, cborx.DecodeFull(encoded, &decoded))
	assert.Equal(t, sig, decoded)
}

func TestLockedSignMatchesUnlocked(t *testing.T) {
	seed := bytes.Repeat([]byte{5}, dsign.SeedSize)
	unlocked, err := dsign.GenKey(seed)
	require.NoError(t, err)
	locked, err := dsign.GenKeyLocked(seed)
	require.NoError(t, err)
	defer locked.Forget()

	msg := []byte("kes base layer")
	assert.Equal(t, dsign.Sign(msg, unlocked), dsign.SignLocked(msg, locked))
}
