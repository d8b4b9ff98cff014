package compactsingle_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dsign "github.com/FractionEstate/cardano-base-rust-sub001/dsign/ed25519"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes/compactsingle"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	algo := compactsingle.Algorithm
	seed := bytes.Repeat([]byte{7}, dsign.SeedSize)

	sk, err := algo.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()

	vk, err := algo.DeriveVerificationKey(sk)
	require.NoError(t, err)

	sig, err := algo.Sign(nil, 0, []byte("hello"), sk)
	require.NoError(t, err)
	assert.Len(t, sig, algo.SignatureSize())

	assert.NoError(t, algo.Verify(nil, vk, 0, []byte("hello"), sig))
	assert.Error(t, algo.Verify(nil, vk, 0, []byte("goodbye"), sig))
}

func TestExtractVerificationKey(t *testing.T) {
	algo := compactsingle.Algorithm
	seed := bytes.Repeat([]byte{9}, dsign.SeedSize)

	sk, err := algo.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()

	vk, err := algo.DeriveVerificationKey(sk)
	require.NoError(t, err)

	sig, err := algo.Sign(nil, 0, []byte("msg"), sk)
	require.NoError(t, err)

	embedded, err := algo.ExtractVerificationKey(sig, 0)
	require.NoError(t, err)
	assert.Equal(t, vk, embedded)
}

func TestRawAndDirectSerialiseRoundTrip(t *testing.T) {
	algo := compactsingle.Algorithm
	seed := bytes.Repeat([]byte{11}, dsign.SeedSize)

	sk, err := algo.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()
	vk, err := algo.DeriveVerificationKey(sk)
	require.NoError(t, err)

	raw := sk.RawSerialise()
	assert.Len(t, raw, algo.SigningKeyRawSize())
	sk2, err := algo.RawDeserialiseSigningKey(raw)
	require.NoError(t, err)
	defer sk2.Forget()
	vk2, err := algo.DeriveVerificationKey(sk2)
	require.NoError(t, err)
	assert.Equal(t, vk, vk2)

	var buf bytes.Buffer
	require.NoError(t, sk.DirectSerialise(func(p []byte) error {
		buf.Write(p)
		return nil
	}))
	assert.Equal(t, sk.DirectSize(), buf.Len())
	sk3, err := algo.DirectDeserialiseSigningKey(func(dst []byte) error {
		_, err := buf.Read(dst)
		return err
	})
	require.NoError(t, err)
	defer sk3.Forget()
	vk3, err := algo.DeriveVerificationKey(sk3)
	require.NoError(t, err)
	assert.Equal(t, vk, vk3)
}

func TestUpdateAlwaysExpires(t *testing.T) {
	algo := compactsingle.Algorithm
	seed := bytes.Repeat([]byte{1}, dsign.SeedSize)

	sk, err := algo.GenKey(seed)
	require.NoError(t, err)

	next, err := algo.Update(sk, 0)
	assert.ErrorIs(t, err, kes.ErrExpired)
	assert.Nil(t, next)
}
