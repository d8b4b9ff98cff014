package draft03_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FractionEstate/cardano-base-rust-sub001/cborx"
	"github.com/FractionEstate/cardano-base-rust-sub001/vrf/draft03"
)

func TestGenKeyDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x07}, draft03.SeedSize)

	sk1, err := draft03.GenKey(seed)
	require.NoError(t, err)
	defer sk1.Forget()
	sk2, err := draft03.GenKey(seed)
	require.NoError(t, err)
	defer sk2.Forget()

	assert.Equal(t, sk1.DeriveVerificationKey(), sk2.DeriveVerificationKey())
}

func TestProveVerifyAgreement(t *testing.T) {
	seed := bytes.Repeat([]byte{42}, draft03.SeedSize)
	sk, err := draft03.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()
	vk := sk.DeriveVerificationKey()

	alpha := []byte("cardano")
	proof, err := draft03.Prove(alpha, sk)
	require.NoError(t, err)

	beta, ok := draft03.Verify(vk, proof, alpha)
	require.True(t, ok, "verify must accept a proof produced by prove")

	wantBeta, err := draft03.ProofToHash(proof)
	require.NoError(t, err)
	assert.Equal(t, wantBeta, beta)
}

func TestProveDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{1}, draft03.SeedSize)
	sk, err := draft03.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()

	alpha := []byte("alpha")
	p1, err := draft03.Prove(alpha, sk)
	require.NoError(t, err)
	p2, err := draft03.Prove(alpha, sk)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	sk1, err := draft03.GenKey(bytes.Repeat([]byte{1}, draft03.SeedSize))
	require.NoError(t, err)
	defer sk1.Forget()
	sk2, err := draft03.GenKey(bytes.Repeat([]byte{2}, draft03.SeedSize))
	require.NoError(t, err)
	defer sk2.Forget()

	alpha := []byte("alpha")
	proof, err := draft03.Prove(alpha, sk1)
	require.NoError(t, err)

	_, ok := draft03.Verify(sk2.DeriveVerificationKey(), proof, alpha)
	assert.False(t, ok)
}

func TestVerifyRejectsCorruptedProof(t *testing.T) {
	seed := bytes.Repeat([]byte{3}, draft03.SeedSize)
	sk, err := draft03.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()
	vk := sk.DeriveVerificationKey()

	alpha := []byte("alpha")
	proof, err := draft03.Prove(alpha, sk)
	require.NoError(t, err)

	proof[0] ^= 0x01
	_, ok := draft03.Verify(vk, proof, alpha)
	assert.False(t, ok)
}

func TestRawSerialiseRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{4}, draft03.SeedSize)
	sk, err := draft03.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()
	vk := sk.DeriveVerificationKey()

	vkBytes := draft03.RawSerialiseVerificationKey(vk)
	assert.Len(t, vkBytes, draft03.VerificationKeySize)
	vk2, err := draft03.RawDeserialiseVerificationKey(vkBytes)
	require.NoError(t, err)
	assert.Equal(t, vk, vk2)

	proof, err := draft03.Prove([]byte("x"), sk)
	require.NoError(t, err)
	proofBytes := draft03.RawSerialiseProof(proof)
	assert.Len(t, proofBytes, draft03.ProofSize)
	proof2, err := draft03.RawDeserialiseProof(proofBytes)
	require.NoError(t, err)
	assert.Equal(t, proof, proof2)
}

func TestSigningKeyRawAndDirectSerialiseRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{6}, draft03.SeedSize)
	sk, err := draft03.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()
	vk := sk.DeriveVerificationKey()

	raw := draft03.RawSerialiseSigningKey(sk)
	assert.Len(t, raw, draft03.SeedSize)
	sk2, err := draft03.RawDeserialiseSigningKey(raw)
	require.NoError(t, err)
	defer sk2.Forget()
	assert.Equal(t, vk, sk2.DeriveVerificationKey())

	var buf bytes.Buffer
	require.NoError(t, sk.DirectSerialise(func(p []byte) error {
		buf.Write(p)
		return nil
	}))
	assert.Equal(t, sk.DirectSize(), buf.Len())
	sk3, err := draft03.DirectDeserialiseSigningKey(func(dst []byte) error {
		_, err := buf.Read(dst)
		return err
	})
	require.NoError(t, err)
	defer sk3.Forget()
	assert.Equal(t, vk, sk3.DeriveVerificationKey())
}

func TestProofCBORRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{5}, draft03.SeedSize)
	sk, err := draft03.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()

	proof, err := draft03.Prove([]byte("cbor"), sk)
	require.NoError(t, err)

	encoded, err := cborx.Serialise(proof)
	require.NoError(t, err)

	var decoded draft03.Proof
	require.NoError(t, cborx.DecodeFull(encoded, &decoded))
	assert.Equal(t, proof, decoded)
}
