package draft13_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FractionEstate/cardano-base-rust-sub001/cborx"
	"github.com/FractionEstate/cardano-base-rust-sub001/vrf/draft03"
	"github.com/FractionEstate/cardano-base-rust-sub001/vrf/draft13"
)

func TestProveVerifyAgreement(t *testing.T) {
	seed := bytes.Repeat([]byte{42}, draft13.SeedSize)
	sk, err := draft13.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()
	vk := sk.DeriveVerificationKey()

	alpha := []byte("cardano")
	proof, err := draft13.Prove(alpha, sk)
	require.NoError(t, err)

	beta, ok := draft13.Verify(vk, proof, alpha)
	require.True(t, ok)

	wantBeta, err := draft13.ProofToHash(proof)
	require.NoError(t, err)
	assert.Equal(t, wantBeta, beta)
}

func TestOutputMatchesDraft03ForSameCurvePoint(t *testing.T) {
	// draft13 reuses the exact same GammaToHash step as draft03, so both
	// Output sizes agree and a draft-03 proof carrying the same Gamma
	// hashes to the same output.
	assert.Equal(t, 64, draft13.OutputSize)
	assert.Equal(t, draft03.OutputSize, draft13.OutputSize)

	sk, err := draft13.GenKey(bytes.Repeat([]byte{8}, draft13.SeedSize))
	require.NoError(t, err)
	defer sk.Forget()
	proof13, err := draft13.Prove([]byte("gamma"), sk)
	require.NoError(t, err)

	var proof03 draft03.Proof
	copy(proof03[:32], proof13[:32])

	out13, err := draft13.ProofToHash(proof13)
	require.NoError(t, err)
	out03, err := draft03.ProofToHash(proof03)
	require.NoError(t, err)
	assert.Equal(t, out03[:], out13[:])
}

func TestVerifyRejectsCorruptedProof(t *testing.T) {
	seed := bytes.Repeat([]byte{3}, draft13.SeedSize)
	sk, err := draft13.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()
	vk := sk.DeriveVerificationKey()

	alpha := []byte("alpha")
	proof, err := draft13.Prove(alpha, sk)
	require.NoError(t, err)

	proof[100] ^= 0x01
	_, ok := draft13.Verify(vk, proof, alpha)
	assert.False(t, ok)
}

func TestRawSerialiseRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{4}, draft13.SeedSize)
	sk, err := draft13.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()

	proof, err := draft13.Prove([]byte("x"), sk)
	require.NoError(t, err)
	proofBytes := draft13.RawSerialiseProof(proof)
	assert.Len(t, proofBytes, draft13.ProofSize)
	proof2, err := draft13.RawDeserialiseProof(proofBytes)
	require.NoError(t, err)
	assert.Equal(t, proof, proof2)
}

func TestSigningKeyRawAndDirectSerialiseRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{6}, draft13.SeedSize)
	sk, err := draft13.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()
	vk := sk.DeriveVerificationKey()

	raw := draft13.RawSerialiseSigningKey(sk)
	assert.Len(t, raw, draft13.SeedSize)
	sk2, err := draft13.RawDeserialiseSigningKey(raw)
	require.NoError(t, err)
	defer sk2.Forget()
	assert.Equal(t, vk, sk2.DeriveVerificationKey())

	var buf bytes.Buffer
	require.NoError(t, sk.DirectSerialise(func(p []byte) error {
		buf.Write(p)
		return nil
	}))
	assert.Equal(t, sk.DirectSize(), buf.Len())
	sk3, err := draft13.DirectDeserialiseSigningKey(func(dst []byte) error {
		_, err := buf.Read(dst)
		return err
	})
	require.NoError(t, err)
	defer sk3.Forget()
	assert.Equal(t, vk, sk3.DeriveVerificationKey())
}

func TestProofCBORRoundTrip(t *testing.T) {
	seed := bytes.Repeat([]byte{15}, draft13.SeedSize)
	sk, err := draft13.GenKey(seed)
	require.NoError(t, err)
	defer sk.Forget()

	proof, err := draft13.Prove([]byte("cbor"), sk)
	require.NoError(t, err)

	encoded, err := cborx.Serialise(proof)
	require.NoError(t, err)

	var decoded draft13.Proof
	require.NoError(t, cborx.DecodeFull(encoded, &decoded))
	assert.Equal(t, proof, decoded)
}
