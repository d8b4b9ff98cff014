// Package cborx implements the canonical CBOR codec used on the wire for
// verification keys, signatures, and other non-secret artifacts: RFC 8949
// §4.2 deterministic encoding (shortest forms, definite lengths, sorted map
// keys), strict "no trailing bytes" decoding, and the tag-24 nested-CBOR
// envelope.
//
// Signing keys are never given a CBOR codec; only the direct-serialise
// channel (see package directserial) moves them, so a secret can never be
// accidentally materialised through this package.
package cborx

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// nestedTag is the semantic tag number used to wrap nested CBOR, per
// RFC 8949 §3.4.5.1.
const nestedTag = 24

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic("cborx: failed to build canonical encode mode: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic("cborx: failed to build decode mode: " + err.Error())
	}
}

// LeftoverError reports trailing bytes found after a complete CBOR term by
// DecodeFull.
type LeftoverError struct {
	Label  string
	Slice  []byte
	Length int
}

func (e *LeftoverError) Error() string {
	return fmt.Sprintf("cborx: %d leftover byte(s) after decoding %s", e.Length, e.Label)
}

// NestedTagError reports that DecodeNestedCBOR found a tag number other
// than 24.
type NestedTagError struct {
	Expected uint64
	Got      uint64
}

func (e *NestedTagError) Error() string {
	return fmt.Sprintf("cborx: nested cbor: expected tag %d, got %d", e.Expected, e.Got)
}

// ErrNestedPayload is returned when a nested-CBOR tag's content is not a
// byte string.
var ErrNestedPayload = errors.New("cborx: nested cbor: tagged content is not a byte string")

// Serialise encodes v to canonical CBOR.
func Serialise(v any) ([]byte, error) {
	out, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cborx: serialisation failed: %w", err)
	}
	return out, nil
}

// SerialiseInto encodes v to canonical CBOR and writes it to w.
func SerialiseInto(v any, w *bytes.Buffer) error {
	b, err := Serialise(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// SerialiseIntoVec encodes v to canonical CBOR and appends it to *buf.
func SerialiseIntoVec(v any, buf *[]byte) error {
	b, err := Serialise(v)
	if err != nil {
		return err
	}
	*buf = append(*buf, b...)
	return nil
}

// DecodeFull decodes exactly one CBOR term from data into out, which must
// be a pointer. It is an error for any bytes to remain after the term; in
// that case a *LeftoverError is returned.
func DecodeFull(data []byte, out any) error {
	dec := decMode.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("cborx: deserialisation failed: %w", err)
	}
	consumed := int(dec.NumBytesRead())
	if consumed < len(data) {
		leftover := data[consumed:]
		return &LeftoverError{
			Label:  fmt.Sprintf("%T", out),
			Slice:  leftover,
			Length: len(leftover),
		}
	}
	return nil
}

// EncodeNestedCBOR wraps Serialise(v) in semantic tag 24, the canonical way
// to embed one CBOR-encoded value inside another as a byte string.
func EncodeNestedCBOR(v any) ([]byte, error) {
	inner, err := Serialise(v)
	if err != nil {
		return nil, err
	}
	return Serialise(cbor.Tag{Number: nestedTag, Content: inner})
}

// DecodeNestedCBOR unwraps a tag-24 envelope and decodes its inner byte
// string into out.
func DecodeNestedCBOR(data []byte, out any) error {
	var tag cbor.Tag
	if err := DecodeFull(data, &tag); err != nil {
		return err
	}
	if tag.Number != nestedTag {
		return &NestedTagError{Expected: nestedTag, Got: tag.Number}
	}
	inner, ok := tag.Content.([]byte)
	if !ok {
		return ErrNestedPayload
	}
	return DecodeFull(inner, out)
}

// RawBytes encodes a raw byte slice (a verification key, signature, or
// proof) as a single CBOR byte string — the wire form every fixed-size
// artifact in this module uses.
func RawBytes(b []byte) ([]byte, error) {
	return Serialise(b)
}

// DecodeRawBytes decodes a single CBOR byte string into a raw byte slice,
// rejecting trailing data and the wrong length.
func DecodeRawBytes(data []byte, expectedLen int) ([]byte, error) {
	var b []byte
	if err := DecodeFull(data, &b); err != nil {
		return nil, err
	}
	if expectedLen >= 0 && len(b) != expectedLen {
		return nil, fmt.Errorf("cborx: expected %d-byte raw value, got %d", expectedLen, len(b))
	}
	return b, nil
}
