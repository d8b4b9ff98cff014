// Package seedutil derives sub-seeds from a master seed with a
// domain-separation prefix, using the module's hash abstraction. It backs
// KES key generation's recursive seed trees (hashalgo.Algorithm.ExpandSeed
// is the length == OutputSize() special case of the same derivation;
// Derive generalises it to any target length).
package seedutil

import "github.com/FractionEstate/cardano-base-rust-sub001/hashalgo"

// Derive expands master using the given hash algorithm and a single
// domain-separation prefix byte, truncating or, if necessary, extending
// (by repeated hashing with an incrementing counter byte appended after
// the prefix) the digest to exactly length bytes.
//
// The first round hashes exactly prefix || master, with no counter byte,
// so that Derive(h, 0x01, seed, h.OutputSize()) is byte-for-byte identical
// to the left half of h.ExpandSeed(seed) — the common case for every
// caller in this module, since KES composition always derives exactly
// OutputSize() bytes per side. The counter byte is appended only for the
// second and later rounds, when length exceeds a single digest.
func Derive(h hashalgo.Algorithm, prefix byte, master []byte, length int) []byte {
	out := make([]byte, 0, length)
	for counter := byte(0); len(out) < length; counter++ {
		in := make([]byte, 0, len(master)+2)
		in = append(in, prefix)
		if counter > 0 {
			in = append(in, counter)
		}
		in = append(in, master...)
		out = append(out, h.Hash(in)...)
	}
	return out[:length]
}

// DeriveLeft and DeriveRight are the two halves of a KES seed-expansion
// tree: DeriveLeft(h, seed) == left half of h.ExpandSeed(seed), and
// likewise for DeriveRight, but either can be asked for a length other
// than h.OutputSize() when the child algorithm's seed size differs from
// the hash's output size.
func DeriveLeft(h hashalgo.Algorithm, master []byte, length int) []byte {
	return Derive(h, hashalgo.LeftPrefix, master, length)
}

func DeriveRight(h hashalgo.Algorithm, master []byte, length int) []byte {
	return Derive(h, hashalgo.RightPrefix, master, length)
}
