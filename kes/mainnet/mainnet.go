// Package mainnet wires the KES depth and hash Cardano mainnet actually
// uses: a depth-7 Sum/CompactSum tower (128 periods) over Ed25519,
// composed with Blake2b-256. Everything here is a composition of the
// base/composition packages; no new algorithm logic lives here.
package mainnet

import (
	"github.com/FractionEstate/cardano-base-rust-sub001/hashalgo"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes/compactsingle"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes/compactsum"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes/single"
	"github.com/FractionEstate/cardano-base-rust-sub001/kes/sum"
)

// Depth is the tower depth mainnet consensus uses, yielding 2^Depth = 128
// periods per evolved key.
const Depth = 7

// Sum7Ed25519 is the plain (non-compact) depth-7 Sum tower over Ed25519
// using Blake2b-256, as described by the KES composition design.
var Sum7Ed25519 kes.Algorithm = sum.NewTower(Depth, single.Algorithm, hashalgo.Blake2b256)

// CompactSum7Ed25519 is the depth-7 CompactSum tower over Ed25519 using
// Blake2b-256: the KES scheme Cardano mainnet actually signs blocks with.
var CompactSum7Ed25519 kes.CompactAlgorithm = compactsum.NewTower(Depth, compactsingle.Algorithm, hashalgo.Blake2b256)
