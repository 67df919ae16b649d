// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchainutil

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/decred/dcrd/math/uint256"
	"github.com/wbtcsuite/wbtcd/blockchain/standalone"
)

// Difficulty is a struct modeling the concept of how difficult it
// is to find a hash below a given target (https://en.bitcoin.it/wiki/Difficulty)
//
// Difficulty has at least three different representations:
//  1. Hex string
//     example: `00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff`
//  2. uint256
//     example: `new(uint256.Uint256).SetUint64(1).Lsh(224).SubUint64(1)`
//  3. Bits, or in a compact form
//     example: `0x1d00ffff`
//
// All the examples above represent the same entity.
//
// The purpose of this struct is to properly handle all the representations
// and to avoid creating multiple occurrences of the same constants in different forms
type Difficulty struct {
	n uint256.Uint256
}

// Fprint writes the Difficulty in all representations for debug purposes.
func (dif *Difficulty) Fprint(w io.Writer) *Difficulty {
	fmt.Fprintln(w, "hexstring: ", dif.ToHexString())
	fmt.Fprintln(w, "     Bits: ", dif.ToCompact())
	fmt.Fprintln(w, "  BitsHex: ", fmt.Sprintf("%08x", dif.ToCompact()))
	fmt.Fprintln(w, "  uint256: ", dif.n.String())
	fmt.Fprintln(w, "")
	return dif
}

// ToCompact projects instance into compact representation
func (dif *Difficulty) ToCompact() uint32 {
	return standalone.Uint256ToDiffBits(&dif.n)
}

// ToUint256 projects instance into unsigned 256-bit integer representation.
// The returned value must not be modified.
func (dif *Difficulty) ToUint256() *uint256.Uint256 {
	return &dif.n
}

// ToHexString projects instance into hex string representation
func (dif *Difficulty) ToHexString() string {
	return fmt.Sprintf("%064x", &dif.n)
}

// Relative returns the familiar floating point difficulty, which is how many
// times harder the target is to meet than the provided proof-of-work limit.
// Zero is returned for a zero target.
func (dif *Difficulty) Relative(powLimit *uint256.Uint256) float64 {
	if dif.n.IsZero() {
		return 0
	}
	limit := new(big.Float).SetInt(powLimit.ToBig())
	target := new(big.Float).SetInt(dif.n.ToBig())
	ratio, _ := limit.Quo(limit, target).Float64()
	return ratio
}

// NewDifficultyFromHashString creates a new instance from 64-digits hex
// string. Spaces are allowed for readability. Valid examples include:
// 00 00 00 00 ffffffffffffffffffffffffffffffffffffffffffffffffffffffff
// 00 00 00 ff ffffffffffffffffffffffffffffffffffffffffffffffffffffffff
// 7f ff ff ff ffffffffffffffffffffffffffffffffffffffffffffffffffffffff
//
// It panics on malformed input, so it must only be used with hard-coded
// values.
func NewDifficultyFromHashString(hexstring string) *Difficulty {
	dif, err := ParseDifficulty(hexstring)
	if err != nil {
		panic(err) //invalid input is unacceptable
	}
	return dif
}

// ParseDifficulty creates a new instance from a hex string of at most 64
// digits.  Spaces are allowed for readability.
func ParseDifficulty(hexstring string) (*Difficulty, error) {
	noSpaces := strings.ReplaceAll(hexstring, " ", "") //remove spaces if any
	if len(noSpaces)%2 != 0 {
		noSpaces = "0" + noSpaces
	}
	b, err := hex.DecodeString(noSpaces)
	if err != nil {
		return nil, err
	}
	if len(b) > 32 {
		return nil, fmt.Errorf("difficulty %q exceeds 256 bits", hexstring)
	}

	var dif Difficulty
	dif.n.SetByteSlice(b)
	return &dif, nil
}

// NewDifficultyFromCompact creates a new instance from compact form (Bits).
// Negative and overflowing encodings produce an error since they have no
// meaning as a target.
func NewDifficultyFromCompact(compact uint32) (*Difficulty, error) {
	n, isNegative, overflows := standalone.DiffBitsToUint256(compact)
	if isNegative {
		return nil, fmt.Errorf("compact bits %08x encode a negative value",
			compact)
	}
	if overflows {
		return nil, fmt.Errorf("compact bits %08x overflow 256 bits", compact)
	}
	return &Difficulty{n: n}, nil
}
