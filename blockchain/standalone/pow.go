// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// DiffBitsToUint256 converts the compact representation used to encode
// difficulty targets to an unsigned 256-bit integer.  The representation is
// similar to IEEE754 floating point numbers.
//
// Like IEEE754 floating point, there are three basic components: the sign,
// the exponent, and the mantissa.  They are broken out as follows:
//
//  1. the most significant 8 bits represent the unsigned base 256 exponent
//  2. zero-based bit 23 (the 24th bit) represents the sign bit
//  3. the least significant 23 bits represent the mantissa
//
// Diagram:
//
//	-------------------------------------------------
//	|   Exponent     |    Sign    |    Mantissa     |
//	|-----------------------------------------------|
//	| 8 bits [31-24] | 1 bit [23] | 23 bits [22-00] |
//	-------------------------------------------------
//
// The formula to calculate N is:
//
//	N = (-1^sign) * mantissa * 256^(exponent-3)
//
// The encoding is capable of representing negative numbers as well as numbers
// much larger than the maximum value of an unsigned 256-bit integer, so the
// negative and overflow conditions are reported via independent flags rather
// than silently producing a wrapped value.  A value is only suitable for use
// as a target when neither flag is set, it is non-zero, and it does not exceed
// the proof-of-work limit.
func DiffBitsToUint256(bits uint32) (n uint256.Uint256, isNegative bool, overflows bool) {
	// Extract the mantissa, sign bit, and exponent.
	mantissa := bits & 0x007fffff
	isSignBitSet := bits&0x00800000 != 0
	exponent := bits >> 24

	// Nothing to do when the mantissa is zero as any multiple of it will
	// necessarily also be 0 and therefore it can never be negative or overflow.
	if mantissa == 0 {
		return n, false, false
	}

	// Since the base for the exponent is 256 = 2^8, the exponent is a multiple
	// of 8 and thus the full 256-bit number is computed by shifting the
	// mantissa right or left accordingly.
	if exponent <= 3 {
		n.SetUint64(uint64(mantissa >> (8 * (3 - exponent))))
		return n, isSignBitSet && !n.IsZero(), false
	}

	// Since the encoded exponent value is decreased by 3 and then multiplied
	// by 8, any encoded exponent of 35 or greater overflows because
	// 256/8 + 3 = 35.  An exponent of 34 leaves 8 bits for the mantissa and an
	// exponent of 33 leaves 16 bits.  All exponents of 32 or lower fit since
	// the mantissa only encodes 23 bits.
	overflows = exponent >= 35 || (exponent >= 34 && mantissa > 0xff) ||
		(exponent >= 33 && mantissa > 0xffff)
	if overflows {
		return n, isSignBitSet, true
	}
	n.SetUint64(uint64(mantissa))
	n.Lsh(8 * (exponent - 3))
	return n, isSignBitSet, false
}

// uint256ToDiffBits converts a uint256 to a compact representation using an
// unsigned 32-bit integer.  The compact representation only provides 23 bits of
// precision, so values larger than (2^23 - 1) only encode the most significant
// digits of the number.  See DiffBitsToUint256 for details.
//
// The only difference from the exported variant is the flag to set the sign
// bit, which is only ever used to produce negative encodings for tests.
func uint256ToDiffBits(n *uint256.Uint256, isNegative bool) uint32 {
	// No need to do any work if it's zero.
	if n.IsZero() {
		return 0
	}

	// Since the base for the exponent is 256, the exponent can be treated as
	// the number of bytes it takes to represent the value.  So, shift the
	// number right or left accordingly.  This is equivalent to:
	// mantissa = n / 256^(exponent-3)
	var mantissa uint32
	exponent := uint32((n.BitLen() + 7) / 8)
	if exponent <= 3 {
		mantissa = n.Uint32() << (8 * (3 - exponent))
	} else {
		// Use a copy to avoid modifying the caller's original value.
		mantissa = new(uint256.Uint256).RshVal(n, 8*(exponent-3)).Uint32()
	}

	// When the mantissa already has the sign bit set, the number is too large
	// to fit into the available 23-bits, so divide the number by 256 and
	// increment the exponent accordingly.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	// Pack the exponent, sign bit, and mantissa into an unsigned 32-bit int and
	// return it.
	bits := exponent<<24 | mantissa
	if isNegative {
		bits |= 0x00800000
	}
	return bits
}

// Uint256ToDiffBits converts a uint256 to a compact representation using an
// unsigned 32-bit integer.  The compact representation only provides 23 bits of
// precision, so values larger than (2^23 - 1) only encode the most significant
// digits of the number.  See DiffBitsToUint256 for details.
func Uint256ToDiffBits(n *uint256.Uint256) uint32 {
	const isNegative = false
	return uint256ToDiffBits(n, isNegative)
}

// CalcWork calculates a work value from difficulty bits.  The difficulty for
// generating a block is increased by decreasing the value which the generated
// hash must be less than, so the work value which is accumulated for chain
// selection is the inverse of the target.  The result is zero for bits that
// are negative, overflow, or zero, and to avoid really small numbers it is
// calculated as 2^256 / (target+1).
func CalcWork(diffBits uint32) uint256.Uint256 {
	diff, isNegative, overflows := DiffBitsToUint256(diffBits)
	if isNegative || overflows || diff.IsZero() {
		return uint256.Uint256{}
	}

	// The goal is to calculate 2^256 / (diff+1), where diff > 0 using a
	// fixed-precision uint256.
	//
	// Notice:
	//    work = (2^256 / (diff+1))
	// => work = ((2^256-diff-1) / (diff+1))+1
	//
	// and 2^256-diff-1 is the one's complement of diff.  A target of 2^256-1
	// would wrap the divisor to zero, but it can't be encoded in compact form.
	divisor := new(uint256.Uint256).SetUint64(1).Add(&diff)
	return *diff.Not().Div(divisor).AddUint64(1)
}

// WorkToTarget converts an expected amount of work per block into the target
// that produces it, which is T = (2^256 / W) - 1.
//
// Since 2^256 can't be represented by a uint256, the calc expresses 1 as W / W
// which gives T = (2^256 - W) / W, and 2^256 - W is the two's complement
// negation of W.
//
// A work value of zero has no corresponding target.  The maximum uint256 is
// returned in that case so callers clamping to the proof-of-work limit end up
// at the easiest allowed target.
func WorkToTarget(work *uint256.Uint256) uint256.Uint256 {
	if work.IsZero() {
		return *new(uint256.Uint256).Not()
	}
	var target uint256.Uint256
	target.NegateVal(work).Div(work)
	return target
}

// HashToUint256 converts the provided hash to an unsigned 256-bit integer that
// can be used to perform math comparisons.
func HashToUint256(hash *chainhash.Hash) uint256.Uint256 {
	// Hashes are a stream of bytes that do not have any inherent endianness to
	// them, so they are interpreted as little endian for the purposes of
	// treating them as a uint256.
	return *new(uint256.Uint256).SetBytesLE((*[32]byte)(hash))
}

// checkProofOfWorkRange ensures the provided target difficulty is in min/max
// range per the provided proof-of-work limit.
func checkProofOfWorkRange(diffBits uint32, powLimit *uint256.Uint256) (uint256.Uint256, error) {
	// The target difficulty must be larger than zero and not overflow and less
	// than the maximum value that can be represented by a uint256.
	target, isNegative, overflows := DiffBitsToUint256(diffBits)
	if isNegative {
		str := fmt.Sprintf("target difficulty bits %08x is a negative value",
			diffBits)
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}
	if overflows {
		str := fmt.Sprintf("target difficulty bits %08x is higher than the "+
			"max limit %064x", diffBits, powLimit)
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}
	if target.IsZero() {
		str := "target difficulty is zero"
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}

	// The target difficulty must not exceed the maximum allowed.
	if target.Gt(powLimit) {
		str := fmt.Sprintf("target difficulty %064x is higher than max %064x",
			&target, powLimit)
		return uint256.Uint256{}, ruleError(ErrUnexpectedDifficulty, str)
	}

	return target, nil
}

// CheckProofOfWorkRange ensures the provided target difficulty represented by
// the given header bits is in min/max range per the provided proof-of-work
// limit.
func CheckProofOfWorkRange(diffBits uint32, powLimit *uint256.Uint256) error {
	_, err := checkProofOfWorkRange(diffBits, powLimit)
	return err
}

// checkProofOfWorkHash ensures the provided hash is not above the provided
// target.
func checkProofOfWorkHash(powHash *chainhash.Hash, target *uint256.Uint256) error {
	hashNum := HashToUint256(powHash)
	if hashNum.Gt(target) {
		str := fmt.Sprintf("proof of work hash %064x is higher than expected "+
			"max of %064x", &hashNum, target)
		return ruleError(ErrHighHash, str)
	}
	return nil
}

// CheckProofOfWorkHash ensures the provided hash is not above the target
// difficulty represented by the given header bits.  It does not check the
// range of the target, so callers that have not already done so should use
// CheckProofOfWork instead.
func CheckProofOfWorkHash(powHash *chainhash.Hash, diffBits uint32) error {
	target, isNegative, overflows := DiffBitsToUint256(diffBits)
	if isNegative || overflows {
		str := fmt.Sprintf("target difficulty bits %08x do not encode a "+
			"valid target", diffBits)
		return ruleError(ErrUnexpectedDifficulty, str)
	}
	return checkProofOfWorkHash(powHash, &target)
}

// CheckProofOfWork ensures the provided hash is not above the target difficulty
// represented by given header bits and that said difficulty is in min/max range
// per the provided proof-of-work limit.
//
// This function is safe for concurrent access.
func CheckProofOfWork(powHash *chainhash.Hash, diffBits uint32, powLimit *uint256.Uint256) error {
	target, err := checkProofOfWorkRange(diffBits, powLimit)
	if err != nil {
		return err
	}
	return checkProofOfWorkHash(powHash, &target)
}

// HasValidProofOfWork is a convenience wrapper around CheckProofOfWork for
// callers that only need to know whether the block passes.  Every failure,
// including malformed bits, is reported as false.
func HasValidProofOfWork(powHash *chainhash.Hash, diffBits uint32, powLimit *uint256.Uint256) bool {
	return CheckProofOfWork(powHash, diffBits, powLimit) == nil
}
