// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"time"
)

// compactToBig expands the classic "nBits" compact target encoding into a
// big.Int: the high byte is an exponent (number of bytes), the low three
// bytes are the mantissa. Bit 0x00800000 of the mantissa is a sign flag;
// this package treats a negative result as zero, since no valid target is
// ever negative.
func compactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	exponent := compact >> 24

	var result *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		result = big.NewInt(int64(mantissa))
	} else {
		result = big.NewInt(int64(mantissa))
		result.Lsh(result, 8*(uint(exponent)-3))
	}

	if compact&0x00800000 != 0 {
		return big.NewInt(0)
	}
	return result
}

// bigToCompact is the inverse of compactToBig: it reduces n to the nearest
// representable compact target, rounding toward zero.
func bigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	// n.Bytes() is the big-endian byte representation; the exponent is
	// its length and the mantissa is its leading three bytes.
	var mantissa uint32
	exponent := uint32(len(n.Bytes()))

	if exponent <= 3 {
		mantissa = uint32(n.Int64())
		mantissa <<= 8 * (3 - exponent)
	} else {
		shifted := new(big.Int).Rsh(n, 8*(exponent-3))
		mantissa = uint32(shifted.Int64())
	}

	// The high bit of the mantissa's most significant byte must be clear,
	// since that bit doubles as the compact encoding's sign flag;
	// otherwise shift one more byte into the exponent.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	return exponent<<24 | mantissa
}

// calcWork returns the amount of "work" represented by target bits: the
// number of double-SHA-256 hash attempts expected to produce a hash at or
// below the target, 2^256 / (target + 1).
func calcWork(bits uint32) *big.Int {
	target := compactToBig(bits)
	if target.Sign() <= 0 {
		return big.NewInt(0)
	}

	// work = 2^256 / (target + 1)
	denominator := new(big.Int).Add(target, big.NewInt(1))
	numerator := new(big.Int).Lsh(big.NewInt(1), 256)
	return numerator.Div(numerator, denominator)
}

// calcNextRequiredBits implements the retarget rule spec §4.6 names: every
// RetargetWindow blocks, compare the actual time the last window took
// against the target (RetargetWindow * TargetTimePerBlock), and scale the
// previous target proportionally, clamped to a quarter through four times.
// Blocks between retargets keep the tip's bits unchanged.
func calcNextRequiredBits(bi *blockIndex, tip *blockNode, retargetWindow int64, targetTimePerBlock time.Duration, powLimitBits uint32) uint32 {
	nextHeight := tip.height + 1
	if int64(nextHeight)%retargetWindow != 0 {
		return tip.bits
	}

	firstNode := bi.ancestorAt(tip, tip.height-int32(retargetWindow)+1)
	if firstNode == nil {
		return tip.bits
	}

	actualSpan := tip.timestamp.Sub(firstNode.timestamp)
	targetSpan := targetTimePerBlock * time.Duration(retargetWindow)

	minSpan := targetSpan / 4
	maxSpan := targetSpan * 4
	if actualSpan < minSpan {
		actualSpan = minSpan
	}
	if actualSpan > maxSpan {
		actualSpan = maxSpan
	}

	oldTarget := compactToBig(tip.bits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(int64(actualSpan)))
	newTarget.Div(newTarget, big.NewInt(int64(targetSpan)))

	powLimit := compactToBig(powLimitBits)
	if newTarget.Cmp(powLimit) > 0 {
		newTarget = powLimit
	}

	return bigToCompact(newTarget)
}

// checkProofOfWork reports whether hash, interpreted as a big-endian
// unsigned integer, is at or below the target bits declare, and that bits
// itself does not exceed the network's proof-of-work limit.
func checkProofOfWork(hashBytes []byte, bits uint32, powLimitBits uint32) error {
	target := compactToBig(bits)
	if target.Sign() <= 0 {
		return ruleError(ErrBadBits, "proof-of-work target is non-positive")
	}
	if target.Cmp(compactToBig(powLimitBits)) > 0 {
		return ruleError(ErrBadBits, "proof-of-work target exceeds the network's limit")
	}

	// hashBytes is little-endian (the block hash as produced and
	// compared throughout this package); reverse it for big.Int, which
	// expects big-endian.
	reversed := make([]byte, len(hashBytes))
	for i, b := range hashBytes {
		reversed[len(hashBytes)-1-i] = b
	}
	hashNum := new(big.Int).SetBytes(reversed)
	if hashNum.Cmp(target) > 0 {
		return ruleError(ErrBadPoW, "block hash does not meet its declared target")
	}
	return nil
}
