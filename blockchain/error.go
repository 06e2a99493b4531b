// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies a specific kind of consensus rule violation, kept
// stable so callers can react to a particular failure rather than matching
// on an error string.
type ErrorCode int

const (
	// ErrDuplicateBlock indicates a block has already been processed.
	ErrDuplicateBlock ErrorCode = iota

	// ErrMissingParent indicates a block's parent is not known; the
	// block is held as an orphan rather than rejected outright.
	ErrMissingParent

	// ErrBadPrevBlock indicates a block's parent is known but was itself
	// already rejected as invalid.
	ErrBadPrevBlock

	// ErrNoTransactions indicates a block or transaction has no inputs
	// or outputs.
	ErrNoTransactions

	// ErrBadMerkleRoot indicates the block's declared merkle root does
	// not match the one computed from its transactions.
	ErrBadMerkleRoot

	// ErrBadPoW indicates the block's hash does not meet its declared
	// target.
	ErrBadPoW

	// ErrBadBits indicates the block's declared target exceeds the
	// network's proof-of-work limit, or does not match the expected
	// retarget value for its height.
	ErrBadBits

	// ErrBadBlockSize indicates a block's serialized size exceeds the
	// network's maximum.
	ErrBadBlockSize

	// ErrDuplicateOutPoint indicates a transaction spends the same
	// outpoint more than once.
	ErrDuplicateOutPoint

	// ErrBadCoinbaseScriptLen indicates a coinbase's signature script is
	// outside the allowed [2, 100] byte range.
	ErrBadCoinbaseScriptLen

	// ErrMissingTxOut indicates an input's previous outpoint does not
	// resolve under the current view.
	ErrMissingTxOut

	// ErrDoubleSpend indicates an input's previous outpoint has already
	// been spent.
	ErrDoubleSpend

	// ErrImmatureSpend indicates an input spends a coinbase output that
	// has not yet reached maturity.
	ErrImmatureSpend

	// ErrSpendTooHigh indicates a transaction's outputs exceed its
	// inputs.
	ErrSpendTooHigh

	// ErrBadFees indicates a coinbase pays out more than the block
	// subsidy plus collected fees.
	ErrBadFees

	// ErrScriptValidation indicates an input failed script evaluation.
	ErrScriptValidation

	// ErrUnfinalizedTx indicates a transaction is not final given the
	// block's height and time.
	ErrUnfinalizedTx

	// ErrBadTimestamp indicates a block's timestamp is not greater than
	// the median of the previous 11 blocks, or is too far in the future.
	ErrBadTimestamp

	// ErrTxnMempoolConflict indicates a loose transaction conflicts with
	// one already admitted to the mempool.
	ErrTxnMempoolConflict

	// ErrTooManyOutputValue indicates a transaction's total output value
	// exceeds the maximum possible supply.
	ErrTooManyOutputValue

	// ErrDuplicateTx indicates a loose transaction has already been
	// admitted to the mempool.
	ErrDuplicateTx

	// ErrDustOutput indicates a transaction has an output below the dust
	// value floor.
	ErrDustOutput

	// ErrInsufficientFee indicates a transaction's fee falls below the
	// minimum relay fee for its serialized size.
	ErrInsufficientFee
)

var errorCodeStrings = map[ErrorCode]string{
	ErrDuplicateBlock:       "duplicate-block",
	ErrMissingParent:        "missing-parent",
	ErrBadPrevBlock:         "bad-prev",
	ErrNoTransactions:       "no-transactions",
	ErrBadMerkleRoot:        "bad-merkle-root",
	ErrBadPoW:               "bad-pow",
	ErrBadBits:              "bad-bits",
	ErrBadBlockSize:         "bad-block-size",
	ErrDuplicateOutPoint:    "duplicate-outpoint",
	ErrBadCoinbaseScriptLen: "bad-coinbase-script-len",
	ErrMissingTxOut:         "missing-txout",
	ErrDoubleSpend:          "double-spend",
	ErrImmatureSpend:        "immature-spend",
	ErrSpendTooHigh:         "spend-too-high",
	ErrBadFees:              "bad-fees",
	ErrScriptValidation:     "bad-script",
	ErrUnfinalizedTx:        "non-final-tx",
	ErrBadTimestamp:         "bad-timestamp",
	ErrTxnMempoolConflict:   "txn-mempool-conflict",
	ErrTooManyOutputValue:   "too-many-output-value",
	ErrDuplicateTx:          "duplicate-transaction",
	ErrDustOutput:           "dust",
	ErrInsufficientFee:      "insufficient-fee",
}

// String returns the stable, dash-separated rejection name for the code.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("unknown-error-code-%d", int(e))
}

// RuleError identifies a consensus rule violation by its ErrorCode and a
// human-readable description. Every validation failure in this package is
// a RuleError: callers that need to tell "this block is invalid" apart
// from "the database is unreachable" can type-assert for it.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error implements the error interface.
func (e RuleError) Error() string {
	return e.Description
}

func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
