// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"time"

	"github.com/Rust-Boy/btc-sotamo/blockstore"
	"github.com/Rust-Boy/btc-sotamo/chaincfg"
	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/txscript"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// maxMoney is the maximum possible supply, 21 000 000 coin at 8 decimal
// places, and the ceiling spec §4.6 places on any output or output total.
const maxMoney = 21000000 * 100000000

// minCoinbaseScriptLen and maxCoinbaseScriptLen bound a coinbase input's
// signature script, per spec §4.6.
const (
	minCoinbaseScriptLen = 2
	maxCoinbaseScriptLen = 100
)

// maxFutureBlockTime is how far into the network-adjusted time a block's
// timestamp may sit and still be accepted.
const maxFutureBlockTime = 2 * time.Hour

// CheckTransaction runs the stateless checks spec §4.6 assigns to
// CheckTransaction: non-empty input/output vectors, non-negative and
// bounded output values, no duplicate input outpoints, and (for a
// coinbase) a signature script of legal length.
func CheckTransaction(tx *wire.MsgTx) error {
	if len(tx.TxIn) == 0 {
		return ruleError(ErrNoTransactions, "transaction has no inputs")
	}
	if len(tx.TxOut) == 0 {
		return ruleError(ErrNoTransactions, "transaction has no outputs")
	}

	var total int64
	for _, out := range tx.TxOut {
		if out.Value < 0 {
			return ruleError(ErrTooManyOutputValue, "transaction output has a negative value")
		}
		if out.Value > maxMoney {
			return ruleError(ErrTooManyOutputValue, "transaction output exceeds the maximum possible supply")
		}
		total += out.Value
		if total > maxMoney {
			return ruleError(ErrTooManyOutputValue, "transaction output total exceeds the maximum possible supply")
		}
	}

	seen := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	for _, in := range tx.TxIn {
		if _, dup := seen[in.PreviousOutPoint]; dup {
			return ruleError(ErrDuplicateOutPoint, "transaction spends the same outpoint more than once")
		}
		seen[in.PreviousOutPoint] = struct{}{}
	}

	if tx.IsCoinBase() {
		scriptLen := len(tx.TxIn[0].SignatureScript)
		if scriptLen < minCoinbaseScriptLen || scriptLen > maxCoinbaseScriptLen {
			return ruleError(ErrBadCoinbaseScriptLen, "coinbase signature script length is out of range")
		}
	} else {
		for _, in := range tx.TxIn {
			if in.PreviousOutPoint.IsNull() {
				return ruleError(ErrNoTransactions, "non-coinbase transaction has a null prevout")
			}
		}
	}

	return nil
}

// CheckBlock runs the stateless checks spec §4.6 assigns to CheckBlock:
// exactly one coinbase as the first transaction, every transaction passes
// CheckTransaction, the serialized size is within bounds, the merkle root
// matches, and the header's declared bits are within the network's
// proof-of-work limit and satisfied by the block's hash.
func CheckBlock(block *wire.MsgBlock, powLimitBits uint32) error {
	if len(block.Transactions) == 0 {
		return ruleError(ErrNoTransactions, "block has no transactions")
	}
	if !block.Transactions[0].IsCoinBase() {
		return ruleError(ErrNoTransactions, "block's first transaction is not a coinbase")
	}
	for _, tx := range block.Transactions[1:] {
		if tx.IsCoinBase() {
			return ruleError(ErrNoTransactions, "block has more than one coinbase transaction")
		}
	}
	for _, tx := range block.Transactions {
		if err := CheckTransaction(tx); err != nil {
			return err
		}
	}

	if block.SerializeSize() > wire.MaxBlockSize {
		return ruleError(ErrBadBlockSize, "serialized block size exceeds the maximum")
	}

	hashes := make([]chainhash.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		hashes[i] = tx.TxHash()
	}
	if got, want := wire.MerkleRoot(hashes), block.Header.MerkleRoot; got != want {
		return ruleError(ErrBadMerkleRoot, "merkle root does not match the block's transactions")
	}

	hash := block.BlockHash()
	if err := checkProofOfWork(hash[:], block.Header.Bits, powLimitBits); err != nil {
		return err
	}

	return nil
}

// checkBlockContext runs the contextual acceptance checks spec §4.6
// assigns: the parent must be known, the timestamp must exceed the median
// of the previous 11 blocks and not sit too far in the future, and bits
// must equal the expected retarget value for this height.
func checkBlockContext(bi *blockIndex, parent *blockNode, header *wire.BlockHeader, now time.Time, params *chaincfg.Params) error {
	if header.Timestamp.Before(bi.medianTimePast(parent)) || header.Timestamp.Equal(bi.medianTimePast(parent)) {
		return ruleError(ErrBadTimestamp, "block timestamp is not after the median of the previous 11 blocks")
	}
	if header.Timestamp.After(now.Add(maxFutureBlockTime)) {
		return ruleError(ErrBadTimestamp, "block timestamp is too far in the future")
	}

	expectedBits := calcNextRequiredBits(bi, parent, params.RetargetWindow, params.TargetTimePerBlock, params.PowLimitBits)
	if header.Bits != expectedBits {
		return ruleError(ErrBadBits, "block's difficulty bits do not match the expected retarget value")
	}
	return nil
}

// CheckTransactionInputs runs the contextual checks spec §4.6 assigns to
// block connect for a single non-coinbase transaction: every prevout must
// resolve and be mature, and the input total must cover the output total.
// It returns the fee (input total minus output total).
func CheckTransactionInputs(db database.DataAccessor, store *blockstore.Store, tx *wire.MsgTx, height int32, coinbaseMaturity int64) (int64, error) {
	var outputTotal int64
	for _, out := range tx.TxOut {
		outputTotal += out.Value
	}

	inputTotal, err := sumInputs(db, store, tx, height, coinbaseMaturity)
	if err != nil {
		return 0, err
	}

	if inputTotal < outputTotal {
		return 0, ruleError(ErrSpendTooHigh, "transaction outputs exceed its inputs")
	}
	return inputTotal - outputTotal, nil
}

// ValidateTransactionScripts evaluates every input's (scriptSig,
// scriptPubKey) pair per spec §4.2, resolving each prevout's scriptPubKey
// from the UTXO view.
func ValidateTransactionScripts(db database.DataAccessor, store *blockstore.Store, tx *wire.MsgTx, sigCache *txscript.SigCache) error {
	if tx.IsCoinBase() {
		return nil
	}
	for i, in := range tx.TxIn {
		out, err := FetchSpendableOutput(db, store, in.PreviousOutPoint)
		if err != nil {
			return err
		}
		vm, err := txscript.NewEngine(in.SignatureScript, out.TxOut.ScriptPubKey, tx, i, sigCache)
		if err != nil {
			return ruleError(ErrScriptValidation, err.Error())
		}
		if err := vm.Execute(); err != nil {
			return ruleError(ErrScriptValidation, err.Error())
		}
	}
	return nil
}

// CheckCoinbaseValue enforces that a coinbase's total output does not
// exceed the block subsidy plus the fees collected from the block's other
// transactions.
func CheckCoinbaseValue(coinbase *wire.MsgTx, height int32, totalFees int64, params *chaincfg.Params) error {
	var total int64
	for _, out := range coinbase.TxOut {
		total += out.Value
	}
	limit := calcBlockSubsidy(height, params.BaseSubsidy, params.SubsidyHalvingInterval) + totalFees
	if total > limit {
		return ruleError(ErrBadFees, "coinbase pays more than the subsidy plus collected fees")
	}
	return nil
}

// checkTransactionFinality reports whether tx is final as of the given
// height. medianTimePast is passed on to IsFinal, which compares LockTime
// against the height only.
func checkTransactionFinality(tx *wire.MsgTx, height int32, medianTimePast time.Time) error {
	if !tx.IsFinal(height, medianTimePast.Unix()) {
		return ruleError(ErrUnfinalizedTx, "transaction is not final")
	}
	return nil
}

// minRelayFee is the fee policy spec §4.6 names: a size-proportional
// minimum with a flat per-kilobyte rate, expressed in the smallest unit of
// the currency (1 "cent" = 1 000 000 of the base unit, one hundredth of a
// coin at 8 decimal places).
const centsPerCoin = 1000000

func minRelayFee(serializedSize int64) int64 {
	ceilKB := (serializedSize + 999) / 1000
	return (1 + ceilKB) * centsPerCoin
}

// isDustOutput reports whether value sits below the 1-cent floor spec
// §4.6 uses to deter dust outputs.
func isDustOutput(value int64) bool {
	return value < centsPerCoin
}

// freeTxMaxSize is the serialized-size allowance spec §4.6 carves out of
// the fee requirement: transactions no larger than this are relayed and
// mined fee-free.
const freeTxMaxSize = 10000

// checkFeePolicy enforces spec §4.6 against a transaction already known to
// pay fee for serializedSize bytes: every output must clear the dust floor,
// and anything over freeTxMaxSize must pay at least minRelayFee.
func checkFeePolicy(tx *wire.MsgTx, fee int64, serializedSize int64) error {
	for _, out := range tx.TxOut {
		if isDustOutput(out.Value) {
			return ruleError(ErrDustOutput, "transaction output value is dust")
		}
	}
	if serializedSize > freeTxMaxSize && fee < minRelayFee(serializedSize) {
		return ruleError(ErrInsufficientFee, "transaction fee is below the minimum relay fee")
	}
	return nil
}
