// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"math"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
)

// MaxTxInSequenceNum is the sequence number that marks an input as final
// and not subject to relative locktime / replacement.
const MaxTxInSequenceNum uint32 = math.MaxUint32

// SequenceLockTimeDisabled is the LockTime that, together with the
// MaxTxInSequenceNum rule above, governs finality: a zero LockTime is
// always final.
const SequenceLockTimeDisabled uint32 = 0

// MaxScriptSize bounds a single scriptSig/scriptPubKey to guard against a
// hostile length prefix forcing an oversized allocation.
const MaxScriptSize = 10000

// MaxTxInPerMessage and MaxTxOutPerMessage bound the vin/vout counts to the
// same order of magnitude as MaxBlockSize permits.
const (
	MaxTxInPerMessage  = 1000000
	MaxTxOutPerMessage = 1000000
)

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// IsFinal reports whether the input itself carries the finality sequence.
func (t *TxIn) IsFinal() bool {
	return t.Sequence == MaxTxInSequenceNum
}

// SerializeSize returns the number of bytes it would take to serialize the
// input.
func (t *TxIn) SerializeSize() int {
	return 36 + VarIntSerializeSize(uint64(len(t.SignatureScript))) + len(t.SignatureScript) + 4
}

func (t *TxIn) serialize(w io.Writer) error {
	if err := t.PreviousOutPoint.Serialize(w); err != nil {
		return err
	}
	if err := WriteVarBytes(w, t.SignatureScript); err != nil {
		return err
	}
	return writeUint32(w, t.Sequence)
}

func (t *TxIn) deserialize(r io.Reader) error {
	if err := t.PreviousOutPoint.Deserialize(r); err != nil {
		return err
	}
	sig, err := ReadVarBytes(r, MaxScriptSize, "TxIn.SignatureScript")
	if err != nil {
		return err
	}
	t.SignatureScript = sig
	seq, err := readUint32(r)
	if err != nil {
		return err
	}
	t.Sequence = seq
	return nil
}

// TxOut defines a transaction output.
type TxOut struct {
	Value        int64
	ScriptPubKey []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.ScriptPubKey))) + len(t.ScriptPubKey)
}

func (t *TxOut) serialize(w io.Writer) error {
	if err := writeUint64(w, uint64(t.Value)); err != nil {
		return err
	}
	return WriteVarBytes(w, t.ScriptPubKey)
}

func (t *TxOut) deserialize(r io.Reader) error {
	val, err := readUint64(r)
	if err != nil {
		return err
	}
	t.Value = int64(val)
	script, err := ReadVarBytes(r, MaxScriptSize, "TxOut.ScriptPubKey")
	if err != nil {
		return err
	}
	t.ScriptPubKey = script
	return nil
}

// MsgTx describes a transaction: a version, an ordered set of inputs
// consuming prior outputs, an ordered set of new outputs, and a lock time
// gating when it may be mined.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new transaction with the given version and empty
// input/output vectors.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// AddTxIn appends an input.
func (msg *MsgTx) AddTxIn(ti *TxIn) { msg.TxIn = append(msg.TxIn, ti) }

// AddTxOut appends an output.
func (msg *MsgTx) AddTxOut(to *TxOut) { msg.TxOut = append(msg.TxOut, to) }

// IsCoinBase reports whether this transaction is the unique input-less
// first transaction of a block: exactly one input, and that input's
// prevout is null.
func (msg *MsgTx) IsCoinBase() bool {
	return len(msg.TxIn) == 1 && msg.TxIn[0].PreviousOutPoint.IsNull()
}

// IsFinal reports whether the transaction is final: either its LockTime is
// zero or below blockHeight, or every one of its inputs carries the
// finality sequence number. Every LockTime is compared as a block height;
// blockTime is not consulted.
func (msg *MsgTx) IsFinal(blockHeight int32, blockTime int64) bool {
	if msg.LockTime == 0 || int64(msg.LockTime) < int64(blockHeight) {
		return true
	}

	for _, txIn := range msg.TxIn {
		if !txIn.IsFinal() {
			return false
		}
	}
	return true
}

// Serialize writes the canonical encoding of the transaction to w.
func (msg *MsgTx) Serialize(w io.Writer) error {
	if err := writeUint32(w, uint32(msg.Version)); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := ti.serialize(w); err != nil {
			return err
		}
	}
	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := to.serialize(w); err != nil {
			return err
		}
	}
	return writeUint32(w, msg.LockTime)
}

// Deserialize reads a transaction from r.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	ver, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.Version = int32(ver)

	inCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if inCount > MaxTxInPerMessage {
		return messageError("MsgTx.Deserialize", "too many inputs")
	}
	msg.TxIn = make([]*TxIn, inCount)
	for i := range msg.TxIn {
		ti := &TxIn{}
		if err := ti.deserialize(r); err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	outCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if outCount > MaxTxOutPerMessage {
		return messageError("MsgTx.Deserialize", "too many outputs")
	}
	msg.TxOut = make([]*TxOut, outCount)
	for i := range msg.TxOut {
		to := &TxOut{}
		if err := to.deserialize(r); err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	lockTime, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.LockTime = lockTime
	return nil
}

// Bytes returns the canonical serialized form of the transaction.
func (msg *MsgTx) Bytes() []byte {
	var buf bytes.Buffer
	// Serialize only fails if the underlying writer fails, which a
	// bytes.Buffer never does.
	_ = msg.Serialize(&buf)
	return buf.Bytes()
}

// TxHash returns the transaction identifier: the double SHA-256 of its
// canonical serialization.
func (msg *MsgTx) TxHash() chainhash.Hash {
	return chainhash.DoubleHashH(msg.Bytes())
}

// SerializeSize returns the number of bytes the canonical encoding occupies.
func (msg *MsgTx) SerializeSize() int {
	n := 4 + 4 // version + locktime
	n += VarIntSerializeSize(uint64(len(msg.TxIn)))
	for _, ti := range msg.TxIn {
		n += ti.SerializeSize()
	}
	n += VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, to := range msg.TxOut {
		n += to.SerializeSize()
	}
	return n
}

// Copy returns a deep copy of the transaction, safe to mutate without
// affecting the original.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := &MsgTx{
		Version:  msg.Version,
		LockTime: msg.LockTime,
		TxIn:     make([]*TxIn, len(msg.TxIn)),
		TxOut:    make([]*TxOut, len(msg.TxOut)),
	}
	for i, ti := range msg.TxIn {
		sigScript := make([]byte, len(ti.SignatureScript))
		copy(sigScript, ti.SignatureScript)
		newTx.TxIn[i] = &TxIn{
			PreviousOutPoint: ti.PreviousOutPoint,
			SignatureScript:  sigScript,
			Sequence:         ti.Sequence,
		}
	}
	for i, to := range msg.TxOut {
		script := make([]byte, len(to.ScriptPubKey))
		copy(script, to.ScriptPubKey)
		newTx.TxOut[i] = &TxOut{Value: to.Value, ScriptPubKey: script}
	}
	return newTx
}
