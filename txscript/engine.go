// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txscript implements the stack-machine script interpreter used to
// lock and unlock transaction outputs: push literals, duplicate the top of
// stack, hash and equality verification, CHECKSIG/CHECKMULTISIG, and
// IF/NOTIF/ELSE/ENDIF flow control over a small opcode set.
package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/ecc"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// SigHashAll is the only hash type this era's interpreter recognizes: sign
// every input and every output.
const SigHashAll = 0x01

// condState tracks the engine's position within nested IF/NOTIF/ELSE/ENDIF
// blocks: whether the current branch executes, and whether an ELSE has
// already been seen at this depth.
type condState struct {
	executing bool
	taken     bool
	sawElse   bool
}

// Engine evaluates a scriptSig followed by a scriptPubKey against a spending
// transaction's given input index.
type Engine struct {
	scripts  [2][]parsedOpcode
	scriptIdx int
	opIdx     int

	// scriptPubKey is the raw locking script bytes this engine was
	// constructed with, kept verbatim (not reconstructed from parsed
	// opcodes) since it is the exact preimage CalcSignatureHash signs.
	scriptPubKey []byte

	dstack stack
	astack stack

	condStack []condState

	tx      *wire.MsgTx
	txIdx   int
	sigCache *SigCache

	numOps int
}

// NewEngine parses scriptSig and scriptPubKey and returns an Engine ready to
// evaluate them against input txIdx of tx.
func NewEngine(scriptSig, scriptPubKey []byte, tx *wire.MsgTx, txIdx int, sigCache *SigCache) (*Engine, error) {
	if txIdx < 0 || txIdx >= len(tx.TxIn) {
		return nil, scriptError(ErrInvalidOpcode, "txIdx out of range")
	}

	sigParsed, err := parseScript(scriptSig)
	if err != nil {
		return nil, err
	}
	pkParsed, err := parseScript(scriptPubKey)
	if err != nil {
		return nil, err
	}

	return &Engine{
		scripts:      [2][]parsedOpcode{sigParsed, pkParsed},
		scriptPubKey: scriptPubKey,
		tx:           tx,
		txIdx:        txIdx,
		sigCache:     sigCache,
	}, nil
}

func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1].executing
}

// Execute runs scriptSig then scriptPubKey to completion and reports
// whether the result is a valid, truthy, non-empty final stack.
func (vm *Engine) Execute() error {
	for vm.scriptIdx < len(vm.scripts) {
		script := vm.scripts[vm.scriptIdx]
		for vm.opIdx < len(script) {
			pop := &script[vm.opIdx]
			if err := vm.step(pop); err != nil {
				return err
			}
			vm.opIdx++
		}
		vm.scriptIdx++
		vm.opIdx = 0
	}

	if len(vm.condStack) != 0 {
		return scriptError(ErrUnbalancedConditional, "unbalanced if/else/endif at end of script")
	}

	if vm.dstack.depth() < 1 {
		return scriptError(ErrEvalFalse, "stack empty at end of script execution")
	}
	top, err := vm.dstack.PeekByteArray(0)
	if err != nil {
		return err
	}
	if !asBool(top) {
		return scriptError(ErrEvalFalse, "false stack entry at end of script execution")
	}
	return nil
}

func (vm *Engine) step(pop *parsedOpcode) error {
	if pop.isPush() {
		if !vm.isBranchExecuting() {
			return nil
		}
		vm.dstack.PushByteArray(pop.data)
		return vm.checkStackSize()
	}

	// Flow control opcodes must be evaluated even inside a non-executing
	// branch so nesting stays balanced.
	switch pop.opcode {
	case OP_IF, OP_NOTIF:
		cond := false
		if vm.isBranchExecuting() {
			val, err := vm.dstack.PopBool()
			if err != nil {
				return err
			}
			cond = val
			if pop.opcode == OP_NOTIF {
				cond = !cond
			}
		}
		vm.condStack = append(vm.condStack, condState{executing: vm.isBranchExecuting() && cond, taken: cond})
		return nil

	case OP_ELSE:
		if len(vm.condStack) == 0 {
			return scriptError(ErrUnbalancedConditional, "OP_ELSE without matching OP_IF")
		}
		top := &vm.condStack[len(vm.condStack)-1]
		if top.sawElse {
			return scriptError(ErrUnbalancedConditional, "multiple OP_ELSE for one OP_IF")
		}
		top.sawElse = true
		parentExecuting := true
		if len(vm.condStack) > 1 {
			parentExecuting = vm.condStack[len(vm.condStack)-2].executing
		}
		top.executing = parentExecuting && !top.taken
		return nil

	case OP_ENDIF:
		if len(vm.condStack) == 0 {
			return scriptError(ErrUnbalancedConditional, "OP_ENDIF without matching OP_IF")
		}
		vm.condStack = vm.condStack[:len(vm.condStack)-1]
		return nil
	}

	if !vm.isBranchExecuting() {
		return nil
	}

	vm.numOps++
	if vm.numOps > MaxOpsPerScript {
		return scriptError(ErrStackOverflow, "exceeded max operations in script")
	}

	if err := vm.executeOpcode(pop.opcode); err != nil {
		return err
	}
	return vm.checkStackSize()
}

// checkStackSize enforces MaxStackSize against the combined depth of the
// main and alt stacks, matching the original client's bound on the
// interpreter's total working set.
func (vm *Engine) checkStackSize() error {
	if vm.dstack.depth()+vm.astack.depth() > MaxStackSize {
		return scriptError(ErrStackOverflow, "exceeded max combined stack size")
	}
	return nil
}

func (vm *Engine) executeOpcode(op byte) error {
	switch {
	case op == OP_0:
		vm.dstack.PushByteArray(nil)

	case op == OP_1NEGATE:
		vm.dstack.PushByteArray([]byte{0x81})

	case op >= OP_1 && op <= OP_16:
		vm.dstack.PushByteArray([]byte{byte(op - OP_1 + 1)})

	case op == OP_NOP:
		// no-op

	case op == OP_VERIFY:
		ok, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !ok {
			return scriptError(ErrVerify, "OP_VERIFY failed")
		}

	case op == OP_RETURN:
		return scriptError(ErrVerify, "OP_RETURN encountered")

	case op == OP_DROP:
		_, err := vm.dstack.PopByteArray()
		return err

	case op == OP_DUP:
		return vm.dstack.DupN(1)

	case op == OP_EQUAL, op == OP_EQUALVERIFY:
		a, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		b, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		eq := bytesEqual(a, b)
		if op == OP_EQUALVERIFY {
			if !eq {
				return scriptError(ErrVerify, "OP_EQUALVERIFY failed")
			}
			return nil
		}
		vm.dstack.PushBool(eq)

	case op == OP_HASH160:
		data, err := vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
		vm.dstack.PushByteArray(chainhash.Hash160(data))

	case op == OP_CHECKSIG, op == OP_CHECKSIGVERIFY:
		return vm.opCheckSig(op == OP_CHECKSIGVERIFY)

	case op == OP_CHECKMULTISIG, op == OP_CHECKMULTISIGVERIFY:
		return vm.opCheckMultiSig(op == OP_CHECKMULTISIGVERIFY)

	default:
		return scriptError(ErrInvalidOpcode, "attempt to execute an unsupported opcode")
	}
	return nil
}

func (vm *Engine) opCheckSig(verify bool) error {
	pkBytes, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	fullSig, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}

	valid, err := vm.checkSig(fullSig, pkBytes, vm.currentScriptPubKey())
	if err != nil {
		// A decode failure fails the input, it does not propagate as a
		// hard error up through the transaction.
		valid = false
	}

	if verify {
		if !valid {
			return scriptError(ErrVerify, "OP_CHECKSIGVERIFY failed")
		}
		return nil
	}
	vm.dstack.PushBool(valid)
	return nil
}

// currentScriptPubKey returns the locking script's raw bytes, the exact
// preimage CalcSignatureHash needs to reproduce the signer's sighash.
func (vm *Engine) currentScriptPubKey() []byte {
	return vm.scriptPubKey
}

func (vm *Engine) checkSig(fullSig, pkBytes, scriptPubKey []byte) (bool, error) {
	if len(fullSig) == 0 {
		return false, scriptError(ErrSigDecode, "empty signature")
	}
	hashType := fullSig[len(fullSig)-1]
	if hashType != SigHashAll {
		return false, scriptError(ErrInvalidSigHashType, "unsupported hash type")
	}
	derSig := fullSig[:len(fullSig)-1]

	pubKey, err := ecc.ParsePubKeySEC(pkBytes)
	if err != nil {
		return false, scriptError(ErrPubKeyDecode, "invalid public key encoding")
	}

	sigHash := CalcSignatureHash(vm.tx, vm.txIdx, scriptPubKey, hashType)

	if vm.sigCache != nil {
		if vm.sigCache.Exists(sigHash, derSig, pkBytes) {
			return true, nil
		}
	}

	sig, err := ecc.ParseDERSignature(derSig)
	if err != nil {
		return false, scriptError(ErrSigDecode, "invalid DER signature encoding")
	}

	valid := sig.Verify(sigHash[:], pubKey)
	if valid && vm.sigCache != nil {
		vm.sigCache.AddTx(sigHash, derSig, pkBytes, vm.tx)
	}
	return valid, nil
}

func (vm *Engine) opCheckMultiSig(verify bool) error {
	nKeysRaw, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	nKeys := asInt(nKeysRaw)
	if nKeys < 0 || nKeys > 20 {
		return scriptError(ErrNumberTooBig, "invalid pubkey count for CHECKMULTISIG")
	}
	pubKeys := make([][]byte, nKeys)
	for i := 0; i < nKeys; i++ {
		pubKeys[i], err = vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
	}

	nSigsRaw, err := vm.dstack.PopByteArray()
	if err != nil {
		return err
	}
	nSigs := asInt(nSigsRaw)
	if nSigs < 0 || nSigs > nKeys {
		return scriptError(ErrNumberTooBig, "invalid signature count for CHECKMULTISIG")
	}
	sigs := make([][]byte, nSigs)
	for i := 0; i < nSigs; i++ {
		sigs[i], err = vm.dstack.PopByteArray()
		if err != nil {
			return err
		}
	}

	// The original CHECKMULTISIG pops one extra element due to an
	// off-by-one bug in the reference implementation that shipped to
	// consensus; keep popping it for wire compatibility.
	if _, err := vm.dstack.PopByteArray(); err != nil {
		return err
	}

	scriptPubKey := vm.currentScriptPubKey()
	success := true
	sigIdx, keyIdx := 0, 0
	for sigIdx < len(sigs) {
		if keyIdx >= len(pubKeys) {
			success = false
			break
		}
		valid, err := vm.checkSig(sigs[sigIdx], pubKeys[keyIdx], scriptPubKey)
		if err == nil && valid {
			sigIdx++
		}
		keyIdx++
	}

	if verify {
		if !success {
			return scriptError(ErrVerify, "OP_CHECKMULTISIGVERIFY failed")
		}
		return nil
	}
	vm.dstack.PushBool(success)
	return nil
}

// CalcSignatureHash computes the double-SHA-256 message CHECKSIG verifies
// against: the spending transaction serialized with every input's
// signature script blanked except the one at idx, which is set to
// scriptPubKey, followed by the 4-byte little-endian hash-type suffix.
func CalcSignatureHash(tx *wire.MsgTx, idx int, scriptPubKey []byte, hashType byte) chainhash.Hash {
	txCopy := tx.Copy()
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[i].SignatureScript = scriptPubKey
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	var buf bytes.Buffer
	_ = txCopy.Serialize(&buf)

	var hashTypeBytes [4]byte
	binary.LittleEndian.PutUint32(hashTypeBytes[:], uint32(hashType))
	buf.Write(hashTypeBytes[:])

	return chainhash.DoubleHashH(buf.Bytes())
}
