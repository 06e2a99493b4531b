// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// PayToPubKeyHashScript returns the standard scriptPubKey that locks an
// output to pubKeyHash: DUP HASH160 <pubKeyHash> EQUALVERIFY CHECKSIG.
func PayToPubKeyHashScript(pubKeyHash []byte) []byte {
	script := make([]byte, 0, 25)
	script = append(script, OP_DUP, OP_HASH160, byte(len(pubKeyHash)))
	script = append(script, pubKeyHash...)
	script = append(script, OP_EQUALVERIFY, OP_CHECKSIG)
	return script
}

// SignatureScript returns the scriptSig that spends a pay-to-pubkey-hash
// output: <sig+hashtype> <serialized pubkey>.
func SignatureScript(sig []byte, hashType byte, serializedPubKey []byte) []byte {
	full := make([]byte, 0, len(sig)+1)
	full = append(full, sig...)
	full = append(full, hashType)

	script := make([]byte, 0, len(full)+len(serializedPubKey)+2)
	script = appendPush(script, full)
	script = appendPush(script, serializedPubKey)
	return script
}

// appendPush appends the canonical push opcode(s) for data to script.
func appendPush(script, data []byte) []byte {
	l := len(data)
	switch {
	case l <= 75:
		script = append(script, byte(l))
	case l <= 0xff:
		script = append(script, OP_PUSHDATA1, byte(l))
	case l <= 0xffff:
		script = append(script, OP_PUSHDATA2, byte(l), byte(l>>8))
	default:
		script = append(script, OP_PUSHDATA4, byte(l), byte(l>>8), byte(l>>16), byte(l>>24))
	}
	return append(script, data...)
}

// ExtractPubKeyHash returns the 20-byte hash embedded in a standard
// pay-to-pubkey-hash scriptPubKey, or nil if script does not match that
// template.
func ExtractPubKeyHash(script []byte) []byte {
	if len(script) != 25 {
		return nil
	}
	if script[0] != OP_DUP || script[1] != OP_HASH160 || script[2] != 20 {
		return nil
	}
	if script[23] != OP_EQUALVERIFY || script[24] != OP_CHECKSIG {
		return nil
	}
	return script[3:23]
}
