// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
)

// MaxBlockSize is the serialization size cap a block's wire/disk encoding
// must not exceed: 2^25 bytes.
const MaxBlockSize = 1 << 25

// MaxTxPerBlock bounds the transaction count a block may declare, loosely
// derived from the minimum possible transaction size and MaxBlockSize.
const MaxTxPerBlock = MaxBlockSize / 60

// MsgBlock defines a block: a header plus its ordered list of transactions,
// the first of which must be the coinbase.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// AddTransaction appends a transaction to the block.
func (m *MsgBlock) AddTransaction(tx *MsgTx) {
	m.Transactions = append(m.Transactions, tx)
}

// BlockHash returns the block's identity hash.
func (m *MsgBlock) BlockHash() chainhash.Hash {
	return m.Header.BlockHash()
}

// Serialize writes the canonical block encoding to w: the 80-byte header
// followed by a varint transaction count and each transaction in order.
func (m *MsgBlock) Serialize(w io.Writer) error {
	if err := m.Header.Serialize(w); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(m.Transactions))); err != nil {
		return err
	}
	for _, tx := range m.Transactions {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a block from r.
func (m *MsgBlock) Deserialize(r io.Reader) error {
	if err := m.Header.Deserialize(r); err != nil {
		return err
	}
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxTxPerBlock {
		return messageError("MsgBlock.Deserialize", "too many transactions")
	}
	m.Transactions = make([]*MsgTx, count)
	for i := range m.Transactions {
		tx := &MsgTx{}
		if err := tx.Deserialize(r); err != nil {
			return err
		}
		m.Transactions[i] = tx
	}
	return nil
}

// Bytes returns the canonical serialized form of the block.
func (m *MsgBlock) Bytes() []byte {
	var buf bytes.Buffer
	_ = m.Serialize(&buf)
	return buf.Bytes()
}

// SerializeSize returns the number of bytes the canonical encoding occupies.
func (m *MsgBlock) SerializeSize() int {
	n := BlockHeaderLen
	n += VarIntSerializeSize(uint64(len(m.Transactions)))
	for _, tx := range m.Transactions {
		n += tx.SerializeSize()
	}
	return n
}

// BuildMerkleTreeStore builds the binary hash tree over the given leaf
// hashes, duplicating the last node of any odd-sized layer, and returns
// every layer flattened bottom-to-top. The root is the last element.
func BuildMerkleTreeStore(hashes []chainhash.Hash) []chainhash.Hash {
	if len(hashes) == 0 {
		return []chainhash.Hash{{}}
	}

	tree := make([]chainhash.Hash, len(hashes))
	copy(tree, hashes)

	layer := make([]chainhash.Hash, len(hashes))
	copy(layer, hashes)
	for len(layer) > 1 {
		next := make([]chainhash.Hash, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			i2 := i + 1
			if i2 > len(layer)-1 {
				i2 = len(layer) - 1
			}
			next = append(next, hashMerkleBranches(&layer[i], &layer[i2]))
		}
		tree = append(tree, next...)
		layer = next
	}

	return tree
}

func hashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var buf bytes.Buffer
	buf.Write(left[:])
	buf.Write(right[:])
	return chainhash.DoubleHashH(buf.Bytes())
}

// MerkleRoot returns the root of the transaction merkle tree for the given
// list of transaction hashes, duplicating the last node of odd layers.
func MerkleRoot(hashes []chainhash.Hash) chainhash.Hash {
	tree := BuildMerkleTreeStore(hashes)
	return tree[len(tree)-1]
}
