// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
)

// BlockHeaderLen is the number of bytes in a serialized block header: the
// 80-byte structure whose double SHA-256 is the block hash.
const BlockHeaderLen = 4 + chainhash.HashSize + chainhash.HashSize + 4 + 4 + 4

// BlockHeader defines information about a block and is used in the bitcoin
// block (MsgBlock) and headers (MsgHeaders) messages.
type BlockHeader struct {
	// Version of the block. This is not the same as the protocol version.
	Version int32

	// Hash of the previous block header in the block chain.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created, seconds since the epoch.
	Timestamp time.Time

	// Difficulty target for the block, compact encoding.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// BlockHash returns the block identifier: the double SHA-256 of the
// serialized header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = h.Serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Serialize writes the canonical 80-byte header encoding to w.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := writeUint32(w, uint32(h.Version)); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeUint32(w, h.Bits); err != nil {
		return err
	}
	return writeUint32(w, h.Nonce)
}

// Deserialize reads an 80-byte header from r.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	ver, err := readUint32(r)
	if err != nil {
		return err
	}
	h.Version = int32(ver)

	if _, err := io.ReadFull(r, h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, h.MerkleRoot[:]); err != nil {
		return err
	}

	ts, err := readUint32(r)
	if err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0)

	bits, err := readUint32(r)
	if err != nil {
		return err
	}
	h.Bits = bits

	nonce, err := readUint32(r)
	if err != nil {
		return err
	}
	h.Nonce = nonce
	return nil
}

// NewBlockHeader returns a new header populated with the given fields and
// a zero nonce, ready for a miner's nonce search.
func NewBlockHeader(version int32, prevHash, merkleRoot *chainhash.Hash, bits uint32) *BlockHeader {
	return &BlockHeader{
		Version:    version,
		PrevBlock:  *prevHash,
		MerkleRoot: *merkleRoot,
		Timestamp:  time.Unix(time.Now().Unix(), 0),
		Bits:       bits,
	}
}
