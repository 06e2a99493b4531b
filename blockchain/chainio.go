// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/database"
)

// diskBlockIndex is the on-disk encoding of a blockNode: everything needed
// to reconstruct it and re-link it into the arena without re-reading the
// block itself from the block store.
type diskBlockIndex struct {
	hash       chainhash.Hash
	parent     chainhash.Hash
	height     int32
	version    int32
	merkleRoot chainhash.Hash
	timestamp  int64
	bits       uint32
	nonce      uint32
	fileNum    uint32
	offset     uint32
	workSum    []byte // big.Int.Bytes(), big-endian, always non-negative
	status     blockStatus
}

func putUint32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}

func putUint64(buf *bytes.Buffer, v uint64) {
	for i := 0; i < 8; i++ {
		buf.WriteByte(byte(v >> (8 * uint(i))))
	}
}

func readUint32At(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func readUint64At(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}

// serialize encodes the record as a fixed prefix followed by a
// length-prefixed workSum byte string, the only variable-length field.
func (d *diskBlockIndex) serialize() []byte {
	var buf bytes.Buffer
	buf.Write(d.hash[:])
	buf.Write(d.parent[:])
	putUint32(&buf, uint32(d.height))
	putUint32(&buf, uint32(d.version))
	buf.Write(d.merkleRoot[:])
	putUint64(&buf, uint64(d.timestamp))
	putUint32(&buf, d.bits)
	putUint32(&buf, d.nonce)
	putUint32(&buf, d.fileNum)
	putUint32(&buf, d.offset)
	buf.WriteByte(byte(d.status))
	putUint32(&buf, uint32(len(d.workSum)))
	buf.Write(d.workSum)
	return buf.Bytes()
}

func deserializeDiskBlockIndex(b []byte) (*diskBlockIndex, error) {
	const fixedLen = 32 + 32 + 4 + 4 + 32 + 8 + 4 + 4 + 4 + 4 + 1 + 4
	if len(b) < fixedLen {
		return nil, errors.New("block index record truncated")
	}
	d := &diskBlockIndex{}
	off := 0
	copy(d.hash[:], b[off:off+32])
	off += 32
	copy(d.parent[:], b[off:off+32])
	off += 32
	d.height = int32(readUint32At(b[off:]))
	off += 4
	d.version = int32(readUint32At(b[off:]))
	off += 4
	copy(d.merkleRoot[:], b[off:off+32])
	off += 32
	d.timestamp = int64(readUint64At(b[off:]))
	off += 8
	d.bits = readUint32At(b[off:])
	off += 4
	d.nonce = readUint32At(b[off:])
	off += 4
	d.fileNum = readUint32At(b[off:])
	off += 4
	d.offset = readUint32At(b[off:])
	off += 4
	d.status = blockStatus(b[off])
	off++
	wsLen := int(readUint32At(b[off:]))
	off += 4
	if len(b) < off+wsLen {
		return nil, errors.New("block index record: workSum truncated")
	}
	d.workSum = append([]byte(nil), b[off:off+wsLen]...)
	return d, nil
}

func toDiskBlockIndex(n *blockNode) *diskBlockIndex {
	ws := n.workSum
	if ws == nil {
		ws = big.NewInt(0)
	}
	return &diskBlockIndex{
		hash:       n.hash,
		parent:     n.parent,
		height:     n.height,
		version:    n.version,
		merkleRoot: n.merkleRoot,
		timestamp:  n.timestamp.Unix(),
		bits:       n.bits,
		nonce:      n.nonce,
		fileNum:    n.fileNum,
		offset:     n.offset,
		workSum:    ws.Bytes(),
		status:     n.status,
	}
}

func (d *diskBlockIndex) toBlockNode() *blockNode {
	return &blockNode{
		hash:       d.hash,
		parent:     d.parent,
		height:     d.height,
		version:    d.version,
		merkleRoot: d.merkleRoot,
		timestamp:  time.Unix(d.timestamp, 0),
		bits:       d.bits,
		nonce:      d.nonce,
		fileNum:    d.fileNum,
		offset:     d.offset,
		workSum:    new(big.Int).SetBytes(d.workSum),
		status:     d.status,
	}
}

// StoreBlockIndex persists n's diskBlockIndex record, overwriting any
// previous record for the same hash.
func StoreBlockIndex(db database.DataAccessor, n *blockNode) error {
	key := database.BlockIndexKey(n.hash[:])
	return db.Put(key, toDiskBlockIndex(n).serialize())
}

// StoreBestChainTip records hash as the current best-chain tip.
func StoreBestChainTip(db database.DataAccessor, hash chainhash.Hash) error {
	return db.Put(database.HashBestChainKey, hash[:])
}

// LoadBestChainTip returns the persisted best-chain tip, or the zero hash
// and found=false if none has ever been recorded.
func LoadBestChainTip(db database.DataAccessor) (hash chainhash.Hash, found bool, err error) {
	val, found, err := db.Get(database.HashBestChainKey)
	if err != nil || !found {
		return chainhash.Hash{}, found, err
	}
	if len(val) != chainhash.HashSize {
		return chainhash.Hash{}, false, errors.New("hashBestChain record has the wrong size")
	}
	copy(hash[:], val)
	return hash, true, nil
}

// LoadBlockIndex scans every persisted block index record, reconstructs
// each node, wires parent/next pointers by hash, and restores the
// best-chain tip pointer. It is the startup counterpart to StoreBlockIndex
// plus the per-block setNext calls chain.go makes as blocks connect.
func LoadBlockIndex(db database.DataAccessor, genesisHash chainhash.Hash) (*blockIndex, error) {
	bi := newBlockIndex()
	bi.genesis = genesisHash

	cur, err := db.Cursor(database.BlockIndexPrefix())
	if err != nil {
		return nil, errors.Wrap(err, "opening block index cursor")
	}
	defer cur.Close()

	for ok := cur.First(); ok; ok = cur.Next() {
		val, err := cur.Value()
		if err != nil {
			return nil, errors.Wrap(err, "reading block index record")
		}
		rec, err := deserializeDiskBlockIndex(val)
		if err != nil {
			return nil, err
		}
		bi.addNode(rec.toBlockNode())
	}

	// Re-derive next pointers by walking back from the persisted best tip:
	// each node on that path becomes its parent's next node.
	tipHash, found, err := LoadBestChainTip(db)
	if err != nil {
		return nil, err
	}
	if !found {
		return bi, nil
	}
	bi.best = tipHash

	for cur := bi.lookupNode(tipHash); cur != nil && cur.hash != genesisHash; {
		parent := bi.lookupNode(cur.parent)
		if parent == nil {
			break
		}
		parent.next = cur.hash
		cur = parent
	}

	return bi, nil
}
