package wire

import (
	"io"
	"math"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
)

// MaxPrevOutIndex is the maximum value for an OutPoint vout, used as the
// sentinel index that marks a coinbase input together with a null hash.
const MaxPrevOutIndex uint32 = math.MaxUint32

// OutPoint identifies one output of one prior transaction. An OutPoint
// whose Hash is all zero and whose Index is MaxPrevOutIndex marks a
// coinbase input's null prevout.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new OutPoint for the given hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// IsNull reports whether the outpoint is the coinbase sentinel.
func (o *OutPoint) IsNull() bool {
	return o.Index == MaxPrevOutIndex && o.Hash == (chainhash.Hash{})
}

// Serialize writes the canonical 36-byte encoding of the outpoint.
func (o *OutPoint) Serialize(w io.Writer) error {
	if _, err := w.Write(o.Hash[:]); err != nil {
		return err
	}
	return writeUint32(w, o.Index)
}

// Deserialize reads a 36-byte outpoint from r.
func (o *OutPoint) Deserialize(r io.Reader) error {
	if _, err := io.ReadFull(r, o.Hash[:]); err != nil {
		return err
	}
	idx, err := readUint32(r)
	if err != nil {
		return err
	}
	o.Index = idx
	return nil
}
