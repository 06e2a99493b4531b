// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// serialize encodes wt into a manual little-endian record, following the
// same byte-level convention blockchain/chainio.go uses for its own disk
// records: fixed-width fields, length-prefixed variable ones.
func (wt *WalletTx) serialize() ([]byte, error) {
	var buf bytes.Buffer

	if err := wt.Tx.Serialize(&buf); err != nil {
		return nil, err
	}

	writeBool(&buf, wt.InBlock)
	buf.Write(wt.HashBlock[:])
	writeUint32(&buf, uint32(wt.Height))
	writeUint32(&buf, uint32(wt.IndexInBlock))

	writeUint32(&buf, uint32(len(wt.MerkleBranch)))
	for _, h := range wt.MerkleBranch {
		buf.Write(h[:])
	}

	writeUint64(&buf, uint64(wt.ReceivedTime.Unix()))
	writeBool(&buf, wt.FromMe)

	writeUint32(&buf, uint32(len(wt.Spent)))
	for _, s := range wt.Spent {
		writeBool(&buf, s)
	}

	writeUint32(&buf, uint32(len(wt.SupportingTxs)))
	for _, tx := range wt.SupportingTxs {
		if err := tx.Serialize(&buf); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func deserializeWalletTx(b []byte) (*WalletTx, error) {
	r := bytes.NewReader(b)
	wt := &WalletTx{Tx: &wire.MsgTx{}}

	if err := wt.Tx.Deserialize(r); err != nil {
		return nil, err
	}

	inBlock, err := readBool(r)
	if err != nil {
		return nil, err
	}
	wt.InBlock = inBlock

	if _, err := io.ReadFull(r, wt.HashBlock[:]); err != nil {
		return nil, err
	}
	height, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	wt.Height = int32(height)
	idx, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	wt.IndexInBlock = int(idx)

	branchLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	wt.MerkleBranch = make([]chainhash.Hash, branchLen)
	for i := range wt.MerkleBranch {
		if _, err := io.ReadFull(r, wt.MerkleBranch[i][:]); err != nil {
			return nil, err
		}
	}

	receivedUnix, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	wt.ReceivedTime = time.Unix(int64(receivedUnix), 0)

	fromMe, err := readBool(r)
	if err != nil {
		return nil, err
	}
	wt.FromMe = fromMe

	spentLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	wt.Spent = make([]bool, spentLen)
	for i := range wt.Spent {
		s, err := readBool(r)
		if err != nil {
			return nil, err
		}
		wt.Spent[i] = s
	}

	supportingLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	wt.SupportingTxs = make([]*wire.MsgTx, supportingLen)
	for i := range wt.SupportingTxs {
		tx := &wire.MsgTx{}
		if err := tx.Deserialize(r); err != nil {
			return nil, err
		}
		wt.SupportingTxs[i] = tx
	}

	return wt, nil
}

func writeUint32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeUint64(w *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func writeBool(w *bytes.Buffer, v bool) {
	if v {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}
