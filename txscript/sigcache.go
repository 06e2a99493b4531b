// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/dchest/siphash"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// shortTxHashKeySize is the size of the key material for the SipHash keyed
// shortTxHash function.
const shortTxHashKeySize = 16

// sigCacheEntry is one verified-signature record. A cache hit on sigHash is
// still compared against sig and pubKey in full: hash collisions must not
// forge a second signature's validity. shortTxHash lets a whole block's
// worth of entries be located for proactive eviction without keeping a
// second index keyed by the full 32-byte transaction hash.
type sigCacheEntry struct {
	sig         []byte
	pubKey      []byte
	shortTxHash uint64
}

// SigCache caches the result of a verified ECDSA signature so a transaction
// seen in the mempool does not pay the verification cost again when it is
// later confirmed in a block. Only signatures that verified are recorded; a
// failing verification runs again each time it is attempted.
type SigCache struct {
	sync.RWMutex
	valid      map[chainhash.Hash]sigCacheEntry
	maxEntries uint
	key        [shortTxHashKeySize]byte
}

// NewSigCache returns a SigCache holding at most maxEntries signatures.
// Once full, one existing entry is evicted to make room: whichever key Go's
// randomized map iteration yields first.
func NewSigCache(maxEntries uint) *SigCache {
	var key [shortTxHashKeySize]byte
	_, _ = rand.Read(key[:])
	return &SigCache{
		valid:      make(map[chainhash.Hash]sigCacheEntry, maxEntries),
		maxEntries: maxEntries,
		key:        key,
	}
}

// Exists reports whether sig over sigHash by pubKey has already been
// verified.
func (s *SigCache) Exists(sigHash chainhash.Hash, sig, pubKey []byte) bool {
	s.RLock()
	entry, ok := s.valid[sigHash]
	s.RUnlock()
	return ok && bytes.Equal(entry.sig, sig) && bytes.Equal(entry.pubKey, pubKey)
}

// AddTx records sig over sigHash by pubKey, belonging to tx, as verified.
// Recording the owning transaction lets EvictEntries later drop every
// signature belonging to a confirmed block in one pass.
func (s *SigCache) AddTx(sigHash chainhash.Hash, sig, pubKey []byte, tx *wire.MsgTx) {
	if s.maxEntries == 0 {
		return
	}
	s.Lock()
	defer s.Unlock()

	if uint(len(s.valid)+1) > s.maxEntries {
		// Evict whichever entry Go's randomized map iteration order
		// yields first.
		for k := range s.valid {
			delete(s.valid, k)
			break
		}
	}

	var short uint64
	if tx != nil {
		short = s.shortTxHash(tx)
	}
	s.valid[sigHash] = sigCacheEntry{sig: sig, pubKey: pubKey, shortTxHash: short}
}

func (s *SigCache) shortTxHash(tx *wire.MsgTx) uint64 {
	k0 := binary.LittleEndian.Uint64(s.key[0:8])
	k1 := binary.LittleEndian.Uint64(s.key[8:16])
	txHash := tx.TxHash()
	return siphash.Hash(k0, k1, txHash[:])
}

// EvictEntries drops every cached signature belonging to a transaction in
// block. Nothing in this module calls it; entries otherwise leave the cache
// only when AddTx evicts one to make room.
func (s *SigCache) EvictEntries(block *wire.MsgBlock) {
	shortHashes := make(map[uint64]struct{}, len(block.Transactions))
	for _, tx := range block.Transactions {
		shortHashes[s.shortTxHash(tx)] = struct{}{}
	}

	s.Lock()
	defer s.Unlock()
	for sigHash, entry := range s.valid {
		if _, ok := shortHashes[entry.shortTxHash]; ok {
			delete(s.valid, sigHash)
		}
	}
}

// ProactiveEvictionDepth is the confirmation depth at which a block's
// transaction signatures are nearly guaranteed to no longer be useful.
const ProactiveEvictionDepth = 2
