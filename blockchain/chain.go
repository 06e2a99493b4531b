// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the single-best-chain state machine: block
// acceptance, the UTXO set, reorg, and the validation pipeline transactions
// and blocks must pass before they affect either.
package blockchain

import (
	"bytes"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Rust-Boy/btc-sotamo/blockstore"
	"github.com/Rust-Boy/btc-sotamo/chaincfg"
	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/txscript"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// BestSnapshot describes the current best-chain tip, the information a
// peer-facing layer needs to advertise or to decide what to request next.
type BestSnapshot struct {
	Hash       chainhash.Hash
	Height     int32
	Bits       uint32
	MedianTime time.Time
}

// BlockNotifier receives chain membership changes as blocks join or leave
// the main chain, the hook spec §4.7 gives the wallet ("the wallet is
// notified") and the mempool's reorg re-admission rule.
type BlockNotifier interface {
	BlockConnected(block *wire.MsgBlock, height int32)
	BlockDisconnected(block *wire.MsgBlock)
}

// Chain is the chain state machine: the block index, the UTXO store
// reached through db, the block file store, and the orphan pool awaiting
// missing parents.
type Chain struct {
	mu sync.RWMutex

	params   *chaincfg.Params
	db       database.Database
	store    *blockstore.Store
	sigCache *txscript.SigCache

	index   *blockIndex
	mempool *Mempool

	orphans         map[chainhash.Hash]*wire.MsgBlock
	orphansByParent map[chainhash.Hash][]chainhash.Hash

	notifier BlockNotifier
}

// SetNotifier registers n to receive block connect/disconnect notifications.
// Only one notifier may be registered; a later call replaces the former.
func (c *Chain) SetNotifier(n BlockNotifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = n
}

// New constructs a Chain, loading a persisted block index if one exists or
// seeding the index with the network's genesis block otherwise.
func New(params *chaincfg.Params, db database.Database, store *blockstore.Store, sigCache *txscript.SigCache) (*Chain, error) {
	c := &Chain{
		params:          params,
		db:              db,
		store:           store,
		sigCache:        sigCache,
		mempool:         newMempool(),
		orphans:         make(map[chainhash.Hash]*wire.MsgBlock),
		orphansByParent: make(map[chainhash.Hash][]chainhash.Hash),
	}

	genesisHash := chainhash.Hash(params.GenesisHash)

	index, err := LoadBlockIndex(db, genesisHash)
	if err != nil {
		return nil, err
	}
	c.index = index

	if !index.haveBlock(genesisHash) {
		if err := c.acceptGenesis(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Chain) acceptGenesis() error {
	block := c.params.GenesisBlock
	hash := block.BlockHash()

	loc, err := c.store.AppendBlock(block.Bytes())
	if err != nil {
		return errors.Wrap(err, "writing genesis block")
	}

	node := &blockNode{
		hash:       hash,
		parent:     chainhash.Hash{},
		height:     0,
		version:    block.Header.Version,
		merkleRoot: block.Header.MerkleRoot,
		timestamp:  block.Header.Timestamp,
		bits:       block.Header.Bits,
		nonce:      block.Header.Nonce,
		fileNum:    loc.FileNum,
		offset:     loc.Offset,
		workSum:    calcWork(block.Header.Bits),
		status:     statusValid,
	}
	c.index.addNode(node)
	c.index.genesis = hash
	c.index.setBest(hash)

	if err := StoreBlockIndex(c.db, node); err != nil {
		return err
	}
	if err := StoreBestChainTip(c.db, hash); err != nil {
		return err
	}

	for i, tx := range block.Transactions {
		if err := ConnectTransaction(c.db, tx, 0, loc.FileNum, loc.Offset, uint32(i)); err != nil {
			return err
		}
	}
	return nil
}

// BestSnapshot returns a snapshot of the current best-chain tip.
func (c *Chain) BestSnapshot() *BestSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tip := c.index.bestTip()
	if tip == nil {
		return nil
	}
	return &BestSnapshot{
		Hash:       tip.hash,
		Height:     tip.height,
		Bits:       tip.bits,
		MedianTime: c.index.medianTimePast(tip),
	}
}

// HaveBlock reports whether hash is already indexed, under any status.
func (c *Chain) HaveBlock(hash chainhash.Hash) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.haveBlock(hash)
}

// BlockLocator builds a locator for the current best chain: the tip, then
// hashes stepping back with exponentially growing strides, ending at
// genesis, so a peer can describe what it has without enumerating every
// block it knows about.
func (c *Chain) BlockLocator() wire.BlockLocator {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tip := c.index.bestTip()
	if tip == nil {
		return nil
	}

	var locator wire.BlockLocator
	step := int32(1)
	cur := tip
	for {
		locator = append(locator, cur.hash)
		if cur.hash == c.index.genesis {
			break
		}
		target := cur.height - step
		if target < 0 {
			cur = c.index.lookupNode(c.index.genesis)
			locator = append(locator, cur.hash)
			break
		}
		cur = c.index.ancestorAt(tip, target)
		if cur == nil {
			break
		}
		if len(locator) >= 10 {
			step *= 2
		}
	}
	return locator
}

// ProcessBlock runs the acceptance protocol spec §4.7 names for an
// incoming block: duplicate/stateless rejection, orphan storage, height
// assignment and indexing, and reorg if the new block extends a chain with
// more cumulative work than the current best.
func (c *Chain) ProcessBlock(block *wire.MsgBlock) (isMainChain bool, isOrphan bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := block.BlockHash()

	if node := c.index.lookupNode(hash); node != nil {
		if node.status == statusInvalid {
			return false, false, ruleError(ErrDuplicateBlock, "block was previously rejected as invalid")
		}
		return node.hash == c.index.best, false, nil
	}

	if err := CheckBlock(block, c.params.PowLimitBits); err != nil {
		return false, false, err
	}

	parent := c.index.lookupNode(block.Header.PrevBlock)
	if parent == nil {
		c.storeOrphan(block)
		return false, true, nil
	}

	if err := c.acceptConnectedBlock(block, parent); err != nil {
		return false, false, err
	}

	isMain := c.index.best == hash
	c.processOrphansOf(hash)
	return isMain, false, nil
}

func (c *Chain) storeOrphan(block *wire.MsgBlock) {
	hash := block.BlockHash()
	c.orphans[hash] = block
	parent := block.Header.PrevBlock
	c.orphansByParent[parent] = append(c.orphansByParent[parent], hash)
}

func (c *Chain) processOrphansOf(hash chainhash.Hash) {
	children := c.orphansByParent[hash]
	delete(c.orphansByParent, hash)
	for _, childHash := range children {
		block, ok := c.orphans[childHash]
		if !ok {
			continue
		}
		delete(c.orphans, childHash)
		parent := c.index.lookupNode(block.Header.PrevBlock)
		if parent == nil {
			continue
		}
		if err := c.acceptConnectedBlock(block, parent); err == nil {
			c.processOrphansOf(childHash)
		}
	}
}

// acceptConnectedBlock runs the height/time/bits contextual checks for a
// block whose parent is already indexed, writes it to the block store,
// inserts its index node, and runs reorg if it now represents the most
// cumulative work known.
func (c *Chain) acceptConnectedBlock(block *wire.MsgBlock, parent *blockNode) error {
	hash := block.BlockHash()
	height := parent.height + 1

	if parent.status == statusInvalid {
		return ruleError(ErrBadPrevBlock, "block's parent was already rejected as invalid")
	}

	if err := checkBlockContext(c.index, parent, &block.Header, time.Now(), c.params); err != nil {
		return err
	}

	loc, err := c.store.AppendBlock(block.Bytes())
	if err != nil {
		return errors.Wrap(err, "writing block")
	}

	workSum := new(big.Int).Add(parent.workSum, calcWork(block.Header.Bits))

	node := &blockNode{
		hash:       hash,
		parent:     parent.hash,
		height:     height,
		version:    block.Header.Version,
		merkleRoot: block.Header.MerkleRoot,
		timestamp:  block.Header.Timestamp,
		bits:       block.Header.Bits,
		nonce:      block.Header.Nonce,
		fileNum:    loc.FileNum,
		offset:     loc.Offset,
		workSum:    workSum,
		status:     statusValid,
	}
	c.index.addNode(node)
	if err := StoreBlockIndex(c.db, node); err != nil {
		return err
	}

	tip := c.index.bestTip()
	if tip == nil || workSum.Cmp(tip.workSum) > 0 {
		if err := c.reorganize(node); err != nil {
			node.status = statusInvalid
			_ = StoreBlockIndex(c.db, node)
			return err
		}
	}
	return nil
}

// readNodeBlock re-reads a node's serialized block from the block store.
func (c *Chain) readNodeBlock(n *blockNode) (*wire.MsgBlock, error) {
	raw, err := c.store.ReadBlock(blockstore.Location{FileNum: n.fileNum, Offset: n.offset})
	if err != nil {
		return nil, err
	}
	var block wire.MsgBlock
	if err := block.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return &block, nil
}

// reorganize moves the best chain from its current tip to newTip: disconnect
// from the old tip back to the fork point, then connect from the fork point
// forward to newTip, per spec §4.7's reorg algorithm. All UTXO mutations
// happen within one transactional scope, committed only if every connect
// succeeds.
func (c *Chain) reorganize(newTip *blockNode) error {
	oldTip := c.index.bestTip()
	if oldTip == nil {
		return errors.New("reorg: chain has no current best tip")
	}

	fork := c.index.findFork(oldTip, newTip)
	if fork == nil {
		return errors.New("reorg: no common ancestor found")
	}

	var disconnectList []*blockNode
	for n := oldTip; n != nil && n.hash != fork.hash; n = c.index.lookupNode(n.parent) {
		disconnectList = append(disconnectList, n)
	}

	var connectList []*blockNode
	for n := newTip; n != nil && n.hash != fork.hash; n = c.index.lookupNode(n.parent) {
		connectList = append(connectList, n)
	}
	// connectList was built tip-to-fork; reverse it to fork-to-tip order.
	for i, j := 0, len(connectList)-1; i < j; i, j = i+1, j-1 {
		connectList[i], connectList[j] = connectList[j], connectList[i]
	}

	txn, err := c.db.Begin()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = txn.RollbackUnlessClosed()
		}
	}()

	disconnectedBlocks := make([]*wire.MsgBlock, len(disconnectList))
	connectedBlocks := make([]*wire.MsgBlock, len(connectList))

	var connected []*blockNode
	for i, n := range disconnectList {
		block, err := c.readNodeBlock(n)
		if err != nil {
			return err
		}
		disconnectedBlocks[i] = block
		for j := len(block.Transactions) - 1; j >= 0; j-- {
			tx := block.Transactions[j]
			if err := DisconnectTransaction(txn, tx); err != nil {
				return err
			}
			if !tx.IsCoinBase() {
				c.mempool.add(tx)
			}
		}
	}

	for i, n := range connectList {
		block, err := c.readNodeBlock(n)
		if err != nil {
			return err
		}
		if err := c.connectBlockTransactions(txn, block, n); err != nil {
			c.undoConnected(txn, connected)
			return err
		}
		connectedBlocks[i] = block
		connected = append(connected, n)
	}

	if err := txn.Commit(); err != nil {
		return err
	}
	committed = true

	for _, n := range disconnectList {
		c.index.clearNext(n.parent)
	}
	parent := fork
	for _, n := range connectList {
		c.index.setNext(parent.hash, n.hash)
		parent = n
	}

	c.index.setBest(newTip.hash)
	if err := StoreBestChainTip(c.db, newTip.hash); err != nil {
		return err
	}

	if c.notifier != nil {
		for _, block := range disconnectedBlocks {
			c.notifier.BlockDisconnected(block)
		}
		for i, block := range connectedBlocks {
			c.notifier.BlockConnected(block, connectList[i].height)
		}
	}
	return nil
}

// connectBlockTransactions runs per-transaction contextual validation
// (prevout resolution, maturity, fee accounting, script evaluation) and
// applies the UTXO mutation for every transaction in the block located at
// node.
func (c *Chain) connectBlockTransactions(txn database.Transaction, block *wire.MsgBlock, node *blockNode) error {
	var totalFees int64
	medianTime := c.index.medianTimePast(c.index.lookupNode(node.parent))

	for _, tx := range block.Transactions {
		if tx.IsCoinBase() {
			continue
		}
		if err := checkTransactionFinality(tx, node.height, medianTime); err != nil {
			return err
		}
		fee, err := CheckTransactionInputs(txn, c.store, tx, node.height, c.params.CoinbaseMaturity)
		if err != nil {
			return err
		}
		if err := ValidateTransactionScripts(txn, c.store, tx, c.sigCache); err != nil {
			return err
		}
		totalFees += fee
		c.mempool.remove(tx.TxHash())
	}

	if err := CheckCoinbaseValue(block.Transactions[0], node.height, totalFees, c.params); err != nil {
		return err
	}

	for i, tx := range block.Transactions {
		if err := ConnectTransaction(txn, tx, node.height, node.fileNum, node.offset, uint32(i)); err != nil {
			return err
		}
	}
	return nil
}

// undoConnected is called when connectBlockTransactions fails partway
// through a reorg. Every UTXO mutation made so far lives only in txn, which
// the caller's defer rolls back, and next pointers are set only after a
// successful commit, so there is nothing left for it to reverse.
func (c *Chain) undoConnected(txn database.Transaction, connected []*blockNode) {
	// All UTXO mutations so far live only inside the uncommitted txn,
	// discarded by the caller's rollback; nothing else to undo here.
}
