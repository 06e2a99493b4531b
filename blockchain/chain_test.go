package blockchain

import (
	"testing"
	"time"

	"github.com/Rust-Boy/btc-sotamo/blockstore"
	"github.com/Rust-Boy/btc-sotamo/chaincfg"
	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/database/ldb"
	"github.com/Rust-Boy/btc-sotamo/ecc"
	"github.com/Rust-Boy/btc-sotamo/txscript"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

func newTestBlockStore(t *testing.T) (*blockstore.Store, error) {
	t.Helper()
	store, err := blockstore.New(t.TempDir(), [4]byte{0xfa, 0xbf, 0xb5, 0xda})
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { store.Close() })
	return store, nil
}

func newTestChain(t *testing.T) (*Chain, *chaincfg.Params) {
	t.Helper()

	env := database.NewEnvironment()
	db, err := ldb.Open(t.TempDir()+"/chain.ldb", env)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := newTestBlockStore(t)
	if err != nil {
		t.Fatalf("opening test block store: %v", err)
	}

	params := chaincfg.RegressionNetParams()
	sigCache := txscript.NewSigCache(100)

	chain, err := New(params, db, store, sigCache)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return chain, params
}

// mineBlock searches a small nonce range for a hash satisfying bits; on
// regtest's near-maximal target this converges in a handful of tries.
func mineBlock(block *wire.MsgBlock, powLimitBits uint32) {
	for nonce := uint32(0); ; nonce++ {
		block.Header.Nonce = nonce
		hash := block.BlockHash()
		if checkProofOfWork(hash[:], block.Header.Bits, powLimitBits) == nil {
			return
		}
	}
}

func coinbaseTx(height int32, payToHash []byte, value int64) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: wire.MaxPrevOutIndex},
		SignatureScript:  []byte{byte(height), 0x01},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{
		Value:        value,
		ScriptPubKey: txscript.PayToPubKeyHashScript(payToHash),
	})
	return tx
}

func buildChildBlock(parent *wire.MsgBlock, parentHash chainhash.Hash, txs []*wire.MsgTx, bits uint32, ts time.Time) *wire.MsgBlock {
	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   1,
			PrevBlock: parentHash,
			Timestamp: ts,
			Bits:      bits,
		},
	}
	for _, tx := range txs {
		block.AddTransaction(tx)
	}
	hashes := make([]chainhash.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		hashes[i] = tx.TxHash()
	}
	block.Header.MerkleRoot = wire.MerkleRoot(hashes)
	return block
}

func TestProcessBlockExtendsMainChain(t *testing.T) {
	chain, params := newTestChain(t)

	genesisHash := chainhash.Hash(params.GenesisHash)
	payHash := make([]byte, 20)

	block1 := buildChildBlock(params.GenesisBlock, genesisHash, []*wire.MsgTx{
		coinbaseTx(1, payHash, params.BaseSubsidy),
	}, params.PowLimitBits, params.GenesisBlock.Header.Timestamp.Add(10*time.Minute))
	mineBlock(block1, params.PowLimitBits)

	isMain, isOrphan, err := chain.ProcessBlock(block1)
	if err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}
	if isOrphan {
		t.Fatalf("block with known parent should not be an orphan")
	}
	if !isMain {
		t.Fatalf("first block after genesis should extend the main chain")
	}

	snap := chain.BestSnapshot()
	if snap.Height != 1 {
		t.Fatalf("best height = %d, want 1", snap.Height)
	}
	if snap.Hash != block1.BlockHash() {
		t.Fatalf("best hash does not match the accepted block")
	}
}

func TestProcessBlockOrphanWhenParentUnknown(t *testing.T) {
	chain, params := newTestChain(t)

	unknownParent := chainhash.DoubleHashH([]byte("not a real parent"))
	block := buildChildBlock(params.GenesisBlock, unknownParent, []*wire.MsgTx{
		coinbaseTx(1, make([]byte, 20), params.BaseSubsidy),
	}, params.PowLimitBits, time.Now())
	mineBlock(block, params.PowLimitBits)

	isMain, isOrphan, err := chain.ProcessBlock(block)
	if err != nil {
		t.Fatalf("ProcessBlock: %v", err)
	}
	if isMain || !isOrphan {
		t.Fatalf("block with unknown parent should be held as an orphan, got isMain=%v isOrphan=%v", isMain, isOrphan)
	}
}

func TestProcessBlockRejectsBadMerkleRoot(t *testing.T) {
	chain, params := newTestChain(t)

	genesisHash := chainhash.Hash(params.GenesisHash)
	block := buildChildBlock(params.GenesisBlock, genesisHash, []*wire.MsgTx{
		coinbaseTx(1, make([]byte, 20), params.BaseSubsidy),
	}, params.PowLimitBits, time.Now())
	block.Header.MerkleRoot = chainhash.DoubleHashH([]byte("wrong"))
	mineBlock(block, params.PowLimitBits)

	_, _, err := chain.ProcessBlock(block)
	if err == nil {
		t.Fatalf("expected a bad-merkle-root rejection")
	}
	ruleErr, ok := err.(RuleError)
	if !ok || ruleErr.ErrorCode != ErrBadMerkleRoot {
		t.Fatalf("expected ErrBadMerkleRoot, got %v", err)
	}
}

func TestProcessTransactionSpendsMaturedCoinbase(t *testing.T) {
	chain, params := newTestChain(t)

	priv, err := ecc.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	pubKey := priv.PubKey()
	payHash := chainhash.Hash160(pubKey.SerializeUncompressed())

	genesisHash := chainhash.Hash(params.GenesisHash)
	ts := params.GenesisBlock.Header.Timestamp

	lastHash := genesisHash
	lastBlock := params.GenesisBlock
	var firstCoinbase *wire.MsgTx

	// Mine enough blocks for the first post-genesis coinbase to mature.
	maturityBlocks := int32(params.CoinbaseMaturity) + 1
	for h := int32(1); h <= maturityBlocks; h++ {
		ts = ts.Add(10 * time.Minute)
		cb := coinbaseTx(h, payHash, params.BaseSubsidy)
		if h == 1 {
			firstCoinbase = cb
		}
		block := buildChildBlock(lastBlock, lastHash, []*wire.MsgTx{cb}, params.PowLimitBits, ts)
		mineBlock(block, params.PowLimitBits)

		if _, _, err := chain.ProcessBlock(block); err != nil {
			t.Fatalf("ProcessBlock at height %d: %v", h, err)
		}
		lastBlock = block
		lastHash = block.BlockHash()
	}

	spend := wire.NewMsgTx(1)
	spend.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: firstCoinbase.TxHash(), Index: 0},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	spend.AddTxOut(&wire.TxOut{
		Value:        params.BaseSubsidy - minRelayFee(200),
		ScriptPubKey: txscript.PayToPubKeyHashScript(payHash),
	})

	sigHash := txscript.CalcSignatureHash(spend, 0, firstCoinbase.TxOut[0].ScriptPubKey, txscript.SigHashAll)
	sig := priv.Sign(sigHash[:])
	spend.TxIn[0].SignatureScript = txscript.SignatureScript(sig.Serialize(), txscript.SigHashAll, pubKey.SerializeUncompressed())

	if err := chain.ProcessTransaction(spend); err != nil {
		t.Fatalf("ProcessTransaction: %v", err)
	}
	if !chain.mempool.Have(spend.TxHash()) {
		t.Fatalf("spend transaction was not admitted to the mempool")
	}
}

// TestSigCacheSharedAcrossValidation checks that a chain built by
// newTestChain carries a signature cache for its validation paths.
func TestSigCacheSharedAcrossValidation(t *testing.T) {
	chain, _ := newTestChain(t)
	if chain.sigCache == nil {
		t.Fatalf("chain should carry a shared sig cache")
	}
}

// TestReorgSwitchesToMoreWorkChain builds two competing chains off genesis,
// a two-block fork and a three-block fork, and checks that accepting the
// longer fork's last block triggers a reorg onto it even though the shorter
// fork was accepted (and briefly best) first.
func TestReorgSwitchesToMoreWorkChain(t *testing.T) {
	chain, params := newTestChain(t)

	genesisHash := chainhash.Hash(params.GenesisHash)
	baseTime := params.GenesisBlock.Header.Timestamp

	shortPayHash := make([]byte, 20)
	for i := range shortPayHash {
		shortPayHash[i] = 0xaa
	}
	longPayHash := make([]byte, 20)
	for i := range longPayHash {
		longPayHash[i] = 0xbb
	}

	// Short fork: genesis -> a1 -> a2.
	a1 := buildChildBlock(params.GenesisBlock, genesisHash,
		[]*wire.MsgTx{coinbaseTx(1, shortPayHash, params.BaseSubsidy)},
		params.PowLimitBits, baseTime.Add(10*time.Minute))
	mineBlock(a1, params.PowLimitBits)
	if _, isOrphan, err := chain.ProcessBlock(a1); err != nil || isOrphan {
		t.Fatalf("ProcessBlock(a1): isOrphan=%v err=%v", isOrphan, err)
	}

	a2 := buildChildBlock(a1, a1.BlockHash(),
		[]*wire.MsgTx{coinbaseTx(2, shortPayHash, params.BaseSubsidy)},
		params.PowLimitBits, baseTime.Add(20*time.Minute))
	mineBlock(a2, params.PowLimitBits)
	if _, isOrphan, err := chain.ProcessBlock(a2); err != nil || isOrphan {
		t.Fatalf("ProcessBlock(a2): isOrphan=%v err=%v", isOrphan, err)
	}

	snap := chain.BestSnapshot()
	if snap.Height != 2 || snap.Hash != a2.BlockHash() {
		t.Fatalf("expected the short fork's tip to be best after two blocks, got height=%d hash=%v", snap.Height, snap.Hash)
	}

	// Long fork: genesis -> b1 -> b2 -> b3, each block built on top of the
	// last so it eventually carries more cumulative work than a2.
	lastHash := genesisHash
	lastBlock := params.GenesisBlock
	var b3 *wire.MsgBlock
	for h := int32(1); h <= 3; h++ {
		ts := baseTime.Add(time.Duration(h) * 15 * time.Minute)
		block := buildChildBlock(lastBlock, lastHash,
			[]*wire.MsgTx{coinbaseTx(h, longPayHash, params.BaseSubsidy)},
			params.PowLimitBits, ts)
		mineBlock(block, params.PowLimitBits)
		if _, isOrphan, err := chain.ProcessBlock(block); err != nil || isOrphan {
			t.Fatalf("ProcessBlock(long fork height %d): isOrphan=%v err=%v", h, isOrphan, err)
		}
		lastBlock = block
		lastHash = block.BlockHash()
		if h == 3 {
			b3 = block
		}
	}

	snap = chain.BestSnapshot()
	if snap.Height != 3 {
		t.Fatalf("best height = %d, want 3 after the long fork overtakes", snap.Height)
	}
	if snap.Hash != b3.BlockHash() {
		t.Fatalf("best hash = %v, want the long fork's tip %v", snap.Hash, b3.BlockHash())
	}

	// The short fork's blocks were disconnected. The reorg path re-admits
	// only non-coinbase transactions to the mempool, and a1 and a2 each
	// carry nothing but a coinbase, so none of them may reappear.
	if chain.mempool.Have(a1.Transactions[0].TxHash()) {
		t.Fatalf("a coinbase transaction should never reappear in the mempool after a reorg")
	}
}
