package blockchain

import (
	"math/big"
	"testing"
	"time"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
)

func mkNode(hash, parent byte, height int32, ts time.Time) *blockNode {
	var h, p chainhash.Hash
	h[0] = hash
	p[0] = parent
	return &blockNode{hash: h, parent: p, height: height, timestamp: ts, workSum: big.NewInt(int64(height))}
}

func TestFindForkOnDivergingChains(t *testing.T) {
	bi := newBlockIndex()
	genesis := mkNode(0, 0, 0, time.Unix(0, 0))
	bi.genesis = genesis.hash
	bi.addNode(genesis)

	a1 := mkNode(1, 0, 1, time.Unix(100, 0))
	a2 := mkNode(2, 1, 2, time.Unix(200, 0))
	bi.addNode(a1)
	bi.addNode(a2)

	b1 := mkNode(3, 0, 1, time.Unix(100, 0))
	bi.addNode(b1)

	fork := bi.findFork(a2, b1)
	if fork == nil || fork.hash != genesis.hash {
		t.Fatalf("expected fork at genesis, got %v", fork)
	}
}

func TestAncestorAtWalksParentChain(t *testing.T) {
	bi := newBlockIndex()
	genesis := mkNode(0, 0, 0, time.Unix(0, 0))
	bi.genesis = genesis.hash
	bi.addNode(genesis)
	a1 := mkNode(1, 0, 1, time.Unix(100, 0))
	bi.addNode(a1)
	a2 := mkNode(2, 1, 2, time.Unix(200, 0))
	bi.addNode(a2)

	got := bi.ancestorAt(a2, 1)
	if got == nil || got.hash != a1.hash {
		t.Fatalf("ancestorAt(a2, 1) = %v, want a1", got)
	}
	if bi.ancestorAt(a2, 5) != nil {
		t.Fatalf("ancestorAt beyond height should return nil")
	}
}

func TestMedianTimePastOfFewerThanElevenBlocks(t *testing.T) {
	bi := newBlockIndex()
	genesis := mkNode(0, 0, 0, time.Unix(1000, 0))
	bi.genesis = genesis.hash
	bi.addNode(genesis)
	a1 := mkNode(1, 0, 1, time.Unix(2000, 0))
	bi.addNode(a1)

	median := bi.medianTimePast(a1)
	if median != time.Unix(2000, 0) {
		t.Fatalf("median of [2000,1000] sorted=[1000,2000] idx1 -> want 2000, got %v", median)
	}
}

func TestMainChainHashesFollowsNextPointers(t *testing.T) {
	bi := newBlockIndex()
	genesis := mkNode(0, 0, 0, time.Unix(0, 0))
	bi.genesis = genesis.hash
	bi.addNode(genesis)
	a1 := mkNode(1, 0, 1, time.Unix(100, 0))
	bi.addNode(a1)
	bi.setNext(genesis.hash, a1.hash)

	hashes := bi.mainChainHashes()
	if len(hashes) != 2 || hashes[0] != genesis.hash || hashes[1] != a1.hash {
		t.Fatalf("unexpected main chain hashes: %v", hashes)
	}
}
