package chaincfg

import "testing"

func TestMainNetGenesisIsDeterministic(t *testing.T) {
	p1 := MainNetParams()
	p2 := MainNetParams()
	if p1.GenesisHash != p2.GenesisHash {
		t.Fatalf("genesis hash is not stable across calls")
	}
	if p1.GenesisBlock.Header.MerkleRoot != p1.GenesisBlock.Transactions[0].TxHash() {
		t.Fatalf("genesis merkle root does not match its sole transaction's hash")
	}
}

func TestRegressionNetUsesMinimalDifficulty(t *testing.T) {
	p := RegressionNetParams()
	if p.PowLimitBits != 0x207fffff {
		t.Fatalf("expected regtest minimal-difficulty bits, got %#x", p.PowLimitBits)
	}
	if p.GenesisBlock.Header.Bits != p.PowLimitBits {
		t.Fatalf("regtest genesis block should be mined at the network's pow limit")
	}
}

func TestSubsidyScheduleConstants(t *testing.T) {
	p := MainNetParams()
	if p.SubsidyHalvingInterval != 210000 {
		t.Fatalf("unexpected halving interval: %d", p.SubsidyHalvingInterval)
	}
	if p.BaseSubsidy != 50*oneCoin {
		t.Fatalf("unexpected base subsidy: %d", p.BaseSubsidy)
	}
	if p.CoinbaseMaturity != 100 {
		t.Fatalf("unexpected coinbase maturity: %d", p.CoinbaseMaturity)
	}
}
