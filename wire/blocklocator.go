package wire

import "github.com/Rust-Boy/btc-sotamo/chainhash"

// BlockLocator is an ordered sequence of block hashes, starting at a tip and
// stepping back with exponentially growing strides, ending at genesis. It
// lets a peer convey "what I have" concisely without enumerating every
// block it knows about.
type BlockLocator []chainhash.Hash
