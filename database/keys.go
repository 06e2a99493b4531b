package database

import "bytes"

// Key encoding follows spec's table: composite keys are a sequence of
// length-prefixed components concatenated in order, mirroring the original
// client's boost::serialize of a std::pair/tuple used as a Berkeley DB key
// (e.g. make_pair(string("tx"), hash)). Each component here is prefixed
// with its own single byte length; every component used by this package is
// well under 256 bytes (a table tag, a 32-byte hash, or a 20-byte pubkey
// hash), so a single length byte is sufficient and avoids pulling in the
// wire package's varint just to build a lookup key.

func appendComponent(buf *bytes.Buffer, b []byte) {
	buf.WriteByte(byte(len(b)))
	buf.Write(b)
}

func compositeKey(components ...[]byte) []byte {
	var buf bytes.Buffer
	for _, c := range components {
		appendComponent(&buf, c)
	}
	return buf.Bytes()
}

// TxIndexKey builds the ("tx", txid) key for blkindex.dat's TxIndex table.
func TxIndexKey(txid []byte) []byte {
	return compositeKey([]byte("tx"), txid)
}

// TxIndexPrefix is the raw prefix shared by every TxIndexKey, usable with
// Cursor to scan the whole TxIndex table.
func TxIndexPrefix() []byte {
	var buf bytes.Buffer
	appendComponent(&buf, []byte("tx"))
	return buf.Bytes()
}

// BlockIndexKey builds the ("blockindex", blockhash) key.
func BlockIndexKey(blockHash []byte) []byte {
	return compositeKey([]byte("blockindex"), blockHash)
}

// BlockIndexPrefix is the raw prefix shared by every BlockIndexKey, usable
// with Cursor to scan the whole block index table.
func BlockIndexPrefix() []byte {
	var buf bytes.Buffer
	appendComponent(&buf, []byte("blockindex"))
	return buf.Bytes()
}

// HashBestChainKey is the singleton key holding the tip of the best chain.
var HashBestChainKey = []byte("hashBestChain")

// VersionKey is the singleton key holding the on-disk format version.
var VersionKey = []byte("version")

// WalletNameKey builds the ("name", address) address-book key.
func WalletNameKey(address []byte) []byte {
	return compositeKey([]byte("name"), address)
}

// WalletTxKey builds the ("tx", txid) wallet-transaction key.
func WalletTxKey(txid []byte) []byte {
	return compositeKey([]byte("tx"), txid)
}

// WalletKeyKey builds the ("key", pubkey) private-key-material key.
func WalletKeyKey(pubKey []byte) []byte {
	return compositeKey([]byte("key"), pubKey)
}

// WalletKeyPrefix is the raw prefix shared by every WalletKeyKey, usable
// with Cursor to scan every stored private key.
func WalletKeyPrefix() []byte {
	var buf bytes.Buffer
	appendComponent(&buf, []byte("key"))
	return buf.Bytes()
}

// WalletTxPrefix is the raw prefix shared by every WalletTxKey, usable with
// Cursor to scan every stored wallet transaction.
func WalletTxPrefix() []byte {
	var buf bytes.Buffer
	appendComponent(&buf, []byte("tx"))
	return buf.Bytes()
}

// WalletNamePrefix is the raw prefix shared by every WalletNameKey, usable
// with Cursor to scan the whole address book.
func WalletNamePrefix() []byte {
	var buf bytes.Buffer
	appendComponent(&buf, []byte("name"))
	return buf.Bytes()
}

// DefaultKeyKey is the singleton key holding the wallet's default receive
// public key.
var DefaultKeyKey = []byte("defaultkey")

// WalletSettingKey builds the ("setting", name) key for a typed wallet
// setting.
func WalletSettingKey(name string) []byte {
	return compositeKey([]byte("setting"), []byte(name))
}

// AddrKey builds the ("addr", addrkey) peer-address-book key.
func AddrKey(addrKey []byte) []byte {
	return compositeKey([]byte("addr"), addrKey)
}

// AddrPrefix is the raw prefix shared by every AddrKey, usable with Cursor
// to scan the whole peer address book table.
func AddrPrefix() []byte {
	var buf bytes.Buffer
	appendComponent(&buf, []byte("addr"))
	return buf.Bytes()
}
