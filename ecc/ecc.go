// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ecc wraps secp256k1 key generation, ECDSA signing and
// verification, and the DER/SEC wire encodings scripts and wallets rely on.
package ecc

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// PrivateKeyBytes is the length of a raw secp256k1 scalar.
const PrivateKeyBytes = 32

// PrivateKey is a secp256k1 private key together with its derived public
// key. The raw scalar is zeroed when Zero is called so key material does
// not linger in memory after the wallet is done with it.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey is a secp256k1 point used to verify signatures and derive
// addresses.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// Signature is a parsed ECDSA signature over secp256k1.
type Signature struct {
	sig *ecdsa.Signature
}

// GeneratePrivateKey creates a new, randomly generated private key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivKeyFromBytes constructs a private key from its raw 32-byte scalar.
func PrivKeyFromBytes(b []byte) *PrivateKey {
	key := secp256k1.PrivKeyFromBytes(b)
	return &PrivateKey{key: key}
}

// Serialize returns the raw 32-byte scalar.
func (p *PrivateKey) Serialize() []byte {
	return p.key.Serialize()
}

// PubKey returns the public key derived from this private key.
func (p *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{key: p.key.PubKey()}
}

// Zero overwrites the private scalar with zeroes. Call this as soon as the
// key is no longer needed, mirroring original_source/key.h's destructor-time
// memset of the OpenSSL EC_KEY material.
func (p *PrivateKey) Zero() {
	p.key.Zero()
}

// Sign produces a deterministic ECDSA signature over hash (the
// double-SHA-256 sighash a script evaluator computes).
func (p *PrivateKey) Sign(hash []byte) *Signature {
	return &Signature{sig: ecdsa.Sign(p.key, hash)}
}

// ParsePubKeySEC parses a SEC-encoded (this era: 65-byte uncompressed)
// public key.
func ParsePubKeySEC(data []byte) (*PublicKey, error) {
	key, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: key}, nil
}

// SerializeUncompressed returns the 65-byte uncompressed SEC encoding.
func (p *PublicKey) SerializeUncompressed() []byte {
	return p.key.SerializeUncompressed()
}

// SerializeCompressed returns the 33-byte compressed SEC encoding.
func (p *PublicKey) SerializeCompressed() []byte {
	return p.key.SerializeCompressed()
}

// IsEqual reports whether two public keys are the same point.
func (p *PublicKey) IsEqual(other *PublicKey) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.key.IsEqual(other.key)
}

// ParseDERSignature parses a strict DER-encoded ECDSA signature, as found
// appended with a trailing hash-type byte in a scriptSig.
func ParseDERSignature(der []byte) (*Signature, error) {
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return nil, err
	}
	return &Signature{sig: sig}, nil
}

// Serialize returns the strict DER encoding of the signature.
func (s *Signature) Serialize() []byte {
	return s.sig.Serialize()
}

// Verify reports whether the signature is valid for hash under pubKey.
func (s *Signature) Verify(hash []byte, pubKey *PublicKey) bool {
	return s.sig.Verify(hash, pubKey.key)
}

// IsEqual reports whether two signatures encode to the same bytes.
func (s *Signature) IsEqual(other *Signature) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.sig.IsEqual(other.sig)
}
