// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr maintains the peer address book: a scored, persisted set
// of candidate peer addresses the external peer-discovery and connection
// layer draws from, per spec §6's addr.dat table and addr.txt import file.
package addrmgr

import (
	"bufio"
	"bytes"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// AddrManager owns the in-memory address book and persists each newly added
// address to the addr.dat table via db. The attempt and success bookkeeping
// MarkAttempt records is kept in memory only.
type AddrManager struct {
	mu    sync.Mutex
	db    database.DataAccessor
	addrs map[string]*KnownAddress
	rand  *rand.Rand
}

// New constructs an AddrManager backed by db, loading any addresses already
// persisted there.
func New(db database.DataAccessor) (*AddrManager, error) {
	am := &AddrManager{
		db:    db,
		addrs: make(map[string]*KnownAddress),
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := am.load(); err != nil {
		return nil, err
	}
	return am, nil
}

// load reads every persisted address record back into memory.
func (am *AddrManager) load() error {
	cur, err := am.db.Cursor(database.AddrPrefix())
	if err != nil {
		return errors.Wrap(err, "opening address book cursor")
	}
	defer cur.Close()

	for ok := cur.First(); ok; ok = cur.Next() {
		val, err := cur.Value()
		if err != nil {
			return errors.Wrap(err, "reading address book record")
		}
		na := &wire.NetAddress{}
		if err := na.Deserialize(bytes.NewReader(val)); err != nil {
			return errors.Wrap(err, "deserializing address book entry")
		}
		am.addrs[na.Key()] = &KnownAddress{netAddress: na}
	}
	return nil
}

func (am *AddrManager) store(ka *KnownAddress) error {
	var buf bytes.Buffer
	if err := ka.netAddress.Serialize(&buf); err != nil {
		return err
	}
	return am.db.Put(database.AddrKey([]byte(ka.netAddress.Key())), buf.Bytes())
}

// AddAddress inserts na into the book if it is not already known, persisting
// the new entry.
func (am *AddrManager) AddAddress(na *wire.NetAddress) error {
	am.mu.Lock()
	defer am.mu.Unlock()

	key := na.Key()
	if _, ok := am.addrs[key]; ok {
		return nil
	}
	ka := &KnownAddress{netAddress: na}
	am.addrs[key] = ka
	return am.store(ka)
}

// MarkAttempt records a connection attempt against key, whether or not it
// succeeded.
func (am *AddrManager) MarkAttempt(key string, succeeded bool) {
	am.mu.Lock()
	defer am.mu.Unlock()

	ka, ok := am.addrs[key]
	if !ok {
		return
	}
	ka.lastAttempt = time.Now()
	if succeeded {
		ka.attempts = 0
		ka.lastSuccess = ka.lastAttempt
		ka.tried = true
	} else {
		ka.attempts++
	}
}

// GoodAddresses returns every address not currently considered bad.
func (am *AddrManager) GoodAddresses() []*wire.NetAddress {
	am.mu.Lock()
	defer am.mu.Unlock()

	var out []*wire.NetAddress
	for _, ka := range am.addrs {
		if !ka.isBad() {
			out = append(out, ka.netAddress)
		}
	}
	return out
}

// GetAddress picks a candidate address to dial next, weighted by chance();
// it returns nil if the book holds no usable addresses.
func (am *AddrManager) GetAddress() *wire.NetAddress {
	am.mu.Lock()
	defer am.mu.Unlock()

	var best *KnownAddress
	var bestChance float64
	for _, ka := range am.addrs {
		if ka.isBad() {
			continue
		}
		c := ka.chance() * (1 + am.rand.Float64())
		if best == nil || c > bestChance {
			best, bestChance = ka, c
		}
	}
	if best == nil {
		return nil
	}
	return best.netAddress
}

// Prune removes every address isBad reports as no longer worth keeping,
// deleting its persisted record.
func (am *AddrManager) Prune() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	for key, ka := range am.addrs {
		if ka.isBad() {
			if err := am.db.Delete(database.AddrKey([]byte(key))); err != nil {
				return err
			}
			delete(am.addrs, key)
		}
	}
	return nil
}

// ImportAddrTxt reads one "ip:port" peer address per line from path and adds
// each to the book, per spec §6's addr.txt startup import. Blank lines and
// lines starting with '#' are skipped.
func (am *AddrManager) ImportAddrTxt(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var added int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		na, err := parseNetAddress(line)
		if err != nil {
			return added, errors.Wrapf(err, "parsing address book line %q", line)
		}
		if err := am.AddAddress(na); err != nil {
			return added, err
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		return added, err
	}
	return added, nil
}

// parseNetAddress turns a "host:port" string into a wire.NetAddress with the
// current time as its timestamp. Only IPv4 hosts are supported, matching the
// era's NetAddress wire encoding.
func parseNetAddress(hostPort string) (*wire.NetAddress, error) {
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address %q", host)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("address %q is not IPv4", host)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q", portStr)
	}

	ipVal := uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
	return &wire.NetAddress{
		IP:        ipVal,
		Port:      uint16(port),
		Timestamp: time.Now(),
	}, nil
}
