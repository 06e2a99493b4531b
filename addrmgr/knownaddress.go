// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"math"
	"time"

	"github.com/Rust-Boy/btc-sotamo/wire"
)

const (
	// numRetries is how many failed connection attempts before a never-
	// succeeded address is considered bad.
	numRetries = 3

	// maxFailures is how many failed attempts since the last success
	// before a once-working address is considered bad.
	maxFailures = 10

	// minBadDays is how long since the last success before maxFailures
	// starts counting against an address.
	minBadDays = 7

	// numMissingDays is how old an address's timestamp may be before it
	// is discarded outright regardless of attempt history.
	numMissingDays = 30
)

// KnownAddress tracks one peer address book entry: the address itself, plus
// the attempt/success history the scoring functions below use to decide
// whether it is still worth dialing.
type KnownAddress struct {
	netAddress     *wire.NetAddress
	attempts       int
	lastAttempt    time.Time
	lastSuccess    time.Time
	tried          bool
	referenceCount int
}

// chance returns the relative probability this address should be chosen for
// the next outbound connection attempt: recently-tried addresses are
// disfavored, and each additional failed attempt multiplies the chance down
// by a constant factor.
func (ka *KnownAddress) chance() float64 {
	now := time.Now()
	c := 1.0

	lastAttempt := now.Sub(ka.lastAttempt)
	if lastAttempt < 0 {
		lastAttempt = 0
	}
	if lastAttempt < 10*time.Minute {
		c *= 0.01
	}

	return c * math.Pow(0.66, float64(ka.attempts))
}

// isBad reports whether ka should be evicted from the address book: it has
// not been seen for numMissingDays, it has never succeeded after numRetries
// attempts, or it has failed maxFailures times with its last success more
// than minBadDays ago. An address attempted within the last minute is never
// bad, so that attempt gets a chance to succeed first.
func (ka *KnownAddress) isBad() bool {
	now := time.Now()

	if ka.lastAttempt.After(now.Add(-1 * time.Minute)) {
		return false
	}

	if ka.netAddress.Timestamp.Before(now.Add(-numMissingDays * 24 * time.Hour)) {
		return true
	}

	if ka.lastSuccess.IsZero() && ka.attempts >= numRetries {
		return true
	}

	if now.Sub(ka.lastSuccess) > minBadDays*24*time.Hour && ka.attempts >= maxFailures {
		return true
	}

	return false
}
