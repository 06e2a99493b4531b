// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config parses the node's command-line and on-disk configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"github.com/Rust-Boy/btc-sotamo/logs"
)

const (
	defaultDataDirname     = "data"
	defaultLogFilename     = "node.log"
	defaultNetwork         = "mainnet"
	defaultDebugLevel      = "info"
	defaultMaxOrphans      = 100
	defaultDbFilename      = "chain.ldb"
	defaultWalletDbDirname = "wallet.ldb"
	defaultAddrDbDirname   = "addrmgr.ldb"
	defaultBlockStoreDir   = "blocks"
	defaultAddrBookFile    = "addr.txt"
)

// Config holds every setting the node process needs at startup, sourced from
// the command line and (if present) an INI file in the data directory.
type Config struct {
	DataDir       string `long:"datadir" description:"Directory to store data"`
	Network       string `long:"network" description:"Network to run on (mainnet, regtest)"`
	DebugLevel    string `long:"debuglevel" description:"Logging level, or subsystem=level pairs separated by commas"`
	MaxOrphans    int    `long:"maxorphan" description:"Max number of orphan blocks to keep in memory (accepted but not applied: the chain's orphan pool is unbounded)"`
	AddrBookFile  string `long:"addrbook" description:"Path to the peer address book file to import on startup"`
	ConfigFile    string `long:"configfile" description:"Path to a configuration file" no-ini:"true"`
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
}

// defaultDataDir returns a ".btc-sotamo" directory under the user's home
// directory, or under the working directory if the home directory cannot be
// determined.
func defaultDataDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, ".btc-sotamo")
}

// LogFile is the path InitLogRotator should open, derived from DataDir.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "logs", defaultLogFilename)
}

// DatabasePath is where the chain state's transactional KV store opens its
// files: the block index and UTXO set.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, defaultDataDirname, defaultDbFilename)
}

// WalletDatabasePath is where the wallet's key store, address book, and
// tracked transactions are persisted. It is a separate store file from
// DatabasePath's, not merely a different key prefix within it, since the
// wallet's and chain index's key tags collide byte-for-byte (both use a
// "tx" tag for their respective per-transaction records).
func (c *Config) WalletDatabasePath() string {
	return filepath.Join(c.DataDir, defaultDataDirname, defaultWalletDbDirname)
}

// AddrManagerDatabasePath is where the peer address book is persisted,
// again a separate store file from DatabasePath's for the same reason
// WalletDatabasePath is.
func (c *Config) AddrManagerDatabasePath() string {
	return filepath.Join(c.DataDir, defaultDataDirname, defaultAddrDbDirname)
}

// BlockStorePath is the directory the flat-file block store appends to.
func (c *Config) BlockStorePath() string {
	return filepath.Join(c.DataDir, defaultDataDirname, defaultBlockStoreDir)
}

// AddrBookPath is the peer address book file, defaulting under DataDir when
// the user did not name one explicitly.
func (c *Config) AddrBookPath() string {
	if c.AddrBookFile != "" {
		return c.AddrBookFile
	}
	return filepath.Join(c.DataDir, defaultAddrBookFile)
}

// Load parses the command line, applies an optional INI configuration file,
// fills in defaults, and validates the result.
func Load() (*Config, error) {
	preCfg := &Config{DataDir: defaultDataDir()}
	preParser := flags.NewParser(preCfg, flags.Default&^flags.PrintErrors)
	if _, err := preParser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); !ok || flagsErr.Type != flags.ErrHelp {
			return nil, err
		}
		os.Exit(0)
	}

	cfg := &Config{
		DataDir:    preCfg.DataDir,
		Network:    defaultNetwork,
		DebugLevel: defaultDebugLevel,
		MaxOrphans: defaultMaxOrphans,
	}

	configFile := preCfg.ConfigFile
	if configFile == "" {
		configFile = filepath.Join(preCfg.DataDir, "node.conf")
	}
	if _, err := os.Stat(configFile); err == nil {
		iniParser := flags.NewIniParser(flags.NewParser(cfg, flags.Default))
		if err := iniParser.ParseFile(configFile); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configFile, err)
		}
	}

	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.Network != "mainnet" && cfg.Network != "regtest" {
		return nil, fmt.Errorf("unknown network %q", cfg.Network)
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	if err := logs.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}
