// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package logs wires a subsystem-tagged logging backend, writing to both
// stdout and a rotating log file. cmd/node logs through it, and config uses
// it to apply the debug level.
package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem tags, one per package area.
const (
	TagCHAN = "CHAN" // blockchain
	TagDISK = "DISK" // database / blockstore
	TagADXR = "ADXR" // addrmgr
	TagWLLT = "WLLT" // wallet
	TagNODE = "NODE" // cmd/node
)

var (
	logRotator *rotator.Rotator

	backendLog = slog.NewBackend(logWriter{})

	chanLog = backendLog.Logger(TagCHAN)
	diskLog = backendLog.Logger(TagDISK)
	adxrLog = backendLog.Logger(TagADXR)
	wlltLog = backendLog.Logger(TagWLLT)
	nodeLog = backendLog.Logger(TagNODE)

	subsystemLoggers = map[string]slog.Logger{
		TagCHAN: chanLog,
		TagDISK: diskLog,
		TagADXR: adxrLog,
		TagWLLT: wlltLog,
		TagNODE: nodeLog,
	}
)

// logWriter tees every log line to stdout and, once initialized, to the
// rotating log file.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var _ io.Writer = logWriter{}

// InitLogRotator creates the rotating log file at logFile, rolling at 10 MiB
// and keeping up to 3 prior rolls. It must be called once during startup
// before any subsystem logger is used if file logging is desired.
func InitLogRotator(logFile string) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

// Log returns the logger for the given subsystem tag, or nil if the tag is
// unknown.
func Log(tag string) slog.Logger {
	return subsystemLoggers[tag]
}

// ChainLog, DiskLog, AddrLog, WalletLog, and NodeLog return the logger for
// each subsystem tag.
func ChainLog() slog.Logger  { return chanLog }
func DiskLog() slog.Logger   { return diskLog }
func AddrLog() slog.Logger   { return adxrLog }
func WalletLog() slog.Logger { return wlltLog }
func NodeLog() slog.Logger   { return nodeLog }

// SetLogLevel sets the level for a single subsystem tag, ignoring unknown
// tags.
func SetLogLevel(tag, level string) {
	logger, ok := subsystemLoggers[tag]
	if !ok {
		return
	}
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		lvl = slog.LevelInfo
	}
	logger.SetLevel(lvl)
}

// SetLogLevels sets every subsystem logger to level.
func SetLogLevels(level string) {
	for tag := range subsystemLoggers {
		SetLogLevel(tag, level)
	}
}

// ParseAndSetDebugLevels parses a debug level specifier: either a single
// level applied to every subsystem ("info"), or a comma-separated list of
// tag=level pairs ("CHAN=debug,ADXR=trace").
func ParseAndSetDebugLevels(spec string) error {
	if !strings.Contains(spec, ",") && !strings.Contains(spec, "=") {
		if _, ok := slog.LevelFromString(spec); !ok {
			return fmt.Errorf("invalid debug level %q", spec)
		}
		SetLogLevels(spec)
		return nil
	}

	for _, pair := range strings.Split(spec, ",") {
		fields := strings.SplitN(pair, "=", 2)
		if len(fields) != 2 {
			return fmt.Errorf("invalid debug level pair %q", pair)
		}
		tag, level := fields[0], fields[1]
		if _, ok := subsystemLoggers[tag]; !ok {
			return fmt.Errorf("invalid subsystem %q -- supported subsystems %s",
				tag, strings.Join(SupportedSubsystems(), ", "))
		}
		if _, ok := slog.LevelFromString(level); !ok {
			return fmt.Errorf("invalid debug level %q", level)
		}
		SetLogLevel(tag, level)
	}
	return nil
}

// SupportedSubsystems returns the known subsystem tags, sorted for stable
// display in help text.
func SupportedSubsystems() []string {
	tags := make([]string, 0, len(subsystemLoggers))
	for tag := range subsystemLoggers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
