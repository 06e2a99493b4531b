// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockstore implements the append-only flat-file block store: raw
// blocks are written sequentially into numbered blkNNNN.dat files and
// addressed thereafter by a (file number, offset) location handle, mirroring
// the original client's on-disk block storage rather than keeping block
// bytes in the key/value store itself.
package blockstore

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// defaultMaxFileSize caps how large a single blkNNNN.dat file is allowed to
// grow before the store rolls over to the next file number.
const defaultMaxFileSize = 128 * 1024 * 1024

// recordHeaderSize is the magic (4 bytes) plus length-prefix (4 bytes) that
// precedes every stored block, per spec's block-file record layout.
const recordHeaderSize = 8

// Location identifies a previously stored block by its file number and
// byte offset within that file.
type Location struct {
	FileNum uint32
	Offset  uint32
}

// Serialize encodes loc as an 8-byte handle suitable for storing as a value
// in the block index.
func (loc Location) Serialize() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], loc.FileNum)
	binary.LittleEndian.PutUint32(buf[4:8], loc.Offset)
	return buf
}

// DeserializeLocation decodes a Location previously produced by Serialize.
func DeserializeLocation(b []byte) (Location, error) {
	if len(b) != 8 {
		return Location{}, errors.New("invalid block location encoding")
	}
	return Location{
		FileNum: binary.LittleEndian.Uint32(b[0:4]),
		Offset:  binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// writeCursor tracks where the next block will be appended.
type writeCursor struct {
	curFileNum uint32
	curOffset  uint32
}

// Store is the append-only flat-file block store.
type Store struct {
	mu sync.Mutex

	basePath    string
	magic       [4]byte
	maxFileSize uint32

	cursor writeCursor

	openFiles map[uint32]*os.File
}

// New opens (creating basePath if necessary) a Store writing blkNNNN.dat
// files tagged with the given 4-byte network magic.
func New(basePath string, magic [4]byte) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	s := &Store{
		basePath:    basePath,
		magic:       magic,
		maxFileSize: defaultMaxFileSize,
		openFiles:   make(map[uint32]*os.File),
	}
	if err := s.recoverWriteCursor(); err != nil {
		return nil, err
	}
	return s, nil
}

// recoverWriteCursor scans basePath for the highest-numbered blk file and
// positions the write cursor at its end, so restarting the process resumes
// appending rather than overwriting.
func (s *Store) recoverWriteCursor() error {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return err
	}

	var highest uint32
	found := false
	for _, e := range entries {
		var n uint32
		if _, err := fmt.Sscanf(e.Name(), "blk%04d.dat", &n); err == nil {
			found = true
			if n >= highest {
				highest = n
			}
		}
	}
	if !found {
		return nil
	}

	fi, err := os.Stat(blockFilePath(s.basePath, highest))
	if err != nil {
		return err
	}
	s.cursor = writeCursor{curFileNum: highest, curOffset: uint32(fi.Size())}
	return nil
}

func blockFilePath(basePath string, fileNum uint32) string {
	return filepath.Join(basePath, fmt.Sprintf("blk%04d.dat", fileNum))
}

func (s *Store) fileForWrite(fileNum uint32) (*os.File, error) {
	if f, ok := s.openFiles[fileNum]; ok {
		return f, nil
	}
	f, err := os.OpenFile(blockFilePath(s.basePath, fileNum), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	s.openFiles[fileNum] = f
	return f, nil
}

// AppendBlock writes data (the serialized block bytes) to the store and
// returns the Location it was written at.
func (s *Store) AppendBlock(data []byte) (Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor.curOffset > 0 && uint64(s.cursor.curOffset)+uint64(recordHeaderSize)+uint64(len(data)) > uint64(s.maxFileSize) {
		s.cursor.curFileNum++
		s.cursor.curOffset = 0
	}

	f, err := s.fileForWrite(s.cursor.curFileNum)
	if err != nil {
		return Location{}, err
	}

	loc := Location{FileNum: s.cursor.curFileNum, Offset: s.cursor.curOffset}

	var header [recordHeaderSize]byte
	copy(header[0:4], s.magic[:])
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(data)))

	if _, err := f.WriteAt(header[:], int64(loc.Offset)); err != nil {
		return Location{}, err
	}
	if _, err := f.WriteAt(data, int64(loc.Offset)+recordHeaderSize); err != nil {
		return Location{}, err
	}
	if err := f.Sync(); err != nil {
		return Location{}, err
	}

	s.cursor.curOffset += recordHeaderSize + uint32(len(data))
	return loc, nil
}

// ReadBlock returns the raw block bytes previously stored at loc.
func (s *Store) ReadBlock(loc Location) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(blockFilePath(s.basePath, loc.FileNum))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var header [recordHeaderSize]byte
	if _, err := f.ReadAt(header[:], int64(loc.Offset)); err != nil {
		return nil, err
	}
	if string(header[0:4]) != string(s.magic[:]) {
		return nil, errors.Errorf("block store: bad magic at %s offset %d", blockFilePath(s.basePath, loc.FileNum), loc.Offset)
	}
	size := binary.LittleEndian.Uint32(header[4:8])

	data := make([]byte, size)
	if _, err := f.ReadAt(data, int64(loc.Offset)+recordHeaderSize); err != nil {
		return nil, err
	}
	return data, nil
}

// EraseBlock overwrites a previously stored block's bytes with zeroes,
// leaving the record's header (and therefore the file's layout) intact so
// later offsets in the same file are unaffected.
func (s *Store) EraseBlock(loc Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.fileForWrite(loc.FileNum)
	if err != nil {
		return err
	}

	var header [recordHeaderSize]byte
	if _, err := f.ReadAt(header[:], int64(loc.Offset)); err != nil {
		return err
	}
	size := binary.LittleEndian.Uint32(header[4:8])

	zeroes := make([]byte, size)
	if _, err := f.WriteAt(zeroes, int64(loc.Offset)+recordHeaderSize); err != nil {
		return err
	}
	return f.Sync()
}

// handleRollback moves the store's write cursor back to (fileNum, offset),
// so the next append overwrites any data written past that point. Nothing
// in this module calls it: a block that fails validation after AppendBlock
// has written it stays in its block file.
func (s *Store) handleRollback(fileNum, offset uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = writeCursor{curFileNum: fileNum, curOffset: offset}
}

// Close flushes and closes every open file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for num, f := range s.openFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.openFiles, num)
	}
	return firstErr
}

var _ io.Closer = (*Store)(nil)
