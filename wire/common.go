// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the canonical, deterministic byte-level encoding
// used for every persisted and wire-observable value in the node: fixed
// width little-endian integers, variable length integer prefixes, and
// length-prefixed byte sequences.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MaxVarIntPayload is the maximum payload size for a variable length
// integer.
const MaxVarIntPayload = 9

// errNonCanonicalVarInt is the common format string used for
// non-canonically encoded variable length integer errors.
const errNonCanonicalVarInt = "non-canonical varint %x - discriminant %x must encode a value greater than %x"

var littleEndian = binary.LittleEndian

func readUint8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func writeUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return littleEndian.Uint16(b[:]), nil
}

func writeUint16(w io.Writer, v uint16) error {
	var b [2]byte
	littleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return littleEndian.Uint32(b[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	littleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return littleEndian.Uint64(b[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	littleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64. Values below 253 are a single byte; a marker byte of 253, 254, or
// 255 indicates a following 2, 4, or 8 byte little-endian value.
func ReadVarInt(r io.Reader) (uint64, error) {
	discriminant, err := readUint8(r)
	if err != nil {
		return 0, err
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		sv, err := readUint64(r)
		if err != nil {
			return 0, err
		}
		rv = sv
		if rv < 0x100000000 {
			return 0, messageError("ReadVarInt", fmt.Sprintf(errNonCanonicalVarInt, rv, discriminant, 0x100000000))
		}
	case 0xfe:
		sv, err := readUint32(r)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)
		if rv < 0x10000 {
			return 0, messageError("ReadVarInt", fmt.Sprintf(errNonCanonicalVarInt, rv, discriminant, 0x10000))
		}
	case 0xfd:
		sv, err := readUint16(r)
		if err != nil {
			return 0, err
		}
		rv = uint64(sv)
		if rv < 0xfd {
			return 0, messageError("ReadVarInt", fmt.Sprintf(errNonCanonicalVarInt, rv, discriminant, 0xfd))
		}
	default:
		rv = uint64(discriminant)
	}
	return rv, nil
}

// WriteVarInt serializes val to w using the minimal canonical number of
// bytes.
func WriteVarInt(w io.Writer, val uint64) error {
	switch {
	case val < 0xfd:
		return writeUint8(w, uint8(val))
	case val <= math.MaxUint16:
		if err := writeUint8(w, 0xfd); err != nil {
			return err
		}
		return writeUint16(w, uint16(val))
	case val <= math.MaxUint32:
		if err := writeUint8(w, 0xfe); err != nil {
			return err
		}
		return writeUint32(w, uint32(val))
	default:
		if err := writeUint8(w, 0xff); err != nil {
			return err
		}
		return writeUint64(w, val)
	}
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= math.MaxUint16:
		return 3
	case val <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

// ReadVarBytes reads a variable length byte array. maxAllowed bounds the
// length to guard against a corrupt or hostile length prefix forcing a huge
// allocation.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, messageError("ReadVarBytes", fmt.Sprintf(
			"%s is larger than the max allowed size [count %d, max %d]",
			fieldName, count, maxAllowed))
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	if err := WriteVarInt(w, uint64(len(bytes))); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return err
}

// ReadVarString reads a variable length string.
func ReadVarString(r io.Reader, maxAllowed uint64) (string, error) {
	b, err := ReadVarBytes(r, maxAllowed, "VarString")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteVarString serializes a variable length string to w.
func WriteVarString(w io.Writer, s string) error {
	return WriteVarBytes(w, []byte(s))
}

type messageErr struct {
	op  string
	msg string
}

func (e *messageErr) Error() string {
	return fmt.Sprintf("%s: %s", e.op, e.msg)
}

func messageError(op, msg string) error {
	return &messageErr{op: op, msg: msg}
}
