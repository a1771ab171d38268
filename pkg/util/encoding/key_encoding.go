// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package encoding

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

const (
	bytesMarker byte = 0x12

	// <term>     -> \x00\x01
	// \x00       -> \x00\xff
	escape      byte = 0x00
	escapedTerm byte = 0x01
	escaped00   byte = 0xff
	escapedFF   byte = 0x00
)

// EncodeUint32Ascending encodes the uint32 value using a big-endian 4 byte
// representation. The bytes are appended to the supplied buffer and
// the final buffer is returned.
func EncodeUint32Ascending(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// DecodeUint32Ascending decodes a uint32 from the input buffer, treating
// the input as a big-endian 4 byte uint32 representation. The remainder
// of the input buffer and the decoded uint32 are returned.
func DecodeUint32Ascending(b []byte) ([]byte, uint32, error) {
	if len(b) < 4 {
		return nil, 0, errors.Errorf("insufficient bytes to decode uint32 int value")
	}
	v := (uint32(b[0]) << 24) | (uint32(b[1]) << 16) |
		(uint32(b[2]) << 8) | uint32(b[3])
	return b[4:], v, nil
}

// EncodeUint64Ascending encodes the uint64 value using a big-endian 8 byte
// representation.
func EncodeUint64Ascending(b []byte, v uint64) []byte {
	return append(b,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// DecodeUint64Ascending decodes a uint64 encoded with EncodeUint64Ascending.
func DecodeUint64Ascending(b []byte) ([]byte, uint64, error) {
	if len(b) < 8 {
		return nil, 0, errors.Errorf("insufficient bytes to decode uint64 int value")
	}
	v := (uint64(b[0]) << 56) | (uint64(b[1]) << 48) |
		(uint64(b[2]) << 40) | (uint64(b[3]) << 32) |
		(uint64(b[4]) << 24) | (uint64(b[5]) << 16) |
		(uint64(b[6]) << 8) | uint64(b[7])
	return b[8:], v, nil
}

// EncodeStringAscending encodes the string value using an escape-based
// encoding. The encoded value is terminated with the sequence "\x00\x01"
// which is guaranteed to not occur elsewhere in the encoded value, so
// encoded strings sort the same way as the raw strings and no encoded
// string is a prefix of another.
func EncodeStringAscending(b []byte, s string) []byte {
	b = append(b, bytesMarker)
	data := []byte(s)
	for {
		i := bytes.IndexByte(data, escape)
		if i == -1 {
			break
		}
		b = append(b, data[:i]...)
		b = append(b, escape, escaped00)
		data = data[i+1:]
	}
	b = append(b, data...)
	return append(b, escape, escapedTerm)
}

// DecodeStringAscending decodes a string value which was encoded using
// EncodeStringAscending. The remainder of the input buffer and the
// decoded string are returned.
func DecodeStringAscending(b []byte) ([]byte, string, error) {
	if len(b) == 0 || b[0] != bytesMarker {
		return nil, "", errors.Errorf("did not find marker %#x in buffer %#x", bytesMarker, b)
	}
	b = b[1:]
	var r []byte
	for {
		i := bytes.IndexByte(b, escape)
		if i == -1 {
			return nil, "", errors.Errorf("did not find terminator %#x in buffer %#x", escape, b)
		}
		if i+1 >= len(b) {
			return nil, "", errors.Errorf("malformed escape in buffer %#x", b)
		}
		v := b[i+1]
		if v == escapedTerm {
			r = append(r, b[:i]...)
			return b[i+2:], string(r), nil
		}
		if v != escaped00 {
			return nil, "", errors.Errorf("unknown escape sequence: %#x %#x", escape, v)
		}
		r = append(r, b[:i]...)
		r = append(r, escapedFF)
		b = b[i+2:]
	}
}

// PrefixEnd determines the end key given key as a prefix, that is the key
// that sorts precisely behind all keys starting with prefix: "1" is added
// to the final byte and the carry propagated. The special cases of nil and
// KeyMin always returns KeyMax.
func PrefixEnd(prefix []byte) []byte {
	if len(prefix) == 0 {
		return []byte{0xff, 0xff}
	}
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i] = end[i] + 1
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	// This statement will only be reached if the key is already a
	// maximal byte string (i.e. already \xff...).
	return prefix
}
