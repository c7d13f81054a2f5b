// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/sass-embedded/host-go/sasserr"
)

// readBytes, readUint32, readString and their write-side counterparts
// mirror the teacher's codec/binary helpers (readBytes/readLength/
// readString, writeUint32/writeLength/writeString): a small set of
// primitives every decode/encode function above is built from. Unlike
// the teacher we use little-endian throughout, for consistency with the
// frame length prefix spec.md §6 mandates.

func readBytes(n int, data []byte) ([]byte, []byte, error) {
	if len(data) < n {
		return nil, data, &sasserr.ProtocolError{Message: "unexpected end of message"}
	}
	return data[:n], data[n:], nil
}

func writeUint32(v uint32, buf []byte) []byte {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], v)
	return append(buf, n[:]...)
}

func readUint32(data []byte) (uint32, []byte, error) {
	b, data, err := readBytes(4, data)
	if err != nil {
		return 0, data, err
	}
	return binary.LittleEndian.Uint32(b), data, nil
}

func writeString(s string, buf []byte) []byte {
	buf = writeUint32(uint32(len(s)), buf)
	return append(buf, []byte(s)...)
}

func readString(data []byte) (string, []byte, error) {
	n, data, err := readUint32(data)
	if err != nil {
		return "", data, err
	}
	if int(n) > len(data) {
		return "", data, &sasserr.ProtocolError{Message: fmt.Sprintf("string length %d exceeds message bounds", n)}
	}
	return string(data[:n]), data[n:], nil
}

func floatBits(f float64) uint64 { return math.Float64bits(f) }
func bitsFloat(u uint64) float64 { return math.Float64frombits(u) }
