// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package value

import (
	"encoding/binary"
	"math"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Digest is a fixed-size content hash of a Value, consistent with Equals:
// two values that compare equal always produce the same Digest. It is
// used both as the public Hash() result and internally as the bucket key
// of Map, since Value is not a Go comparable type (Lists and Maps embed
// slices and pointers).
type Digest [32]byte

// newHasher returns a fresh keyless blake2b-256 hasher. The teacher's
// val.Hash walks its tree writing tagged bytes into a caller-supplied
// hash.Hash64; we do the same here but with a wider, collision-resistant
// digest since Digest doubles as a map bucket key rather than a pure
// diagnostic checksum.
func newHasher() *blake2bHasher {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for an oversized key, and we pass none.
		panic("value: blake2b.New256: " + err.Error())
	}
	return &blake2bHasher{h}
}

type blake2bHasher struct {
	h interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
}

func (b *blake2bHasher) writeTag(tag string) {
	b.h.Write([]byte{byte(len(tag))})
	b.h.Write([]byte(tag))
}

func (b *blake2bHasher) writeString(s string) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
	b.h.Write(n[:])
	b.h.Write([]byte(s))
}

func (b *blake2bHasher) writeFloat(f float64) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], math.Float64bits(f))
	b.h.Write(n[:])
}

func (b *blake2bHasher) writeUint32(v uint32) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], v)
	b.h.Write(n[:])
}

func (b *blake2bHasher) writeBool(v bool) {
	if v {
		b.h.Write([]byte{1})
	} else {
		b.h.Write([]byte{0})
	}
}

func (b *blake2bHasher) sum() Digest {
	var d Digest
	copy(d[:], b.h.Sum(nil))
	return d
}

// hashValue writes v's tag and content into h. Empty List and empty Map
// collapse to the same "emptyContainer" tag so IsEmptyContainer values
// hash identically, matching their Equals behavior.
func hashValue(v Value, h *blake2bHasher) {
	if IsEmptyContainer(v) {
		h.writeTag("emptyContainer")
		return
	}
	switch w := v.(type) {
	case String:
		h.writeTag("string")
		h.writeString(w.Text)
	case Number:
		h.writeTag("number")
		h.writeFloat(w.value)
		writeUnits(h, w.numerator)
		writeUnits(h, w.denominator)
	case Color:
		h.writeTag("color")
		r, g, b_, a := w.RGBA()
		h.h.Write([]byte{r, g, b_})
		h.writeFloat(a)
	case Bool:
		h.writeTag("bool")
		h.writeBool(bool(w))
	case Null:
		h.writeTag("null")
	case List:
		h.writeTag("list")
		for _, e := range w.Elements {
			hashValue(e, h)
		}
	case Map:
		h.writeTag("map")
		for _, e := range w.entriesSortedByDigest() {
			h.h.Write(e.keyDigest[:])
			hashValue(e.val, h)
		}
	case CompilerFunction:
		h.writeTag("compilerFunction")
		h.writeUint32(w.ID)
	case DynamicFunction:
		h.writeTag("dynamicFunction")
		h.writeUint32(w.ID)
	default:
		h.writeTag("unknown")
	}
}

func writeUnits(h *blake2bHasher, units []string) {
	sorted := append([]string(nil), units...)
	sort.Strings(sorted)
	h.writeUint32(uint32(len(sorted)))
	for _, u := range sorted {
		h.writeString(u)
	}
}

// Hash computes v's content digest.
func Hash(v Value) Digest {
	h := newHasher()
	hashValue(v, h)
	return h.sum()
}
