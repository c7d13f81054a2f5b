// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Package wire implements the Protocol Codec (spec.md §4.2): pure,
// stateless conversion between the host's native Value model and the
// compiler subprocess's binary wire representation, and between wire
// message wrappers and their native counterparts. It holds no state of
// its own — everything here is a pure function of its input.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/sass-embedded/host-go/registry"
	"github.com/sass-embedded/host-go/sasserr"
	"github.com/sass-embedded/host-go/value"
)

// ValueTag is the byte discriminant written before every encoded Value,
// mirroring the teacher's codec/binary.Type byte-tag scheme.
type ValueTag byte

const (
	TagString ValueTag = iota
	TagNumber
	TagColorRGBA
	TagColorHSLA
	TagBoolTrue
	TagBoolFalse
	TagNull
	TagList
	TagMap
	TagCompilerFunction
	TagDynamicFunction
)

func (t ValueTag) String() string {
	switch t {
	case TagString:
		return "string"
	case TagNumber:
		return "number"
	case TagColorRGBA:
		return "colorRGBA"
	case TagColorHSLA:
		return "colorHSLA"
	case TagBoolTrue:
		return "true"
	case TagBoolFalse:
		return "false"
	case TagNull:
		return "null"
	case TagList:
		return "list"
	case TagMap:
		return "map"
	case TagCompilerFunction:
		return "compilerFunction"
	case TagDynamicFunction:
		return "dynamicFunction"
	}
	return "unknown"
}

// EncodeValue walks v via the Visitor interface and returns its wire
// encoding.
func EncodeValue(v value.Value) []byte {
	enc := &valueEncoder{}
	// Walk never returns an error for any concrete Value in this
	// package; the error return exists so user-defined DynamicFunction
	// callables aren't forced through a panicking path elsewhere.
	_ = value.Walk(v, enc)
	return enc.buf
}

type valueEncoder struct {
	buf []byte
}

func (e *valueEncoder) VisitString(s value.String) error {
	e.buf = append(e.buf, byte(TagString))
	e.buf = writeBool(s.Quoted, e.buf)
	e.buf = writeString(s.Text, e.buf)
	return nil
}

func (e *valueEncoder) VisitNumber(n value.Number) error {
	e.buf = append(e.buf, byte(TagNumber))
	e.buf = writeFloat64(n.Value(), e.buf)
	e.buf = writeStrings(n.Numerator(), e.buf)
	e.buf = writeStrings(n.Denominator(), e.buf)
	return nil
}

func (e *valueEncoder) VisitColor(c value.Color) error {
	if c.CurrentRepresentation() {
		r, g, b, a := c.RawRGB()
		e.buf = append(e.buf, byte(TagColorRGBA))
		e.buf = append(e.buf, r, g, b)
		e.buf = writeFloat64(a, e.buf)
	} else {
		h, s, l, a := c.RawHSL()
		e.buf = append(e.buf, byte(TagColorHSLA))
		e.buf = writeFloat64(h, e.buf)
		e.buf = writeFloat64(s, e.buf)
		e.buf = writeFloat64(l, e.buf)
		e.buf = writeFloat64(a, e.buf)
	}
	return nil
}

func (e *valueEncoder) VisitBool(b value.Bool) error {
	if bool(b) {
		e.buf = append(e.buf, byte(TagBoolTrue))
	} else {
		e.buf = append(e.buf, byte(TagBoolFalse))
	}
	return nil
}

func (e *valueEncoder) VisitNull(value.Null) error {
	e.buf = append(e.buf, byte(TagNull))
	return nil
}

func (e *valueEncoder) VisitList(l value.List) error {
	e.buf = append(e.buf, byte(TagList))
	e.buf = append(e.buf, byte(l.Separator))
	e.buf = writeBool(l.Bracketed, e.buf)
	e.buf = writeUint32(uint32(len(l.Elements)), e.buf)
	for _, el := range l.Elements {
		e.buf = append(e.buf, EncodeValue(el)...)
	}
	return nil
}

// VisitMap encodes m as its ordered sequence of 2-element [key, value]
// pairs (spec.md §3: map iteration yields 2-element lists), so the wire
// encoding and Sass's own map.to-list view share one source of pairs.
func (e *valueEncoder) VisitMap(m value.Map) error {
	e.buf = append(e.buf, byte(TagMap))
	pairs := m.Pairs()
	e.buf = writeUint32(uint32(len(pairs)), e.buf)
	for _, pair := range pairs {
		e.buf = append(e.buf, EncodeValue(pair.Elements[0])...)
		e.buf = append(e.buf, EncodeValue(pair.Elements[1])...)
	}
	return nil
}

func (e *valueEncoder) VisitCompilerFunction(f value.CompilerFunction) error {
	e.buf = append(e.buf, byte(TagCompilerFunction))
	e.buf = writeUint32(f.ID, e.buf)
	return nil
}

func (e *valueEncoder) VisitDynamicFunction(f value.DynamicFunction) error {
	e.buf = append(e.buf, byte(TagDynamicFunction))
	e.buf = writeUint32(f.ID, e.buf)
	return nil
}

// DecodeValue reads one Value from the front of data and returns it
// along with the unconsumed remainder. An unrecognized tag byte is a
// protocol error (spec.md §4.2: "Decoding rejects unknown enum
// discriminants as protocol errors").
func DecodeValue(data []byte) (value.Value, []byte, error) {
	tagByte, data, err := readBytes(1, data)
	if err != nil {
		return nil, data, err
	}
	switch ValueTag(tagByte[0]) {
	case TagString:
		quoted, data, err := readBool(data)
		if err != nil {
			return nil, data, err
		}
		text, data, err := readString(data)
		if err != nil {
			return nil, data, err
		}
		return value.NewString(text, quoted), data, nil

	case TagNumber:
		v, data, err := readFloat64(data)
		if err != nil {
			return nil, data, err
		}
		num, data, err := readStrings(data)
		if err != nil {
			return nil, data, err
		}
		den, data, err := readStrings(data)
		if err != nil {
			return nil, data, err
		}
		return value.NewNumber(v, num, den), data, nil

	case TagColorRGBA:
		rgb, data, err := readBytes(3, data)
		if err != nil {
			return nil, data, err
		}
		a, data, err := readFloat64(data)
		if err != nil {
			return nil, data, err
		}
		return value.NewRGBA(rgb[0], rgb[1], rgb[2], a), data, nil

	case TagColorHSLA:
		h, data, err := readFloat64(data)
		if err != nil {
			return nil, data, err
		}
		s, data, err := readFloat64(data)
		if err != nil {
			return nil, data, err
		}
		l, data, err := readFloat64(data)
		if err != nil {
			return nil, data, err
		}
		a, data, err := readFloat64(data)
		if err != nil {
			return nil, data, err
		}
		return value.NewHSLA(h, s, l, a), data, nil

	case TagBoolTrue:
		return value.True, data, nil

	case TagBoolFalse:
		return value.False, data, nil

	case TagNull:
		return value.NullValue, data, nil

	case TagList:
		sepByte, data, err := readBytes(1, data)
		if err != nil {
			return nil, data, err
		}
		bracketed, data, err := readBool(data)
		if err != nil {
			return nil, data, err
		}
		n, data, err := readUint32(data)
		if err != nil {
			return nil, data, err
		}
		elems := make([]value.Value, n)
		for i := range elems {
			var el value.Value
			el, data, err = DecodeValue(data)
			if err != nil {
				return nil, data, err
			}
			elems[i] = el
		}
		return value.NewList(elems, value.Separator(sepByte[0]), bracketed), data, nil

	case TagMap:
		n, data, err := readUint32(data)
		if err != nil {
			return nil, data, err
		}
		pairs := make([]value.Pair, n)
		for i := range pairs {
			var k, v value.Value
			k, data, err = DecodeValue(data)
			if err != nil {
				return nil, data, err
			}
			v, data, err = DecodeValue(data)
			if err != nil {
				return nil, data, err
			}
			pairs[i] = value.Pair{Key: k, Value: v}
		}
		return value.NewMap(pairs...), data, nil

	case TagCompilerFunction:
		id, data, err := readUint32(data)
		if err != nil {
			return nil, data, err
		}
		return value.CompilerFunction{ID: id}, data, nil

	case TagDynamicFunction:
		id, data, err := readUint32(data)
		if err != nil {
			return nil, data, err
		}
		fn, ok := registry.Lookup(id)
		if !ok {
			return nil, data, &sasserr.ProtocolError{Message: fmt.Sprintf("unknown dynamic function id %d", id)}
		}
		return fn, data, nil
	}
	return nil, data, &sasserr.ProtocolError{Message: fmt.Sprintf("unknown value tag: %d", tagByte[0])}
}

func writeBool(b bool, buf []byte) []byte {
	if b {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func readBool(data []byte) (bool, []byte, error) {
	b, data, err := readBytes(1, data)
	if err != nil {
		return false, data, err
	}
	return b[0] != 0, data, nil
}

func writeFloat64(f float64, buf []byte) []byte {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], floatBits(f))
	return append(buf, n[:]...)
}

func readFloat64(data []byte) (float64, []byte, error) {
	b, data, err := readBytes(8, data)
	if err != nil {
		return 0, data, err
	}
	return bitsFloat(binary.LittleEndian.Uint64(b)), data, nil
}

func writeStrings(ss []string, buf []byte) []byte {
	buf = writeUint32(uint32(len(ss)), buf)
	for _, s := range ss {
		buf = writeString(s, buf)
	}
	return buf
}

func readStrings(data []byte) ([]string, []byte, error) {
	n, data, err := readUint32(data)
	if err != nil {
		return nil, data, err
	}
	out := make([]string, n)
	for i := range out {
		out[i], data, err = readString(data)
		if err != nil {
			return nil, data, err
		}
	}
	return out, data, nil
}
