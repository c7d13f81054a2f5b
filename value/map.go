// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package value

import "sort"

// Pair is one key/value association supplied to NewMap.
type Pair struct {
	Key   Value
	Value Value
}

type mapEntry struct {
	keyDigest Digest
	key       Value
	val       Value
}

// Map is an unordered association of Value to Value. Internally it keeps
// insertion order and indexes entries by content Digest (see value/hash.go)
// since Value is not a Go comparable type; Digest collisions are broken by
// Equals.
type Map struct {
	entries []mapEntry
}

// NewMap builds a Map from pairs. A repeated key is a programmer error:
// it panics, mirroring the source invariant that a Map with non-unique
// keys should never be constructed in the first place.
func NewMap(pairs ...Pair) Map {
	m := Map{entries: make([]mapEntry, 0, len(pairs))}
	for _, p := range pairs {
		if !m.insert(p.Key, p.Value) {
			panic("value: Map constructed with duplicate key")
		}
	}
	return m
}

// insert adds key/val if key is not already present, returning false if
// it was, so NewMap can detect the invariant violation.
func (m *Map) insert(key, val Value) bool {
	d := key.Hash()
	for i := range m.entries {
		if m.entries[i].keyDigest == d && m.entries[i].key.Equals(key) {
			return false
		}
	}
	m.entries = append(m.entries, mapEntry{keyDigest: d, key: key, val: val})
	return true
}

// Set inserts or overwrites the value for key.
func (m *Map) Set(key, val Value) {
	d := key.Hash()
	for i := range m.entries {
		if m.entries[i].keyDigest == d && m.entries[i].key.Equals(key) {
			m.entries[i].val = val
			return
		}
	}
	m.entries = append(m.entries, mapEntry{keyDigest: d, key: key, val: val})
}

// Get looks up the value for key.
func (m Map) Get(key Value) (Value, bool) {
	d := key.Hash()
	for _, e := range m.entries {
		if e.keyDigest == d && e.key.Equals(key) {
			return e.val, true
		}
	}
	return nil, false
}

func (m Map) Len() int { return len(m.entries) }

// ForEach walks entries in insertion order, stopping early if f returns
// false.
func (m Map) ForEach(f func(key, val Value) bool) {
	for _, e := range m.entries {
		if !f(e.key, e.val) {
			return
		}
	}
}

// Pairs yields the map's 2-element [key, value] Lists in insertion
// order, matching how Sass iterates a map.
func (m Map) Pairs() []List {
	out := make([]List, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, NewList([]Value{e.key, e.val}, SeparatorSpace, false))
	}
	return out
}

func (m Map) entriesSortedByDigest() []mapEntry {
	sorted := append([]mapEntry(nil), m.entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return string(sorted[i].keyDigest[:]) < string(sorted[j].keyDigest[:])
	})
	return sorted
}

func (m Map) Kind() Kind   { return KindMap }
func (m Map) Hash() Digest { return Hash(m) }

func (m Map) Accept(vis Visitor) error { return vis.VisitMap(m) }

// Equals is order-independent, with the §3 invariant that an empty Map
// equals an empty List.
func (m Map) Equals(v Value) bool {
	if IsEmptyContainer(m) && IsEmptyContainer(v) {
		return true
	}
	o, ok := v.(Map)
	if !ok {
		return false
	}
	if len(m.entries) != len(o.entries) {
		return false
	}
	for _, e := range m.entries {
		ov, ok := o.Get(e.key)
		if !ok || !e.val.Equals(ov) {
			return false
		}
	}
	return true
}
