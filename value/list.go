// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package value

// Separator is the list-element separator Sass remembers for a list
// value, used by the compiler to decide how to re-serialize it.
type Separator byte

const (
	SeparatorUndecided Separator = iota
	SeparatorComma
	SeparatorSpace
	SeparatorSlash
)

// List is an ordered sequence of Values.
type List struct {
	Elements  []Value
	Separator Separator
	Bracketed bool
}

// NewList builds a List, copying the given slice.
func NewList(elements []Value, sep Separator, bracketed bool) List {
	return List{
		Elements:  append([]Value(nil), elements...),
		Separator: sep,
		Bracketed: bracketed,
	}
}

func (l List) Kind() Kind   { return KindList }
func (l List) Hash() Digest { return Hash(l) }

func (l List) Accept(vis Visitor) error { return vis.VisitList(l) }

// Equals compares element-wise, ignoring Separator and Bracketed per the
// Sass equality rule that separator/bracket are presentational, with the
// one exception (§3 invariant) that an empty List and an empty Map are
// always equal to each other regardless of either's own flags.
func (l List) Equals(v Value) bool {
	if IsEmptyContainer(l) && IsEmptyContainer(v) {
		return true
	}
	o, ok := v.(List)
	if !ok {
		return false
	}
	if len(l.Elements) != len(o.Elements) {
		return false
	}
	for i := range l.Elements {
		if !l.Elements[i].Equals(o.Elements[i]) {
			return false
		}
	}
	return true
}
