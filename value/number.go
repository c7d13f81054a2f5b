// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package value

import "sort"

// Number is a Sass number: a double plus independent lists of numerator
// and denominator units (so e.g. "px/s" divided by "px" cancels to a
// plain "/s" unit, not a string rewrite).
type Number struct {
	value       float64
	numerator   []string
	denominator []string
}

// NewNumber builds a Number with the given units. Slices are copied so
// the caller's backing array can be reused.
func NewNumber(v float64, numerator, denominator []string) Number {
	return Number{
		value:       v,
		numerator:   append([]string(nil), numerator...),
		denominator: append([]string(nil), denominator...),
	}
}

// NewUnitlessNumber builds a plain Number with no units.
func NewUnitlessNumber(v float64) Number { return Number{value: v} }

func (n Number) Value() float64      { return n.value }
func (n Number) Numerator() []string { return append([]string(nil), n.numerator...) }
func (n Number) Denominator() []string {
	return append([]string(nil), n.denominator...)
}

// IsInt reports whether the number's double value has no fractional
// part, within the usual float64 precision.
func (n Number) IsInt() bool {
	return n.value == float64(int64(n.value))
}

func (n Number) Kind() Kind   { return KindNumber }
func (n Number) Hash() Digest { return Hash(n) }

func (n Number) Equals(v Value) bool {
	o, ok := v.(Number)
	if !ok {
		return false
	}
	return n.value == o.value && sameUnits(n.numerator, o.numerator) && sameUnits(n.denominator, o.denominator)
}

func (n Number) Accept(vis Visitor) error { return vis.VisitNumber(n) }

func sameUnits(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
