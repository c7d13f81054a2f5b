// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package value

// String is a Sass string value, quoted or unquoted.
type String struct {
	Text   string
	Quoted bool
}

func NewString(text string, quoted bool) String { return String{Text: text, Quoted: quoted} }

func (s String) Kind() Kind  { return KindString }
func (s String) Hash() Digest { return Hash(s) }

func (s String) Equals(v Value) bool {
	o, ok := v.(String)
	return ok && s.Text == o.Text && s.Quoted == o.Quoted
}

func (s String) Accept(vis Visitor) error { return vis.VisitString(s) }

// Bool is one of the two Bool singletons; never construct it directly.
type Bool bool

var (
	True  Value = Bool(true)
	False Value = Bool(false)
)

// BoolValue returns the shared True or False singleton for b.
func BoolValue(b bool) Value {
	if b {
		return True
	}
	return False
}

func (b Bool) Kind() Kind   { return KindBool }
func (b Bool) Hash() Digest { return Hash(b) }

func (b Bool) Equals(v Value) bool {
	o, ok := v.(Bool)
	return ok && b == o
}

func (b Bool) Accept(vis Visitor) error { return vis.VisitBool(b) }

// Null is the single Sass null value.
type Null struct{}

// NullValue is the shared Null singleton.
var NullValue Value = Null{}

func (Null) Kind() Kind   { return KindNull }
func (Null) Hash() Digest { return Hash(Null{}) }

func (Null) Equals(v Value) bool {
	_, ok := v.(Null)
	return ok
}

func (n Null) Accept(vis Visitor) error { return vis.VisitNull(n) }
