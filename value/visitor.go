// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package value

// Visitor is implemented by consumers that need to traverse a Value tree
// without a type switch at every call site — principally the wire codec,
// which walks a Value to produce the matching wire variant (spec.md
// §4.2).
type Visitor interface {
	VisitString(String) error
	VisitNumber(Number) error
	VisitColor(Color) error
	VisitBool(Bool) error
	VisitNull(Null) error
	VisitList(List) error
	VisitMap(Map) error
	VisitCompilerFunction(CompilerFunction) error
	VisitDynamicFunction(DynamicFunction) error
}

// Walk is a convenience wrapper equivalent to v.Accept(vis), kept so
// callers that hold a bare Value don't need to know every concrete type
// implements Accept identically.
func Walk(v Value, vis Visitor) error {
	return v.Accept(vis)
}
