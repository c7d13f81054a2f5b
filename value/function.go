// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package value

// CompilerFunction is an opaque reference to a function the compiler
// itself defined; the host can only pass it back, never call it
// directly.
type CompilerFunction struct {
	ID uint32
}

func (f CompilerFunction) Kind() Kind   { return KindCompilerFunction }
func (f CompilerFunction) Hash() Digest { return Hash(f) }

func (f CompilerFunction) Equals(v Value) bool {
	o, ok := v.(CompilerFunction)
	return ok && f.ID == o.ID
}

func (f CompilerFunction) Accept(vis Visitor) error { return vis.VisitCompilerFunction(f) }

// Callable is the host-side implementation behind a DynamicFunction: it
// receives already-decoded arguments and returns a result Value, or an
// error that becomes the text of a function-call error response.
type Callable func(args []Value) (Value, error)

// DynamicFunction is a host-defined Sass function created at runtime and
// registered in the process-wide registry (see package registry). ID is
// assigned by that registry; Signature is the Sass function signature
// string advertised to the compiler.
type DynamicFunction struct {
	ID        uint32
	Signature string
	Callable  Callable
}

func (f DynamicFunction) Kind() Kind { return KindDynamicFunction }

// Hash intentionally ignores Callable (functions aren't Go-comparable)
// and Signature, matching Equals: two DynamicFunctions are the same
// value iff they carry the same host-assigned id.
func (f DynamicFunction) Hash() Digest { return Hash(f) }

func (f DynamicFunction) Equals(v Value) bool {
	o, ok := v.(DynamicFunction)
	return ok && f.ID == o.ID
}

func (f DynamicFunction) Accept(vis Visitor) error { return vis.VisitDynamicFunction(f) }
