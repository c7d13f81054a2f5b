// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package registry

import (
	"testing"

	"github.com/sass-embedded/host-go/value"
)

func TestNextIDMonotonicallyIncreasesFrom2001(t *testing.T) {
	a := NextID()
	b := NextID()
	if a < 2001 {
		t.Fatalf("NextID() = %d, want >= 2001", a)
	}
	if b != a+1 {
		t.Fatalf("NextID() = %d after %d, want %d", b, a, a+1)
	}
}

func TestNewRegistersAndLookupResolvesTheSameCallable(t *testing.T) {
	called := false
	fn := New("my-fn()", func(args []value.Value) (value.Value, error) {
		called = true
		return value.NullValue, nil
	})

	got, ok := Lookup(fn.ID)
	if !ok {
		t.Fatalf("Lookup(%d) = false, want true right after New", fn.ID)
	}
	if got.Signature != "my-fn()" {
		t.Fatalf("Lookup(%d).Signature = %q, want %q", fn.ID, got.Signature, "my-fn()")
	}
	if _, err := got.Callable(nil); err != nil {
		t.Fatalf("Callable: %v", err)
	}
	if !called {
		t.Fatal("Lookup returned a different function than the one New registered")
	}
}

func TestLookupUnknownID(t *testing.T) {
	if _, ok := Lookup(999999); ok {
		t.Fatal("Lookup on an id that was never registered should report ok=false")
	}
}

func TestCountNeverDecreases(t *testing.T) {
	before := Count()
	New("another-fn()", func(args []value.Value) (value.Value, error) { return value.NullValue, nil })
	if Count() != before+1 {
		t.Fatalf("Count() = %d, want %d after one New call", Count(), before+1)
	}
}
