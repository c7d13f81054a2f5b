// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package value

import "testing"

func TestScalarEquals(t *testing.T) {
	if !NewString("a", true).Equals(NewString("a", true)) {
		t.Fatal("equal strings compared unequal")
	}
	if NewString("a", true).Equals(NewString("a", false)) {
		t.Fatal("quoted and unquoted strings compared equal")
	}
	if !True.Equals(BoolValue(true)) {
		t.Fatal("Bool singleton diverged from BoolValue")
	}
	if !NullValue.Equals(Null{}) {
		t.Fatal("Null singleton diverged from a fresh Null{}")
	}
}

func TestNumberEqualsIgnoresUnitOrder(t *testing.T) {
	a := NewNumber(1, []string{"px", "s"}, nil)
	b := NewNumber(1, []string{"s", "px"}, nil)
	if !a.Equals(b) {
		t.Fatal("numbers with the same units in different order compared unequal")
	}
	c := NewNumber(1, []string{"px"}, nil)
	if a.Equals(c) {
		t.Fatal("numbers with different unit sets compared equal")
	}
}

func TestNumberIsInt(t *testing.T) {
	if !NewUnitlessNumber(4).IsInt() {
		t.Fatal("4 should be IsInt")
	}
	if NewUnitlessNumber(4.5).IsInt() {
		t.Fatal("4.5 should not be IsInt")
	}
}

func TestDowncast(t *testing.T) {
	var v Value = NewString("hi", false)
	s, ok := Downcast[String](v)
	if !ok || s.Text != "hi" {
		t.Fatalf("Downcast[String] = %v, %v", s, ok)
	}
	if _, ok := Downcast[Number](v); ok {
		t.Fatal("Downcast[Number] on a String unexpectedly succeeded")
	}
}

func TestEmptyListEqualsEmptyMap(t *testing.T) {
	l := NewList(nil, SeparatorComma, false)
	m := NewMap()
	if !l.Equals(m) || !m.Equals(l) {
		t.Fatal("empty List and empty Map must compare equal in both directions")
	}
}

func TestListEqualsIgnoresSeparatorAndBrackets(t *testing.T) {
	a := NewList([]Value{NewUnitlessNumber(1), NewUnitlessNumber(2)}, SeparatorComma, false)
	b := NewList([]Value{NewUnitlessNumber(1), NewUnitlessNumber(2)}, SeparatorSpace, true)
	if !a.Equals(b) {
		t.Fatal("lists with equal elements but different separator/brackets compared unequal")
	}
}

func TestMapSetGetAndOrderIndependentEquals(t *testing.T) {
	var m Map
	m.Set(NewString("a", false), NewUnitlessNumber(1))
	m.Set(NewString("b", false), NewUnitlessNumber(2))

	if v, ok := m.Get(NewString("a", false)); !ok || !v.Equals(NewUnitlessNumber(1)) {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}

	other := NewMap(
		Pair{Key: NewString("b", false), Value: NewUnitlessNumber(2)},
		Pair{Key: NewString("a", false), Value: NewUnitlessNumber(1)},
	)
	if !m.Equals(other) {
		t.Fatal("maps with the same pairs in different insertion order compared unequal")
	}
}

func TestMapSetOverwritesExistingKey(t *testing.T) {
	var m Map
	m.Set(NewString("a", false), NewUnitlessNumber(1))
	m.Set(NewString("a", false), NewUnitlessNumber(2))
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after overwrite", m.Len())
	}
	v, _ := m.Get(NewString("a", false))
	if !v.Equals(NewUnitlessNumber(2)) {
		t.Fatalf("Get(a) = %v, want 2", v)
	}
}

func TestNewMapPanicsOnDuplicateKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewMap to panic on a duplicate key")
		}
	}()
	NewMap(
		Pair{Key: NewString("a", false), Value: NewUnitlessNumber(1)},
		Pair{Key: NewString("a", false), Value: NewUnitlessNumber(2)},
	)
}

func TestHashConsistentWithEquals(t *testing.T) {
	a := NewString("same", true)
	b := NewString("same", true)
	if a.Hash() != b.Hash() {
		t.Fatal("equal values hashed to different digests")
	}
}

func TestColorRGBToHSLRoundTrip(t *testing.T) {
	c := NewRGBA(51, 204, 51, 1)
	h, s, l, _ := c.HSLA()
	r2, g2, b2, _ := NewHSLA(h, s, l, 1).RGBA()
	if absInt(int(r2)-51) > 1 || absInt(int(g2)-204) > 1 || absInt(int(b2)-51) > 1 {
		t.Fatalf("RGB->HSL->RGB round trip drifted: got (%d,%d,%d)", r2, g2, b2)
	}
}

func TestColorPreservesLastSetRepresentation(t *testing.T) {
	c := NewRGBA(10, 20, 30, 1)
	if isRGB := c.CurrentRepresentation(); !isRGB {
		t.Fatal("a color constructed via NewRGBA should report isRGB")
	}
	withAlpha := c.WithAlpha(0.5)
	if isRGB := withAlpha.CurrentRepresentation(); !isRGB {
		t.Fatal("WithAlpha must preserve the RGB representation without forcing HSL derivation")
	}
	r, g, b, a := withAlpha.RawRGB()
	if r != 10 || g != 20 || b != 30 || a != 0.5 {
		t.Fatalf("RawRGB after WithAlpha = (%d,%d,%d,%v)", r, g, b, a)
	}
}

func TestColorWithHSLChannelDiscardsCachedRGB(t *testing.T) {
	c := NewRGBA(0, 0, 255, 1)
	_, _, _, _ = c.RGBA() // no-op, already cached
	next := c.WithHSLChannel(0, 0)
	if isRGB := next.CurrentRepresentation(); isRGB {
		t.Fatal("WithHSLChannel must discard the stale RGB cache, leaving HSL canonical")
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
