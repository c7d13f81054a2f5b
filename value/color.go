// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package value

import (
	"math"
	"sync"
)

// Color is a Sass color, held internally in whichever of RGBA or HSLA
// representation it was constructed with. The other representation is
// derived and cached on first request (§3 Data Model invariant); alpha is
// shared by both forms and is never itself re-derived.
//
// Per the open question in spec.md §9: a modification that touches only
// alpha preserves whichever representation is already cached exactly (no
// forced round-trip through the other color space). A modification that
// touches an RGB or HSL channel first forces canonical derivation of that
// channel's representation, then sets the channel on it, discarding the
// other cached form so it will be re-derived from the new canonical
// values on next request.
type Color struct {
	core *colorCore
}

type colorCore struct {
	mu sync.Mutex

	alpha float64

	haveRGB bool
	r, g, b uint8

	haveHSL bool
	h, s, l float64 // h in [0,360), s,l in [0,100]
}

// NewRGBA constructs a Color from its RGB representation. α is clamped
// to [0,1] by the caller's convention; this constructor trusts its input.
func NewRGBA(r, g, b uint8, alpha float64) Color {
	return Color{core: &colorCore{alpha: alpha, haveRGB: true, r: r, g: g, b: b}}
}

// NewHSLA constructs a Color from its HSL representation.
func NewHSLA(h, s, l, alpha float64) Color {
	return Color{core: &colorCore{alpha: alpha, haveHSL: true, h: h, s: s, l: l}}
}

func (c Color) Kind() Kind   { return KindColor }
func (c Color) Hash() Digest { return Hash(c) }

func (c Color) Accept(vis Visitor) error { return vis.VisitColor(c) }

func (c Color) Equals(v Value) bool {
	o, ok := v.(Color)
	if !ok {
		return false
	}
	r1, g1, b1, a1 := c.RGBA()
	r2, g2, b2, a2 := o.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

// RGBA returns the color's RGB channels and alpha, deriving RGB from the
// cached HSL representation if that is the only one present, and caching
// the result.
func (c Color) RGBA() (r, g, b uint8, alpha float64) {
	core := c.core
	core.mu.Lock()
	defer core.mu.Unlock()
	if !core.haveRGB {
		core.r, core.g, core.b = hslToRGB(core.h, core.s, core.l)
		core.haveRGB = true
	}
	return core.r, core.g, core.b, core.alpha
}

// HSLA returns the color's HSL channels and alpha, deriving HSL from the
// cached RGB representation if that is the only one present.
func (c Color) HSLA() (h, s, l, alpha float64) {
	core := c.core
	core.mu.Lock()
	defer core.mu.Unlock()
	if !core.haveHSL {
		core.h, core.s, core.l = rgbToHSL(core.r, core.g, core.b)
		core.haveHSL = true
	}
	return core.h, core.s, core.l, core.alpha
}

// CurrentRepresentation reports which representation c currently carries
// without forcing derivation of the other, for the wire codec's benefit
// (spec.md §4.2: "Color encoding uses whichever representation the value
// currently carries; the other is not sent"). If somehow both are cached,
// RGB takes priority, matching how RGBA() is the construction default.
func (c Color) CurrentRepresentation() (isRGB bool) {
	core := c.core
	core.mu.Lock()
	defer core.mu.Unlock()
	return core.haveRGB || !core.haveHSL
}

// RawRGB returns the cached RGB channels and alpha without deriving them
// from HSL. Only meaningful when CurrentRepresentation reports isRGB.
func (c Color) RawRGB() (r, g, b uint8, alpha float64) {
	core := c.core
	core.mu.Lock()
	defer core.mu.Unlock()
	return core.r, core.g, core.b, core.alpha
}

// RawHSL returns the cached HSL channels and alpha without deriving them
// from RGB. Only meaningful when CurrentRepresentation reports !isRGB.
func (c Color) RawHSL() (h, s, l, alpha float64) {
	core := c.core
	core.mu.Lock()
	defer core.mu.Unlock()
	return core.h, core.s, core.l, core.alpha
}

// WithAlpha returns a copy of c with a new alpha, preserving whichever
// representation(s) are already cached without forcing derivation of the
// other.
func (c Color) WithAlpha(alpha float64) Color {
	core := c.core
	core.mu.Lock()
	defer core.mu.Unlock()
	n := colorCore{
		alpha:   alpha,
		haveRGB: core.haveRGB,
		r:       core.r,
		g:       core.g,
		b:       core.b,
		haveHSL: core.haveHSL,
		h:       core.h,
		s:       core.s,
		l:       core.l,
	}
	return Color{core: &n}
}

// WithRGBChannel returns a copy of c with one RGB channel replaced.
// channel is 0 for red, 1 for green, 2 for blue. Forces canonical RGB
// derivation first, then discards any cached HSL representation.
func (c Color) WithRGBChannel(channel int, value uint8) Color {
	r, g, b, a := c.RGBA()
	switch channel {
	case 0:
		r = value
	case 1:
		g = value
	case 2:
		b = value
	}
	return NewRGBA(r, g, b, a)
}

// WithHSLChannel returns a copy of c with one HSL channel replaced.
// channel is 0 for hue, 1 for saturation, 2 for lightness. Forces
// canonical HSL derivation first, then discards any cached RGB
// representation.
func (c Color) WithHSLChannel(channel int, value float64) Color {
	h, s, l, a := c.HSLA()
	switch channel {
	case 0:
		h = value
	case 1:
		s = value
	case 2:
		l = value
	}
	return NewHSLA(h, s, l, a)
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	s /= 100
	l /= 100
	if s == 0 {
		v := uint8(math.Round(l * 255))
		return v, v, v
	}
	c := (1 - math.Abs(2*l-1)) * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))
	var r1, g1, b1 float64
	switch {
	case hp >= 0 && hp < 1:
		r1, g1, b1 = c, x, 0
	case hp >= 1 && hp < 2:
		r1, g1, b1 = x, c, 0
	case hp >= 2 && hp < 3:
		r1, g1, b1 = 0, c, x
	case hp >= 3 && hp < 4:
		r1, g1, b1 = 0, x, c
	case hp >= 4 && hp < 5:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}
	m := l - c/2
	return clamp255(r1 + m), clamp255(g1 + m), clamp255(b1 + m)
}

func clamp255(v float64) uint8 {
	v = v * 255
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(math.Round(v))
}

func rgbToHSL(r, g, b uint8) (h, s, l float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	l = (max + min) / 2
	d := max - min
	if d == 0 {
		return 0, 0, l * 100
	}
	if l < 0.5 {
		s = d / (max + min)
	} else {
		s = d / (2 - max - min)
	}
	switch max {
	case rf:
		h = math.Mod((gf-bf)/d, 6)
	case gf:
		h = (bf-rf)/d + 2
	default:
		h = (rf-gf)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s * 100, l * 100
}
