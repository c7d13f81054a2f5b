// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package diagnostic

import (
	"strings"
	"testing"
)

func TestFormatWithoutSpan(t *testing.T) {
	got := Format(Message{Kind: KindWarning, Text: "deprecated feature"}, DefaultOptions)
	if !strings.Contains(got, "warning: deprecated feature") {
		t.Fatalf("Format = %q, want it to contain %q", got, "warning: deprecated feature")
	}
}

func TestFormatWithSpanHeaderUsesUnicodeCornerByDefault(t *testing.T) {
	span := &Span{URL: "file:///x.scss", Start: Location{Line: 1, Column: 2}}
	got := Format(Message{Kind: KindDeprecation, Text: "x", Span: span}, DefaultOptions)
	if !strings.Contains(got, "┌ file:///x.scss:2:3") {
		t.Fatalf("Format = %q, want a 1-based location header", got)
	}
}

func TestFormatASCIIOptionUsesPlainGutter(t *testing.T) {
	span := &Span{
		URL:     "file:///x.scss",
		Start:   Location{Line: 0, Column: 0},
		Context: "a { color: red; }",
	}
	got := Format(Message{Kind: KindWarning, Text: "x", Span: span}, Options{ASCII: true})
	if strings.Contains(got, "│") || strings.Contains(got, "┌") {
		t.Fatalf("Format with ASCII=true must not emit Unicode box-drawing, got %q", got)
	}
	if !strings.Contains(got, "|") {
		t.Fatalf("Format with ASCII=true should use a plain pipe gutter, got %q", got)
	}
}

func TestFormatErrorIncludesPrecedingDiagnostics(t *testing.T) {
	preceding := []Message{{Kind: KindWarning, Text: "w1"}}
	got := FormatError(preceding, "boom", nil, "", DefaultOptions)
	if !strings.Contains(got, "warning: w1") {
		t.Fatalf("FormatError = %q, want preceding diagnostics included", got)
	}
	if !strings.Contains(got, "Error: boom") {
		t.Fatalf("FormatError = %q, want the error message included", got)
	}
}

func TestFormatErrorIncludesStackTraceIndented(t *testing.T) {
	got := FormatError(nil, "boom", nil, "at x.scss:1:1\nat y.scss:2:2", DefaultOptions)
	if !strings.Contains(got, "    at x.scss:1:1") {
		t.Fatalf("FormatError = %q, want an indented stack trace line", got)
	}
}

func TestKindLabels(t *testing.T) {
	cases := map[Kind]string{
		KindWarning:     "warning",
		KindDeprecation: "deprecation warning",
		KindDebug:       "debug",
	}
	for k, want := range cases {
		if got := k.label(); got != want {
			t.Errorf("%v.label() = %q, want %q", k, got, want)
		}
	}
}
