// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package wire

import (
	"reflect"
	"testing"

	"github.com/kr/pretty"

	"github.com/sass-embedded/host-go/diagnostic"
	"github.com/sass-embedded/host-go/value"
)

func roundTripValue(t *testing.T, v value.Value) value.Value {
	encoded := EncodeValue(v)
	decoded, rest, err := DecodeValue(encoded)
	if err != nil {
		t.Fatalf("DecodeValue(%#v): %v", v, err)
	}
	if len(rest) != 0 {
		t.Fatalf("DecodeValue(%#v) left %d unconsumed bytes", v, len(rest))
	}
	return decoded
}

func TestValueRoundTrip(t *testing.T) {
	cases := []value.Value{
		value.NewString("hello", true),
		value.NewUnitlessNumber(3.5),
		value.NewNumber(10, []string{"px"}, nil),
		value.NewRGBA(10, 20, 30, 0.5),
		value.True,
		value.False,
		value.NullValue,
		value.NewList(nil, value.SeparatorComma, false),
		value.NewList([]value.Value{value.NewUnitlessNumber(1), value.NewUnitlessNumber(2)}, value.SeparatorSpace, true),
		value.CompilerFunction{ID: 7},
	}
	for _, c := range cases {
		got := roundTripValue(t, c)
		if !got.Equals(c) {
			t.Errorf("round trip changed value:\n%# v", pretty.Formatter(map[string]interface{}{"want": c, "got": got}))
		}
	}
}

func TestValueRoundTripHSLAPreservesRepresentation(t *testing.T) {
	c := value.NewHSLA(120, 50, 50, 1)
	got := roundTripValue(t, c)
	gotColor, ok := value.Downcast[value.Color](got)
	if !ok {
		t.Fatalf("decoded value is not a Color: %T", got)
	}
	if isRGB := gotColor.CurrentRepresentation(); isRGB {
		t.Fatal("a color encoded from its HSLA form should decode still carrying HSL, not RGB")
	}
}

func TestValueRoundTripMap(t *testing.T) {
	m := value.NewMap(
		value.Pair{Key: value.NewString("a", false), Value: value.NewUnitlessNumber(1)},
		value.Pair{Key: value.NewString("b", false), Value: value.NewUnitlessNumber(2)},
	)
	got := roundTripValue(t, m)
	if !got.Equals(m) {
		t.Fatalf("round-tripped map != original")
	}
}

func TestCompileRequestRoundTripViaOutboundDecoder(t *testing.T) {
	req := &CompileRequest{
		CompilationID: 1001,
		Input:         CompileInput{Text: "a{b:c}", Syntax: SyntaxSCSS, URL: "file:///x.scss"},
		Style:         StyleCompressed,
		SourceMap:     true,
		Importers: []ImporterDescriptor{
			{ID: 4000, Kind: ImporterLoadPath, LoadPath: "/vendor"},
			{ID: 4001, Kind: ImporterCustom},
		},
		FunctionSignatures: []string{"foo($a)"},
		AlertColor:         true,
	}
	encoded := EncodeCompileRequest(req)
	out, err := DecodeOutbound(encoded)
	if err != nil {
		t.Fatalf("DecodeOutbound: %v", err)
	}
	if out.CompileRequest == nil {
		t.Fatal("expected CompileRequest to be set")
	}
	if !reflect.DeepEqual(out.CompileRequest, req) {
		t.Errorf("round trip mismatch:\n%# v", pretty.Formatter(map[string]interface{}{"want": req, "got": out.CompileRequest}))
	}
}

func TestCompileResponseRoundTripViaInboundDecoder(t *testing.T) {
	resp := &CompileResponse{
		CompilationID: 1001,
		Success: &CompileSuccess{
			CSS:          "a{b:c}",
			HasSourceMap: true,
			SourceMap:    `{"version":3}`,
		},
	}
	encoded := EncodeCompileResponse(resp)
	in, err := DecodeInbound(encoded)
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	if in.CompileResponse == nil {
		t.Fatal("expected CompileResponse to be set")
	}
	if *in.CompileResponse.Success != *resp.Success {
		t.Errorf("round trip mismatch:\n%# v", pretty.Formatter(map[string]interface{}{"want": resp, "got": in.CompileResponse}))
	}
}

func TestLogEventRoundTripWithSpan(t *testing.T) {
	ev := &LogEvent{
		CompilationID: 5,
		Kind:          diagnostic.KindDeprecation,
		Message:       "old syntax",
		Span: &diagnostic.Span{
			URL:   "file:///x.scss",
			Start: diagnostic.Location{Line: 2, Column: 4},
		},
		StackTrace: "at x.scss:2:4",
	}
	encoded := EncodeLogEvent(ev)
	in, err := DecodeInbound(encoded)
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	if in.LogEvent == nil {
		t.Fatal("expected LogEvent to be set")
	}
	if in.LogEvent.Message != ev.Message || in.LogEvent.Span.URL != ev.Span.URL {
		t.Errorf("round trip mismatch:\n%# v", pretty.Formatter(map[string]interface{}{"want": ev, "got": in.LogEvent}))
	}
}

func TestDecodeInboundUnknownTagIsProtocolError(t *testing.T) {
	_, err := DecodeInbound([]byte{255})
	if err == nil {
		t.Fatal("expected an error for an unrecognized tag byte")
	}
}
