// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package wire

import (
	"fmt"

	"github.com/sass-embedded/host-go/diagnostic"
	"github.com/sass-embedded/host-go/sasserr"
	"github.com/sass-embedded/host-go/value"
)

// EnvelopeTag discriminates which wrapper message a frame carries, the
// same role the published Embedded Sass protocol gives its protobuf
// oneof discriminant (spec.md §6). Named from the host's point of view:
// the first four are messages the host sends, the rest are messages the
// host receives.
type EnvelopeTag byte

const (
	TagCompileRequest EnvelopeTag = iota
	TagCanonicalizeResponse
	TagImportResponse
	TagFunctionCallResponse

	TagCompileResponse
	TagLogEvent
	TagProtocolErrorMessage
	TagCanonicalizeRequest
	TagImportRequest
	TagFunctionCallRequest
)

// Inbound holds the one message a DecodeInbound call produced; exactly
// one field is non-nil. The driver switches on which.
type Inbound struct {
	CompileResponse     *CompileResponse
	LogEvent            *LogEvent
	ProtocolError       *ProtocolErrorMessage
	CanonicalizeRequest *CanonicalizeRequest
	ImportRequest       *ImportRequest
	FunctionCallRequest *FunctionCallRequest
}

// EncodeCompileRequest serializes the sole inbound-to-compiler wrapper
// the host builds from scratch (spec.md §4.4 step 4).
func EncodeCompileRequest(m *CompileRequest) []byte {
	buf := []byte{byte(TagCompileRequest)}
	buf = writeUint32(m.CompilationID, buf)
	buf = writeBool(m.Input.IsPath, buf)
	if m.Input.IsPath {
		buf = writeString(m.Input.Path, buf)
	} else {
		buf = writeString(m.Input.Text, buf)
		buf = append(buf, byte(m.Input.Syntax))
		buf = writeString(m.Input.URL, buf)
	}
	buf = append(buf, byte(m.Style))
	buf = writeBool(m.SourceMap, buf)
	buf = writeBool(m.SourceMapIncludeSources, buf)
	buf = writeUint32(uint32(len(m.Importers)), buf)
	for _, imp := range m.Importers {
		buf = writeUint32(imp.ID, buf)
		buf = append(buf, byte(imp.Kind))
		if imp.Kind == ImporterLoadPath {
			buf = writeString(imp.LoadPath, buf)
		}
	}
	buf = writeStrings(m.FunctionSignatures, buf)
	buf = writeBool(m.AlertColor, buf)
	buf = writeBool(m.AlertASCII, buf)
	return buf
}

// EncodeCanonicalizeResponse serializes the host's reply to a
// CanonicalizeRequest (spec.md §4.4).
func EncodeCanonicalizeResponse(m *CanonicalizeResponse) []byte {
	buf := []byte{byte(TagCanonicalizeResponse)}
	buf = writeUint32(m.ID, buf)
	buf = writeUint32(m.CompilationID, buf)
	buf = writeBool(m.HasURL, buf)
	buf = writeString(m.URL, buf)
	buf = writeString(m.Error, buf)
	return buf
}

// EncodeImportResponse serializes the host's reply to an ImportRequest
// (spec.md §4.4).
func EncodeImportResponse(m *ImportResponse) []byte {
	buf := []byte{byte(TagImportResponse)}
	buf = writeUint32(m.ID, buf)
	buf = writeUint32(m.CompilationID, buf)
	buf = writeString(m.Contents, buf)
	buf = append(buf, byte(m.Syntax))
	buf = writeBool(m.HasSourceMapURL, buf)
	buf = writeString(m.SourceMapURL, buf)
	buf = writeString(m.Error, buf)
	return buf
}

// EncodeFunctionCallResponse serializes the host's reply to a
// FunctionCallRequest (spec.md §4.4, §4.6).
func EncodeFunctionCallResponse(m *FunctionCallResponse) []byte {
	buf := []byte{byte(TagFunctionCallResponse)}
	buf = writeUint32(m.ID, buf)
	buf = writeUint32(m.CompilationID, buf)
	hasResult := m.Result != nil && m.Error == ""
	buf = writeBool(hasResult, buf)
	if hasResult {
		buf = append(buf, EncodeValue(m.Result)...)
	}
	buf = writeString(m.Error, buf)
	return buf
}

// DecodeInbound reads one wrapper message the compiler sent. An unknown
// tag byte is a protocol error (spec.md §4.4, "any other variant:
// protocol error").
func DecodeInbound(data []byte) (Inbound, error) {
	tagByte, data, err := readBytes(1, data)
	if err != nil {
		return Inbound{}, err
	}
	switch EnvelopeTag(tagByte[0]) {
	case TagCompileResponse:
		m, err := decodeCompileResponse(data)
		return Inbound{CompileResponse: m}, err
	case TagLogEvent:
		m, err := decodeLogEvent(data)
		return Inbound{LogEvent: m}, err
	case TagProtocolErrorMessage:
		m, err := decodeProtocolErrorMessage(data)
		return Inbound{ProtocolError: m}, err
	case TagCanonicalizeRequest:
		m, err := decodeCanonicalizeRequest(data)
		return Inbound{CanonicalizeRequest: m}, err
	case TagImportRequest:
		m, err := decodeImportRequest(data)
		return Inbound{ImportRequest: m}, err
	case TagFunctionCallRequest:
		m, err := decodeFunctionCallRequest(data)
		return Inbound{FunctionCallRequest: m}, err
	}
	return Inbound{}, &sasserr.ProtocolError{Message: fmt.Sprintf("unknown message tag: %d", tagByte[0])}
}

func decodeCompileResponse(data []byte) (*CompileResponse, error) {
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	hasSuccess, data, err := readBool(data)
	if err != nil {
		return nil, err
	}
	m := &CompileResponse{CompilationID: id}
	if hasSuccess {
		css, d2, err := readString(data)
		if err != nil {
			return nil, err
		}
		data = d2
		hasMap, d3, err := readBool(data)
		if err != nil {
			return nil, err
		}
		data = d3
		srcMap, d4, err := readString(data)
		if err != nil {
			return nil, err
		}
		data = d4
		m.Success = &CompileSuccess{CSS: css, SourceMap: srcMap, HasSourceMap: hasMap}
		return m, nil
	}
	msg, data, err := readString(data)
	if err != nil {
		return nil, err
	}
	span, data, err := readOptionalSpan(data)
	if err != nil {
		return nil, err
	}
	trace, _, err := readString(data)
	if err != nil {
		return nil, err
	}
	m.Failure = &CompileFailure{Message: msg, Span: span, StackTrace: trace}
	return m, nil
}

func decodeLogEvent(data []byte) (*LogEvent, error) {
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	kindByte, data, err := readBytes(1, data)
	if err != nil {
		return nil, err
	}
	kind, err := decodeDiagnosticKind(kindByte[0])
	if err != nil {
		return nil, err
	}
	msg, data, err := readString(data)
	if err != nil {
		return nil, err
	}
	span, data, err := readOptionalSpan(data)
	if err != nil {
		return nil, err
	}
	trace, _, err := readString(data)
	if err != nil {
		return nil, err
	}
	return &LogEvent{CompilationID: id, Kind: kind, Message: msg, Span: span, StackTrace: trace}, nil
}

func decodeDiagnosticKind(b byte) (diagnostic.Kind, error) {
	switch b {
	case 0:
		return diagnostic.KindWarning, nil
	case 1:
		return diagnostic.KindDeprecation, nil
	case 2:
		return diagnostic.KindDebug, nil
	}
	return 0, &sasserr.ProtocolError{Message: fmt.Sprintf("unknown log event kind: %d", b)}
}

func decodeProtocolErrorMessage(data []byte) (*ProtocolErrorMessage, error) {
	hasID, data, err := readBool(data)
	if err != nil {
		return nil, err
	}
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	msg, _, err := readString(data)
	if err != nil {
		return nil, err
	}
	return &ProtocolErrorMessage{HasCompilationID: hasID, CompilationID: id, Message: msg}, nil
}

func decodeCanonicalizeRequest(data []byte) (*CanonicalizeRequest, error) {
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	cid, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	impID, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	url, data, err := readString(data)
	if err != nil {
		return nil, err
	}
	fromImport, _, err := readBool(data)
	if err != nil {
		return nil, err
	}
	return &CanonicalizeRequest{ID: id, CompilationID: cid, ImporterID: impID, URL: url, FromImport: fromImport}, nil
}

func decodeImportRequest(data []byte) (*ImportRequest, error) {
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	cid, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	impID, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	url, _, err := readString(data)
	if err != nil {
		return nil, err
	}
	return &ImportRequest{ID: id, CompilationID: cid, ImporterID: impID, URL: url}, nil
}

func decodeFunctionCallRequest(data []byte) (*FunctionCallRequest, error) {
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	cid, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	hasName, data, err := readBool(data)
	if err != nil {
		return nil, err
	}
	m := &FunctionCallRequest{ID: id, CompilationID: cid, HasName: hasName}
	if hasName {
		m.Name, data, err = readString(data)
		if err != nil {
			return nil, err
		}
	} else {
		m.HasFunctionID, data, err = readBool(data)
		if err != nil {
			return nil, err
		}
		m.FunctionID, data, err = readUint32(data)
		if err != nil {
			return nil, err
		}
	}
	n, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	vals := make([]value.Value, n)
	for i := range vals {
		var v value.Value
		v, data, err = DecodeValue(data)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	m.Arguments = vals
	return m, nil
}

func readOptionalSpan(data []byte) (*diagnostic.Span, []byte, error) {
	has, data, err := readBool(data)
	if err != nil {
		return nil, data, err
	}
	if !has {
		return nil, data, nil
	}
	text, data, err := readString(data)
	if err != nil {
		return nil, data, err
	}
	url, data, err := readString(data)
	if err != nil {
		return nil, data, err
	}
	startOff, data, err := readUint32(data)
	if err != nil {
		return nil, data, err
	}
	startLine, data, err := readUint32(data)
	if err != nil {
		return nil, data, err
	}
	startCol, data, err := readUint32(data)
	if err != nil {
		return nil, data, err
	}
	hasEnd, data, err := readBool(data)
	if err != nil {
		return nil, data, err
	}
	var end *diagnostic.Location
	if hasEnd {
		endOff, d2, err := readUint32(data)
		if err != nil {
			return nil, data, err
		}
		data = d2
		endLine, d3, err := readUint32(data)
		if err != nil {
			return nil, data, err
		}
		data = d3
		endCol, d4, err := readUint32(data)
		if err != nil {
			return nil, data, err
		}
		data = d4
		end = &diagnostic.Location{Offset: int(endOff), Line: int(endLine), Column: int(endCol)}
	}
	context, data, err := readString(data)
	if err != nil {
		return nil, data, err
	}
	return &diagnostic.Span{
		Text:    text,
		URL:     url,
		Start:   diagnostic.Location{Offset: int(startOff), Line: int(startLine), Column: int(startCol)},
		End:     end,
		Context: context,
	}, data, nil
}

func writeOptionalSpan(s *diagnostic.Span, buf []byte) []byte {
	if s == nil {
		return writeBool(false, buf)
	}
	buf = writeBool(true, buf)
	buf = writeString(s.Text, buf)
	buf = writeString(s.URL, buf)
	buf = writeUint32(uint32(s.Start.Offset), buf)
	buf = writeUint32(uint32(s.Start.Line), buf)
	buf = writeUint32(uint32(s.Start.Column), buf)
	if s.End != nil {
		buf = writeBool(true, buf)
		buf = writeUint32(uint32(s.End.Offset), buf)
		buf = writeUint32(uint32(s.End.Line), buf)
		buf = writeUint32(uint32(s.End.Column), buf)
	} else {
		buf = writeBool(false, buf)
	}
	buf = writeString(s.Context, buf)
	return buf
}
