// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package wire

import (
	"fmt"

	"github.com/sass-embedded/host-go/diagnostic"
	"github.com/sass-embedded/host-go/sasserr"
)

// Outbound holds the one message a DecodeOutbound call produced; exactly
// one field is non-nil. This is the compiler's side of the codec: the
// messages the host sends. Real compiler subprocesses decode these
// themselves; this module only needs it to let a test stand in for the
// external compiler without a real binary.
type Outbound struct {
	CompileRequest       *CompileRequest
	CanonicalizeResponse *CanonicalizeResponse
	ImportResponse       *ImportResponse
	FunctionCallResponse *FunctionCallResponse
}

// DecodeOutbound reads one wrapper message the host sent.
func DecodeOutbound(data []byte) (Outbound, error) {
	tagByte, data, err := readBytes(1, data)
	if err != nil {
		return Outbound{}, err
	}
	switch EnvelopeTag(tagByte[0]) {
	case TagCompileRequest:
		m, err := decodeCompileRequest(data)
		return Outbound{CompileRequest: m}, err
	case TagCanonicalizeResponse:
		m, err := decodeCanonicalizeResponse(data)
		return Outbound{CanonicalizeResponse: m}, err
	case TagImportResponse:
		m, err := decodeImportResponse(data)
		return Outbound{ImportResponse: m}, err
	case TagFunctionCallResponse:
		m, err := decodeFunctionCallResponse(data)
		return Outbound{FunctionCallResponse: m}, err
	}
	return Outbound{}, &sasserr.ProtocolError{Message: fmt.Sprintf("unknown message tag: %d", tagByte[0])}
}

func decodeCompileRequest(data []byte) (*CompileRequest, error) {
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	isPath, data, err := readBool(data)
	if err != nil {
		return nil, err
	}
	m := &CompileRequest{CompilationID: id}
	m.Input.IsPath = isPath
	if isPath {
		m.Input.Path, data, err = readString(data)
		if err != nil {
			return nil, err
		}
	} else {
		m.Input.Text, data, err = readString(data)
		if err != nil {
			return nil, err
		}
		synByte, d2, err := readBytes(1, data)
		if err != nil {
			return nil, err
		}
		data = d2
		m.Input.Syntax = Syntax(synByte[0])
		m.Input.URL, data, err = readString(data)
		if err != nil {
			return nil, err
		}
	}
	styleByte, data, err := readBytes(1, data)
	if err != nil {
		return nil, err
	}
	m.Style = Style(styleByte[0])
	m.SourceMap, data, err = readBool(data)
	if err != nil {
		return nil, err
	}
	m.SourceMapIncludeSources, data, err = readBool(data)
	if err != nil {
		return nil, err
	}
	n, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	m.Importers = make([]ImporterDescriptor, n)
	for i := range m.Importers {
		id, d2, err := readUint32(data)
		if err != nil {
			return nil, err
		}
		data = d2
		kindByte, d3, err := readBytes(1, data)
		if err != nil {
			return nil, err
		}
		data = d3
		desc := ImporterDescriptor{ID: id, Kind: ImporterKind(kindByte[0])}
		if desc.Kind == ImporterLoadPath {
			desc.LoadPath, data, err = readString(data)
			if err != nil {
				return nil, err
			}
		}
		m.Importers[i] = desc
	}
	m.FunctionSignatures, data, err = readStrings(data)
	if err != nil {
		return nil, err
	}
	m.AlertColor, data, err = readBool(data)
	if err != nil {
		return nil, err
	}
	m.AlertASCII, _, err = readBool(data)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func decodeCanonicalizeResponse(data []byte) (*CanonicalizeResponse, error) {
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	cid, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	hasURL, data, err := readBool(data)
	if err != nil {
		return nil, err
	}
	url, data, err := readString(data)
	if err != nil {
		return nil, err
	}
	errText, _, err := readString(data)
	if err != nil {
		return nil, err
	}
	return &CanonicalizeResponse{ID: id, CompilationID: cid, HasURL: hasURL, URL: url, Error: errText}, nil
}

func decodeImportResponse(data []byte) (*ImportResponse, error) {
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	cid, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	contents, data, err := readString(data)
	if err != nil {
		return nil, err
	}
	synByte, data, err := readBytes(1, data)
	if err != nil {
		return nil, err
	}
	hasMapURL, data, err := readBool(data)
	if err != nil {
		return nil, err
	}
	mapURL, data, err := readString(data)
	if err != nil {
		return nil, err
	}
	errText, _, err := readString(data)
	if err != nil {
		return nil, err
	}
	return &ImportResponse{
		ID: id, CompilationID: cid, Contents: contents, Syntax: Syntax(synByte[0]),
		HasSourceMapURL: hasMapURL, SourceMapURL: mapURL, Error: errText,
	}, nil
}

func decodeFunctionCallResponse(data []byte) (*FunctionCallResponse, error) {
	id, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	cid, data, err := readUint32(data)
	if err != nil {
		return nil, err
	}
	hasResult, data, err := readBool(data)
	if err != nil {
		return nil, err
	}
	m := &FunctionCallResponse{ID: id, CompilationID: cid}
	if hasResult {
		m.Result, data, err = DecodeValue(data)
		if err != nil {
			return nil, err
		}
	}
	m.Error, _, err = readString(data)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeCompileResponse serializes the terminal message of a compile
// (spec.md §4.4). Used by real compiler subprocesses; this module uses
// it only from test fakes standing in for one.
func EncodeCompileResponse(m *CompileResponse) []byte {
	buf := []byte{byte(TagCompileResponse)}
	buf = writeUint32(m.CompilationID, buf)
	hasSuccess := m.Success != nil
	buf = writeBool(hasSuccess, buf)
	if hasSuccess {
		buf = writeString(m.Success.CSS, buf)
		buf = writeBool(m.Success.HasSourceMap, buf)
		buf = writeString(m.Success.SourceMap, buf)
		return buf
	}
	f := m.Failure
	if f == nil {
		f = &CompileFailure{}
	}
	buf = writeString(f.Message, buf)
	buf = writeOptionalSpan(f.Span, buf)
	buf = writeString(f.StackTrace, buf)
	return buf
}

// EncodeLogEvent serializes one warning/deprecation/debug diagnostic
// (spec.md §4.4).
func EncodeLogEvent(m *LogEvent) []byte {
	buf := []byte{byte(TagLogEvent)}
	buf = writeUint32(m.CompilationID, buf)
	buf = append(buf, encodeDiagnosticKind(m.Kind))
	buf = writeString(m.Message, buf)
	buf = writeOptionalSpan(m.Span, buf)
	buf = writeString(m.StackTrace, buf)
	return buf
}

func encodeDiagnosticKind(k diagnostic.Kind) byte {
	switch k {
	case diagnostic.KindWarning:
		return 0
	case diagnostic.KindDeprecation:
		return 1
	case diagnostic.KindDebug:
		return 2
	}
	return 0
}

// EncodeProtocolErrorMessage serializes a compiler-detected protocol
// violation (spec.md §4.4).
func EncodeProtocolErrorMessage(m *ProtocolErrorMessage) []byte {
	buf := []byte{byte(TagProtocolErrorMessage)}
	buf = writeBool(m.HasCompilationID, buf)
	buf = writeUint32(m.CompilationID, buf)
	buf = writeString(m.Message, buf)
	return buf
}

// EncodeCanonicalizeRequest serializes an importer canonicalize request
// (spec.md §4.4, §4.6).
func EncodeCanonicalizeRequest(m *CanonicalizeRequest) []byte {
	buf := []byte{byte(TagCanonicalizeRequest)}
	buf = writeUint32(m.ID, buf)
	buf = writeUint32(m.CompilationID, buf)
	buf = writeUint32(m.ImporterID, buf)
	buf = writeString(m.URL, buf)
	buf = writeBool(m.FromImport, buf)
	return buf
}

// EncodeImportRequest serializes an importer load request (spec.md
// §4.4, §4.6).
func EncodeImportRequest(m *ImportRequest) []byte {
	buf := []byte{byte(TagImportRequest)}
	buf = writeUint32(m.ID, buf)
	buf = writeUint32(m.CompilationID, buf)
	buf = writeUint32(m.ImporterID, buf)
	buf = writeString(m.URL, buf)
	return buf
}

// EncodeFunctionCallRequest serializes a host-function invocation
// request (spec.md §4.4, §4.6).
func EncodeFunctionCallRequest(m *FunctionCallRequest) []byte {
	buf := []byte{byte(TagFunctionCallRequest)}
	buf = writeUint32(m.ID, buf)
	buf = writeUint32(m.CompilationID, buf)
	buf = writeBool(m.HasName, buf)
	if m.HasName {
		buf = writeString(m.Name, buf)
	} else {
		buf = writeBool(m.HasFunctionID, buf)
		buf = writeUint32(m.FunctionID, buf)
	}
	buf = writeUint32(uint32(len(m.Arguments)), buf)
	for _, a := range m.Arguments {
		buf = append(buf, EncodeValue(a)...)
	}
	return buf
}
