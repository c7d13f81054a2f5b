// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package supervisor

import (
	"github.com/sass-embedded/host-go/diagnostic"
	"github.com/sass-embedded/host-go/value"
	"github.com/sass-embedded/host-go/wire"
)

// Style and Syntax re-export the wire enumerations so callers of this
// package never need to import wire directly (spec.md §6).
type Style = wire.Style
type Syntax = wire.Syntax

const (
	StyleExpanded   = wire.StyleExpanded
	StyleNested     = wire.StyleNested
	StyleCompact    = wire.StyleCompact
	StyleCompressed = wire.StyleCompressed

	SyntaxSCSS     = wire.SyntaxSCSS
	SyntaxIndented = wire.SyntaxIndented
	SyntaxCSS      = wire.SyntaxCSS
)

// CustomImporter resolves a stylesheet URL: Canonicalize turns a
// (possibly relative) URL into a canonical one this importer owns,
// Load reads the canonical URL's contents (spec.md §3 ImportResolver).
type CustomImporter interface {
	Canonicalize(url string, fromImport bool) (canonicalURL string, ok bool, err error)
	Load(canonicalURL string) (contents string, syntax Syntax, sourceMapURL string, hasSourceMapURL bool, err error)
}

// FileImporter is the supplemented third ImportResolver form
// (SPEC_FULL.md §4): it only canonicalizes, to a file:// URL the
// compiler then reads itself, and never receives a load callback.
type FileImporter interface {
	Canonicalize(url string, fromImport bool) (canonicalURL string, ok bool, err error)
}

// ImportResolver is one slot of a compile's importer list: exactly one
// of LoadPath, Importer, or FileImporter is set.
type ImportResolver struct {
	LoadPath     string
	Importer     CustomImporter
	FileImporter FileImporter
}

// NewLoadPathImporter builds a plain filesystem load-path resolver,
// resolvable by the compiler itself without any canonicalize/load
// round-trip (spec.md §4.6).
func NewLoadPathImporter(path string) ImportResolver { return ImportResolver{LoadPath: path} }

// NewCustomImporter builds a resolver backed by a host Canonicalize/Load
// pair.
func NewCustomImporter(imp CustomImporter) ImportResolver { return ImportResolver{Importer: imp} }

// NewFileImporter builds a resolver backed by a host canonicalize-only
// callback (SPEC_FULL.md §4).
func NewFileImporter(imp FileImporter) ImportResolver { return ImportResolver{FileImporter: imp} }

func (r ImportResolver) kind() wire.ImporterKind {
	switch {
	case r.Importer != nil:
		return wire.ImporterCustom
	case r.FileImporter != nil:
		return wire.ImporterFile
	default:
		return wire.ImporterLoadPath
	}
}

// CompilerVersion describes the compiler's protocol and implementation
// versions (SPEC_FULL.md §4). The Supervisor sends no version probe and
// never fills one in, so Supervisor.Version reports nil.
type CompilerVersion struct {
	ProtocolVersion string
	CompilerVersion string
	CompilerName    string
}

// Input selects which of the two Public Compile Façade entry points a
// compile came through (spec.md §4.7/§6): inline text, or a file path.
type Input struct {
	Text   string
	Syntax Syntax
	URL    string // optional, only meaningful with Text

	FilePath string // set instead of Text for compile_file
}

// CompileOptions carries everything spec.md §4.4's compile operation and
// SPEC_FULL.md §4's supplements need beyond the input itself.
type CompileOptions struct {
	Input     Input
	Style     Style
	SourceMap bool

	// SourceMapIncludeSources is the supplemented flag controlling
	// whether original source text is embedded in the resulting map
	// (SPEC_FULL.md §4). Only meaningful when SourceMap is true.
	SourceMapIncludeSources bool

	// AlertColor/AlertASCII are the supplemented formatting toggles
	// (SPEC_FULL.md §4). They are sent to the compiler in the
	// CompileRequest only; the host's own formatting of a CompilerError
	// uses diagnostic.DefaultOptions regardless of them.
	AlertColor bool
	AlertASCII bool

	// Importers and Functions are this call's overrides, appended after
	// (Importers) or layered over by name (Functions) the Supervisor's
	// global set (spec.md §4.4 step 3).
	Importers []ImportResolver
	Functions map[string]value.Callable
}

// Results is the successful outcome of a compile (spec.md §4.4).
type Results struct {
	CSS          string
	SourceMap    string
	HasSourceMap bool
	Diagnostics  []diagnostic.Message
}
