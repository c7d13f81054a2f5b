// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Package sass is the Public Compile Façade (spec.md §4.7, §6): the two
// entry points a host embeds, compile_text and compile_file, built on top
// of a long-lived supervisor.Supervisor. Most callers never need the
// supervisor package directly — this is the surface they use instead.
package sass

import (
	"github.com/sass-embedded/host-go/supervisor"
	"github.com/sass-embedded/host-go/value"
)

// Re-exported so callers never need to import supervisor directly for
// the handful of types a Compile call needs.
type (
	Style           = supervisor.Style
	Syntax          = supervisor.Syntax
	ImportResolver  = supervisor.ImportResolver
	CustomImporter  = supervisor.CustomImporter
	FileImporter    = supervisor.FileImporter
	Results         = supervisor.Results
	CompilerVersion = supervisor.CompilerVersion
)

const (
	StyleExpanded   = supervisor.StyleExpanded
	StyleNested     = supervisor.StyleNested
	StyleCompact    = supervisor.StyleCompact
	StyleCompressed = supervisor.StyleCompressed

	SyntaxSCSS     = supervisor.SyntaxSCSS
	SyntaxIndented = supervisor.SyntaxIndented
	SyntaxCSS      = supervisor.SyntaxCSS
)

var (
	NewLoadPathImporter = supervisor.NewLoadPathImporter
	NewCustomImporter   = supervisor.NewCustomImporter
	NewFileImporter     = supervisor.NewFileImporter
)

// Host wraps one Supervisor, holding the global importers and functions
// every compile on it inherits (spec.md §6's `new`/`new_from_name`
// constructor arguments).
type Host struct {
	sup *supervisor.Supervisor
}

// New spawns execPath as the compiler subprocess (spec.md §6 `new`).
// timeoutSeconds <= 0 disables the overall-compile timeout.
func New(execPath string, timeoutSeconds int, importers []ImportResolver, functions map[string]value.Callable) (*Host, error) {
	sup, err := supervisor.New(execPath, timeoutSeconds, importers, functions)
	if err != nil {
		return nil, err
	}
	return &Host{sup: sup}, nil
}

// NewFromName resolves name against the platform PATH before spawning
// (spec.md §6 `new_from_name`).
func NewFromName(name string, timeoutSeconds int, importers []ImportResolver, functions map[string]value.Callable) (*Host, error) {
	sup, err := supervisor.NewFromName(name, timeoutSeconds, importers, functions)
	if err != nil {
		return nil, err
	}
	return &Host{sup: sup}, nil
}

// TextOptions configures a CompileText call (spec.md §4.4's compile
// operation, restricted to the inline-text input form).
type TextOptions struct {
	Syntax    Syntax
	URL       string
	Style     Style
	SourceMap bool

	SourceMapIncludeSources bool
	AlertColor              bool
	AlertASCII              bool

	Importers []ImportResolver
	Functions map[string]value.Callable
}

// CompileText compiles text in-place (spec.md §6 `compile_text`).
func (h *Host) CompileText(text string, opts TextOptions) (*Results, error) {
	return h.sup.Compile(supervisor.CompileOptions{
		Input: supervisor.Input{
			Text:   text,
			Syntax: opts.Syntax,
			URL:    opts.URL,
		},
		Style:                   opts.Style,
		SourceMap:               opts.SourceMap,
		SourceMapIncludeSources: opts.SourceMapIncludeSources,
		AlertColor:              opts.AlertColor,
		AlertASCII:              opts.AlertASCII,
		Importers:               opts.Importers,
		Functions:               opts.Functions,
	})
}

// FileOptions configures a CompileFile call (spec.md §4.4's compile
// operation, restricted to the file-path input form).
type FileOptions struct {
	Style     Style
	SourceMap bool

	SourceMapIncludeSources bool
	AlertColor              bool
	AlertASCII              bool

	Importers []ImportResolver
	Functions map[string]value.Callable
}

// CompileFile compiles the stylesheet at filePath (spec.md §6
// `compile_file`); the compiler itself resolves and reads the file, the
// same way it resolves a load-path importer.
func (h *Host) CompileFile(filePath string, opts FileOptions) (*Results, error) {
	return h.sup.Compile(supervisor.CompileOptions{
		Input:                   supervisor.Input{FilePath: filePath},
		Style:                   opts.Style,
		SourceMap:               opts.SourceMap,
		SourceMapIncludeSources: opts.SourceMapIncludeSources,
		AlertColor:              opts.AlertColor,
		AlertASCII:              opts.AlertASCII,
		Importers:               opts.Importers,
		Functions:               opts.Functions,
	})
}

// Reinit restarts the underlying compiler subprocess (spec.md §6
// `reinit`).
func (h *Host) Reinit() error { return h.sup.Reinit() }

// ProcessID returns the subprocess's current OS pid (spec.md §6
// `process_id`).
func (h *Host) ProcessID() int { return h.sup.ProcessID() }

// Version returns the underlying Supervisor's recorded compiler version
// (SPEC_FULL.md §4); no version probe is sent, so this is nil.
func (h *Host) Version() *CompilerVersion { return h.sup.Version() }

// State reports the underlying Supervisor's lifecycle state.
func (h *Host) State() supervisor.State { return h.sup.State() }

// Supervisor exposes the underlying driver for callers that need
// SetLogger/SetDebugSink or other supervisor-level knobs (spec.md §6
// `debug_sink`).
func (h *Host) Supervisor() *supervisor.Supervisor { return h.sup }
