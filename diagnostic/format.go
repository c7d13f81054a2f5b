// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package diagnostic

import (
	"fmt"
	"strconv"
	"strings"
)

// Options carries the supplemented alertColor/alertAscii toggles (see
// SPEC_FULL.md §4). ASCII selects plain ASCII (",", "|") instead of
// Unicode ("┌", "│") for the span header corner and the gutter. Color is
// not read by Format or FormatError: the output never contains ANSI
// color codes.
type Options struct {
	Color bool
	ASCII bool
}

var DefaultOptions = Options{Color: false, ASCII: false}

func (o Options) gutter() string {
	if o.ASCII {
		return "|"
	}
	return "│"
}

func (o Options) corner() string {
	if o.ASCII {
		return ","
	}
	return "┌"
}

// Format renders a single diagnostic message the way spec.md §4.5
// describes: an optional span prefix, a type tag, the message body, and
// an indented stack trace.
func Format(msg Message, opts Options) string {
	var b strings.Builder
	writeSpanHeader(&b, msg.Span, opts)
	b.WriteString(msg.Kind.label())
	b.WriteString(": ")
	b.WriteString(msg.Text)
	b.WriteString("\n")
	writeSpanBody(&b, msg.Span, opts)
	writeStackTrace(&b, msg.StackTrace)
	return strings.TrimRight(b.String(), "\n")
}

// FormatError renders a CompilerError's pretty form: the catalogue of
// diagnostics that arrived before the failure, each followed by a blank
// line, then the error itself formatted as "Error: <message>" plus its
// span and stack trace.
func FormatError(preceding []Message, errText string, span *Span, stackTrace string, opts Options) string {
	var b strings.Builder
	for _, m := range preceding {
		b.WriteString(Format(m, opts))
		b.WriteString("\n\n")
	}
	writeSpanHeader(&b, span, opts)
	b.WriteString("Error: ")
	b.WriteString(errText)
	b.WriteString("\n")
	writeSpanBody(&b, span, opts)
	writeStackTrace(&b, stackTrace)
	return strings.TrimRight(b.String(), "\n")
}

// writeSpanHeader writes the "file:line:col" location prefix, if any, on
// its own line before the message.
func writeSpanHeader(b *strings.Builder, span *Span, opts Options) {
	if span == nil || span.URL == "" {
		return
	}
	line, col := span.Start.oneBased()
	fmt.Fprintf(b, "%s %s:%d:%d\n", opts.corner(), span.URL, line, col)
}

// writeSpanBody renders the surrounding source context, if the compiler
// sent any, with a line-number gutter and a caret-underline beneath the
// span's own line.
func writeSpanBody(b *strings.Builder, span *Span, opts Options) {
	if span == nil || span.Context == "" {
		return
	}
	lines := strings.Split(span.Context, "\n")
	startLine := span.Start.Line + 1
	width := len(strconv.Itoa(startLine + len(lines) - 1))
	gutter := opts.gutter()
	for i, line := range lines {
		num := startLine + i
		fmt.Fprintf(b, "%*d %s %s\n", width, num, gutter, line)
		if num == startLine {
			underline := caretUnderline(line, span.Start.Column, endColumn(span))
			fmt.Fprintf(b, "%s %s %s\n", strings.Repeat(" ", width), gutter, underline)
		}
	}
}

func endColumn(span *Span) int {
	if span.End != nil {
		return span.End.Column
	}
	return span.Start.Column + 1
}

func caretUnderline(line string, start, end int) string {
	if end <= start {
		end = start + 1
	}
	if start > len(line) {
		start = len(line)
	}
	if end > len(line)+1 {
		end = len(line) + 1
	}
	return strings.Repeat(" ", start) + strings.Repeat("^", end-start)
}

func writeStackTrace(b *strings.Builder, trace string) {
	if trace == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(trace, "\n"), "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}
