// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Command sass-smoketest is a minimal example binary exercising the
// Public Compile Façade (SPEC_FULL.md §5): it is not itself in scope —
// the CLI wrapper around an Embedded Sass host is a separate concern —
// but the module needs a runnable entry point, and the teacher's own
// main.go is a flag/env-driven binary for the exact same reason.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sass-embedded/host-go/config"
	"github.com/sass-embedded/host-go/sass"
	"github.com/sass-embedded/host-go/trace"
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: sass-smoketest [flags] <file.scss>")
		os.Exit(2)
	}

	h, err := newHost()
	if err != nil {
		log.Fatalln(err)
	}

	results, err := h.CompileFile(args[0], sass.FileOptions{
		Style:     sass.StyleExpanded,
		SourceMap: false,
	})
	if err != nil {
		log.Fatalln(err)
	}

	for _, d := range results.Diagnostics {
		fmt.Fprintln(os.Stderr, d.Text)
	}
	fmt.Println(results.CSS)
}

func newHost() (*sass.Host, error) {
	var h *sass.Host
	var err error
	if config.ExecPath != "" {
		h, err = sass.New(config.ExecPath, config.TimeoutSeconds, nil, nil)
	} else {
		h, err = sass.NewFromName("dart-sass-embedded", config.TimeoutSeconds, nil, nil)
	}
	if err != nil {
		return nil, err
	}

	if config.DebugTraceFile != "" {
		sink, serr := trace.Open(config.DebugTraceFile, config.DebugTraceMax)
		if serr != nil {
			return nil, serr
		}
		h.Supervisor().SetDebugSink(sink)
	}

	return h, nil
}
