// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Package config holds the CLI-facing configuration for a binary that
// embeds this module (SPEC_FULL.md §2): flag definitions with
// environment-variable fallback, in the teacher's style. The Supervisor
// and Host APIs themselves take explicit constructor arguments (spec.md
// §6) and never read these package variables directly — config exists
// for cmd/sass-smoketest and any similar CLI-facing sibling.
package config

import (
	"flag"
	"os"
)

var (
	ExecPath       string // explicit default: none; resolved via PATH if empty
	TimeoutSeconds int    = 0 // explicit default: no overall-compile timeout
	DebugTraceFile string // explicit default: debug sink disabled
	DebugTraceMax  int    = 256
)

func init() {
	flag.StringVar(
		&ExecPath,
		"exec-path",
		getenv("SASS_EXEC_PATH", ExecPath),
		"Path to the dart-sass (or compatible) compiler executable. If empty, resolved by name from PATH. Defaults to environment variable SASS_EXEC_PATH.",
	)
	flag.IntVar(
		&TimeoutSeconds,
		"timeout-seconds",
		getenvInt("SASS_TIMEOUT_SECONDS", TimeoutSeconds),
		"Overall per-compile timeout in seconds. Zero disables the timeout. Defaults to environment variable SASS_TIMEOUT_SECONDS.",
	)
	flag.StringVar(
		&DebugTraceFile,
		"debug-trace-file",
		getenv("SASS_DEBUG_TRACE_FILE", DebugTraceFile),
		"Path to a bbolt-backed ring buffer file recording raw protocol frames. Empty disables tracing. Defaults to environment variable SASS_DEBUG_TRACE_FILE.",
	)
	flag.IntVar(
		&DebugTraceMax,
		"debug-trace-max",
		getenvInt("SASS_DEBUG_TRACE_MAX", DebugTraceMax),
		"Maximum number of frames the debug trace ring buffer retains. Defaults to environment variable SASS_DEBUG_TRACE_MAX.",
	)
}

func getenv(key string, deflt string) string {
	v := os.Getenv(key)
	if v == "" {
		return deflt
	}
	return v
}

func getenvInt(key string, deflt int) int {
	v := os.Getenv(key)
	if v == "" {
		return deflt
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return deflt
		}
		n = n*10 + int(c-'0')
	}
	return n
}
