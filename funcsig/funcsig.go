// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Package funcsig extracts the bare function name from a Sass function
// signature string, as advertised on the wire (spec.md §4.4 step 3:
// per-call function maps are keyed "by name, not full signature" even
// though signatures carry the full argument list).
//
// Grounded on the wire format's own convention: a signature is the bare
// name followed immediately by a parenthesized argument list, e.g.
// "foo($a, $b: 1)" or "headers()". No other punctuation precedes the
// opening paren in a well-formed signature.
package funcsig

import "strings"

// Name returns the bare function name from a Sass function signature. If
// sig contains no "(", it is returned unchanged — the registry accepts
// bare names as signatures for dynamic functions created without a
// formal argument list.
func Name(sig string) string {
	if i := strings.IndexByte(sig, '('); i >= 0 {
		return sig[:i]
	}
	return sig
}
