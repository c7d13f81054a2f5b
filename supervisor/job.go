// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package supervisor

import (
	"sort"

	"github.com/sass-embedded/host-go/diagnostic"
	"github.com/sass-embedded/host-go/funcsig"
	"github.com/sass-embedded/host-go/value"
	"github.com/sass-embedded/host-go/wire"
)

// importerBase is the first host-assigned importer id (spec.md
// GLOSSARY: "4000 + index").
const importerBase = 4000

// compileJob is the per-active-compilation state named in spec.md §3:
// created at compile entry, destroyed when compile returns or throws.
type compileJob struct {
	id uint32

	resolvers []ImportResolver // index i <-> importer id importerBase+i

	functionsByName map[string]value.Callable

	diagnostics []diagnostic.Message
}

// importerFor resolves importerID against this job's resolver list,
// reporting the protocol error spec.md §4.6 requires for an id outside
// [importerBase, importerBase+N).
func (j *compileJob) importerFor(importerID uint32) (ImportResolver, error) {
	if importerID < importerBase || importerID >= importerBase+uint32(len(j.resolvers)) {
		return ImportResolver{}, protocolErrorf("importer id %d out of range", importerID)
	}
	return j.resolvers[importerID-importerBase], nil
}

// descriptors builds the wire importer list sent up-front in the
// CompileRequest, in the same order as j.resolvers so importer ids line
// up (spec.md §4.4 step 3).
func (j *compileJob) descriptors() []wire.ImporterDescriptor {
	out := make([]wire.ImporterDescriptor, len(j.resolvers))
	for i, r := range j.resolvers {
		out[i] = wire.ImporterDescriptor{
			ID:       importerBase + uint32(i),
			Kind:     r.kind(),
			LoadPath: r.LoadPath,
		}
	}
	return out
}

// buildFunctionTable merges global and per-call function maps by bare
// name, per-call entries overriding global ones with the same name
// (spec.md §4.4 step 3: "per-call overrides by function name, not by
// full signature"). It returns the full signature strings to advertise
// on the wire and the name-keyed dispatch table, in a deterministic
// (sorted) order so the same inputs always produce the same wire
// request.
func buildFunctionTable(global, perCall map[string]value.Callable) (signatures []string, byName map[string]value.Callable) {
	type entry struct {
		signature string
		callable  value.Callable
	}
	merged := make(map[string]entry, len(global)+len(perCall))
	for sig, fn := range global {
		merged[funcsig.Name(sig)] = entry{sig, fn}
	}
	for sig, fn := range perCall {
		merged[funcsig.Name(sig)] = entry{sig, fn}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	signatures = make([]string, len(names))
	byName = make(map[string]value.Callable, len(names))
	for i, name := range names {
		e := merged[name]
		signatures[i] = e.signature
		byName[name] = e.callable
	}
	return signatures, byName
}
