// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Package registry implements the process-wide Dynamic Function Registry
// (spec.md §4.3): a single, process-global table assigning monotonically
// increasing ids to host-defined dynamic functions and resolving them by
// id during a compile's FunctionCallRequest dispatch.
//
// Modeled on the teacher's db.Open: a package-level singleton guarded by
// a mutex, initialized with the package, never torn down for the life of
// the process.
package registry

import (
	"sync"

	"github.com/sass-embedded/host-go/value"
)

// firstID is the first id next() hands out. Ids below 2001 are reserved
// by the wire protocol for other identifier spaces (compilation ids start
// at 1001, importer ids start at 4000).
const firstID = 2001

var (
	mutex   sync.Mutex
	nextID  uint32 = firstID
	entries        = map[uint32]value.DynamicFunction{}
)

// NextID returns a fresh, strictly increasing id. It does not register
// anything; callers build the DynamicFunction with this id and then call
// Register.
func NextID() uint32 {
	mutex.Lock()
	defer mutex.Unlock()
	id := nextID
	nextID++
	return id
}

// Register stores fn under fn.ID, overwriting any previous registration
// for that id. Entries are retained for the process lifetime by design —
// wire messages referencing an id that arrives after this process has
// moved on must never resolve to a different, reused function, so ids
// are never recycled and never removed.
func Register(fn value.DynamicFunction) {
	mutex.Lock()
	defer mutex.Unlock()
	entries[fn.ID] = fn
}

// New allocates a fresh id, builds and registers a DynamicFunction
// wrapping callable with the given signature, and returns it.
func New(signature string, callable value.Callable) value.DynamicFunction {
	fn := value.DynamicFunction{ID: NextID(), Signature: signature, Callable: callable}
	Register(fn)
	return fn
}

// Lookup resolves a previously registered DynamicFunction by id.
func Lookup(id uint32) (value.DynamicFunction, bool) {
	mutex.Lock()
	defer mutex.Unlock()
	fn, ok := entries[id]
	return fn, ok
}

// Count reports how many functions have ever been registered. Exposed
// for tests and diagnostics only; never used for id allocation.
func Count() int {
	mutex.Lock()
	defer mutex.Unlock()
	return len(entries)
}
