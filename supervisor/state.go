// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package supervisor

// State is the Supervisor's lifecycle state, spec.md §4.4's formal state
// machine encoded as an explicit sum type rather than boolean flags so
// transitions stay auditable (spec.md §9).
type State byte

const (
	// Idle accepts a new compile.
	Idle State = iota
	// Active means a compile is in flight, outside a callback.
	Active
	// ActiveInCallback means the driver is running a host importer or
	// function callback on behalf of the compiler.
	ActiveInCallback
	// Broken is terminal: restart after a protocol error itself failed.
	// Every further compile is rejected with a LifecycleError.
	Broken
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case ActiveInCallback:
		return "active-in-callback"
	case Broken:
		return "broken"
	}
	return "unknown"
}
