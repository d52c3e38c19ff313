// File: control/trace.go
// Package control holds the runtime's ambient, cross-cutting
// concerns: message tracing and connection/listener configuration.
//
// Grounded on control/debug.go's DebugProbes (register/dump style),
// adapted from an arbitrary probe registry to the single well-defined
// WAYLAND_DEBUG behaviour spec §6 requires: print every marshalled or
// demarshalled message to stderr when the environment variable is set.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import (
	"fmt"
	"os"

	"github.com/momentics/wlrt/api"
)

// Tracer prints marshalled/demarshalled messages. The zero value is
// disabled; NewTracer enables it when WAYLAND_DEBUG is non-empty,
// matching the original's process-global wl_debug flag but scoped to
// one Display instance per spec's design note against global mutable
// state.
type Tracer struct {
	enabled bool
	out     *os.File
}

// NewTracer builds a Tracer that checks the WAYLAND_DEBUG environment
// variable once, at construction.
func NewTracer() *Tracer {
	return &Tracer{enabled: os.Getenv("WAYLAND_DEBUG") != "", out: os.Stderr}
}

// Enabled reports whether tracing is active.
func (t *Tracer) Enabled() bool { return t != nil && t.enabled }

// direction labels which way a message travelled, for trace output.
type direction string

const (
	Outgoing direction = "->"
	Incoming direction = "<-"
)

// Log prints one traced message: object id, message name, and its
// decoded/encoded argument values.
func (t *Tracer) Log(dir direction, object api.ID, msg *api.Message, args []api.Value) {
	if !t.Enabled() {
		return
	}
	fmt.Fprintf(t.out, "[%s] %d.%s(", dir, object, msg.Name)
	for i, v := range args {
		if i > 0 {
			fmt.Fprint(t.out, ", ")
		}
		t.logValue(v)
	}
	fmt.Fprintln(t.out, ")")
}

func (t *Tracer) logValue(v api.Value) {
	switch v.Kind {
	case api.ArgInt:
		fmt.Fprintf(t.out, "%d", v.I)
	case api.ArgUint:
		fmt.Fprintf(t.out, "%d", v.U)
	case api.ArgFixed:
		fmt.Fprintf(t.out, "%g", v.F.Float64())
	case api.ArgString:
		if v.Null {
			fmt.Fprint(t.out, "nil")
		} else {
			fmt.Fprintf(t.out, "%q", v.S)
		}
	case api.ArgArray:
		fmt.Fprintf(t.out, "array[%d]", len(v.A))
	case api.ArgFD:
		fmt.Fprintf(t.out, "fd %d", v.FD)
	case api.ArgObject, api.ArgNewID:
		if v.Obj == nil {
			fmt.Fprint(t.out, "nil")
		} else {
			fmt.Fprintf(t.out, "%s@%d", v.Obj.Interface().Name, v.Obj.ID())
		}
	}
}
