// File: api/types.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Core wire types: object ids, fixed-point numbers, and the typed
// argument value used throughout marshalling and dispatch.

package api

// ID is a 32-bit object id. 0 means "null". Ids below ServerIDStart are
// client-allocated; ids at or above it are server-allocated.
type ID = uint32

// ServerIDStart is the first id in the server-allocated segment.
const ServerIDStart ID = 0xFF000000

// DisplayID is the well-known id of the display object.
const DisplayID ID = 1

// Fixed is a 24.8 signed fixed-point number, wire type 'f'.
type Fixed int32

// Float64 converts a Fixed to a float64.
func (f Fixed) Float64() float64 { return float64(f) / 256.0 }

// NewFixed builds a Fixed from a float64.
func NewFixed(v float64) Fixed { return Fixed(v * 256.0) }

// Int converts a Fixed to its truncated integer part.
func (f Fixed) Int() int { return int(f) / 256 }

// ArgType is a single signature type code.
type ArgType byte

const (
	ArgInt    ArgType = 'i'
	ArgUint   ArgType = 'u'
	ArgFixed  ArgType = 'f'
	ArgString ArgType = 's'
	ArgObject ArgType = 'o'
	ArgNewID  ArgType = 'n'
	ArgArray  ArgType = 'a'
	ArgFD     ArgType = 'h'
)

// Object is anything with a stable wire id: a client Proxy or a server
// Resource. The peer only ever sees the id; it never dereferences the
// implementation behind it.
type Object interface {
	ID() ID
	Interface() *Interface
}

// Value is a tagged union holding one decoded or to-be-encoded argument.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind     ArgType
	Nullable bool
	Null     bool // true for a present-but-null o/s/a argument

	I   int32
	U   uint32
	F   Fixed
	S   string
	A   []byte
	FD  int
	Obj Object // resolved object for 'o', or newly created proxy/resource for 'n'
	New ID     // raw id carried by a 'n' argument before the object is created
}
