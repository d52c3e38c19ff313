// File: api/handler.go
// Package api defines the Implementation contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Implementation is the per-object vtable of handler functions, one per
// opcode, in interface declaration order. Handler returns the function
// value to invoke for opcode, or nil if the object has no handler for
// it — in which case the dispatcher still consumes the frame but calls
// nothing.
//
// A handler's parameter list must match the message signature in
// order: one Go parameter per signature code, using the conventions
// int32/uint32/Fixed/string/[]byte/int(fd)/Object, with the first
// parameter being the caller-supplied context value (client: the
// proxy's user_data; server: the *Resource the request targeted, from
// which the owning *Client is reachable).
type Implementation interface {
	Handler(opcode uint16) any
}

// ImplementationFunc adapts a plain opcode-to-handler function into an
// Implementation: a switch over opcodes (as the client's display
// handler uses), or, for a one-message interface such as wl_callback's
// "done", a function that returns the same handler for any opcode.
type ImplementationFunc func(opcode uint16) any

// Handler implements Implementation.
func (f ImplementationFunc) Handler(opcode uint16) any { return f(opcode) }
