// File: api/errors.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error kinds shared by the client and server runtimes.

package api

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying the four ways the runtime can fail.
var (
	// ErrTransportFatal classifies a connection that can no longer be
	// used because of a socket error or EOF. The wire package returns
	// those failures as plain wrapped syscall errors that do not match
	// it under errors.Is; a received error event is reported as
	// ErrProtocolInvalid.
	ErrTransportFatal = errors.New("transport fatal error")

	// ErrProtocolInvalid marks a decoding or wire-format violation:
	// bad signature, unknown object id, malformed string/array.
	ErrProtocolInvalid = errors.New("protocol invalid")

	// ErrOutOfMemory marks an allocation failure while decoding.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrUserProgramming marks a misuse of the API by the caller:
	// double listener registration, wrong-side id allocation.
	ErrUserProgramming = errors.New("user programming error")
)

// ProtocolError wraps one of the sentinel kinds with the object id and
// opcode it occurred on, for logging and errors.Is/errors.As matching.
type ProtocolError struct {
	Kind   error
	Object uint32
	Opcode uint16
	Msg    string
}

func (e *ProtocolError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%v: object %d opcode %d", e.Kind, e.Object, e.Opcode)
	}
	return fmt.Sprintf("%v: object %d opcode %d: %s", e.Kind, e.Object, e.Opcode, e.Msg)
}

func (e *ProtocolError) Unwrap() error { return e.Kind }

// NewProtocolError builds a ProtocolError of the given kind.
func NewProtocolError(kind error, object uint32, opcode uint16, msg string) *ProtocolError {
	return &ProtocolError{Kind: kind, Object: object, Opcode: opcode, Msg: msg}
}
