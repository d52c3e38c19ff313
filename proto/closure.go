// File: proto/closure.go
// Package proto
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package proto

import "github.com/momentics/wlrt/api"

// Closure is a fully decoded message awaiting new_id resolution
// (CreateProxies) and dispatch (Invoke). It owns the decoded Args
// until one of those consumes it.
type Closure struct {
	Message *api.Message
	Opcode  uint16
	Sender  api.ID
	Args    []api.Value
}

// NewIDAllocator registers a freshly constructed object at id within
// the local object map, on the local side's segment the id falls
// into. Supplied by the client/server runtime, which alone knows how
// to build a Proxy or Resource for a given interface.
type NewIDAllocator func(id api.ID, ifc *api.Interface, version uint32) (api.Object, error)

// CreateProxies walks c.Args a second time and, for every 'n'
// argument, calls alloc to build the local object and rewrites the
// slot's Obj field, leaving New as the raw id for reference. For a
// typed new_id (msg.Types[i] != nil) alloc receives that interface
// directly; for the generic case (bind), only the version is read back,
// from the immediately preceding 'u' argument, per the wire layout the
// core display interface uses. The interface name is not looked up:
// alloc receives a nil interface and the caller resolves it.
func (c *Closure) CreateProxies(alloc NewIDAllocator) error {
	for i := range c.Args {
		if c.Args[i].Kind != api.ArgNewID {
			continue
		}
		ifc := c.Message.Types[i]
		version := uint32(0)
		if ifc == nil {
			// Generic bind: preceded by (name:u, interface:s, version:u).
			if i < 2 {
				return api.NewProtocolError(api.ErrProtocolInvalid, c.Sender, c.Opcode,
					"generic new_id missing preceding interface/version arguments")
			}
			version = c.Args[i-1].U
		} else {
			version = ifc.Version
		}
		obj, err := alloc(c.Args[i].New, ifc, version)
		if err != nil {
			return err
		}
		c.Args[i].Obj = obj
	}
	return nil
}
