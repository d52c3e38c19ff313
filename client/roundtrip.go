// File: client/roundtrip.go
// Package client
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sync/Bind/Frame: the three display requests, plus the roundtrip
// primitive built on Sync. Grounded on wl_display_roundtrip and
// wl_display_bind in the original wayland-client.c.

package client

import (
	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/proto"
	"github.com/momentics/wlrt/wire"
)

// Bind acquires a proxy for the global advertised as name, typed as
// ifc. The server decides whether name refers to an object of that
// interface; a mismatch surfaces as a later protocol error, not here.
func (d *Display) Bind(name uint32, ifc *api.Interface) (*Proxy, error) {
	if d.fatal != nil {
		return nil, d.fatal
	}
	p := NewProxy(d.display, ifc)
	msg := &proto.DisplayInterface.Methods[proto.OpBind]
	args := []api.Value{
		{Kind: api.ArgUint, U: name},
		{Kind: api.ArgString, S: ifc.Name},
		{Kind: api.ArgUint, U: ifc.Version},
		{Kind: api.ArgNewID, Obj: p},
	}
	ids, err := d.display.Marshal(proto.OpBind, msg, args)
	if err != nil {
		return nil, err
	}
	p.id = ids[0]
	return p, nil
}

// FrameCallback registers for the next server frame tick, returning
// the one-shot callback proxy. The caller installs its own
// implementation via SetImplementation with signature
// func(any, uint32) error before the next Iterate.
func (d *Display) FrameCallback() (*Proxy, error) {
	if d.fatal != nil {
		return nil, d.fatal
	}
	cb := NewProxy(d.display, proto.CallbackInterface)
	msg := &proto.DisplayInterface.Methods[proto.OpFrame]
	ids, err := d.display.Marshal(proto.OpFrame, msg, []api.Value{{Kind: api.ArgNewID, Obj: cb}})
	if err != nil {
		return nil, err
	}
	cb.id = ids[0]
	return cb, nil
}

// Roundtrip issues sync and iterates until the server's matching done
// callback fires, flushing pending writes first. It proves the server
// has processed every request issued before the call.
func (d *Display) Roundtrip() error {
	if d.fatal != nil {
		return d.fatal
	}
	cb := NewProxy(d.display, proto.CallbackInterface)
	msg := &proto.DisplayInterface.Methods[proto.OpSync]
	ids, err := d.display.Marshal(proto.OpSync, msg, []api.Value{{Kind: api.ArgNewID, Obj: cb}})
	if err != nil {
		return err
	}
	cb.id = ids[0]

	done := false
	cb.impl = api.ImplementationFunc(func(uint16) any {
		return func(_ any, _ uint32) error { done = true; return nil }
	})

	if err := d.Flush(); err != nil {
		return err
	}
	for !done {
		if err := d.Iterate(wire.Readable); err != nil {
			return err
		}
	}
	return nil
}
