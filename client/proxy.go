// File: client/proxy.go
// Package client implements the client runtime (spec C6): connection
// bring-up, proxy lifecycle, request send, event receive, roundtrip,
// and global registry tracking.
//
// Grounded on client/client.go's WebSocketClient/ClientOption/
// lifecycle-handler idiom, replacing its WS frame send/recv with the
// display protocol's proxy/request/event model.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import "github.com/momentics/wlrt/api"

// Proxy is a client-side handle to a remote object: an id, its
// interface, and the implementation vtable the display invokes when
// an event arrives for it.
type Proxy struct {
	id      api.ID
	ifc     *api.Interface
	display *Display
	impl    api.Implementation
	data    any
}

// ID implements api.Object.
func (p *Proxy) ID() api.ID { return p.id }

// Interface implements api.Object.
func (p *Proxy) Interface() *api.Interface { return p.ifc }

// Display returns the owning Display.
func (p *Proxy) Display() *Display { return p.display }

// SetImplementation installs the handler vtable this proxy dispatches
// received events to. Calling it twice is a caller error; the spec's
// "double listener registration" UserProgramming case.
func (p *Proxy) SetImplementation(impl api.Implementation, data any) error {
	if p.impl != nil {
		return api.NewProtocolError(api.ErrUserProgramming, p.id, 0, "implementation already set")
	}
	p.impl = impl
	p.data = data
	return nil
}

// NewProxy creates a new proxy inheriting factory's display — the
// factory pattern described in spec §3, used whenever a request
// returns a new object via `new_id` with a statically known
// interface.
func NewProxy(factory *Proxy, ifc *api.Interface) *Proxy {
	return &Proxy{ifc: ifc, display: factory.display}
}

// Marshal sends a request of opcode on p, returning the ids assigned
// to any `new_id` arguments in args, in order.
func (p *Proxy) Marshal(opcode uint16, msg *api.Message, args []api.Value) ([]api.ID, error) {
	return p.display.marshal(p.id, opcode, msg, args)
}

// Destroy removes p from its display's object map. A client-allocated
// id becomes ZOMBIE, pending the server's delete_id acknowledgement;
// a server-allocated id (one this client learned of via an event, not
// one it minted itself) is freed immediately, since only the server
// can race on it.
func (p *Proxy) Destroy() {
	if p.id < api.ServerIDStart {
		p.display.objmap.Zombie(p.id)
	} else {
		p.display.objmap.Remove(p.id)
	}
}
