// File: server/global.go
// Package server
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Grounded on wl_display_add_global / wl_client_create's two-pass
// global announcement in wayland-server.c: every existing global is
// announced to a newly connected client first, and only afterward is
// each global's own connect callback invoked — kept as two explicit
// loops here for the same reason the original has them (a callback
// must see every global already installed in the client's notion of
// the registry before it starts creating its own resources).

package server

import (
	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/proto"
)

// ConnectFunc is invoked whenever a client connects, once per
// registered global, so the global can eagerly create a per-client
// resource if it wants to. A nil ConnectFunc is valid and means "no
// per-client notification" — per spec §9 open question (a), the
// inverted null check in the original source is not reproduced; a
// non-nil func is simply called.
type ConnectFunc func(c *Client, g *Global)

// Global is one advertised object instance: a stable name, the
// interface clients bind to, the implementation every resource bound
// to it shares, and an optional connect callback.
type Global struct {
	name    uint32
	ifc     *api.Interface
	version uint32
	impl    api.Implementation
	connect ConnectFunc
}

// Name returns the global's stable advertised name.
func (g *Global) Name() uint32 { return g.name }

// Interface returns the interface clients must bind with.
func (g *Global) Interface() *api.Interface { return g.ifc }

func globalEvent(opcode uint16) *api.Message { return &proto.DisplayInterface.Events[opcode] }

// AddGlobal registers a new global and announces it to every
// currently connected client. impl is the handler vtable every
// resource created by a future bind against this global will share;
// connect, if non-nil, runs once per client at connect time (spec
// §9(a): the original's inverted null check is not reproduced here).
func (s *Server) AddGlobal(ifc *api.Interface, version uint32, impl api.Implementation, connect ConnectFunc) *Global {
	g := &Global{name: s.nextGlobalName, ifc: ifc, version: version, impl: impl, connect: connect}
	s.nextGlobalName++
	s.globals = append(s.globals, g)

	msg := globalEvent(proto.EvGlobal)
	for _, c := range s.clients {
		_ = c.post(api.DisplayID, proto.EvGlobal, msg, []api.Value{
			{Kind: api.ArgUint, U: g.name},
			{Kind: api.ArgString, S: g.ifc.Name},
			{Kind: api.ArgUint, U: g.version},
		})
	}
	return g
}

// RemoveGlobal withdraws g: every connected client is sent
// global_remove and no longer sees it in future bind lookups.
func (s *Server) RemoveGlobal(g *Global) {
	for i, have := range s.globals {
		if have == g {
			s.globals = append(s.globals[:i], s.globals[i+1:]...)
			break
		}
	}
	msg := globalEvent(proto.EvGlobalRemove)
	for _, c := range s.clients {
		_ = c.post(api.DisplayID, proto.EvGlobalRemove, msg, []api.Value{{Kind: api.ArgUint, U: g.name}})
	}
}

func (s *Server) findGlobal(name uint32) *Global {
	for _, g := range s.globals {
		if g.name == name {
			return g
		}
	}
	return nil
}

// announceTo sends every currently-registered global to c, then — in
// a second, separate pass — invokes each global's connect callback.
func (s *Server) announceTo(c *Client) {
	msg := globalEvent(proto.EvGlobal)
	for _, g := range s.globals {
		_ = c.post(api.DisplayID, proto.EvGlobal, msg, []api.Value{
			{Kind: api.ArgUint, U: g.name},
			{Kind: api.ArgString, S: g.ifc.Name},
			{Kind: api.ArgUint, U: g.version},
		})
	}
	for _, g := range s.globals {
		if g.connect != nil {
			g.connect(c, g)
		}
	}
}
