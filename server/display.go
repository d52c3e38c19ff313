// File: server/display.go
// Package server
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handling for the three requests every client can send to object id
// 1: sync, bind, frame. These are core protocol operations, not
// extensible through the per-interface Implementation vtable, so they
// are dispatched directly rather than through proto.Invoke — matching
// how display_sync/display_bind/display_frame are plain C functions
// in the original, not entries in a generic dispatch table.

package server

import (
	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/proto"
)

func (s *Server) handleDisplayRequest(c *Client, opcode uint16, args []api.Value) {
	switch opcode {
	case proto.OpSync:
		s.handleSync(c, args)
	case proto.OpBind:
		s.handleBind(c, args)
	case proto.OpFrame:
		s.handleFrame(c, args)
	}
}

// handleSync satisfies a roundtrip immediately: because requests are
// processed in strict FIFO order on a single connection, by the time
// this request is dispatched every request the client issued before
// it has already been handled, so the callback can fire right away.
func (s *Server) handleSync(c *Client, args []api.Value) {
	id := args[0].New
	r := &Resource{ifc: proto.CallbackInterface}
	r.id = id
	c.addResource(r)

	msg := &proto.DisplayInterface.Events[proto.EvKey]
	_ = c.post(api.DisplayID, proto.EvKey, msg, []api.Value{
		{Kind: api.ArgUint, U: id},
		{Kind: api.ArgUint, U: 0},
	})
	c.destroyResource(r)
}

// handleBind looks up the named global and creates a client resource
// for it, bound to the global's own interface (the client's claimed
// interface name/version are not cross-checked by this minimal
// runtime; a schema-aware binding would validate version compatibility
// here).
func (s *Server) handleBind(c *Client, args []api.Value) {
	name := args[0].U
	id := args[3].New

	g := s.findGlobal(name)
	if g == nil {
		s.replyInvalidObject(c, name)
		return
	}
	r := &Resource{ifc: g.ifc, impl: g.impl}
	r.id = id
	c.addResource(r)
}

// handleFrame registers a one-shot listener fired by the next
// PostFrame call.
func (s *Server) handleFrame(c *Client, args []api.Value) {
	id := args[0].New
	r := &Resource{ifc: proto.CallbackInterface}
	r.id = id
	c.addResource(r)
	s.registerFrame(c, r)
}
