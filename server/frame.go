// File: server/frame.go
// Package server
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The frame callback list: display_frame/display_sync's shared
// mechanism in wayland-server.c, where a one-shot callback resource is
// pushed onto both the client's own resource list (so client teardown
// destroys it) and a display-wide FIFO drained by PostFrame. Grounded
// on the teacher's github.com/eapache/queue usage for its executor
// work queue (internal/concurrency/executor.go), reused here for
// ordered one-shot listener delivery instead of task dispatch.

package server

import (
	"github.com/eapache/queue"

	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/proto"
)

type frameEntry struct {
	client   *Client
	resource *Resource
}

// registerFrame records a one-shot frame callback resource, to be
// fired in registration order by the next PostFrame call.
func (s *Server) registerFrame(c *Client, r *Resource) {
	s.frameList.Add(&frameEntry{client: c, resource: r})
}

// PostFrame fires every pending frame callback, in the order they
// were registered, with time as the tick's timestamp/serial. Each
// listener's "key" event is emitted on its owning client's display
// object, and the listener resource is then destroyed exactly once —
// satisfying the ordering and exactly-once invariants in spec §8.
func (s *Server) PostFrame(time uint32) {
	pending := s.frameList
	s.frameList = queue.New()
	for pending.Length() > 0 {
		entry := pending.Remove().(*frameEntry)
		if obj, ok := entry.client.objmap.Lookup(entry.resource.id); !ok || obj != entry.resource {
			// Already destroyed with its client; never fire or destroy twice.
			continue
		}
		msg := &proto.DisplayInterface.Events[proto.EvKey]
		_ = entry.client.post(api.DisplayID, proto.EvKey, msg, []api.Value{
			{Kind: api.ArgUint, U: entry.resource.id},
			{Kind: api.ArgUint, U: time},
		})
		entry.client.destroyResource(entry.resource)
	}
}
