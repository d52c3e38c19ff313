// File: server/client.go
// Package server
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/control"
	"github.com/momentics/wlrt/proto"
	"github.com/momentics/wlrt/wire"
)

// Client is the server-side view of one connected peer: its
// connection, private object map, resource list, and granted-id
// quota.
//
// Deviation from the original: the original grants non-overlapping
// server-segment id blocks from one display-wide counter, since every
// client's resources lived in a single shared hash table. Here each
// client has its own Connection and ObjectMap (distinct sockets, as
// Go models them), so ids are already scoped to one connection and
// never need cross-client uniqueness — recorded in DESIGN.md.
type Client struct {
	server *Server
	conn   *wire.Connection
	objmap *wire.ObjectMap
	tracer *control.Tracer

	display   *Resource
	resources []*Resource

	idCount uint32 // remaining ids in the current grant
	granted uint32 // cumulative ids ever granted

	fatal error
}

func newClient(s *Server, fd int) (*Client, error) {
	c := &Client{server: s, objmap: wire.NewObjectMap(), tracer: s.tracer}
	conn, err := wire.NewConnection(fd, func(m wire.Mask) { s.updateInterest(fd, m) })
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.display = &Resource{id: api.DisplayID, ifc: proto.DisplayInterface, client: c}
	c.objmap.InsertAt(api.DisplayID, c.display)
	return c, nil
}

// Post sends an event of opcode from object, with args per msg's
// signature. Exported for use by a resource's Implementation handlers,
// which need to reply on their own object id.
func (c *Client) Post(object api.ID, opcode uint16, msg *api.Message, args []api.Value) error {
	return c.post(object, opcode, msg, args)
}

// post sends an event of opcode from object, with args per msg's
// signature.
func (c *Client) post(object api.ID, opcode uint16, msg *api.Message, args []api.Value) error {
	_, err := proto.Marshal(c.conn, c.objmap, wire.ServerSide, object, opcode, msg, args)
	if err == nil {
		c.tracer.Log(control.Outgoing, object, msg, args)
	}
	return err
}

// addResource attaches r to c: places it in the resource list and the
// object map, and grants another block of ids if the client's current
// quota has run low. The low-water check mirrors the original's
// post-decrement comparison (`client->id_count-- < 64`): the
// decrement happens first, and grantMore's top-up is applied to the
// already-decremented count, so a grant's increment is never clobbered
// by this allocation's own decrement.
func (c *Client) addResource(r *Resource) {
	r.client = c
	c.resources = append(c.resources, r)
	c.objmap.InsertAt(r.id, r)

	old := c.idCount
	c.idCount = old - 1
	if old < c.server.cfg.LowWater {
		c.grantMore()
	}
}

func (c *Client) grantMore() {
	c.granted += c.server.cfg.RangeGrant
	c.idCount += c.server.cfg.RangeGrant
	msg := &proto.DisplayInterface.Events[proto.EvRange]
	_ = c.post(api.DisplayID, proto.EvRange, msg, []api.Value{{Kind: api.ArgUint, U: c.granted}})
}

// destroyResource runs r's destructor and removes it from c. If r's id
// is in the client-allocated segment, the client holds it ZOMBIE until
// told otherwise, so a delete_id event is posted to release that slot
// — mirrors wl_resource_destroy's wl_client_post_event(DELETE_ID) for
// client-side ids; server-allocated ids need no such notice, since the
// client never minted a ZOMBIE placeholder for them.
func (c *Client) destroyResource(r *Resource) {
	if r.destroy != nil {
		r.destroy(r)
	}
	c.objmap.Remove(r.id)
	for i, have := range c.resources {
		if have == r {
			c.resources = append(c.resources[:i], c.resources[i+1:]...)
			break
		}
	}
	if r.id < api.ServerIDStart {
		msg := &proto.DisplayInterface.Events[proto.EvDeleteID]
		_ = c.post(api.DisplayID, proto.EvDeleteID, msg, []api.Value{{Kind: api.ArgUint, U: r.id}})
	}
}

// destroy tears the client down: every resource's destructor runs,
// then the connection and object map are released.
func (c *Client) destroy() {
	for len(c.resources) > 0 {
		c.destroyResource(c.resources[len(c.resources)-1])
	}
	c.objmap.Release()
	c.conn.Close()
}
