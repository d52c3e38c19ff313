// File: server/resource.go
// Package server implements the server runtime (spec C7): listening
// socket, per-client acceptance, resource table, client-id range
// grants, global announcement, and the frame callback list.
//
// Grounded on server/server.go's NewServer/Serve/Shutdown shape,
// replacing its WebSocket per-connection goroutine model with the
// single-threaded reactor-driven loop spec §5 requires, and on
// wayland-server.c's wl_client/wl_resource structures.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "github.com/momentics/wlrt/api"

// Resource is a server-side handle to an object exposed to one
// client: an id, its interface, the handler vtable for requests
// targeting it, and an optional destructor run on teardown.
type Resource struct {
	id      api.ID
	ifc     *api.Interface
	impl    api.Implementation
	client  *Client
	destroy func(*Resource)
}

// ID implements api.Object.
func (r *Resource) ID() api.ID { return r.id }

// Interface implements api.Object.
func (r *Resource) Interface() *api.Interface { return r.ifc }

// Client returns the owning client.
func (r *Resource) Client() *Client { return r.client }

// NewResource builds a resource bound to ifc, not yet attached to any
// client or object map; the owning Client's addResource finishes
// wiring it in.
func NewResource(ifc *api.Interface, impl api.Implementation, destroy func(*Resource)) *Resource {
	return &Resource{ifc: ifc, impl: impl, destroy: destroy}
}
