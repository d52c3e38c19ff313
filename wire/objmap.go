// File: wire/objmap.go
// Package wire
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ObjectMap tracks the association between wire ids and the local
// Object behind them, split into the two fixed segments of the id
// space: client-allocated ids below api.ServerIDStart and
// server-allocated ids at or above it. Shaped after
// internal/session/store.go's shard-and-slot map, collapsed from N
// shards to exactly the two segments the protocol defines, since
// there is no concurrent access to simplify away.

package wire

import (
	"github.com/momentics/wlrt/api"
)

// zombie is the sentinel stored for an id whose deletion is still
// pending acknowledgement from the peer (spec §4.2 / §7).
var zombie = &zombieObject{}

type zombieObject struct{}

func (*zombieObject) ID() api.ID                { return 0 }
func (*zombieObject) Interface() *api.Interface { return nil }

// IsZombie reports whether obj is the ZOMBIE sentinel.
func IsZombie(obj api.Object) bool {
	_, ok := obj.(*zombieObject)
	return ok
}

// Side selects which half of the id space InsertNew allocates from.
type Side int

const (
	ClientSide Side = iota
	ServerSide
)

// ObjectMap is the per-Connection id → Object table.
type ObjectMap struct {
	client map[api.ID]api.Object // ids in [1, api.ServerIDStart)
	server map[api.ID]api.Object // ids in [api.ServerIDStart, 2^32)

	nextClient api.ID
	nextServer api.ID
}

// NewObjectMap builds an empty map with the display's well-known id
// pre-claimed, since id 1 is reserved and never allocated dynamically.
func NewObjectMap() *ObjectMap {
	return &ObjectMap{
		client:     make(map[api.ID]api.Object),
		server:     make(map[api.ID]api.Object),
		nextClient: api.DisplayID + 1,
		nextServer: api.ServerIDStart,
	}
}

// InsertAt records obj under an id supplied by the peer (a client
// request's new_id argument, or the id a server assigns and the
// client learns of via an event). It returns false, without
// inserting, if id is already occupied by a live (non-zombie) object —
// a protocol violation the caller should turn into ErrProtocolInvalid.
func (m *ObjectMap) InsertAt(id api.ID, obj api.Object) bool {
	seg := m.segment(id)
	if existing, ok := seg[id]; ok && !IsZombie(existing) {
		return false
	}
	seg[id] = obj
	return true
}

// InsertNew allocates the next unused id on the given side and
// records obj under it, returning the assigned id.
func (m *ObjectMap) InsertNew(side Side, obj api.Object) api.ID {
	var id api.ID
	switch side {
	case ClientSide:
		id = m.nextClient
		m.nextClient++
	case ServerSide:
		id = m.nextServer
		m.nextServer++
	default:
		panic("wire: unknown side")
	}
	m.segment(id)[id] = obj
	return id
}

// Lookup returns the object at id, or (nil, false) if the slot has
// never been used. A ZOMBIE sentinel is returned as-is; callers use
// IsZombie to distinguish it from a live object.
func (m *ObjectMap) Lookup(id api.ID) (api.Object, bool) {
	obj, ok := m.segment(id)[id]
	return obj, ok
}

// Remove drops id from the map entirely, freeing the slot for reuse.
// Used for server-allocated ids, which the spec frees immediately on
// destroy since only the server itself can race on them.
func (m *ObjectMap) Remove(id api.ID) {
	delete(m.segment(id), id)
}

// Zombie replaces the entry at id with the ZOMBIE sentinel rather
// than freeing it, per spec §4.2: a client-allocated id stays reserved
// until the server's delete_id acknowledgement arrives, so a reused id
// from a racing new_id request is never confused with the destroyed
// object.
func (m *ObjectMap) Zombie(id api.ID) {
	m.segment(id)[id] = zombie
}

// Release frees every entry, closing any fds the caller has not
// already reclaimed is the caller's responsibility; ObjectMap holds
// no fds itself.
func (m *ObjectMap) Release() {
	m.client = make(map[api.ID]api.Object)
	m.server = make(map[api.ID]api.Object)
}

func (m *ObjectMap) segment(id api.ID) map[api.ID]api.Object {
	if id >= api.ServerIDStart {
		return m.server
	}
	return m.client
}
