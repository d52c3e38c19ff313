// File: proto/display.go
// Package proto
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The core display interface (id 1 on every connection): the one
// interface this runtime ships with directly, everything else being
// an out-of-scope schema-generated collaborator per spec §1. Hand
// authored here in the shape a generator would emit, grounded on the
// opcode table in the real wayland.xml core protocol.

package proto

import "github.com/momentics/wlrt/api"

// Display request opcodes.
const (
	OpSync  uint16 = 0
	OpBind  uint16 = 1
	OpFrame uint16 = 2
)

// Display event opcodes.
const (
	EvError         uint16 = 0
	EvGlobal        uint16 = 1
	EvGlobalRemove  uint16 = 2
	EvDeleteID      uint16 = 3
	EvRange         uint16 = 4
	EvKey           uint16 = 5
	EvInvalidObject uint16 = 6
	EvInvalidMethod uint16 = 7
	EvNoMemory      uint16 = 8
)

// CallbackInterface describes the one-shot callback object returned
// by sync and frame: a single event, "done", with no arguments beyond
// the serial baked into its invocation.
var CallbackInterface = &api.Interface{
	Name:    "wl_callback",
	Version: 1,
	Events: []api.Message{
		{Name: "done", Signature: "u"},
	},
}

// DisplayInterface is the well-known interface of object id 1.
var DisplayInterface = &api.Interface{
	Name:    "wl_display",
	Version: 1,
	Methods: []api.Message{
		{Name: "sync", Signature: "n", Types: []*api.Interface{CallbackInterface}},
		{Name: "bind", Signature: "usun", Types: []*api.Interface{nil, nil, nil, nil}},
		{Name: "frame", Signature: "n", Types: []*api.Interface{CallbackInterface}},
	},
	Events: []api.Message{
		{Name: "error", Signature: "ous", Types: []*api.Interface{nil, nil, nil}},
		{Name: "global", Signature: "usu"},
		{Name: "global_remove", Signature: "u"},
		{Name: "delete_id", Signature: "u"},
		{Name: "range", Signature: "u"},
		{Name: "key", Signature: "uu"},
		{Name: "invalid_object", Signature: "u"},
		{Name: "invalid_method", Signature: "uu"},
		{Name: "no_memory", Signature: ""},
	},
}
