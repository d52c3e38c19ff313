// File: client/registry.go
// Package client
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The display's own event handlers: error, global, global_remove,
// delete_id, range, key, invalid_object, invalid_method, no_memory.
// Grounded on display_handle_error/global/global_remove/delete_id in
// the original wayland-client.c.

package client

import (
	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/proto"
	"github.com/momentics/wlrt/wire"
)

func (d *Display) displayHandler(opcode uint16) any {
	switch opcode {
	case proto.EvError:
		return d.handleError
	case proto.EvGlobal:
		return d.handleGlobal
	case proto.EvGlobalRemove:
		return d.handleGlobalRemove
	case proto.EvDeleteID:
		return d.handleDeleteID
	case proto.EvRange:
		return d.handleRange
	case proto.EvKey:
		return d.handleKey
	case proto.EvInvalidObject:
		return d.handleInvalidObject
	case proto.EvInvalidMethod:
		return d.handleInvalidMethod
	case proto.EvNoMemory:
		return d.handleNoMemory
	default:
		return nil
	}
}

func (d *Display) handleError(_ any, object api.Object, code uint32, message string) error {
	target := api.ID(0)
	if object != nil {
		target = object.ID()
	}
	d.fatal = api.NewProtocolError(api.ErrProtocolInvalid, target, uint16(code), message)
	return nil
}

func (d *Display) handleGlobal(_ any, name uint32, interfaceName string, version uint32) error {
	d.globals = append(d.globals, globalEntry{name: name, interfaceName: interfaceName, version: version})
	for _, l := range d.listeners {
		l(name, interfaceName, version)
	}
	return nil
}

func (d *Display) handleGlobalRemove(_ any, name uint32) error {
	for i, g := range d.globals {
		if g.name == name {
			d.globals = append(d.globals[:i], d.globals[i+1:]...)
			break
		}
	}
	return nil
}

func (d *Display) handleDeleteID(_ any, id uint32) error {
	obj, ok := d.objmap.Lookup(id)
	if !ok || !wire.IsZombie(obj) {
		d.logf("server sent delete_id for live object %d", id)
		return nil
	}
	d.objmap.Remove(id)
	return nil
}

func (d *Display) handleRange(_ any, base uint32) error {
	d.idCeiling = base
	return nil
}

func (d *Display) handleKey(_ any, key uint32, time uint32) error {
	obj, ok := d.objmap.Lookup(key)
	if !ok {
		return nil
	}
	cb, isCallback := obj.(*Proxy)
	if !isCallback || cb.impl == nil {
		return nil
	}
	handler, _ := cb.impl.Handler(0).(func(any, uint32) error)
	if handler != nil {
		if err := handler(cb.data, time); err != nil {
			return err
		}
	}
	cb.Destroy()
	return nil
}

func (d *Display) handleInvalidObject(_ any, id uint32) error {
	d.fatal = api.NewProtocolError(api.ErrProtocolInvalid, id, 0, "invalid object")
	return nil
}

func (d *Display) handleInvalidMethod(_ any, id uint32, opcode uint32) error {
	d.fatal = api.NewProtocolError(api.ErrProtocolInvalid, id, uint16(opcode), "invalid method")
	return nil
}

func (d *Display) handleNoMemory(_ any) error {
	d.fatal = api.NewProtocolError(api.ErrOutOfMemory, 0, 0, "")
	return nil
}
