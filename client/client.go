// File: client/client.go
// Package client
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"fmt"
	"log"

	"golang.org/x/sys/unix"

	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/control"
	"github.com/momentics/wlrt/proto"
	"github.com/momentics/wlrt/wire"
)

// maxSunPathLen mirrors the historical sockaddr_un.sun_path limit
// checked by connect_to_socket in the original implementation.
const maxSunPathLen = 108

// GlobalListener is notified of every currently-known global at
// registration time, then again for every global announced
// afterward, in announcement order.
type GlobalListener func(name uint32, interfaceName string, version uint32)

type globalEntry struct {
	name          uint32
	interfaceName string
	version       uint32
}

// Display is the client-side connection: object map, wire connection,
// global registry, and the well-known display proxy at id 1.
type Display struct {
	conn    *wire.Connection
	objmap  *wire.ObjectMap
	tracer  *control.Tracer
	display *Proxy

	fatal error

	globals   []globalEntry
	listeners []GlobalListener

	idCeiling uint32 // informational: last base announced by `range`
}

// Connect dials (or adopts) the server socket and brings up the
// display object, per spec §4.6.
func Connect(opts ...control.ClientOption) (*Display, error) {
	cfg := control.NewClientConfig(opts...)

	fd := cfg.AdoptFD
	if fd < 0 {
		path, err := cfg.SocketPath()
		if err != nil {
			return nil, err
		}
		if len(path) >= maxSunPathLen {
			return nil, fmt.Errorf("client: socket path %q exceeds %d bytes", path, maxSunPathLen-1)
		}
		sockFD, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
		if err != nil {
			return nil, fmt.Errorf("client: socket: %w", err)
		}
		addr := &unix.SockaddrUnix{Name: path}
		if err := unix.Connect(sockFD, addr); err != nil {
			unix.Close(sockFD)
			return nil, fmt.Errorf("client: connect: %w", err)
		}
		fd = sockFD
	} else if err := unix.SetNonblock(fd, true); err == nil {
		// WAYLAND_SOCKET adoption: caller already owns fd; just make
		// sure it won't leak across exec, matching the original's
		// fcntl(fd, F_SETFD, FD_CLOEXEC) on adoption.
		flags, ferr := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
		if ferr == nil {
			unix.FcntlInt(uintptr(fd), unix.F_SETFD, flags|unix.FD_CLOEXEC)
		}
	}

	conn, err := wire.NewConnection(fd, nil)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	d := &Display{
		conn:   conn,
		objmap: wire.NewObjectMap(),
		tracer: control.NewTracer(),
	}
	d.display = &Proxy{id: api.DisplayID, ifc: proto.DisplayInterface, display: d}
	d.objmap.InsertAt(api.DisplayID, d.display)
	d.display.impl = api.ImplementationFunc(d.displayHandler)
	return d, nil
}

// DisplayProxy returns the well-known id-1 proxy, the factory root
// for bind/sync/frame requests.
func (d *Display) DisplayProxy() *Proxy { return d.display }

// Fatal reports the error that made this display unusable, if any.
func (d *Display) Fatal() error { return d.fatal }

// AddGlobalListener registers l and immediately replays every
// currently-known global to it, in original announcement order,
// before returning — matching wl_display_add_global_listener's
// retroactive replay.
func (d *Display) AddGlobalListener(l GlobalListener) {
	d.listeners = append(d.listeners, l)
	for _, g := range d.globals {
		l(g.name, g.interfaceName, g.version)
	}
}

func (d *Display) marshal(sender api.ID, opcode uint16, msg *api.Message, args []api.Value) ([]api.ID, error) {
	ids, err := proto.Marshal(d.conn, d.objmap, wire.ClientSide, sender, opcode, msg, args)
	if err == nil {
		d.tracer.Log(control.Outgoing, sender, msg, args)
	}
	return ids, err
}

// Flush drains pending output, per spec §5's backpressure primitive.
func (d *Display) Flush() error {
	if d.fatal != nil {
		return d.fatal
	}
	if err := d.conn.Flush(); err != nil {
		d.fatal = err
		return err
	}
	return nil
}

// Close tears the connection down.
func (d *Display) Close() error {
	d.objmap.Release()
	return d.conn.Close()
}

// Iterate services mask, then dispatches every complete frame now
// buffered, per spec §4.6's iterate(mask). A fatal transport or
// protocol error sets d.fatal and is returned; once fatal, every
// subsequent call returns the same error without touching the socket.
func (d *Display) Iterate(mask wire.Mask) error {
	if d.fatal != nil {
		return d.fatal
	}
	if _, err := d.conn.Data(mask); err != nil {
		d.fatal = err
		return err
	}

	for {
		hdr := make([]byte, proto.HeaderSize)
		if !d.conn.Copy(hdr) {
			return nil
		}
		object, size, opcode := proto.DecodeHeader(hdr)
		if size < proto.HeaderSize || size%4 != 0 {
			d.fatal = api.NewProtocolError(api.ErrProtocolInvalid, object, opcode, "malformed frame size")
			return d.fatal
		}
		if d.conn.Pending() < size {
			return nil // incomplete frame; wait for more data
		}

		full := make([]byte, size)
		d.conn.Copy(full)

		obj, ok := d.objmap.Lookup(object)
		if !ok || obj == nil || wire.IsZombie(obj) {
			d.conn.Consume(size)
			continue
		}
		proxy := obj.(*Proxy)
		if int(opcode) >= len(proxy.ifc.Events) {
			d.conn.Consume(size)
			continue
		}
		msg := &proxy.ifc.Events[opcode]
		if proxy.impl == nil {
			d.conn.Consume(size)
			continue
		}

		args, derr := proto.Demarshal(d.conn, d.objmap, msg, full[proto.HeaderSize:])
		d.conn.Consume(size)
		if derr != nil {
			d.fatal = derr
			return derr
		}
		d.tracer.Log(control.Incoming, object, msg, args)

		closure := &proto.Closure{Message: msg, Opcode: opcode, Sender: object, Args: args}
		if err := closure.CreateProxies(d.allocProxy(proxy)); err != nil {
			d.fatal = err
			return err
		}
		handler := proxy.impl.Handler(opcode)
		if err := proto.Invoke(closure, handler, proxy.data); err != nil {
			d.fatal = err
			return err
		}
		if d.fatal != nil {
			// A handler (e.g. the display's own error/invalid_object
			// event) marked the display fatal without returning a Go
			// error. Stop dispatching any further frames already
			// buffered in this pass; callers observe the failure via
			// Fatal(), same as for a fatal event on the next Iterate.
			return nil
		}
	}
}

func (d *Display) allocProxy(factory *Proxy) proto.NewIDAllocator {
	return func(id api.ID, ifc *api.Interface, version uint32) (api.Object, error) {
		p := NewProxy(factory, ifc)
		p.id = id
		if !d.objmap.InsertAt(id, p) {
			return nil, api.NewProtocolError(api.ErrProtocolInvalid, id, 0, "new_id collides with a live object")
		}
		return p, nil
	}
}

func (d *Display) logf(format string, args ...any) {
	log.Printf("client: "+format, args...)
}
