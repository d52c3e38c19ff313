// File: server/server.go
// Package server
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"

	"github.com/eapache/queue"
	"golang.org/x/sys/unix"

	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/control"
	"github.com/momentics/wlrt/proto"
	"github.com/momentics/wlrt/reactor"
	"github.com/momentics/wlrt/wire"
)

// Server listens on one Unix domain socket, accepts clients, and
// dispatches their requests, single-threaded, from Serve's calling
// goroutine.
type Server struct {
	cfg        *control.ListenConfig
	tracer     *control.Tracer
	loop       reactor.Loop
	listenFD   int
	socketPath string

	globals        []*Global
	nextGlobalName uint32
	frameList      *queue.Queue

	clients map[int]*Client // keyed by connection fd
}

// Listen creates the listening socket under cfg's runtime directory
// and registers it with a fresh reactor loop.
func Listen(opts ...control.ListenOption) (*Server, error) {
	cfg := control.NewListenConfig(opts...)
	path := cfg.SocketPath()

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("server: socket: %w", err)
	}
	unix.Unlink(path)
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("server: bind: %w", err)
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("server: listen: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("server: set nonblocking: %w", err)
	}

	loop, err := reactor.New()
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	s := &Server{
		cfg:            cfg,
		tracer:         control.NewTracer(),
		loop:           loop,
		listenFD:       fd,
		socketPath:     path,
		nextGlobalName: 1,
		frameList:      queue.New(),
		clients:        make(map[int]*Client),
	}
	if err := loop.Add(fd, reactor.Read, s.onListenReady); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return s, nil
}

// Serve runs the reactor loop until Dispatch returns an error, and
// returns that error; it has no clean-stop path. Once Close has closed
// the loop, the next Dispatch fails and Serve returns its error.
func (s *Server) Serve() error {
	for {
		if err := s.loop.Dispatch(-1); err != nil {
			return err
		}
	}
}

// Close shuts down every client, stops listening, and unlinks the
// socket path.
func (s *Server) Close() error {
	for _, c := range s.clients {
		c.destroy()
	}
	s.loop.Remove(s.listenFD)
	s.loop.Close()
	unix.Close(s.listenFD)
	return unix.Unlink(s.socketPath)
}

func (s *Server) onListenReady(_ int, _ reactor.Events) {
	for {
		fd, _, err := unix.Accept(s.listenFD)
		if err != nil {
			return // EAGAIN or transient accept error; wait for next readiness
		}
		c, err := newClient(s, fd)
		if err != nil {
			unix.Close(fd)
			continue
		}
		s.clients[fd] = c
		s.loop.Add(fd, reactor.Read, s.onClientReady)

		c.grantMore()
		s.announceTo(c)
	}
}

func (s *Server) updateInterest(fd int, mask wire.Mask) {
	var ev reactor.Events
	if mask&wire.Readable != 0 {
		ev |= reactor.Read
	}
	if mask&wire.Writable != 0 {
		ev |= reactor.Write
	}
	s.loop.Modify(fd, ev)
}

func (s *Server) onClientReady(fd int, ev reactor.Events) {
	c, ok := s.clients[fd]
	if !ok {
		return
	}
	var mask wire.Mask
	if ev&reactor.Read != 0 {
		mask |= wire.Readable
	}
	if ev&reactor.Write != 0 {
		mask |= wire.Writable
	}
	if err := s.dispatchClient(c, mask); err != nil {
		s.dropClient(c)
	}
}

func (s *Server) dropClient(c *Client) {
	delete(s.clients, c.conn.FD())
	s.loop.Remove(c.conn.FD())
	c.destroy()
}

// dispatchClient services mask on c's connection and processes every
// complete frame now buffered, replying invalid_object/invalid_method
// /no_memory per spec §4.7 instead of tearing the connection down for
// per-client protocol violations.
func (s *Server) dispatchClient(c *Client, mask wire.Mask) error {
	if c.fatal != nil {
		return c.fatal
	}
	if _, err := c.conn.Data(mask); err != nil {
		c.fatal = err
		return err
	}

	for {
		hdr := make([]byte, proto.HeaderSize)
		if !c.conn.Copy(hdr) {
			return nil
		}
		object, size, opcode := proto.DecodeHeader(hdr)
		if size < proto.HeaderSize || size%4 != 0 {
			c.fatal = api.NewProtocolError(api.ErrProtocolInvalid, object, opcode, "malformed frame size")
			return c.fatal
		}
		if c.conn.Pending() < size {
			return nil
		}

		full := make([]byte, size)
		c.conn.Copy(full)
		c.conn.Consume(size)

		obj, ok := c.objmap.Lookup(object)
		if !ok || obj == nil {
			s.replyInvalidObject(c, object)
			continue
		}
		if wire.IsZombie(obj) {
			continue
		}
		res := obj.(*Resource)
		if int(opcode) >= len(res.ifc.Methods) {
			s.replyInvalidMethod(c, object, opcode)
			continue
		}
		msg := &res.ifc.Methods[opcode]

		args, derr := proto.Demarshal(c.conn, c.objmap, msg, full[proto.HeaderSize:])
		if derr != nil {
			if errors.Is(derr, api.ErrOutOfMemory) {
				s.replyNoMemory(c)
			} else {
				s.replyInvalidMethod(c, object, opcode)
			}
			continue
		}
		c.tracer.Log(control.Incoming, object, msg, args)

		if res == c.display {
			s.handleDisplayRequest(c, opcode, args)
			continue
		}

		closure := &proto.Closure{Message: msg, Opcode: opcode, Sender: object, Args: args}
		if err := closure.CreateProxies(c.allocResource(res)); err != nil {
			s.replyInvalidMethod(c, object, opcode)
			continue
		}
		if res.impl == nil {
			continue
		}
		handler := res.impl.Handler(opcode)
		if err := proto.Invoke(closure, handler, res); err != nil {
			return err
		}
	}
}

func (s *Server) replyInvalidObject(c *Client, id api.ID) {
	msg := globalEvent(proto.EvInvalidObject)
	_ = c.post(api.DisplayID, proto.EvInvalidObject, msg, []api.Value{{Kind: api.ArgUint, U: id}})
}

func (s *Server) replyInvalidMethod(c *Client, id api.ID, opcode uint16) {
	msg := globalEvent(proto.EvInvalidMethod)
	_ = c.post(api.DisplayID, proto.EvInvalidMethod, msg, []api.Value{
		{Kind: api.ArgUint, U: id}, {Kind: api.ArgUint, U: uint32(opcode)},
	})
}

func (s *Server) replyNoMemory(c *Client) {
	msg := globalEvent(proto.EvNoMemory)
	_ = c.post(api.DisplayID, proto.EvNoMemory, msg, nil)
}

func (c *Client) allocResource(factory *Resource) proto.NewIDAllocator {
	return func(id api.ID, ifc *api.Interface, version uint32) (api.Object, error) {
		r := &Resource{id: id, ifc: ifc}
		c.addResource(r)
		return r, nil
	}
}
