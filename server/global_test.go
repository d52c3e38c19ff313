// File: server/global_test.go
package server

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/control"
	"github.com/momentics/wlrt/proto"
	"github.com/momentics/wlrt/reactor"
	"github.com/momentics/wlrt/wire"
)

// drainGlobals reads every currently buffered frame from peer and
// returns the names of every global event seen, in order.
func drainGlobals(t *testing.T, peer *wire.Connection) []uint32 {
	t.Helper()
	if _, err := peer.Data(wire.Readable); err != nil {
		t.Fatalf("data: %v", err)
	}
	var names []uint32
	for {
		hdr := make([]byte, proto.HeaderSize)
		if !peer.Copy(hdr) {
			return names
		}
		object, size, opcode := proto.DecodeHeader(hdr)
		full := make([]byte, size)
		if !peer.Copy(full) {
			return names
		}
		peer.Consume(size)
		if object != api.DisplayID || opcode != proto.EvGlobal {
			continue
		}
		msg := &proto.DisplayInterface.Events[proto.EvGlobal]
		args, err := proto.Demarshal(peer, nil, msg, full[proto.HeaderSize:])
		if err != nil {
			t.Fatalf("demarshal global: %v", err)
		}
		names = append(names, args[0].U)
	}
}

func TestAnnounceToSendsEveryGlobalInRegistrationOrder(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	peer, err := wire.NewConnection(fds[1], nil)
	if err != nil {
		t.Fatalf("wrap peer: %v", err)
	}
	defer peer.Close()

	loop, err := reactor.New()
	if err != nil {
		t.Fatalf("reactor: %v", err)
	}
	defer loop.Close()

	s := &Server{cfg: &control.ListenConfig{RangeGrant: 256, LowWater: 64}, loop: loop, clients: make(map[int]*Client), nextGlobalName: 1}
	c, err := newClient(s, fds[0])
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	defer c.destroy()

	s.AddGlobal(proto.CallbackInterface, 1, nil, nil)
	s.AddGlobal(proto.DisplayInterface, 1, nil, nil)

	s.announceTo(c)
	if err := c.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	names := drainGlobals(t, peer)
	if len(names) != 2 || names[0] != 1 || names[1] != 2 {
		t.Fatalf("want globals announced in registration order [1 2], got %v", names)
	}
}

func TestRemoveGlobalStopsFutureAnnouncements(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	peer, err := wire.NewConnection(fds[1], nil)
	if err != nil {
		t.Fatalf("wrap peer: %v", err)
	}
	defer peer.Close()

	s := &Server{cfg: &control.ListenConfig{RangeGrant: 256, LowWater: 64}, clients: make(map[int]*Client), nextGlobalName: 1}
	c, err := newClient(s, fds[0])
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	defer c.destroy()

	g := s.AddGlobal(proto.CallbackInterface, 1, nil, nil)
	s.RemoveGlobal(g)

	s.announceTo(c)
	names := drainGlobals(t, peer)
	if len(names) != 0 {
		t.Fatalf("want no globals announced after removal, got %v", names)
	}
	if s.findGlobal(g.Name()) != nil {
		t.Fatalf("want findGlobal to fail after RemoveGlobal")
	}
}
