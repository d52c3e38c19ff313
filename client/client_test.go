// File: client/client_test.go
package client

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/control"
	"github.com/momentics/wlrt/proto"
	"github.com/momentics/wlrt/wire"
)

// newTestDisplay builds a Display over one end of a real socketpair,
// with the other end left as a plain wire.Connection the test drives
// directly, standing in for the server side.
func newTestDisplay(t *testing.T) (*Display, *wire.Connection, *wire.ObjectMap) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	conn, err := wire.NewConnection(fds[0], nil)
	if err != nil {
		t.Fatalf("wrap client conn: %v", err)
	}
	peer, err := wire.NewConnection(fds[1], nil)
	if err != nil {
		t.Fatalf("wrap peer conn: %v", err)
	}
	t.Cleanup(func() { conn.Close(); peer.Close() })

	d := &Display{conn: conn, objmap: wire.NewObjectMap(), tracer: control.NewTracer()}
	d.display = &Proxy{id: api.DisplayID, ifc: proto.DisplayInterface, display: d}
	d.objmap.InsertAt(api.DisplayID, d.display)
	d.display.impl = api.ImplementationFunc(d.displayHandler)

	return d, peer, wire.NewObjectMap()
}

func postGlobal(t *testing.T, peer *wire.Connection, peerObjmap *wire.ObjectMap, name uint32, ifc string, version uint32) {
	t.Helper()
	msg := &proto.DisplayInterface.Events[proto.EvGlobal]
	args := []api.Value{
		{Kind: api.ArgUint, U: name},
		{Kind: api.ArgString, S: ifc},
		{Kind: api.ArgUint, U: version},
	}
	if _, err := proto.Marshal(peer, peerObjmap, wire.ServerSide, api.DisplayID, proto.EvGlobal, msg, args); err != nil {
		t.Fatalf("marshal global: %v", err)
	}
	if err := peer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestIterateDispatchesGlobalEvent(t *testing.T) {
	d, peer, peerObjmap := newTestDisplay(t)
	postGlobal(t, peer, peerObjmap, 7, "wl_echo", 1)

	if err := d.Iterate(wire.Readable); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(d.globals) != 1 {
		t.Fatalf("want 1 global recorded, got %d", len(d.globals))
	}
	g := d.globals[0]
	if g.name != 7 || g.interfaceName != "wl_echo" || g.version != 1 {
		t.Fatalf("unexpected global entry: %+v", g)
	}
}

func TestAddGlobalListenerReplaysKnownGlobals(t *testing.T) {
	d, peer, peerObjmap := newTestDisplay(t)
	postGlobal(t, peer, peerObjmap, 1, "wl_seat", 3)
	postGlobal(t, peer, peerObjmap, 2, "wl_echo", 1)
	if err := d.Iterate(wire.Readable); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(d.globals) != 2 {
		t.Fatalf("want 2 globals buffered before listener registration, got %d", len(d.globals))
	}

	var seen []uint32
	d.AddGlobalListener(func(name uint32, interfaceName string, version uint32) {
		seen = append(seen, name)
	})
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("retroactive replay did not preserve announcement order: %v", seen)
	}

	// A global announced after registration should still reach the
	// listener going forward.
	postGlobal(t, peer, peerObjmap, 3, "wl_shm", 1)
	if err := d.Iterate(wire.Readable); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(seen) != 3 || seen[2] != 3 {
		t.Fatalf("listener did not receive the post-registration global: %v", seen)
	}
}

func TestGlobalRemoveDropsEntry(t *testing.T) {
	d, peer, peerObjmap := newTestDisplay(t)
	postGlobal(t, peer, peerObjmap, 5, "wl_echo", 1)
	if err := d.Iterate(wire.Readable); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(d.globals) != 1 {
		t.Fatalf("setup: want 1 global, got %d", len(d.globals))
	}

	msg := &proto.DisplayInterface.Events[proto.EvGlobalRemove]
	if _, err := proto.Marshal(peer, peerObjmap, wire.ServerSide, api.DisplayID, proto.EvGlobalRemove, msg,
		[]api.Value{{Kind: api.ArgUint, U: 5}}); err != nil {
		t.Fatalf("marshal global_remove: %v", err)
	}
	if err := peer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := d.Iterate(wire.Readable); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(d.globals) != 0 {
		t.Fatalf("want global removed, still have %d", len(d.globals))
	}
}

func TestHandleInvalidObjectSetsFatal(t *testing.T) {
	d, peer, peerObjmap := newTestDisplay(t)
	msg := &proto.DisplayInterface.Events[proto.EvInvalidObject]
	if _, err := proto.Marshal(peer, peerObjmap, wire.ServerSide, api.DisplayID, proto.EvInvalidObject, msg,
		[]api.Value{{Kind: api.ArgUint, U: 999}}); err != nil {
		t.Fatalf("marshal invalid_object: %v", err)
	}
	if err := peer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := d.Iterate(wire.Readable); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if d.Fatal() == nil {
		t.Fatalf("want Fatal set after invalid_object event")
	}
}
