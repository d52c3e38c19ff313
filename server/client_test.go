// File: server/client_test.go
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

// newTestClient builds a Client backed by one end of a real socketpair,
// with a small RangeGrant/LowWater so the grant-crossing behaviour is
// reachable with a handful of resources instead of hundreds.
func newTestClient(t *testing.T, rangeGrant, lowWater uint32) (*Client, *wire.Connection) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	peer, err := wire.NewConnection(fds[1], nil)
	if err != nil {
		t.Fatalf("wrap peer: %v", err)
	}
	t.Cleanup(func() { peer.Close() })

	// A real loop, since every post asks the server to update the fd's
	// write interest; the fd itself is never registered with it.
	loop, err := reactor.New()
	if err != nil {
		t.Fatalf("reactor: %v", err)
	}
	t.Cleanup(func() { loop.Close() })

	s := &Server{cfg: &control.ListenConfig{RangeGrant: rangeGrant, LowWater: lowWater}, loop: loop}
	c, err := newClient(s, fds[0])
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	t.Cleanup(func() { c.destroy() })
	return c, peer
}

// countRangeEvents drains every complete frame buffered on peer and
// returns how many were display.range events, in order.
func countRangeEvents(t *testing.T, peer *wire.Connection) []uint32 {
	t.Helper()
	if _, err := peer.Data(wire.Readable); err != nil {
		t.Fatalf("data: %v", err)
	}
	var bases []uint32
	for {
		hdr := make([]byte, proto.HeaderSize)
		if !peer.Copy(hdr) {
			return bases
		}
		object, size, opcode := proto.DecodeHeader(hdr)
		full := make([]byte, size)
		if !peer.Copy(full) {
			return bases
		}
		peer.Consume(size)
		if object == api.DisplayID && opcode == proto.EvRange {
			msg := &proto.DisplayInterface.Events[proto.EvRange]
			args, err := proto.Demarshal(peer, nil, msg, full[proto.HeaderSize:])
			if err != nil {
				t.Fatalf("demarshal range: %v", err)
			}
			bases = append(bases, args[0].U)
		}
	}
}

func TestNewClientDoesNotGrantOnConstruction(t *testing.T) {
	c, peer := newTestClient(t, 4, 2)
	_ = c
	bases := countRangeEvents(t, peer)
	if len(bases) != 0 {
		t.Fatalf("newClient alone should not grant; got %v", bases)
	}
}

// TestAddResourceLowWaterCrossing exercises the post-decrement low
// water check: with RangeGrant=4, LowWater=2, addResource decrements
// idCount BEFORE checking it against LowWater, and grantMore's top-up
// is applied to that already-decremented value, so each grant's += 4
// survives into the next allocation instead of being clobbered.
//
// Starting from an explicit grantMore() (idCount=4, granted=4), ten
// addResource calls cross the low-water mark exactly twice — at the
// 4th call (old=1) and the 8th call (old=1 again after wrapping) —
// yielding exactly 3 range events total (the initial one plus these
// two), not one per remaining allocation past the first crossing.
func TestAddResourceLowWaterCrossing(t *testing.T) {
	c, peer := newTestClient(t, 4, 2)
	c.grantMore() // idCount = 4, granted = 4 (mirrors accept-time grant)

	for i := 0; i < 10; i++ {
		r := &Resource{id: api.ID(100 + i), ifc: proto.CallbackInterface}
		c.addResource(r)
	}

	if err := c.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	bases := countRangeEvents(t, peer)
	want := []uint32{4, 8, 12}
	if len(bases) != len(want) {
		t.Fatalf("want exactly %d range events %v, got %d: %v", len(want), want, len(bases), bases)
	}
	for i, b := range want {
		if bases[i] != b {
			t.Fatalf("range event %d: want base %d, got %d (full: %v)", i, b, bases[i], bases)
		}
	}
}

func TestDestroyResourceRemovesFromObjectMapAndList(t *testing.T) {
	c, _ := newTestClient(t, 256, 64)
	destroyed := false
	r := NewResource(proto.CallbackInterface, nil, func(*Resource) { destroyed = true })
	r.id = 42
	c.addResource(r)

	if _, ok := c.objmap.Lookup(42); !ok {
		t.Fatalf("resource not present in object map after addResource")
	}
	c.destroyResource(r)
	if !destroyed {
		t.Fatalf("destructor did not run")
	}
	if _, ok := c.objmap.Lookup(42); ok {
		t.Fatalf("resource still present in object map after destroyResource")
	}
	for _, have := range c.resources {
		if have == r {
			t.Fatalf("resource still present in resource list after destroyResource")
		}
	}
}

// countDeleteIDEvents drains every complete frame buffered on peer and
// returns the ids of every display.delete_id event seen, in order.
func countDeleteIDEvents(t *testing.T, peer *wire.Connection) []uint32 {
	t.Helper()
	if _, err := peer.Data(wire.Readable); err != nil {
		t.Fatalf("data: %v", err)
	}
	var ids []uint32
	for {
		hdr := make([]byte, proto.HeaderSize)
		if !peer.Copy(hdr) {
			return ids
		}
		object, size, opcode := proto.DecodeHeader(hdr)
		full := make([]byte, size)
		if !peer.Copy(full) {
			return ids
		}
		peer.Consume(size)
		if object == api.DisplayID && opcode == proto.EvDeleteID {
			msg := &proto.DisplayInterface.Events[proto.EvDeleteID]
			args, err := proto.Demarshal(peer, nil, msg, full[proto.HeaderSize:])
			if err != nil {
				t.Fatalf("demarshal delete_id: %v", err)
			}
			ids = append(ids, args[0].U)
		}
	}
}

// TestDestroyResourceClientAllocatedIDPostsDeleteID covers S3: a
// resource whose id lives in the client-allocated segment (e.g. a
// sync/frame callback, minted by the client's own new_id request)
// must have its ZOMBIE slot released by a delete_id event once the
// server tears it down.
func TestDestroyResourceClientAllocatedIDPostsDeleteID(t *testing.T) {
	c, peer := newTestClient(t, 256, 64)
	r := NewResource(proto.CallbackInterface, nil, nil)
	r.id = 7 // well within [1, ServerIDStart)
	c.addResource(r)
	if err := c.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	countRangeEvents(t, peer) // drain the grant addResource posts (the client starts with no ids)

	c.destroyResource(r)
	if err := c.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	ids := countDeleteIDEvents(t, peer)
	if len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("want delete_id(7), got %v", ids)
	}
}

// TestDestroyResourceServerAllocatedIDSkipsDeleteID covers the other
// half: a server-allocated id was never handed out as a ZOMBIE
// placeholder client-side, so no delete_id should be posted for it.
func TestDestroyResourceServerAllocatedIDSkipsDeleteID(t *testing.T) {
	c, peer := newTestClient(t, 256, 64)
	r := NewResource(proto.CallbackInterface, nil, nil)
	r.id = api.ServerIDStart + 1
	c.addResource(r)
	if err := c.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	countRangeEvents(t, peer) // drain the grant addResource posts (the client starts with no ids)

	c.destroyResource(r)
	if err := c.conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	ids := countDeleteIDEvents(t, peer)
	if len(ids) != 0 {
		t.Fatalf("want no delete_id for server-allocated id, got %v", ids)
	}
}
