// File: wire/objmap_test.go
package wire

import (
	"testing"

	"github.com/momentics/wlrt/api"
)

type fakeObject struct {
	id  api.ID
	ifc *api.Interface
}

func (f *fakeObject) ID() api.ID                { return f.id }
func (f *fakeObject) Interface() *api.Interface { return f.ifc }

func TestObjectMapInsertNewSegments(t *testing.T) {
	m := NewObjectMap()
	clientObj := &fakeObject{}
	id := m.InsertNew(ClientSide, clientObj)
	if id >= api.ServerIDStart {
		t.Fatalf("client-side id %d should be below ServerIDStart", id)
	}

	serverObj := &fakeObject{}
	sid := m.InsertNew(ServerSide, serverObj)
	if sid < api.ServerIDStart {
		t.Fatalf("server-side id %d should be at or above ServerIDStart", sid)
	}
}

func TestObjectMapLookupAndRemove(t *testing.T) {
	m := NewObjectMap()
	obj := &fakeObject{}
	id := m.InsertNew(ClientSide, obj)

	got, ok := m.Lookup(id)
	if !ok || got != obj {
		t.Fatalf("lookup failed to find inserted object")
	}

	m.Remove(id)
	if _, ok := m.Lookup(id); ok {
		t.Fatalf("object still present after Remove")
	}
}

func TestObjectMapZombieAllowsReuseOnce(t *testing.T) {
	m := NewObjectMap()
	obj := &fakeObject{}
	id := m.InsertNew(ClientSide, obj)

	m.Zombie(id)
	got, ok := m.Lookup(id)
	if !ok || !IsZombie(got) {
		t.Fatalf("expected zombie sentinel at id %d", id)
	}

	// A zombie slot is not "live", so InsertAt accepts a fresh object at
	// the same id even before a delete_id acknowledgement clears it.
	reused := &fakeObject{}
	if !m.InsertAt(id, reused) {
		t.Fatalf("InsertAt should accept a zombie slot")
	}
	if m.InsertAt(id, &fakeObject{}) {
		t.Fatalf("InsertAt should reject overwriting the now-live slot")
	}
	if got, _ := m.Lookup(id); got != reused {
		t.Fatalf("lookup returned %v, want the reused object", got)
	}
}

func TestObjectMapInsertAtRejectsLiveOverwrite(t *testing.T) {
	m := NewObjectMap()
	obj := &fakeObject{}
	id := api.ID(42)
	if !m.InsertAt(id, obj) {
		t.Fatalf("first insert at a free id should succeed")
	}
	if m.InsertAt(id, &fakeObject{}) {
		t.Fatalf("insert at a live id should be rejected")
	}
}
