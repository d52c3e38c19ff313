// File: wire/fdring_test.go
package wire

import "testing"

func TestFDRingPushPopOrder(t *testing.T) {
	r := NewFDRing(4)
	for _, fd := range []int{11, 22, 33} {
		if !r.Push(fd) {
			t.Fatalf("push %d failed", fd)
		}
	}
	for _, want := range []int{11, 22, 33} {
		got, ok := r.Pop()
		if !ok || got != want {
			t.Fatalf("pop = %d,%v want %d,true", got, ok, want)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Fatalf("pop on empty ring should fail")
	}
}

func TestFDRingFullRejectsPush(t *testing.T) {
	r := NewFDRing(2)
	if !r.Push(1) || !r.Push(2) {
		t.Fatalf("expected first two pushes to succeed")
	}
	if r.Push(3) {
		t.Fatalf("push into full ring should fail")
	}
}

func TestFDRingCloseAll(t *testing.T) {
	r := NewFDRing(4)
	r.Push(1)
	r.Push(2)
	var closed []int
	r.CloseAll(func(fd int) error {
		closed = append(closed, fd)
		return nil
	})
	if len(closed) != 2 || closed[0] != 1 || closed[1] != 2 {
		t.Fatalf("closed = %v, want [1 2]", closed)
	}
	if r.Len() != 0 {
		t.Fatalf("ring not emptied by CloseAll")
	}
}
