// File: wire/ring.go
// Package wire implements the connection's framed byte transport.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ByteRing is a bounded circular byte buffer with monotonic head/tail
// cursors, sized to a power of two so indexing is a mask instead of a
// modulo. Shaped after the corpus's lock-free RingBuffer[T]
// (internal/concurrency/ring.go) but specialized to bytes and to a
// single-threaded cooperative caller: no atomics, since spec §5 rules
// out concurrent access to a connection's buffers.

package wire

import "fmt"

// ByteRing is the in-ring or out-ring half of a Connection's buffers.
type ByteRing struct {
	data []byte
	mask uint64
	head uint64
	tail uint64
}

// NewByteRing allocates a ring of the given power-of-two capacity.
func NewByteRing(size uint64) *ByteRing {
	if size == 0 || size&(size-1) != 0 {
		panic("wire: ring size must be a power of two")
	}
	return &ByteRing{data: make([]byte, size), mask: size - 1}
}

// Len returns the number of buffered bytes.
func (r *ByteRing) Len() int { return int(r.tail - r.head) }

// Cap returns the fixed ring capacity.
func (r *ByteRing) Cap() int { return len(r.data) }

// Free returns the number of bytes that can still be written.
func (r *ByteRing) Free() int { return len(r.data) - r.Len() }

// Write appends p to the tail. It fails without writing anything if p
// would overflow the ring; the caller treats that as a fatal
// connection error per spec §4.1.
func (r *ByteRing) Write(p []byte) error {
	if len(p) > r.Free() {
		return fmt.Errorf("wire: out-ring overflow: need %d, have %d free", len(p), r.Free())
	}
	for i, b := range p {
		r.data[(r.tail+uint64(i))&r.mask] = b
	}
	r.tail += uint64(len(p))
	return nil
}

// Peek copies len(dst) bytes starting at head into dst without
// consuming them. ok is false if fewer bytes are buffered than
// requested.
func (r *ByteRing) Peek(dst []byte) (ok bool) {
	if len(dst) > r.Len() {
		return false
	}
	for i := range dst {
		dst[i] = r.data[(r.head+uint64(i))&r.mask]
	}
	return true
}

// Discard advances the head cursor by n bytes, consuming them. It
// panics if n exceeds the buffered length — a programming error in the
// caller, since Discard is only ever called with a size already
// confirmed present via Peek/Len.
func (r *ByteRing) Discard(n int) {
	if n < 0 || n > r.Len() {
		panic("wire: discard exceeds buffered length")
	}
	r.head += uint64(n)
}
