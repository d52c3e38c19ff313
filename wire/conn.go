// File: wire/conn.go
// Package wire
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connection is the framed, bidirectional, fd-carrying transport half
// of the protocol runtime (spec C1). It owns one non-blocking Unix
// domain stream socket plus the in/out byte rings and fd rings above,
// and performs sendmsg/recvmsg with SCM_RIGHTS ancillary data.
//
// Grounded on internal/transport/transport_linux.go's unix.Socket /
// SetsockoptInt / non-blocking send/recv style, adapted from TCP
// batch buffers to a single framed AF_UNIX stream with ancillary fds.

package wire

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Mask is a set of READABLE|WRITABLE interest/readiness bits.
type Mask int

const (
	Readable Mask = 1 << iota
	Writable
)

// defaultRingSize is generous enough for a handful of in-flight
// protocol messages; each direction has its own fixed-size ring, and
// neither grows.
const defaultRingSize = 1 << 16 // 64 KiB

// Connection wraps one connected Unix domain socket fd with framed,
// non-blocking, fd-passing I/O.
type Connection struct {
	fd int

	in     *ByteRing
	out    *ByteRing
	fdsIn  *FDRing
	fdsOut *FDRing

	mask       Mask
	updateMask func(Mask)

	fatal error
}

// NewConnection adopts fd (already connected/accepted) and puts it in
// non-blocking mode. updateMask is invoked whenever the set of
// interest bits the host should poll for changes — in practice, only
// when writability starts or stops being requested, per spec §4.1.
func NewConnection(fd int, updateMask func(Mask)) (*Connection, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("wire: set nonblocking: %w", err)
	}
	return &Connection{
		fd:         fd,
		in:         NewByteRing(defaultRingSize),
		out:        NewByteRing(defaultRingSize),
		fdsIn:      NewFDRing(DefaultFDCapacity),
		fdsOut:     NewFDRing(DefaultFDCapacity),
		mask:       Readable,
		updateMask: updateMask,
	}, nil
}

// FD returns the underlying socket descriptor, for event-loop registration.
func (c *Connection) FD() int { return c.fd }

// Fatal reports the error that made this connection unusable, if any.
func (c *Connection) Fatal() error { return c.fatal }

// Data services mask (whichever of READABLE|WRITABLE the host reports
// ready) with non-blocking I/O. It returns the number of bytes now
// buffered in the in-ring, or a negative value together with a fatal
// error.
func (c *Connection) Data(mask Mask) (int, error) {
	if c.fatal != nil {
		return -1, c.fatal
	}
	if mask&Readable != 0 {
		if err := c.doRead(); err != nil {
			c.fatal = err
			return -1, err
		}
	}
	if mask&Writable != 0 {
		if err := c.doWrite(); err != nil {
			c.fatal = err
			return -1, err
		}
	}
	return c.in.Len(), nil
}

func (c *Connection) doRead() error {
	for {
		oob := make([]byte, unix.CmsgSpace(DefaultFDCapacity*4))
		scratchLen := c.in.Free()
		if scratchLen == 0 {
			return nil
		}
		scratch := make([]byte, scratchLen)
		n, oobn, _, _, err := unix.Recvmsg(c.fd, scratch, oob, 0)
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("wire: recvmsg: %w", err)
		}
		if n == 0 {
			return errors.New("wire: connection closed by peer")
		}
		if err := c.in.Write(scratch[:n]); err != nil {
			return err
		}
		if oobn > 0 {
			if err := c.absorbControl(oob[:oobn]); err != nil {
				return err
			}
		}
		return nil
	}
}

func (c *Connection) absorbControl(oob []byte) error {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return fmt.Errorf("wire: parse control message: %w", err)
	}
	for _, m := range msgs {
		fds, err := unix.ParseUnixRights(&m)
		if err != nil {
			return fmt.Errorf("wire: parse unix rights: %w", err)
		}
		for _, fd := range fds {
			if !c.fdsIn.Push(fd) {
				return errors.New("wire: fd ring overflow")
			}
		}
	}
	return nil
}

func (c *Connection) doWrite() error {
	for c.out.Len() > 0 {
		buf := make([]byte, c.out.Len())
		c.out.Peek(buf)

		var oob []byte
		var sent []int
		for {
			fd, ok := c.fdsOut.Pop()
			if !ok {
				break
			}
			sent = append(sent, fd)
		}
		if len(sent) > 0 {
			oob = unix.UnixRights(sent...)
		}

		n, err := unix.SendmsgN(c.fd, buf, oob, nil, 0)
		if err != nil {
			if err == unix.EAGAIN {
				// Re-queue the fds we popped; they weren't sent.
				for _, fd := range sent {
					c.fdsOut.Push(fd)
				}
				break
			}
			if err == unix.EINTR {
				for _, fd := range sent {
					c.fdsOut.Push(fd)
				}
				continue
			}
			return fmt.Errorf("wire: sendmsg: %w", err)
		}
		c.out.Discard(n)
		if n < len(buf) {
			// Partial write; fds already went out with this send.
			break
		}
	}
	if c.out.Len() == 0 {
		c.setInterest(c.mask &^ Writable)
	}
	return nil
}

func (c *Connection) setInterest(m Mask) {
	if m == c.mask {
		return
	}
	c.mask = m
	if c.updateMask != nil {
		c.updateMask(m)
	}
}

// Copy peeks n bytes from the in-ring without consuming them.
func (c *Connection) Copy(dest []byte) bool { return c.in.Peek(dest) }

// Consume advances the in-ring read cursor by n bytes. n must be a
// multiple of 4 per the frame alignment rule.
func (c *Connection) Consume(n int) {
	if n%4 != 0 {
		panic("wire: consume size must be 4-byte aligned")
	}
	c.in.Discard(n)
}

// Pending returns the number of bytes currently buffered in the in-ring.
func (c *Connection) Pending() int { return c.in.Len() }

// Write enqueues a complete, already-framed message into the out-ring
// and requests writability if output was previously idle.
func (c *Connection) Write(frame []byte) error {
	if err := c.out.Write(frame); err != nil {
		c.fatal = err
		return err
	}
	c.setInterest(c.mask | Writable)
	return nil
}

// WriteFD enqueues fd to accompany a future sendmsg call.
func (c *Connection) WriteFD(fd int) error {
	if !c.fdsOut.Push(fd) {
		return errors.New("wire: out fd ring overflow")
	}
	return nil
}

// TakeFD pops one received fd, for demarshalling an 'h' argument.
// ok is false on fd exhaustion.
func (c *Connection) TakeFD() (fd int, ok bool) { return c.fdsIn.Pop() }

// Flush repeatedly services writability until the out-ring drains or
// an error occurs, per spec §5's backpressure primitive.
func (c *Connection) Flush() error {
	for c.out.Len() > 0 {
		if _, err := c.Data(Writable); err != nil {
			return err
		}
		if c.out.Len() > 0 {
			// The socket took only part of the output; wait until it
			// can accept more before the next pass.
			pfd := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLOUT}}
			if _, err := unix.Poll(pfd, -1); err != nil && err != unix.EINTR {
				c.fatal = fmt.Errorf("wire: poll: %w", err)
				return c.fatal
			}
		}
	}
	return nil
}

// Close closes the socket and any fds still queued in either
// direction that nobody claimed.
func (c *Connection) Close() error {
	c.fdsIn.CloseAll(unix.Close)
	c.fdsOut.CloseAll(unix.Close)
	return unix.Close(c.fd)
}
