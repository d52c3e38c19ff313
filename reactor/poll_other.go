// File: reactor/poll_other.go
// Package reactor
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable fallback for platforms without epoll, using unix.Poll.
// Same sequential-dispatch contract as the Linux loop, just O(n) per
// wait instead of O(ready).

//go:build !linux

package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type pollLoop struct {
	fds       map[int]Events
	callbacks map[int]Callback
}

// New builds the portable poll(2)-based Loop.
func New() (Loop, error) {
	return &pollLoop{fds: make(map[int]Events), callbacks: make(map[int]Callback)}, nil
}

func toPollEvents(e Events) int16 {
	var out int16
	if e&Read != 0 {
		out |= unix.POLLIN
	}
	if e&Write != 0 {
		out |= unix.POLLOUT
	}
	return out
}

func (l *pollLoop) Add(fd int, interest Events, cb Callback) error {
	l.fds[fd] = interest
	l.callbacks[fd] = cb
	return nil
}

func (l *pollLoop) Modify(fd int, interest Events) error {
	if _, ok := l.fds[fd]; !ok {
		return fmt.Errorf("reactor: modify unknown fd %d", fd)
	}
	l.fds[fd] = interest
	return nil
}

func (l *pollLoop) Remove(fd int) error {
	delete(l.fds, fd)
	delete(l.callbacks, fd)
	return nil
}

func (l *pollLoop) Dispatch(timeoutMs int) error {
	pfds := make([]unix.PollFd, 0, len(l.fds))
	order := make([]int, 0, len(l.fds))
	for fd, interest := range l.fds {
		pfds = append(pfds, unix.PollFd{Fd: int32(fd), Events: toPollEvents(interest)})
		order = append(order, fd)
	}
	n, err := unix.Poll(pfds, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return fmt.Errorf("reactor: poll: %w", err)
	}
	if n == 0 {
		return nil
	}
	for i, pfd := range pfds {
		if pfd.Revents == 0 {
			continue
		}
		cb, ok := l.callbacks[order[i]]
		if !ok {
			continue
		}
		var got Events
		if pfd.Revents&unix.POLLIN != 0 {
			got |= Read
		}
		if pfd.Revents&unix.POLLOUT != 0 {
			got |= Write
		}
		if pfd.Revents&(unix.POLLERR|unix.POLLHUP) != 0 {
			got |= Error
		}
		cb(order[i], got)
	}
	return nil
}

func (l *pollLoop) Close() error { return nil }
