// File: reactor/epoll_linux.go
// Package reactor
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const maxEpollEvents = 128

// epollLoop is the Linux epoll-backed Loop.
type epollLoop struct {
	epfd      int
	callbacks map[int]Callback
}

// New builds a Loop. On Linux this is epoll; on other platforms the
// build-tagged poll_other.go provides a poll(2)-based New instead.
func New() (Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	return &epollLoop{epfd: epfd, callbacks: make(map[int]Callback)}, nil
}

func toEpollEvents(e Events) uint32 {
	var out uint32
	if e&Read != 0 {
		out |= unix.EPOLLIN
	}
	if e&Write != 0 {
		out |= unix.EPOLLOUT
	}
	return out
}

func (l *epollLoop) Add(fd int, interest Events, cb Callback) error {
	ev := unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("reactor: epoll_ctl add: %w", err)
	}
	l.callbacks[fd] = cb
	return nil
}

func (l *epollLoop) Modify(fd int, interest Events) error {
	ev := unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("reactor: epoll_ctl mod: %w", err)
	}
	return nil
}

func (l *epollLoop) Remove(fd int) error {
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("reactor: epoll_ctl del: %w", err)
	}
	delete(l.callbacks, fd)
	return nil
}

func (l *epollLoop) Dispatch(timeoutMs int) error {
	var events [maxEpollEvents]unix.EpollEvent
	n, err := unix.EpollWait(l.epfd, events[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return fmt.Errorf("reactor: epoll_wait: %w", err)
	}
	for i := 0; i < n; i++ {
		ev := events[i]
		fd := int(ev.Fd)
		cb, ok := l.callbacks[fd]
		if !ok {
			continue
		}
		var got Events
		if ev.Events&unix.EPOLLIN != 0 {
			got |= Read
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			got |= Write
		}
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			got |= Error
		}
		cb(fd, got)
	}
	return nil
}

func (l *epollLoop) Close() error {
	return unix.Close(l.epfd)
}
