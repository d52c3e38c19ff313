// File: reactor/reactor.go
// Package reactor implements the event loop (spec C8): an fd-readiness
// multiplexor with one callback per registered descriptor, dispatched
// strictly sequentially from a single goroutine.
//
// Grounded on reactor/reactor.go + reactor/epoll_reactor.go from the
// teacher, collapsed from a concurrency-safe sync.Map registry (the
// teacher serves many reactor goroutines) to a plain map, since spec
// §5 rules out concurrent access to a single display's loop.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

// Events is a set of READABLE|WRITABLE interest/readiness bits.
type Events int

const (
	Read Events = 1 << iota
	Write
	Error
)

// Callback is invoked with the fd and the readiness bits that fired.
type Callback func(fd int, ev Events)

// Loop multiplexes readiness across registered fds and dispatches to
// their callbacks, one fd at a time, in the order the poller reports
// them.
type Loop interface {
	// Add registers fd for the given interest set.
	Add(fd int, interest Events, cb Callback) error
	// Modify changes fd's interest set (e.g. to add/drop WRITABLE).
	Modify(fd int, interest Events) error
	// Remove stops watching fd.
	Remove(fd int) error
	// Dispatch blocks up to timeoutMs (negative blocks indefinitely)
	// and runs callbacks for whatever fds are ready at least once.
	Dispatch(timeoutMs int) error
	// Close releases the loop's own resources (e.g. the epoll fd).
	Close() error
}
