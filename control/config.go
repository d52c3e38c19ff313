// File: control/config.go
// Package control
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Grounded on control/config.go's ConfigStore and client/client.go's
// ClientOption functional-option pattern, collapsed to the two
// configuration surfaces this runtime needs: where the client
// connects, and where the server listens.

package control

import (
	"fmt"
	"os"
)

// DefaultRangeGrant is the number of server-segment ids granted to a
// client at a time.
const DefaultRangeGrant = 256

// DefaultLowWater is the granted-id count at which the server tops up
// a client's range, per spec §4.7 / §9 open question (c): must be
// ≥1 and < DefaultRangeGrant.
const DefaultLowWater = 64

// ClientConfig controls how Connect resolves and dials the server
// socket.
type ClientConfig struct {
	// RuntimeDir overrides XDG_RUNTIME_DIR; empty means read the
	// environment.
	RuntimeDir string
	// DisplayName overrides WAYLAND_DISPLAY; empty means read the
	// environment, defaulting to "wayland-0".
	DisplayName string
	// AdoptFD, if >= 0, is used as an already-connected socket
	// instead of resolving RuntimeDir/DisplayName, mirroring
	// WAYLAND_SOCKET adoption.
	AdoptFD int
}

// ClientOption configures a ClientConfig.
type ClientOption func(*ClientConfig)

// WithRuntimeDir overrides XDG_RUNTIME_DIR resolution.
func WithRuntimeDir(dir string) ClientOption {
	return func(c *ClientConfig) { c.RuntimeDir = dir }
}

// WithDisplayName overrides WAYLAND_DISPLAY resolution.
func WithDisplayName(name string) ClientOption {
	return func(c *ClientConfig) { c.DisplayName = name }
}

// WithAdoptedFD makes Connect use fd directly instead of dialing.
func WithAdoptedFD(fd int) ClientOption {
	return func(c *ClientConfig) { c.AdoptFD = fd }
}

// NewClientConfig builds a ClientConfig from the environment, then
// applies opts.
func NewClientConfig(opts ...ClientOption) *ClientConfig {
	cfg := &ClientConfig{
		RuntimeDir:  os.Getenv("XDG_RUNTIME_DIR"),
		DisplayName: os.Getenv("WAYLAND_DISPLAY"),
		AdoptFD:     -1,
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = "wayland-0"
	}
	if sock := os.Getenv("WAYLAND_SOCKET"); sock != "" {
		if fd, err := parseFD(sock); err == nil {
			cfg.AdoptFD = fd
		}
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func parseFD(s string) (int, error) {
	var fd int
	_, err := fmt.Sscanf(s, "%d", &fd)
	return fd, err
}

// SocketPath returns the path Connect should dial, or an error if
// RuntimeDir is unset (required on the client per spec §6).
func (c *ClientConfig) SocketPath() (string, error) {
	if c.RuntimeDir == "" {
		return "", fmt.Errorf("control: XDG_RUNTIME_DIR is not set")
	}
	return c.RuntimeDir + "/" + c.DisplayName, nil
}

// ListenConfig controls where the server binds its socket(s).
type ListenConfig struct {
	RuntimeDir  string
	DisplayName string
	RangeGrant  uint32
	LowWater    uint32
}

// ListenOption configures a ListenConfig.
type ListenOption func(*ListenConfig)

// WithListenRuntimeDir overrides XDG_RUNTIME_DIR resolution for Listen.
func WithListenRuntimeDir(dir string) ListenOption {
	return func(c *ListenConfig) { c.RuntimeDir = dir }
}

// WithListenDisplayName overrides WAYLAND_DISPLAY resolution for Listen.
func WithListenDisplayName(name string) ListenOption {
	return func(c *ListenConfig) { c.DisplayName = name }
}

// WithRangeGrant overrides the per-grant id block size.
func WithRangeGrant(n uint32) ListenOption {
	return func(c *ListenConfig) { c.RangeGrant = n }
}

// WithLowWater overrides the low-water mark that triggers a new grant.
func WithLowWater(n uint32) ListenOption {
	return func(c *ListenConfig) { c.LowWater = n }
}

// NewListenConfig builds a ListenConfig from the environment, falling
// back to "." with a warning if XDG_RUNTIME_DIR is unset, matching
// the original server's behaviour.
func NewListenConfig(opts ...ListenOption) *ListenConfig {
	cfg := &ListenConfig{
		RuntimeDir:  os.Getenv("XDG_RUNTIME_DIR"),
		DisplayName: os.Getenv("WAYLAND_DISPLAY"),
		RangeGrant:  DefaultRangeGrant,
		LowWater:    DefaultLowWater,
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = "wayland-0"
	}
	if cfg.RuntimeDir == "" {
		fmt.Fprintln(os.Stderr, "control: XDG_RUNTIME_DIR not set, falling back to \".\"")
		cfg.RuntimeDir = "."
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.LowWater == 0 || cfg.LowWater >= cfg.RangeGrant {
		cfg.LowWater = DefaultLowWater
	}
	return cfg
}

// SocketPath returns the path Listen should bind.
func (c *ListenConfig) SocketPath() string {
	return c.RuntimeDir + "/" + c.DisplayName
}
