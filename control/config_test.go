// File: control/config_test.go
package control

import "testing"

func TestNewClientConfigDefaultsDisplayName(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("WAYLAND_SOCKET", "")

	cfg := NewClientConfig()
	if cfg.DisplayName != "wayland-0" {
		t.Fatalf("want default display name wayland-0, got %q", cfg.DisplayName)
	}
	path, err := cfg.SocketPath()
	if err != nil {
		t.Fatalf("SocketPath: %v", err)
	}
	if path != "/run/user/1000/wayland-0" {
		t.Fatalf("unexpected socket path: %q", path)
	}
}

func TestNewClientConfigMissingRuntimeDirErrors(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("WAYLAND_SOCKET", "")

	cfg := NewClientConfig()
	if _, err := cfg.SocketPath(); err == nil {
		t.Fatalf("want error when XDG_RUNTIME_DIR is unset")
	}
}

func TestNewClientConfigAdoptsWaylandSocket(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("WAYLAND_SOCKET", "42")

	cfg := NewClientConfig()
	if cfg.AdoptFD != 42 {
		t.Fatalf("want AdoptFD 42 from WAYLAND_SOCKET, got %d", cfg.AdoptFD)
	}
}

func TestWithAdoptedFDOverridesEnvironment(t *testing.T) {
	t.Setenv("WAYLAND_SOCKET", "42")
	cfg := NewClientConfig(WithAdoptedFD(7))
	if cfg.AdoptFD != 7 {
		t.Fatalf("want explicit option to win, got %d", cfg.AdoptFD)
	}
}

func TestNewListenConfigRejectsInvalidLowWater(t *testing.T) {
	cfg := NewListenConfig(WithRangeGrant(100), WithLowWater(0))
	if cfg.LowWater != DefaultLowWater {
		t.Fatalf("want LowWater reset to default when given 0, got %d", cfg.LowWater)
	}

	cfg = NewListenConfig(WithRangeGrant(100), WithLowWater(100))
	if cfg.LowWater != DefaultLowWater {
		t.Fatalf("want LowWater reset to default when >= RangeGrant, got %d", cfg.LowWater)
	}
}

func TestListenConfigSocketPath(t *testing.T) {
	cfg := NewListenConfig(WithListenRuntimeDir("/tmp/run"), WithListenDisplayName("wayland-9"))
	if got := cfg.SocketPath(); got != "/tmp/run/wayland-9" {
		t.Fatalf("unexpected socket path: %q", got)
	}
}
