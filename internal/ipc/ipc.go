// Package ipc locates the local socket a running capclip daemon serves the
// clipboard gRPC service on. CLI sub-commands (read/write/status) probe it
// first and fall back to opening the clipboard themselves when it is absent.
package ipc

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

const socketName = "capclip.sock"

// SocketPath returns the path of the IPC socket:
//
//   - $CAPCLIP_SOCKET when set
//   - $XDG_RUNTIME_DIR/capclip.sock on Linux sessions that provide it
//   - $TMPDIR/capclip.sock otherwise (macOS, Windows 10+ AF_UNIX)
func SocketPath() string {
	if s := os.Getenv("CAPCLIP_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, socketName)
	}
	return filepath.Join(os.TempDir(), socketName)
}

// Target returns the gRPC dial target for path.
func Target(path string) string {
	return "unix://" + path
}

// IsRunning reports whether a daemon appears to be listening on path. It
// does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := net.DialTimeout("unix", path, 500*time.Millisecond)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on path, removing a stale socket file left by a
// crashed run. It refuses to replace a socket another daemon is serving.
func Listen(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, fmt.Errorf("ipc: %s already in use", path)
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("ipc: restrict %s: %w", path, err)
	}
	return ln, nil
}
