package localserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/yndnr/respkv-go/internal/server/redisserver"
)

// DefaultSocketMode is the permission of a newly created socket.
const DefaultSocketMode os.FileMode = 0o600

var (
	// ErrSocketInUse is returned when another process answers on the path.
	ErrSocketInUse = errors.New("localserver: socket in use")

	// ErrNotSocket is returned when the path exists and is not a socket.
	ErrNotSocket = errors.New("localserver: path exists and is not a socket")
)

// Server serves RESP on a Unix domain socket.
type Server struct {
	path    string
	mode    os.FileMode
	srv     *redisserver.Server
	running atomic.Bool
}

// New creates a local server at socketPath that serves with srv.
// mode zero means DefaultSocketMode.
func New(socketPath string, mode os.FileMode, srv *redisserver.Server) *Server {
	if mode == 0 {
		mode = DefaultSocketMode
	}
	return &Server{
		path: socketPath,
		mode: mode,
		srv:  srv,
	}
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// ListenAndServe creates the socket and serves until ctx is cancelled or
// Shutdown is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := Listen(s.path, s.mode)
	if err != nil {
		return err
	}
	s.running.Store(true)
	return s.srv.Serve(ctx, ln)
}

// Shutdown closes the socket and every open local connection.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if s.running.Swap(false) {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}
	return err
}

// Listen creates a Unix socket at path with the given permissions,
// replacing a stale socket file.
//
// The socket is bound inside a fresh 0700 directory next to path, given
// its mode there, and renamed into place, so it is never reachable with
// the permissions the umask would give it. The listener does not unlink
// path on Close; Server.Shutdown removes it.
func Listen(path string, mode os.FileMode) (net.Listener, error) {
	if err := removeStale(path); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(filepath.Dir(path), ".respkv-")
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	defer os.RemoveAll(dir)

	tmp := filepath.Join(dir, "s")
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: tmp, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	ln.SetUnlinkOnClose(false)

	if err := os.Chmod(tmp, mode); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return &listener{UnixListener: ln, addr: &net.UnixAddr{Name: path, Net: "unix"}}, nil
}

// bindSuffix is the longest name Listen binds under the socket's directory.
const bindSuffix = "/.respkv-4294967295/s"

// BindPathLen returns the longest socket path Listen binds for path, for
// checking against the system's sun_path limit.
func BindPathLen(path string) int {
	return max(len(path), len(filepath.Dir(path))+len(bindSuffix))
}

// listener reports the published path rather than the one it was bound to.
type listener struct {
	*net.UnixListener
	addr net.Addr
}

func (l *listener) Addr() net.Addr { return l.addr }

func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%w: %s", ErrNotSocket, path)
	}

	conn, err := net.DialTimeout("unix", path, 100*time.Millisecond)
	if err == nil {
		_ = conn.Close()
		return fmt.Errorf("%w: %s", ErrSocketInUse, path)
	}
	return os.Remove(path)
}
