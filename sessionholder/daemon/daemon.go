package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// socketPerm is the file permission mode for the UNIX domain socket.
const socketPerm = 0o600

// SocketPath returns the default per-user socket location.
func SocketPath() string {
	return fmt.Sprintf("/run/user/%d/chacrabd.sock", os.Getuid())
}

// getCred returns the credentials of the remote end of a unix socket
// connection, via SO_PEERCRED.
func getCred(conn net.Conn) (*unix.Ucred, error) {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("connection is not a *net.UnixConn: got %T", conn)
	}

	rawConn, err := unixConn.SyscallConn()
	if err != nil {
		return nil, err
	}

	var (
		ucred    *unix.Ucred
		ucredErr error
	)

	err = rawConn.Control(func(fd uintptr) {
		ucred, ucredErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil {
		return nil, err
	}

	if ucredErr != nil {
		return nil, ucredErr
	}

	return ucred, nil
}

// uidCheckingListener only accepts connections from a single allowed UID;
// every other connection is silently closed.
type uidCheckingListener struct {
	net.Listener
	allowedUID int
}

func (l *uidCheckingListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}

		ucred, err := getCred(conn)
		if err != nil {
			log.Printf("uid check failed: %v", err)
			_ = conn.Close()

			continue
		}

		if int(ucred.Uid) != l.allowedUID {
			log.Printf("connection from disallowed uid: %d", ucred.Uid)
			_ = conn.Close()

			continue
		}

		return conn, nil
	}
}

func serveConn(h *handler, conn net.Conn) {
	defer conn.Close()

	dec := json.NewDecoder(bufio.NewReader(conn))

	var req request
	if err := dec.Decode(&req); err != nil {
		return
	}

	resp := h.handle(req)

	_ = json.NewEncoder(conn).Encode(resp)
}

// Run starts chacrabd and serves session requests over a UNIX domain
// socket at socketPath, accepting connections only from the current UID,
// until ctx is cancelled or SIGTERM/SIGINT arrives.
func Run(ctx context.Context, socketPath string) error {
	log.SetPrefix("[chacrabd] ")
	log.Printf("daemon starting")

	_ = os.Remove(socketPath)

	socket, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("unix socket listen: %w", err)
	}
	defer func() {
		_ = socket.Close()
		_ = os.Remove(socketPath)
	}()

	if err := os.Chmod(socketPath, socketPerm); err != nil {
		return fmt.Errorf("unix socket chmod: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lis := &uidCheckingListener{Listener: socket, allowedUID: os.Getuid()}
	h := newHandler()

	done := make(chan struct{})
	go func() {
		defer close(done)

		for {
			conn, err := lis.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					log.Printf("accept error: %v", err)
					return
				}
			}

			go serveConn(h, conn)
		}
	}()

	<-ctx.Done()
	log.Printf("shutdown signal received")

	_ = socket.Close()
	h.stopAll()

	<-done
	log.Printf("shutdown complete")

	return nil
}
