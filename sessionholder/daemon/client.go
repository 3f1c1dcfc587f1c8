package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/sessionholder"
)

var _ sessionholder.Holder = (*Client)(nil)

// Client is a [sessionholder.Holder] backed by chacrabd over a UNIX
// domain socket. Every call dials a fresh short-lived connection; there is
// no persistent session at the transport layer, only at the daemon.
type Client struct {
	socketPath string
	profile    string
	timeout    time.Duration
}

// NewClient returns a daemon-backed holder scoped to profile (typically
// the backend kind plus database URL, so distinct vaults never share a
// session) with the given inactivity timeout to request on Put.
func NewClient(socketPath, profile string, timeout time.Duration) *Client {
	return &Client{socketPath: socketPath, profile: profile, timeout: timeout}
}

func (c *Client) call(ctx context.Context, req request) (response, error) {
	if err := verifySocketSecure(c.socketPath, os.Getuid()); err != nil {
		return response{}, err
	}

	var d net.Dialer

	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return response{}, chacraberrors.ErrNoSession
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return response{}, fmt.Errorf("daemon request: %w", err)
	}

	var resp response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return response{}, fmt.Errorf("daemon response: %w", err)
	}

	return resp, nil
}

func (c *Client) Put(ctx context.Context, key []byte) error {
	resp, err := c.call(ctx, request{Op: opPut, Profile: c.profile, Key: key, Timeout: int64(c.timeout.Seconds())})
	if err != nil {
		return err
	}

	if !resp.OK {
		return fmt.Errorf("daemon put: %s", resp.Error)
	}

	return nil
}

func (c *Client) Get(ctx context.Context) ([]byte, error) {
	resp, err := c.call(ctx, request{Op: opGet, Profile: c.profile})
	if err != nil {
		return nil, err
	}

	if !resp.OK {
		return nil, chacraberrors.ErrNoSession
	}

	return resp.Key, nil
}

func (c *Client) Clear(ctx context.Context) error {
	resp, err := c.call(ctx, request{Op: opClear, Profile: c.profile})
	if err != nil {
		return err
	}

	if !resp.OK {
		return fmt.Errorf("daemon clear: %s", resp.Error)
	}

	return nil
}

// verifySocketSecure rejects a socket not owned by the current user, not
// actually a socket, or reachable only via a symlink — the same checks the
// teacher's vltd client performs before ever dialing.
func verifySocketSecure(path string, uid int) error {
	fi, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("could not stat socket: %w", err)
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to follow symlink: %s", path)
	}

	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return errors.New("unexpected file stat type")
	}

	if int(stat.Uid) != uid {
		return fmt.Errorf("unexpected socket owner uid: got %d, want %d", stat.Uid, uid)
	}

	if fi.Mode().Perm() != socketPerm {
		return fmt.Errorf("socket file has insecure permissions: %v", fi.Mode().Perm())
	}

	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("file is not a socket: %s", path)
	}

	return nil
}
