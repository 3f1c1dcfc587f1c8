// Package sessionholder defines the session key holder contract: the
// external adapter that owns the derived master key for the lifetime of an
// interactive session. The vault and auth services never persist this key
// themselves; they hand it off here and fetch it back on demand.
package sessionholder

import (
	"context"
	"sync"
	"time"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/cryptoprim"
)

// Holder is the {put, get, clear} contract every adapter implements,
// in-process or out-of-process (over a daemon socket).
type Holder interface {
	// Put stores key for the session, resetting the inactivity deadline.
	// Callers retain ownership of key's backing array; Put copies it.
	Put(ctx context.Context, key []byte) error

	// Get returns the held key, or [chacraberrors.ErrNoSession] if none is
	// held or the inactivity timeout has elapsed. The returned slice is a
	// copy; callers must zeroize it when done.
	Get(ctx context.Context) ([]byte, error)

	// Clear purges the held key. Idempotent.
	Clear(ctx context.Context) error
}

// Memory is the in-process [Holder]: a single key guarded by a mutex, with
// a sliding inactivity timeout. Suitable for a single short-lived CLI
// invocation that performs its own login; [daemon.Client] is used instead
// when a key must outlive one process.
type Memory struct {
	mu       sync.Mutex
	key      []byte
	deadline time.Time
	timeout  time.Duration
}

// NewMemory creates a [Memory] holder with the given inactivity timeout.
func NewMemory(timeout time.Duration) *Memory {
	return &Memory{timeout: timeout}
}

func (m *Memory) Put(_ context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cryptoprim.Zero(m.key)

	m.key = make([]byte, len(key))
	copy(m.key, key)
	m.deadline = time.Now().Add(m.timeout)

	return nil
}

func (m *Memory) Get(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.key == nil {
		return nil, chacraberrors.ErrNoSession
	}

	if time.Now().After(m.deadline) {
		cryptoprim.Zero(m.key)
		m.key = nil

		return nil, chacraberrors.ErrNoSession
	}

	m.deadline = time.Now().Add(m.timeout)

	out := make([]byte, len(m.key))
	copy(out, m.key)

	return out, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cryptoprim.Zero(m.key)
	m.key = nil

	return nil
}
