package daemon

import (
	"sync"
	"time"

	"github.com/imadenugraha/chacrab/cryptoprim"
)

type safeMap[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

func newSafeMap[K comparable, V any]() *safeMap[K, V] {
	return &safeMap[K, V]{data: make(map[K]V)}
}

func (m *safeMap[K, V]) store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
}

func (m *safeMap[K, V]) load(key K) (value V, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok = m.data[key]

	return
}

func (m *safeMap[K, V]) delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
}

func (m *safeMap[K, V]) Range(f func(K, V) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range m.data {
		if !f(k, v) {
			break
		}
	}
}

// session holds one profile's derived key with a sliding inactivity
// deadline enforced by a timer goroutine.
type session struct {
	mu       sync.Mutex
	key      []byte
	timeout  time.Duration
	timer    *time.Timer
	done     chan struct{}
	doneOnce sync.Once
}

func newSession(key []byte, timeout time.Duration) *session {
	s := &session{
		key:     append([]byte(nil), key...),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	s.timer = time.AfterFunc(timeout, s.expire)

	return s
}

func (s *session) expire() {
	s.mu.Lock()
	cryptoprim.Zero(s.key)
	s.key = nil
	s.mu.Unlock()

	s.doneOnce.Do(func() { close(s.done) })
}

func (s *session) touch() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return nil, false
	}

	s.timer.Reset(s.timeout)

	out := make([]byte, len(s.key))
	copy(out, s.key)

	return out, true
}

func (s *session) stop() {
	s.timer.Stop()

	s.mu.Lock()
	cryptoprim.Zero(s.key)
	s.key = nil
	s.mu.Unlock()

	s.doneOnce.Do(func() { close(s.done) })
}

// handler holds every active profile's session and serves requests against
// them. It has no knowledge of sockets; [Run] wires it to a listener.
type handler struct {
	sessions *safeMap[string, *session]
}

func newHandler() *handler {
	return &handler{sessions: newSafeMap[string, *session]()}
}

func (h *handler) handle(req request) response {
	switch req.Op {
	case opPut:
		timeout := time.Duration(req.Timeout) * time.Second
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}

		if old, ok := h.sessions.load(req.Profile); ok {
			old.stop()
		}

		h.sessions.store(req.Profile, newSession(req.Key, timeout))

		return response{OK: true}
	case opGet:
		s, ok := h.sessions.load(req.Profile)
		if !ok {
			return response{OK: false, Error: "no session"}
		}

		key, ok := s.touch()
		if !ok {
			h.sessions.delete(req.Profile)
			return response{OK: false, Error: "no session"}
		}

		return response{OK: true, Key: key}
	case opClear:
		if s, ok := h.sessions.load(req.Profile); ok {
			s.stop()
			h.sessions.delete(req.Profile)
		}

		return response{OK: true}
	default:
		return response{OK: false, Error: "unknown op"}
	}
}

func (h *handler) stopAll() {
	h.sessions.Range(func(_ string, s *session) bool {
		s.stop()
		return true
	})
}
