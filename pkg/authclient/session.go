package authclient

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
)

// MarkerStore persists the client-writable "I believe I'm logged in" marker.
// It is deliberately independent of the httpOnly auth cookies, which client
// code cannot read; the flag is advisory for rendering decisions only and
// the server re-authorizes every request.
type MarkerStore interface {
	Set() error
	Clear() error
	Exists() bool
}

// Session tracks the advisory authenticated flag with explicit lifecycle:
// construct it at the application root, tear it down when the UI unmounts.
type Session struct {
	mu            sync.RWMutex
	authenticated bool
	marker        MarkerStore
	subscribers   map[string]chan bool
	closed        bool
}

func NewSession(marker MarkerStore) *Session {
	if marker == nil {
		marker = NewMemoryMarker()
	}
	return &Session{
		authenticated: marker.Exists(),
		marker:        marker,
		subscribers:   map[string]chan bool{},
	}
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Login records a successful login call: flag up, marker written.
func (s *Session) Login() {
	s.mu.Lock()
	s.authenticated = true
	if err := s.marker.Set(); err != nil {
		slog.Warn("failed to write session marker", "error", err)
	}
	s.notifyLocked(true)
	s.mu.Unlock()
}

// Logout invokes the server logout call and then clears the flag and marker
// unconditionally: a failed server call must not leave the UI showing a
// logged-in state it cannot back up.
func (s *Session) Logout(ctx context.Context, serverLogout func(context.Context) error) error {
	var err error
	if serverLogout != nil {
		if err = serverLogout(ctx); err != nil {
			slog.Warn("server logout failed; clearing local session anyway", "error", err)
		}
	}

	s.mu.Lock()
	s.authenticated = false
	if clearErr := s.marker.Clear(); clearErr != nil {
		slog.Warn("failed to clear session marker", "error", clearErr)
	}
	s.notifyLocked(false)
	s.mu.Unlock()

	return err
}

// Sync re-derives the flag from the marker. Call it on an external
// change signal so several observers of the same marker stay consistent.
func (s *Session) Sync() {
	s.mu.Lock()
	current := s.marker.Exists()
	if current != s.authenticated {
		s.authenticated = current
		s.notifyLocked(current)
	}
	s.mu.Unlock()
}

// Subscribe returns a channel receiving every flag transition and a
// function to unsubscribe. Slow subscribers drop updates rather than block
// the publisher.
func (s *Session) Subscribe() (<-chan bool, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan bool, 8)
	if !s.closed {
		s.subscribers[id] = ch
	} else {
		close(ch)
	}

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, exists := s.subscribers[id]; exists {
			close(sub)
			delete(s.subscribers, id)
		}
	}

	return ch, unsubscribe
}

// Close tears the session down and closes all subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}

func (s *Session) notifyLocked(state bool) {
	for _, ch := range s.subscribers {
		select {
		case ch <- state:
		default:
		}
	}
}

// MemoryMarker keeps the marker in process memory.
type MemoryMarker struct {
	mu  sync.Mutex
	set bool
}

func NewMemoryMarker() *MemoryMarker {
	return &MemoryMarker{}
}

func (m *MemoryMarker) Set() error {
	m.mu.Lock()
	m.set = true
	m.mu.Unlock()
	return nil
}

func (m *MemoryMarker) Clear() error {
	m.mu.Lock()
	m.set = false
	m.mu.Unlock()
	return nil
}

func (m *MemoryMarker) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set
}

// FileMarker persists the marker as a file so separate processes sharing a
// home directory observe the same state.
type FileMarker struct {
	path string
}

func NewFileMarker(path string) *FileMarker {
	return &FileMarker{path: path}
}

func (m *FileMarker) Set() error {
	return os.WriteFile(m.path, []byte("1"), 0o600)
}

func (m *FileMarker) Clear() error {
	err := os.Remove(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (m *FileMarker) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}
