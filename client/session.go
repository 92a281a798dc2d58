package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Session is what a successful login leaves behind on the client.
type Session struct {
	Token     string    `yaml:"token" json:"token"`
	Email     string    `yaml:"email" json:"email"`
	Role      Role      `yaml:"role" json:"role"`
	ExpiresAt time.Time `yaml:"expires_at" json:"expires_at"`
}

// Valid reports whether the session carries a token that has not expired at now.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

func (s *Session) IsAgent() bool { return s != nil && s.Role == RoleAgent }

// SessionStore persists a session. Load returns (nil, nil) when none is stored.
type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

type MemoryStore struct {
	mu sync.Mutex
	s  *Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.s = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}

// FileStore keeps the session in a YAML file readable only by the owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// DefaultSessionPath is ~/.estatectl/session.yaml.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".estatectl", "session.yaml"), nil
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", f.path, err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

func (f *FileStore) Save(s *Session) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Manager is the single accessor for the current session. Every component in
// the process reads and changes the session through one Manager, and
// subscribers are told about each change.
type Manager struct {
	// change orders whole Set and Clear calls, store write through fan-out,
	// so subscribers see changes in the order the Manager applied them.
	change  sync.Mutex
	mu      sync.RWMutex
	store   SessionStore
	current *Session
	loaded  bool
	subs    map[int]func(*Session)
	nextSub int
	now     func() time.Time
}

func NewManager(store SessionStore) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{store: store, subs: map[int]func(*Session){}, now: time.Now}
}

// Current returns a copy of the session, or nil when logged out or expired.
func (m *Manager) Current() (*Session, error) {
	if err := m.ensureLoaded(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.current.Valid(m.now()) {
		return nil, nil
	}
	cp := *m.current
	return &cp, nil
}

// Token returns the bearer token or "" when there is no valid session.
func (m *Manager) Token() string {
	s, err := m.Current()
	if err != nil || s == nil {
		return ""
	}
	return s.Token
}

func (m *Manager) Set(s *Session) error {
	if s == nil {
		return m.Clear()
	}
	m.change.Lock()
	defer m.change.Unlock()

	if err := m.store.Save(s); err != nil {
		return err
	}
	cp := *s
	m.mu.Lock()
	m.current, m.loaded = &cp, true
	m.mu.Unlock()
	m.notify(&cp)
	return nil
}

func (m *Manager) Clear() error {
	m.change.Lock()
	defer m.change.Unlock()
	return m.clearLocked()
}

// clearIf clears the session only while it still holds token, so a late 401
// for a replaced token leaves a newer login alone.
func (m *Manager) clearIf(token string) (bool, error) {
	m.change.Lock()
	defer m.change.Unlock()

	if err := m.ensureLoaded(); err != nil {
		return false, err
	}
	m.mu.RLock()
	same := m.current != nil && m.current.Token == token
	m.mu.RUnlock()
	if !same {
		return false, nil
	}
	return true, m.clearLocked()
}

func (m *Manager) clearLocked() error {
	err := m.store.Clear()
	m.mu.Lock()
	had := m.current != nil
	m.current, m.loaded = nil, true
	m.mu.Unlock()
	if had {
		m.notify(nil)
	}
	return err
}

// Subscribe registers fn for session changes; fn receives nil on logout.
// Calls arrive one at a time in change order; fn must not call Set or Clear.
// The returned func removes the subscription.
func (m *Manager) Subscribe(fn func(*Session)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) ensureLoaded() error {
	m.mu.RLock()
	loaded := m.loaded
	m.mu.RUnlock()
	if loaded {
		return nil
	}

	s, err := m.store.Load()
	if err != nil {
		return err
	}
	m.mu.Lock()
	if !m.loaded {
		m.current, m.loaded = s, true
	}
	m.mu.Unlock()
	return nil
}

func (m *Manager) notify(s *Session) {
	m.mu.RLock()
	fns := make([]func(*Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		var cp *Session
		if s != nil {
			c := *s
			cp = &c
		}
		fn(cp)
	}
}
