package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"medbook/utils"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt"
)

// Session is the stored login of one role.
type Session struct {
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return s.Token == "" || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

// ErrNoSession is returned by Load when the role has no stored session.
var ErrNoSession = errors.New("no session stored for role")

// SessionStore keeps one session slot per role.
type SessionStore interface {
	Load(role string) (Session, error)
	Save(s Session) error
	Delete(role string) error
}

// tokenExpiry reads the exp claim without verifying the signature. The
// client cannot verify; it only needs to know when to stop sending the token.
func tokenExpiry(token string) (time.Time, error) {
	claims := &utils.Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("malformed token: %w", err)
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, nil
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}

// MemoryStore keeps sessions for the life of the process.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Session{}}
}

func (m *MemoryStore) Load(role string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[role]
	if !ok {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Role] = s
	return nil
}

func (m *MemoryStore) Delete(role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, role)
	return nil
}

// FileStore keeps each role's session in <Dir>/session-<role>.json.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(role string) string {
	return filepath.Join(f.Dir, "session-"+role+".json")
}

func (f *FileStore) Load(role string) (Session, error) {
	b, err := os.ReadFile(f.path(role))
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		// A corrupt slot is as good as none.
		_ = os.Remove(f.path(role))
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (f *FileStore) Save(s Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return os.Rename(tmp.Name(), f.path(s.Role))
}

func (f *FileStore) Delete(role string) error {
	err := os.Remove(f.path(role))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
