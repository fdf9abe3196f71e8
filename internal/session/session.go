// Package session holds the signed-in user's context. A Session is an
// explicit value handed to whatever needs the token or the admin flag;
// nothing reads it from a global.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/storefront/internal/domain"
)

const (
	msgLoginFailed   = "Login failed!"
	msgSignupOK      = "Signup successful!"
	msgSignupFailed  = "Signup failed!"
	msgLoggedOut     = "Logged out"
	msgSessionExpiry = "Session expired, please sign in again"
)

// Session is the signed-in user's context
type Session struct {
	Token     string
	Username  string
	IsAdmin   bool
	CreatedAt time.Time
}

// Valid reports whether the session carries a token
func (s Session) Valid() bool {
	return s.Token != ""
}

// Store persists a remembered session between runs
type Store interface {
	Save(token, username string, isAdmin bool) error
	Clear() error
}

// Manager creates and clears sessions
type Manager struct {
	auth     domain.AuthRepository
	store    Store
	admins   map[string]bool
	notifier domain.Notifier
	logger   *slog.Logger

	mu      sync.RWMutex
	current Session
}

// NewManager creates a session manager. store may be nil when sessions
// are not remembered. adminUsernames are compared case-insensitively.
func NewManager(
	auth domain.AuthRepository,
	store Store,
	adminUsernames []string,
	notifier domain.Notifier,
	logger *slog.Logger,
) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = domain.NoOpNotifier{}
	}
	admins := make(map[string]bool, len(adminUsernames))
	for _, u := range adminUsernames {
		admins[normalize(u)] = true
	}
	return &Manager{auth: auth, store: store, admins: admins, notifier: notifier, logger: logger}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// IsAdmin reports whether username is configured as an admin
func (m *Manager) IsAdmin(username string) bool {
	return m.admins[normalize(username)]
}

// Current returns the active session, which is the zero Session when
// nobody is signed in.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Restore reinstates a remembered session without contacting the server.
// The first protected call will fail with ErrUnauthenticated if the
// token has expired.
func (m *Manager) Restore(token, username string, isAdmin bool) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	s := Session{
		Token:     token,
		Username:  username,
		IsAdmin:   isAdmin || m.IsAdmin(username),
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	m.logger.Info("restored session", "username", username, "admin", s.IsAdmin)
	return s, true
}

// Login signs in. A session exists only after the server accepts the
// credentials; on failure the previous state is left as it was.
func (m *Manager) Login(ctx context.Context, creds domain.Credentials) (Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := domain.Validate(creds); err != nil {
		m.notifier.Notify(domain.Notification{Message: msgLoginFailed})
		return Session{}, err
	}

	token, err := m.auth.SignIn(ctx, creds)
	if err != nil {
		m.logger.Error("sign-in failed", "username", creds.Username, "error", err)
		m.notifier.Notify(domain.Notification{Message: msgLoginFailed})
		return Session{}, err
	}

	s := Session{
		Token:     token,
		Username:  creds.Username,
		IsAdmin:   m.IsAdmin(creds.Username),
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(s.Token, s.Username, s.IsAdmin); err != nil {
			m.logger.Error("failed to remember session", "error", err)
		}
	}
	m.logger.Info("signed in", "username", s.Username, "admin", s.IsAdmin)
	return s, nil
}

// Logout discards the current session and any remembered copy
func (m *Manager) Logout() {
	if was := m.clear(); was.Valid() {
		m.logger.Info("signed out", "username", was.Username)
		m.notifier.Notify(domain.Notification{Message: msgLoggedOut, Success: true})
	}
}

// Expire discards a session whose token the server rejected
func (m *Manager) Expire() {
	was := m.clear()
	m.logger.Info("session expired", "username", was.Username)
	m.notifier.Notify(domain.Notification{Message: msgSessionExpiry})
}

// clear drops the session and the remembered copy, returning the old one
func (m *Manager) clear() Session {
	m.mu.Lock()
	was := m.current
	m.current = Session{}
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			m.logger.Error("failed to forget session", "error", err)
		}
	}
	return was
}

// HandleError expires the session when err means the token was rejected.
// Returns true when it did.
func (m *Manager) HandleError(err error) bool {
	if err == nil || !errors.Is(err, domain.ErrUnauthenticated) || !m.Current().Valid() {
		return false
	}
	m.Expire()
	return true
}

// Signup validates req and creates the account. It does not sign in.
func (m *Manager) Signup(ctx context.Context, req domain.SignupRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if err := domain.Validate(req); err != nil {
		m.notifier.Notify(domain.Notification{Message: msgSignupFailed})
		return err
	}
	if err := m.auth.SignUp(ctx, req); err != nil {
		m.logger.Error("sign-up failed", "email", req.Email, "error", err)
		m.notifier.Notify(domain.Notification{Message: msgSignupFailed})
		return err
	}
	m.logger.Info("signed up", "email", req.Email)
	m.notifier.Notify(domain.Notification{Message: msgSignupOK, Success: true})
	return nil
}
