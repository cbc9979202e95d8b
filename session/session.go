// Package session owns the login state. Every login and logout goes through a Manager,
// and other components receive the current model.Session from it explicitly.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"ktx-reserve-cli/model"
)

// Authenticator talks to the user service.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (int64, error)
	SignUp(ctx context.Context, req model.SignUpRequest) error
}

// Persister keeps the session across runs.
type Persister interface {
	Load() (model.Session, error)
	Save(model.Session) error
	Clear() error
}

type Manager struct {
	auth    Authenticator
	persist Persister
	logger  *zap.Logger

	mu      sync.RWMutex
	current model.Session
}

// NewManager restores any persisted session. An unreadable session file counts as logged out.
func NewManager(auth Authenticator, persist Persister, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{auth: auth, persist: persist, logger: logger}
	restored, err := persist.Load()
	if err != nil {
		logger.Warn("discarding unreadable session", zap.Error(err))
		return m
	}
	m.current = restored
	return m
}

func (m *Manager) Current() model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) LoggedIn() bool {
	return m.Current().LoggedIn()
}

// Login authenticates and persists the new session.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) (model.Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	userID, err := m.auth.Login(ctx, creds)
	if err != nil {
		return model.Session{}, err
	}
	next := model.Session{UserId: userID, Username: creds.Username}
	if err := m.persist.Save(next); err != nil {
		return model.Session{}, fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.current = next
	m.mu.Unlock()
	m.logger.Info("logged in", zap.Int64("user_id", userID))
	return next, nil
}

// SignUp registers an account without logging in.
func (m *Manager) SignUp(ctx context.Context, req model.SignUpRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	return m.auth.SignUp(ctx, req)
}

// Logout forgets the session locally; there is no server-side logout.
func (m *Manager) Logout() error {
	m.mu.Lock()
	previous := m.current
	m.current = model.Session{}
	m.mu.Unlock()

	if err := m.persist.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if previous.LoggedIn() {
		m.logger.Info("logged out", zap.Int64("user_id", previous.UserId))
	}
	return nil
}
