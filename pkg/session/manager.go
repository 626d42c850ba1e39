package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/summarist/pkg/logger"
)

// Manager loads, creates and mutates browser sessions.
type Manager struct {
	store     Store
	transport *CookieTransport
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures Manager.
type Option func(*Manager)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager over store. A nil store falls back to
// an in-memory one.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		cfg:    DefaultConfig(),
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	m.transport = NewCookieTransport(m.cfg.CookieName, m.cfg.SecureCookies)
	return m
}

// Load returns the session referenced by the request cookie.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.IsExpired(m.now()) {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Ensure returns the current session or starts a new anonymous one.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	s, err := m.Load(ctx, r)
	if err == nil {
		m.touch(ctx, w, s)
		return s, nil
	}
	if !errors.Is(err, ErrNoToken) && !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	s = newSession(token, m.cfg.ttl(false), m.now())
	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}
	m.transport.SetToken(w, s.Token, m.cfg.ttl(false))
	return s, nil
}

// Authenticate binds an identity to s and rotates its token. The session
// ID is kept so per-session state survives the sign-in.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, s *Session, userID, email string) error {
	s.UserID = userID
	s.Email = email
	return m.rotate(ctx, w, s)
}

// Logout unbinds the identity from s and rotates its token.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.UserID = ""
	s.Email = ""
	return m.rotate(ctx, w, s)
}

func (m *Manager) rotate(ctx context.Context, w http.ResponseWriter, s *Session) error {
	token, err := generateToken()
	if err != nil {
		return err
	}
	old := s.Token
	now := m.now()
	ttl := m.cfg.ttl(s.IsAuthenticated())

	s.Token = token
	s.ExpiresAt = now.Add(ttl)
	s.LastActivityAt = now
	if err := m.store.Create(ctx, s); err != nil {
		s.Token = old
		return err
	}
	if old != "" {
		if err := m.store.Delete(ctx, old); err != nil {
			m.logger.WarnContext(ctx, "failed to delete rotated session token",
				logger.Component("session"),
				logger.SessionID(s.ID),
				logger.Error(err),
			)
		}
	}
	m.transport.SetToken(w, s.Token, ttl)
	return nil
}

// touch slides the expiry forward, at most once per ActivityThreshold.
func (m *Manager) touch(ctx context.Context, w http.ResponseWriter, s *Session) {
	now := m.now()
	if now.Sub(s.LastActivityAt) < m.cfg.ActivityThreshold {
		return
	}
	ttl := m.cfg.ttl(s.IsAuthenticated())
	s.LastActivityAt = now
	s.ExpiresAt = now.Add(ttl)
	if err := m.store.Update(ctx, s); err != nil {
		m.logger.WarnContext(ctx, "failed to extend session",
			logger.Component("session"),
			logger.SessionID(s.ID),
			logger.Error(err),
		)
		return
	}
	m.transport.SetToken(w, s.Token, ttl)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
