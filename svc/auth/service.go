package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/session"
)

// Service signs identities in and out of browser sessions and announces
// every change on the Channel.
type Service struct {
	password *PasswordProvider
	google   *GoogleProvider
	sessions *session.Manager
	channel  *Channel
	logger   *slog.Logger
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithGoogle enables Google sign-in.
func WithGoogle(g *GoogleProvider) ServiceOption {
	return func(s *Service) { s.google = g }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService wires the providers to the session manager and the identity channel.
func NewService(password *PasswordProvider, sessions *session.Manager, channel *Channel, opts ...ServiceOption) *Service {
	if password == nil || sessions == nil || channel == nil {
		panic("auth: password provider, session manager and channel are required")
	}
	s := &Service{
		password: password,
		sessions: sessions,
		channel:  channel,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Channel returns the identity channel the service publishes to.
func (s *Service) Channel() *Channel {
	return s.channel
}

// GoogleEnabled reports whether Google sign-in is available.
func (s *Service) GoogleEnabled() bool {
	return s.google != nil
}

// Register creates a password account and signs the session in.
func (s *Service) Register(ctx context.Context, w http.ResponseWriter, sess *session.Session, email, password string) (*Identity, error) {
	id, err := s.password.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return id, s.signIn(ctx, w, sess, id)
}

// Login signs the session in with email and password.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, sess *session.Session, email, password string) (*Identity, error) {
	id, err := s.password.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return id, s.signIn(ctx, w, sess, id)
}

// Guest signs the session in with the shared demo account.
func (s *Service) Guest(ctx context.Context, w http.ResponseWriter, sess *session.Session) (*Identity, error) {
	id, err := s.password.Guest(ctx)
	if err != nil {
		return nil, err
	}
	return id, s.signIn(ctx, w, sess, id)
}

// GoogleAuthURL returns the consent URL to redirect the browser to.
func (s *Service) GoogleAuthURL(ctx context.Context) (string, error) {
	if s.google == nil {
		return "", ErrProviderUnavailable
	}
	return s.google.AuthURL(ctx)
}

// GoogleCallback completes the OAuth flow and signs the session in.
func (s *Service) GoogleCallback(ctx context.Context, w http.ResponseWriter, sess *session.Session, state, code string) (*Identity, error) {
	if s.google == nil {
		return nil, ErrProviderUnavailable
	}
	id, err := s.google.Callback(ctx, state, code)
	if err != nil {
		return nil, err
	}
	return id, s.signIn(ctx, w, sess, id)
}

// Logout unbinds the identity from the session and publishes nil.
func (s *Service) Logout(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	if err := s.sessions.Logout(ctx, w, sess); err != nil {
		return err
	}
	s.channel.Publish(sess.ID, nil)
	s.logger.InfoContext(ctx, "signed out",
		logger.SessionID(sess.ID),
		logger.Component("auth"),
	)
	return nil
}

// Restore publishes the identity already bound to sess, or nil.
func (s *Service) Restore(sess *session.Session) {
	s.channel.Publish(sess.ID, Current(sess))
}

// Current returns the identity bound to sess, or nil.
func Current(sess *session.Session) *Identity {
	if !sess.IsAuthenticated() {
		return nil
	}
	return &Identity{ID: sess.UserID, Email: sess.Email}
}

func (s *Service) signIn(ctx context.Context, w http.ResponseWriter, sess *session.Session, id *Identity) error {
	if err := s.sessions.Authenticate(ctx, w, sess, id.ID, id.Email); err != nil {
		return err
	}
	s.channel.Publish(sess.ID, id)
	s.logger.InfoContext(ctx, "signed in",
		logger.UserID(id.ID),
		logger.SessionID(sess.ID),
		logger.Component("auth"),
	)
	return nil
}
