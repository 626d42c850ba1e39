package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/sanitizer"
	"github.com/dmitrymomot/summarist/pkg/validator"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// PasswordProvider signs users in with email and password. Accounts live in
// the document store at accounts/{email} with a bcrypt hash.
type PasswordProvider struct {
	store         docstore.Store
	bcryptCost    int
	guestEmail    string
	guestPassword string
	logger        *slog.Logger
	now           func() time.Time
}

// PasswordOption configures PasswordProvider.
type PasswordOption func(*PasswordProvider)

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) PasswordOption {
	return func(p *PasswordProvider) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			p.bcryptCost = cost
		}
	}
}

// WithGuestCredentials sets the shared demo account used by Guest.
func WithGuestCredentials(email, password string) PasswordOption {
	return func(p *PasswordProvider) {
		if email != "" && password != "" {
			p.guestEmail = sanitizer.NormalizeEmail(email)
			p.guestPassword = password
		}
	}
}

// WithPasswordLogger sets a custom logger for the provider.
func WithPasswordLogger(l *slog.Logger) PasswordOption {
	return func(p *PasswordProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPasswordProvider creates a provider over the account documents in store.
// The guest account defaults to guest@gmail.com / guest123.
func NewPasswordProvider(store docstore.Store, opts ...PasswordOption) *PasswordProvider {
	if store == nil {
		panic("auth: document store is required")
	}
	p := &PasswordProvider{
		store:         store,
		bcryptCost:    bcrypt.DefaultCost,
		guestEmail:    "guest@gmail.com",
		guestPassword: "guest123",
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register creates a password account and returns its identity.
func (p *PasswordProvider) Register(ctx context.Context, email, password string) (*Identity, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := validateCredentials(email, password, true); err != nil {
		return nil, err
	}

	if _, err := p.store.Get(ctx, AccountPath(email)); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, err
	}

	acc := Account{
		ID:           uuid.NewString(),
		Email:        email,
		Method:       MethodPassword,
		PasswordHash: string(hash),
		CreatedAt:    timestamp(p.now()),
	}
	// The lookup above only skips hashing for taken emails; Create decides
	// which of two concurrent sign-ups wins.
	err = p.store.Create(ctx, AccountPath(email), map[string]any{
		"id":            acc.ID,
		"email":         acc.Email,
		"method":        acc.Method,
		"password_hash": acc.PasswordHash,
		"created_at":    acc.CreatedAt,
	})
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}

	p.logger.InfoContext(ctx, "account registered",
		logger.UserID(acc.ID),
		slog.String("email", sanitizer.MaskEmail(email)),
		logger.Component("auth"),
	)
	return acc.Identity(), nil
}

// Login verifies credentials. Unknown emails and wrong passwords both yield
// ErrInvalidCredentials.
func (p *PasswordProvider) Login(ctx context.Context, email, password string) (*Identity, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := validateCredentials(email, password, false); err != nil {
		return nil, err
	}

	acc, err := p.account(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		p.logger.DebugContext(ctx, "password mismatch",
			logger.UserID(acc.ID),
			logger.Component("auth"),
		)
		return nil, ErrInvalidCredentials
	}
	return acc.Identity(), nil
}

// Guest signs in with the shared demo account, creating it on first use.
func (p *PasswordProvider) Guest(ctx context.Context) (*Identity, error) {
	id, err := p.Login(ctx, p.guestEmail, p.guestPassword)
	if !errors.Is(err, ErrInvalidCredentials) {
		return id, err
	}
	id, err = p.Register(ctx, p.guestEmail, p.guestPassword)
	if errors.Is(err, ErrEmailAlreadyExists) {
		return p.Login(ctx, p.guestEmail, p.guestPassword)
	}
	return id, err
}

func (p *PasswordProvider) account(ctx context.Context, email string) (Account, error) {
	doc, err := p.store.Get(ctx, AccountPath(email))
	if errors.Is(err, docstore.ErrNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, errors.Join(ErrProviderUnavailable, err)
	}
	var acc Account
	if err := doc.Decode(&acc); err != nil {
		return Account{}, err
	}
	return acc, nil
}

func validateCredentials(email, password string, strict bool) error {
	if err := validator.Apply(
		validator.RequiredString("email", email),
		validator.ValidEmail("email", email),
	); err != nil {
		return errors.Join(ErrInvalidEmail, err)
	}
	// Account documents are keyed by email.
	if strings.Contains(email, "/") {
		return ErrInvalidEmail
	}
	if password == "" {
		return ErrMissingPassword
	}
	if strict {
		if err := validator.Apply(validator.MinLenString("password", password, MinPasswordLength)); err != nil {
			return errors.Join(ErrWeakPassword, err)
		}
	}
	return nil
}
