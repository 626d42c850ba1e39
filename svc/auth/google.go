package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/sanitizer"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthStatePath returns the document holding a pending authorization state.
func OAuthStatePath(state string) string {
	return docstore.Join("oauth_states", state)
}

// GoogleProvider signs users in with Google. Authorization states are kept
// in the document store so any instance can finish the callback.
type GoogleProvider struct {
	conf        *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	store       docstore.Store
	stateTTL    time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// GoogleOption configures GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithGoogleEndpoint overrides the OAuth endpoint and the userinfo URL.
func WithGoogleEndpoint(endpoint oauth2.Endpoint, userInfoURL string) GoogleOption {
	return func(p *GoogleProvider) {
		p.conf.Endpoint = endpoint
		if userInfoURL != "" {
			p.userInfoURL = userInfoURL
		}
	}
}

// WithGoogleHTTPClient sets the client used for token exchange and user info.
func WithGoogleHTTPClient(c *http.Client) GoogleOption {
	return func(p *GoogleProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithGoogleLogger sets the logger.
func WithGoogleLogger(l *slog.Logger) GoogleOption {
	return func(p *GoogleProvider) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewGoogleProvider creates a provider for cfg. Pending OAuth states are kept in store.
func NewGoogleProvider(cfg GoogleConfig, store docstore.Store, opts ...GoogleOption) *GoogleProvider {
	if store == nil {
		panic("auth: document store is required")
	}
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	p := &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		store:       store,
		stateTTL:    ttl,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AuthURL stores a fresh state and returns the Google consent URL.
func (p *GoogleProvider) AuthURL(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := p.store.Set(ctx, OAuthStatePath(state), map[string]any{
		"expires_at": timestamp(p.now().Add(p.stateTTL)),
	}); err != nil {
		return "", errors.Join(ErrProviderUnavailable, err)
	}
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Callback consumes state, exchanges code and returns the identity of the
// Google account, creating a local account on first sign-in.
func (p *GoogleProvider) Callback(ctx context.Context, state, code string) (*Identity, error) {
	if err := p.consumeState(ctx, state); err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		p.logger.WarnContext(ctx, "google code exchange failed",
			logger.Component("auth"),
			logger.Error(err),
		)
		return nil, ErrInvalidCode
	}

	u, err := p.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}
	email := sanitizer.NormalizeEmail(u.Email)
	switch {
	case email == "":
		return nil, ErrNoPrimaryEmail
	case !u.VerifiedEmail:
		return nil, ErrEmailNotVerified
	}

	return p.findOrCreate(ctx, email, u.ID)
}

func (p *GoogleProvider) consumeState(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	path := OAuthStatePath(state)
	doc, err := p.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
		return ErrInvalidState
	}
	if err != nil {
		return errors.Join(ErrProviderUnavailable, err)
	}
	if err := p.store.Delete(ctx, path); err != nil {
		return errors.Join(ErrProviderUnavailable, err)
	}

	expiresAt, err := time.Parse(time.RFC3339, doc.String("expires_at"))
	if err != nil || p.now().After(expiresAt) {
		return ErrInvalidState
	}
	return nil
}

func (p *GoogleProvider) findOrCreate(ctx context.Context, email, googleID string) (*Identity, error) {
	path := AccountPath(email)
	doc, err := p.store.Get(ctx, path)
	switch {
	case err == nil:
		var acc Account
		if err := doc.Decode(&acc); err != nil {
			return nil, err
		}
		if acc.GoogleID == "" {
			if err := p.store.Set(ctx, path, map[string]any{"google_id": googleID}); err != nil {
				return nil, errors.Join(ErrProviderUnavailable, err)
			}
		}
		return acc.Identity(), nil
	case !errors.Is(err, docstore.ErrNotFound):
		return nil, errors.Join(ErrProviderUnavailable, err)
	}

	acc := Account{
		ID:        uuid.NewString(),
		Email:     email,
		Method:    MethodGoogle,
		GoogleID:  googleID,
		CreatedAt: timestamp(p.now()),
	}
	err = p.store.Create(ctx, path, map[string]any{
		"id":         acc.ID,
		"email":      acc.Email,
		"method":     acc.Method,
		"google_id":  acc.GoogleID,
		"created_at": acc.CreatedAt,
	})
	if errors.Is(err, docstore.ErrAlreadyExists) {
		// another sign-in created the account first; link to it
		return p.findOrCreate(ctx, email, googleID)
	}
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}
	p.logger.InfoContext(ctx, "account registered with google",
		logger.UserID(acc.ID),
		logger.Component("auth"),
	)
	return acc.Identity(), nil
}

func (p *GoogleProvider) fetchUser(ctx context.Context, accessToken string) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google api returned status %d", resp.StatusCode)
	}

	var user googleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}
