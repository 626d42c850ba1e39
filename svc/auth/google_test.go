package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/svc/auth"
)

func newGoogleServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_ = r.ParseForm()
		code := r.FormValue("code")
		w.Header().Set("Content-Type", "application/json")
		if code == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-" + code,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		user := map[string]any{"id": "g-123", "email": "Reader@Example.com", "verified_email": true}
		switch token {
		case "tok-unverified":
			user["verified_email"] = false
		case "tok-noemail":
			user["email"] = ""
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newGoogleProvider(t *testing.T, store docstore.Store) (*auth.GoogleProvider, *httptest.Server) {
	t.Helper()
	srv := newGoogleServer(t)
	p := auth.NewGoogleProvider(auth.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://app.test/auth/google/callback",
		Scopes:       []string{"openid", "email"},
	}, store,
		auth.WithGoogleEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}, srv.URL+"/userinfo"),
		auth.WithGoogleHTTPClient(srv.Client()),
	)
	return p, srv
}

func stateFrom(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestGoogleProvider_SignIn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := docstore.NewMemoryStore()
	p, srv := newGoogleProvider(t, store)

	authURL, err := p.AuthURL(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(authURL, srv.URL+"/auth"))
	assert.Contains(t, authURL, "client_id=client-id")
	state := stateFrom(t, authURL)

	id, err := p.Callback(ctx, state, "good")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", id.Email)
	assert.NotEmpty(t, id.ID)

	doc, err := store.Get(ctx, auth.AccountPath("reader@example.com"))
	require.NoError(t, err)
	assert.Equal(t, auth.MethodGoogle, doc.String("method"))
	assert.Equal(t, "g-123", doc.String("google_id"))

	// states are single use
	_, err = p.Callback(ctx, state, "good")
	assert.ErrorIs(t, err, auth.ErrInvalidState)

	again, err := p.Callback(ctx, stateFrom(t, mustAuthURL(t, p)), "good")
	require.NoError(t, err)
	assert.Equal(t, id.ID, again.ID)
}

func TestGoogleProvider_LinksExistingAccount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := docstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, auth.AccountPath("reader@example.com"), map[string]any{
		"id":     "u-existing",
		"email":  "reader@example.com",
		"method": auth.MethodPassword,
	}))
	p, _ := newGoogleProvider(t, store)

	id, err := p.Callback(ctx, stateFrom(t, mustAuthURL(t, p)), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-existing", id.ID)

	doc, err := store.Get(ctx, auth.AccountPath("reader@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "g-123", doc.String("google_id"))
	assert.Equal(t, auth.MethodPassword, doc.String("method"))
}

func TestGoogleProvider_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := docstore.NewMemoryStore()
	p, _ := newGoogleProvider(t, store)

	_, err := p.Callback(ctx, "", "good")
	assert.ErrorIs(t, err, auth.ErrInvalidState)

	_, err = p.Callback(ctx, "unknown", "good")
	assert.ErrorIs(t, err, auth.ErrInvalidState)

	require.NoError(t, store.Set(ctx, auth.OAuthStatePath("old"), map[string]any{
		"expires_at": time.Now().Add(-time.Minute).UTC().Format(time.RFC3339),
	}))
	_, err = p.Callback(ctx, "old", "good")
	assert.ErrorIs(t, err, auth.ErrInvalidState)

	_, err = p.Callback(ctx, stateFrom(t, mustAuthURL(t, p)), "bad")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	_, err = p.Callback(ctx, stateFrom(t, mustAuthURL(t, p)), "unverified")
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	_, err = p.Callback(ctx, stateFrom(t, mustAuthURL(t, p)), "noemail")
	assert.ErrorIs(t, err, auth.ErrNoPrimaryEmail)
}

func mustAuthURL(t *testing.T, p *auth.GoogleProvider) string {
	t.Helper()
	u, err := p.AuthURL(context.Background())
	require.NoError(t, err)
	return u
}

func TestGoogleConfig_Enabled(t *testing.T) {
	t.Parallel()

	assert.False(t, auth.GoogleConfig{ClientID: "id"}.Enabled())
	assert.True(t, auth.GoogleConfig{ClientID: "id", ClientSecret: "s", RedirectURL: "https://app.test/cb"}.Enabled())
}
