package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/session"
	"github.com/dmitrymomot/summarist/svc/auth"
)

type serviceFixture struct {
	svc      *auth.Service
	channel  *auth.Channel
	sessions *session.Manager
}

func newServiceFixture(t *testing.T, opts ...auth.ServiceOption) serviceFixture {
	t.Helper()
	cfg := session.DefaultConfig()
	cfg.SecureCookies = false
	sessions := session.NewManager(session.NewMemoryStore(), session.WithConfig(cfg))
	channel := auth.NewChannel()
	svc := auth.NewService(newPasswordProvider(docstore.NewMemoryStore()), sessions, channel, opts...)
	return serviceFixture{svc: svc, channel: channel, sessions: sessions}
}

func (f serviceFixture) newSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := f.sessions.Ensure(context.Background(), httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func TestService_SignInAndOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServiceFixture(t)
	sess := f.newSession(t)
	sessionID := sess.ID

	var log identityLog
	defer f.channel.OnIdentityChanged(sessionID, log.record)()

	id, err := f.svc.Register(ctx, httptest.NewRecorder(), sess, "reader@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, sessionID, sess.ID)
	assert.Equal(t, id.ID, sess.UserID)
	assert.Equal(t, id, auth.Current(sess))

	require.NoError(t, f.svc.Logout(ctx, httptest.NewRecorder(), sess))
	assert.False(t, sess.IsAuthenticated())
	assert.Nil(t, auth.Current(sess))

	_, err = f.svc.Login(ctx, httptest.NewRecorder(), sess, "reader@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	guest, err := f.svc.Guest(ctx, httptest.NewRecorder(), sess)
	require.NoError(t, err)

	seen := log.all()
	require.Len(t, seen, 3)
	assert.Equal(t, id.ID, seen[0].ID)
	assert.Nil(t, seen[1])
	assert.Equal(t, guest.ID, seen[2].ID)
}

func TestService_Restore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newServiceFixture(t)
	sess := f.newSession(t)

	f.svc.Restore(sess)
	current, known := f.channel.Current(sess.ID)
	assert.True(t, known)
	assert.Nil(t, current)

	id, err := f.svc.Login(ctx, httptest.NewRecorder(), sess, "guest@example.com", "guest123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Nil(t, id)

	_, err = f.svc.Guest(ctx, httptest.NewRecorder(), sess)
	require.NoError(t, err)

	f.svc.Restore(sess)
	current, _ = f.channel.Current(sess.ID)
	require.NotNil(t, current)
	assert.Equal(t, "guest@example.com", current.Email)
}

func TestService_GoogleDisabled(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	assert.False(t, f.svc.GoogleEnabled())

	_, err := f.svc.GoogleAuthURL(context.Background())
	assert.ErrorIs(t, err, auth.ErrProviderUnavailable)

	_, err = f.svc.GoogleCallback(context.Background(), httptest.NewRecorder(), f.newSession(t), "s", "c")
	assert.ErrorIs(t, err, auth.ErrProviderUnavailable)
}

func TestService_GoogleCallbackSignsIn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	google, _ := newGoogleProvider(t, docstore.NewMemoryStore())
	f := newServiceFixture(t, auth.WithGoogle(google))
	sess := f.newSession(t)

	authURL, err := f.svc.GoogleAuthURL(ctx)
	require.NoError(t, err)

	id, err := f.svc.GoogleCallback(ctx, httptest.NewRecorder(), sess, stateFrom(t, authURL), "good")
	require.NoError(t, err)
	assert.Equal(t, id.ID, sess.UserID)

	current, _ := f.channel.Current(sess.ID)
	require.NotNil(t, current)
	assert.Equal(t, "reader@example.com", current.Email)
}
