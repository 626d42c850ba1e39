package api

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/summarist/handler"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/session"
	"github.com/dmitrymomot/summarist/svc/auth"
	"github.com/dmitrymomot/summarist/svc/state"
)

type containerKey struct{}

// attachState puts the session's state container into the request context.
// A container created for this request is seeded with the identity stored
// in the session, which moves it out of Unknown. Sessions live in a store
// shared between instances, so an existing container whose identity no
// longer matches the session (signed in or out elsewhere) is restored too.
func (a *api) attachState(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			a.errorHandler(handler.NewContext(w, r), handler.ErrUnauthorized)
			return
		}
		c, created := a.Registry.Get(sess.ID)
		switch {
		case created:
			a.Auth.Restore(sess)
			a.Logger.DebugContext(r.Context(), "session state created",
				logger.SessionID(sess.ID),
				logger.Component("api"),
			)
		case !matchesSession(c.Snapshot().Identity, auth.Current(sess)):
			a.syncIdentity(r, c, sess)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), containerKey{}, c)))
	})
}

// syncIdentity re-reads the session before restoring it. A request that
// loaded its session just before a sign-in on this instance rotated the token
// carries a stale copy and must not overwrite the newer identity.
func (a *api) syncIdentity(r *http.Request, c *state.Container, sess *session.Session) {
	ctx := r.Context()
	fresh, err := a.Sessions.Load(ctx, r)
	if err != nil || fresh.ID != sess.ID {
		a.Logger.DebugContext(ctx, "skipping identity sync for a rotated session",
			logger.SessionID(sess.ID),
			logger.Component("api"),
		)
		return
	}
	if matchesSession(c.Snapshot().Identity, auth.Current(fresh)) {
		return
	}
	a.Auth.Restore(fresh)
	a.Logger.DebugContext(ctx, "session identity changed on another instance",
		logger.SessionID(sess.ID),
		logger.Component("api"),
	)
}

// matchesSession reports whether the container identity agrees with the
// identity bound to the session.
func matchesSession(current state.Identity, bound *auth.Identity) bool {
	if bound == nil {
		return current.Status == state.IdentityAbsent
	}
	return current.IsPresent() && current.ID == bound.ID && current.Email == bound.Email
}

func containerFrom(ctx context.Context) *state.Container {
	c, _ := ctx.Value(containerKey{}).(*state.Container)
	return c
}

// sessionFrom returns the request's session; attachState guarantees one.
func sessionFrom(ctx context.Context) *session.Session {
	s, _ := session.FromContext(ctx)
	return s
}

// signedIn returns the present identity of the request's session.
func signedIn(ctx context.Context) (state.Identity, bool) {
	c := containerFrom(ctx)
	if c == nil {
		return state.Identity{}, false
	}
	id := c.Snapshot().Identity
	return id, id.IsPresent()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// recordStatus counts responses by status code.
func (a *api) recordStatus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		a.Recorder.RecordHTTPStatus(rec.status)
	})
}
