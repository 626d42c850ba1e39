// Package session manages browser sessions: an opaque token in an HttpOnly
// cookie pointing at a stored Session (memory or Redis).
//
// Every visitor gets a session, signed in or not. The session ID is stable,
// which lets per-session state outlive sign-in and sign-out; the token is
// rotated on both.
//
//	mgr := session.NewManager(session.NewRedisStore(kv), session.WithConfig(cfg))
//	router.Use(mgr.Middleware)
//
//	s, _ := session.FromContext(r.Context())
//	_ = mgr.Authenticate(ctx, w, s, identity.ID, identity.Email)
package session
