package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/summarist/handler"
	"github.com/dmitrymomot/summarist/pkg/binder"
	"github.com/dmitrymomot/summarist/pkg/clientip"
	"github.com/dmitrymomot/summarist/pkg/metrics"
	"github.com/dmitrymomot/summarist/pkg/ratelimit"
	"github.com/dmitrymomot/summarist/pkg/requestid"
	"github.com/dmitrymomot/summarist/pkg/session"
	"github.com/dmitrymomot/summarist/svc/auth"
	"github.com/dmitrymomot/summarist/svc/catalog"
	"github.com/dmitrymomot/summarist/svc/library"
	"github.com/dmitrymomot/summarist/svc/state"
	"github.com/dmitrymomot/summarist/svc/subscription"
)

// Options wires the services behind the routes. Auth, Sessions, Registry,
// Catalog and Library are required; billing routes answer 503 while their
// service is nil.
type Options struct {
	Auth     *auth.Service
	Sessions *session.Manager
	Registry *state.Registry
	Catalog  *catalog.Client
	Library  *library.Gateway
	Checkout *subscription.CheckoutService
	Portal   *subscription.PortalService
	Webhooks *subscription.WebhookSync

	// AuthLimiter throttles sign-in attempts per client address.
	AuthLimiter *ratelimit.Limiter
	// AfterLoginPath is where the Google callback sends the browser.
	AfterLoginPath string

	Health  http.Handler
	Metrics http.Handler

	Logger   *slog.Logger
	Recorder metrics.Recorder
}

type api struct {
	Options
	errorHandler handler.ErrorHandler[handler.Context]
}

// Router builds the HTTP routes.
func Router(opts Options) chi.Router {
	if opts.Auth == nil || opts.Sessions == nil || opts.Registry == nil || opts.Catalog == nil || opts.Library == nil {
		panic("api: auth, sessions, registry, catalog and library are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.Noop{}
	}
	if opts.AfterLoginPath == "" {
		opts.AfterLoginPath = "/for-you"
	}
	a := &api{Options: opts, errorHandler: handler.NewErrorHandler(opts.Logger)}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware, a.recordStatus)

	if opts.Health != nil {
		r.Method(http.MethodGet, "/healthz", opts.Health)
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	// provider callbacks carry no browser session
	r.Post("/billing/webhook", a.webhook)

	r.Group(func(r chi.Router) {
		r.Use(opts.Sessions.Middleware, a.attachState)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if opts.AuthLimiter != nil {
					r.Use(opts.AuthLimiter.Middleware(ratelimit.ByClientIP, a.rejectTooManyAttempts))
				}
				r.Post("/register", wrap(a, a.register, binder.JSON()))
				r.Post("/login", wrap(a, a.login, binder.JSON()))
				r.Post("/guest", wrap(a, a.guest))
			})
			r.Post("/logout", wrap(a, a.logout))
			r.Get("/google", wrap(a, a.googleStart))
			r.Get("/google/callback", wrap(a, a.googleCallback, binder.Query()))
		})

		r.Route("/state", func(r chi.Router) {
			r.Get("/", wrap(a, a.state))
			r.Get("/stream", wrap(a, a.stream))
			r.Post("/modal/open", wrap(a, a.openModal))
			r.Post("/modal/close", wrap(a, a.closeModal))
			r.Post("/refresh", wrap(a, a.refresh))
		})

		r.Get("/for-you", wrap(a, a.forYou))
		r.Route("/books", func(r chi.Router) {
			r.Get("/", wrap(a, a.books, binder.Query()))
			r.Get("/search", wrap(a, a.search, binder.Query()))
			r.Get("/{id}", wrap(a, a.book, binder.Path(chi.URLParam)))
			r.Get("/{id}/access", wrap(a, a.access, binder.Path(chi.URLParam)))
		})

		r.Route("/library", func(r chi.Router) {
			r.Get("/", wrap(a, a.library))
			r.Put("/saved/{bookId}", wrap(a, a.save, binder.Path(chi.URLParam)))
			r.Delete("/saved/{bookId}", wrap(a, a.unsave, binder.Path(chi.URLParam)))
			r.Put("/finished/{bookId}", wrap(a, a.finish, binder.Path(chi.URLParam)))
		})

		r.Route("/billing", func(r chi.Router) {
			r.Get("/plans", wrap(a, a.plans))
			r.Post("/checkout", wrap(a, a.checkout, binder.JSON()))
			r.Post("/portal", wrap(a, a.portal))
		})
	})

	return r
}

// wrap adapts a typed handler with the shared error handler.
func wrap[R any](a *api, h handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](a.errorHandler),
	)
}
