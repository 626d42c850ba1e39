package api

import (
	"net/http"

	"github.com/dmitrymomot/summarist/handler"
	"github.com/dmitrymomot/summarist/pkg/validator"
	"github.com/dmitrymomot/summarist/svc/auth"
	"github.com/dmitrymomot/summarist/svc/state"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r credentialsRequest) validate() error {
	return validator.Apply(
		validator.RequiredString("email", r.Email),
		validator.MaxLenString("email", r.Email, 254),
		validator.RequiredString("password", r.Password),
		// bcrypt ignores everything past 72 bytes
		validator.MaxLenString("password", r.Password, 72),
	)
}

type authResponse struct {
	Identity *auth.Identity `json:"identity"`
	State    state.Snapshot `json:"state"`
}

type signInFunc func(ctx handler.Context) (*auth.Identity, error)

// signIn runs fn and closes the sign-in modal once it succeeds. On failure
// the modal stays open so the user can retry.
func (a *api) signIn(ctx handler.Context, fn signInFunc) handler.Response {
	id, err := fn(ctx)
	if err != nil {
		return handler.JSONError(authError(err))
	}
	c := containerFrom(ctx)
	c.CloseModal()
	return handler.JSON(authResponse{Identity: id, State: c.Snapshot()})
}

func (a *api) register(ctx handler.Context, req credentialsRequest) handler.Response {
	if err := req.validate(); err != nil {
		return handler.JSONError(validationError(err))
	}
	return a.signIn(ctx, func(ctx handler.Context) (*auth.Identity, error) {
		return a.Auth.Register(ctx, ctx.ResponseWriter(), sessionFrom(ctx), req.Email, req.Password)
	})
}

func (a *api) login(ctx handler.Context, req credentialsRequest) handler.Response {
	if err := req.validate(); err != nil {
		return handler.JSONError(validationError(err))
	}
	return a.signIn(ctx, func(ctx handler.Context) (*auth.Identity, error) {
		return a.Auth.Login(ctx, ctx.ResponseWriter(), sessionFrom(ctx), req.Email, req.Password)
	})
}

func (a *api) guest(ctx handler.Context, _ struct{}) handler.Response {
	return a.signIn(ctx, func(ctx handler.Context) (*auth.Identity, error) {
		return a.Auth.Guest(ctx, ctx.ResponseWriter(), sessionFrom(ctx))
	})
}

func (a *api) logout(ctx handler.Context, _ struct{}) handler.Response {
	if err := a.Auth.Logout(ctx, ctx.ResponseWriter(), sessionFrom(ctx)); err != nil {
		return handler.JSONError(authError(err))
	}
	return handler.JSON(containerFrom(ctx).Snapshot())
}

func (a *api) googleStart(ctx handler.Context, _ struct{}) handler.Response {
	url, err := a.Auth.GoogleAuthURL(ctx)
	if err != nil {
		return handler.JSONError(authError(err))
	}
	return handler.Redirect(url)
}

type googleCallbackRequest struct {
	State string `query:"state"`
	Code  string `query:"code"`
	Error string `query:"error"`
}

func (a *api) googleCallback(ctx handler.Context, req googleCallbackRequest) handler.Response {
	if req.Error != "" || req.Code == "" {
		return handler.JSONError(authError(auth.ErrInvalidCode))
	}
	if _, err := a.Auth.GoogleCallback(ctx, ctx.ResponseWriter(), sessionFrom(ctx), req.State, req.Code); err != nil {
		return handler.JSONError(authError(err))
	}
	containerFrom(ctx).CloseModal()
	return handler.Redirect(a.AfterLoginPath)
}

// rejectTooManyAttempts answers rate limited sign-in attempts with the
// modal's message.
func (a *api) rejectTooManyAttempts(w http.ResponseWriter, r *http.Request) {
	_ = handler.JSONError(authError(auth.ErrTooManyRequests)).Render(w, r)
}
