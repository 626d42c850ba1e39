package api

import (
	"github.com/dmitrymomot/summarist/handler"
	"github.com/dmitrymomot/summarist/pkg/validator"
	"github.com/dmitrymomot/summarist/svc/catalog"
	"github.com/dmitrymomot/summarist/svc/state"
)

type booksRequest struct {
	Status string `query:"status"`
}

func (a *api) books(ctx handler.Context, req booksRequest) handler.Response {
	if err := validator.Apply(validator.OneOfString("status", req.Status, []string{
		string(catalog.StatusSelected),
		string(catalog.StatusRecommended),
		string(catalog.StatusSuggested),
	})); err != nil {
		return handler.JSONError(validationError(err))
	}
	return handler.JSON(a.Catalog.Books(ctx, catalog.Status(req.Status)))
}

type searchRequest struct {
	Query string `query:"q"`
}

func (a *api) search(ctx handler.Context, req searchRequest) handler.Response {
	return handler.JSON(a.Catalog.Search(ctx, req.Query))
}

func (a *api) forYou(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(a.Catalog.ForYou(ctx))
}

type bookRequest struct {
	ID string `path:"id"`
}

func (a *api) book(ctx handler.Context, req bookRequest) handler.Response {
	b, ok := a.Catalog.Book(ctx, req.ID)
	if !ok {
		return handler.JSONError(handler.ErrNotFound)
	}
	return handler.JSON(b)
}

type accessResponse struct {
	Access state.Access   `json:"access"`
	State  state.Snapshot `json:"state"`
}

// access decides whether the session may open the book's summary or player.
// A signed-out session gets the sign-in modal opened.
func (a *api) access(ctx handler.Context, req bookRequest) handler.Response {
	b, ok := a.Catalog.Book(ctx, req.ID)
	if !ok {
		return handler.JSONError(handler.ErrNotFound)
	}
	c := containerFrom(ctx)
	access := c.Gate(b.SubscriptionRequired)
	return handler.JSON(accessResponse{Access: access, State: c.Snapshot()})
}
