package api

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/summarist/handler"
	"github.com/dmitrymomot/summarist/svc/catalog"
)

type libraryResponse struct {
	Saved    []catalog.Book `json:"saved"`
	Finished []catalog.Book `json:"finished"`
}

func (a *api) library(ctx handler.Context, _ struct{}) handler.Response {
	id, ok := signedIn(ctx)
	if !ok {
		return handler.JSONError(handler.ErrUnauthorized)
	}
	lib, err := a.Library.Get(ctx, id.ID)
	if err != nil {
		return handler.JSONError(libraryError(err))
	}
	return handler.JSON(libraryResponse{
		Saved:    a.Catalog.Hydrate(ctx, lib.Saved),
		Finished: a.Catalog.Hydrate(ctx, lib.Finished),
	})
}

type libraryBookRequest struct {
	BookID string `path:"bookId"`
}

func (a *api) save(ctx handler.Context, req libraryBookRequest) handler.Response {
	return a.updateLibrary(ctx, req.BookID, a.Library.Save)
}

func (a *api) unsave(ctx handler.Context, req libraryBookRequest) handler.Response {
	return a.updateLibrary(ctx, req.BookID, a.Library.Remove)
}

func (a *api) finish(ctx handler.Context, req libraryBookRequest) handler.Response {
	return a.updateLibrary(ctx, req.BookID, a.Library.MarkFinished)
}

func (a *api) updateLibrary(ctx handler.Context, bookID string, update func(context.Context, string, string) error) handler.Response {
	id, ok := signedIn(ctx)
	if !ok {
		return handler.JSONError(handler.ErrUnauthorized)
	}
	if err := update(ctx, id.ID, bookID); err != nil {
		return handler.JSONError(libraryError(err))
	}
	return handler.EmptyWithStatus(http.StatusNoContent)
}
