package binder

import (
	"fmt"
	"net/http"
)

// Path creates a path parameter binder using the router's extractor,
// for example chi.URLParam.
//
//	type bookRequest struct {
//		BookID string `path:"id"`
//	}
//
//	r.Get("/books/{id}", handler.Wrap(h.book,
//		handler.WithBinders[handler.Context, bookRequest](binder.Path(chi.URLParam)),
//	))
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrFailedToParsePath)
		}
		return bindToStruct(v, "path", func(name string) []string {
			if value := extractor(r, name); value != "" {
				return []string{value}
			}
			return nil
		}, ErrFailedToParsePath)
	}
}
