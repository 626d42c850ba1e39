// Package binder decodes HTTP request data into typed request structs.
//
// Each binder is a func(r *http.Request, v any) error that reads one source:
//
//   - JSON() decodes the request body (strict: unknown fields are rejected)
//   - Query() reads `query:"..."` tagged fields from the URL query
//   - Path(extractor) reads `path:"..."` tagged fields via a router extractor
//
// Binders are composed by handler.WithBinders and applied in order. A binder
// that finds nothing to read returns ErrBinderNotApplicable and is skipped.
//
//	type saveRequest struct {
//		BookID string `path:"bookId"`
//	}
//
//	r.Put("/library/saved/{bookId}", handler.Wrap(h.save,
//		handler.WithBinders[handler.Context, saveRequest](binder.Path(chi.URLParam)),
//	))
package binder
