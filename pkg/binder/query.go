package binder

import "net/http"

// Query creates a query string binder.
//
// Struct tags control the parameter name:
//   - `query:"name"` binds parameter "name"
//   - `query:"-"` skips the field
//   - no tag binds the lowercased field name
//
// Supported field types are string, signed and unsigned integers, floats,
// bool, pointers to those and slices (?tag=a&tag=b or ?tag=a,b).
//
//	type searchRequest struct {
//		Query string `query:"q"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", func(name string) []string {
			return r.URL.Query()[name]
		}, ErrFailedToParseQuery)
	}
}
