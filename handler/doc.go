// Package handler provides type-safe HTTP request handling.
//
// Handlers are generic functions that receive a bound request struct and
// return a Response. Wrap turns them into http.HandlerFunc values:
//
//	type checkoutRequest struct {
//		Plan string `json:"plan"`
//	}
//
//	func (h *Handler) checkout(ctx handler.Context, req checkoutRequest) handler.Response {
//		url, err := h.checkout.CheckoutURL(ctx, identity, req.Plan)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(map[string]string{"url": url})
//	}
//
//	r.Post("/billing/checkout", handler.Wrap(h.checkout,
//		handler.WithBinders[handler.Context, checkoutRequest](binder.JSON()),
//	))
//
// # Responses
//
//	handler.JSON(data)                          // 200 {"data": ...}
//	handler.JSON(data, handler.WithJSONStatus(201))
//	handler.JSONError(err)                      // {"error": {"code", "message", "details"}}
//	handler.Empty()                             // 204
//	handler.Redirect("/for-you")                // 303
//	handler.SSE(func(stream handler.StreamContext) error { ... })
//
// # Errors
//
// HTTPError carries a status code and a machine key. ValidationError maps
// field names to messages and renders as 422. Any other error renders as 500
// without exposing its message. Binding failures are wrapped with
// ErrBadRequest.
//
// # Streaming
//
// SSE responses require a DataStar request (Accept: text/event-stream) and
// push signal patches through StreamContext.SendSignals until the client
// disconnects.
package handler
