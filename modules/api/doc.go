// Package api exposes the Summarist backend over HTTP.
//
// Every request carries a browser session (pkg/session). The session's live
// state container is looked up in the state registry and restored from the
// session on first use, so handlers always see a settled identity:
//
//	r := chi.NewRouter()
//	r.Mount("/", api.Router(api.Options{
//		Auth:     authSvc,
//		Sessions: sessionMgr,
//		Registry: registry,
//		Catalog:  catalogClient,
//		Library:  libraryGateway,
//		Checkout: checkoutSvc,
//		Portal:   portalSvc,
//		Webhooks: webhookSync,
//	}))
//
// JSON responses use the handler package envelope. GET /state/stream pushes
// every state snapshot to DataStar clients as signal patches.
package api
