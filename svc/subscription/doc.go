// Package subscription resolves a user's billing tier and drives the hosted
// checkout and customer portal flows.
//
// Billing state lives in the document store under
// customers/{uid}/subscriptions. Resolver reads it, WebhookSync writes it from
// provider webhooks. Checkout is asynchronous: CheckoutService writes a
// document to customers/{uid}/checkout_sessions and waits until the
// CheckoutWorker fills in either a url or an error message.
//
// Basic usage:
//
//	resolver := subscription.NewResolver(store)
//	tier := resolver.Resolve(ctx, userID)
//
//	worker := subscription.NewCheckoutWorker(store, provider)
//	_ = worker.Start(ctx)
//	checkout := subscription.NewCheckoutService(store, plans,
//		subscription.WithDispatcher(worker),
//	)
//	url, err := checkout.CheckoutURL(ctx, userID, "yearly")
package subscription
