package subscription

import (
	"context"
	"time"
)

// BillingProvider is the minimal surface of a hosted payment provider.
// Checkout and portal pages are hosted by the provider, so no card data
// passes through this service.
type BillingProvider interface {
	// CreateCheckoutLink creates a hosted checkout session.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// GetCustomerPortalLink returns a short-lived link to the customer portal
	// where subscribers update payment methods or cancel.
	GetCustomerPortalLink(ctx context.Context, req PortalRequest) (*PortalLink, error)

	// ParseWebhook verifies the signature and normalizes the payload.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	PriceID    string
	CustomerID string // internal user id, echoed back in webhooks
	Email      string
	SuccessURL string
	CancelURL  string
}

// CheckoutLink represents a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalRequest identifies the provider customer and subscriptions.
type PortalRequest struct {
	ProviderCustomerID string
	SubscriptionIDs    []string
	ReturnURL          string
}

// PortalLink represents a customer portal session.
type PortalLink struct {
	URL       string
	ExpiresAt time.Time
}

// EventType is the normalized billing event type.
type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription_created"
	EventSubscriptionUpdated   EventType = "subscription_updated"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
	EventSubscriptionResumed   EventType = "subscription_resumed"
	EventPaymentSucceeded      EventType = "payment_succeeded"
	EventPaymentFailed         EventType = "payment_failed"
)

// IsSubscriptionEvent reports whether the event carries subscription state.
func (t EventType) IsSubscriptionEvent() bool {
	switch t {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionCancelled, EventSubscriptionResumed:
		return true
	}
	return false
}

// WebhookEvent is a provider webhook normalized to what the sync needs.
type WebhookEvent struct {
	ID                 string
	Type               EventType
	ProviderEvent      string
	SubscriptionID     string
	CustomerID         string // internal user id from custom data
	ProviderCustomerID string
	Status             string
	PriceID            string
	Interval           string
	OccurredAt         time.Time
}
