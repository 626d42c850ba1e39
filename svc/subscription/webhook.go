package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/logger"
)

// SubscriptionListener is notified after a customer's billing records change,
// typically to refresh live session state.
type SubscriptionListener func(ctx context.Context, customerID string)

// WebhookSync mirrors provider subscription events into
// customers/{uid}/subscriptions/{subID} so the Resolver sees them.
type WebhookSync struct {
	store     docstore.Store
	provider  BillingProvider
	plans     *Plans
	listeners []SubscriptionListener
	logger    *slog.Logger
}

// NewWebhookSync creates a WebhookSync. plans resolves intervals for events
// that only carry a price id.
func NewWebhookSync(store docstore.Store, provider BillingProvider, plans *Plans, l *slog.Logger) *WebhookSync {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if plans == nil {
		plans = DefaultPlans()
	}
	return &WebhookSync{store: store, provider: provider, plans: plans, logger: l}
}

// OnChange registers a listener called after every stored update.
func (s *WebhookSync) OnChange(fn SubscriptionListener) {
	s.listeners = append(s.listeners, fn)
}

// Handle verifies and applies one webhook delivery. Events that carry no
// subscription state or no internal user id are acknowledged and ignored.
func (s *WebhookSync) Handle(ctx context.Context, payload []byte, signature string) error {
	if s.provider == nil {
		return ErrProviderNotReady
	}
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}
	return s.Apply(ctx, event)
}

// Apply stores the subscription state carried by event. Providers may deliver
// events out of order, so an event older than the one already stored is
// acknowledged without writing.
func (s *WebhookSync) Apply(ctx context.Context, event *WebhookEvent) error {
	if event == nil {
		return ErrInvalidWebhook
	}
	log := s.logger.With(
		logger.Event(event.ProviderEvent),
		logger.UserID(event.CustomerID),
		logger.Component("billing_webhook"),
	)

	if !event.Type.IsSubscriptionEvent() {
		log.DebugContext(ctx, "ignoring non-subscription webhook")
		return nil
	}
	if event.CustomerID == "" || event.SubscriptionID == "" {
		log.WarnContext(ctx, "subscription webhook without user or subscription id")
		return nil
	}

	interval := event.Interval
	if interval == "" {
		if plan, ok := s.plans.ByPriceID(event.PriceID); ok {
			interval = plan.Interval
		}
	}

	status := event.Status
	if event.Type == EventSubscriptionCancelled && status == "" {
		status = StatusCanceled
	}
	if status == "" {
		return errors.Join(ErrInvalidWebhook, errors.New("subscription event without status"))
	}

	path := docstore.Join(SubscriptionsPath(event.CustomerID), event.SubscriptionID)
	stale, err := s.isStale(ctx, path, event.OccurredAt)
	if err != nil {
		return err
	}
	if stale {
		log.InfoContext(ctx, "ignoring out-of-order subscription webhook",
			slog.String("status", status),
			slog.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}

	fields := map[string]any{
		"status": status,
		"items": []map[string]any{
			{"price": map[string]any{"id": event.PriceID, "interval": interval}},
		},
		"provider_customer_id": event.ProviderCustomerID,
		"updated_at":           time.Now().UTC().Format(time.RFC3339),
	}
	if !event.OccurredAt.IsZero() {
		fields["occurred_at"] = event.OccurredAt.UTC().Format(time.RFC3339Nano)
	}
	if err := s.store.Set(ctx, path, fields); err != nil {
		return err
	}

	log.InfoContext(ctx, "subscription synced",
		slog.String("status", status),
		slog.String("interval", interval),
	)
	for _, fn := range s.listeners {
		fn(ctx, event.CustomerID)
	}
	return nil
}

// isStale reports whether the stored record was written from an event that
// occurred after occurredAt. Events without a timestamp always apply.
func (s *WebhookSync) isStale(ctx context.Context, path string, occurredAt time.Time) (bool, error) {
	if occurredAt.IsZero() {
		return false, nil
	}
	doc, err := s.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	stored, err := time.Parse(time.RFC3339Nano, doc.String("occurred_at"))
	if err != nil {
		return false, nil
	}
	return stored.After(occurredAt), nil
}
