package subscription_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/svc/subscription"
)

func TestWebhookSync_SubscriptionLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := docstore.NewMemoryStore()
	resolver := subscription.NewResolver(store)
	provider := &mockProvider{}

	created := &subscription.WebhookEvent{
		Type:               subscription.EventSubscriptionCreated,
		ProviderEvent:      "subscription.created",
		SubscriptionID:     "sub_1",
		CustomerID:         "u1",
		ProviderCustomerID: "ctm_1",
		Status:             "trialing",
		PriceID:            "pri_premium_plus_yearly",
	}
	canceled := &subscription.WebhookEvent{
		Type:           subscription.EventSubscriptionCancelled,
		ProviderEvent:  "subscription.canceled",
		SubscriptionID: "sub_1",
		CustomerID:     "u1",
		PriceID:        "pri_premium_plus_yearly",
		Interval:       "year",
	}
	provider.On("ParseWebhook", mock.Anything, []byte("created"), "sig").Return(created, nil)
	provider.On("ParseWebhook", mock.Anything, []byte("canceled"), "sig").Return(canceled, nil)

	var notified []string
	sync := subscription.NewWebhookSync(store, provider, nil, nil)
	sync.OnChange(func(_ context.Context, customerID string) {
		notified = append(notified, customerID)
	})

	require.NoError(t, sync.Handle(ctx, []byte("created"), "sig"))
	assert.Equal(t, subscription.TierPremiumPlus, resolver.Resolve(ctx, "u1"))

	doc, err := store.Get(ctx, "customers/u1/subscriptions/sub_1")
	require.NoError(t, err)
	assert.Equal(t, "year", doc.String("items", "0", "price", "interval"))
	assert.Equal(t, "ctm_1", doc.String("provider_customer_id"))

	require.NoError(t, sync.Handle(ctx, []byte("canceled"), "sig"))
	assert.Equal(t, subscription.TierBasic, resolver.Resolve(ctx, "u1"))
	assert.Equal(t, []string{"u1", "u1"}, notified)
}

func TestWebhookSync_OutOfOrderDelivery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := docstore.NewMemoryStore()
	resolver := subscription.NewResolver(store)
	sync := subscription.NewWebhookSync(store, &mockProvider{}, nil, nil)

	notified := 0
	sync.OnChange(func(context.Context, string) { notified++ })

	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	activated := &subscription.WebhookEvent{
		Type:           subscription.EventSubscriptionUpdated,
		SubscriptionID: "sub_1",
		CustomerID:     "u1",
		Status:         "active",
		PriceID:        "pri_premium_plus_yearly",
		Interval:       "year",
		OccurredAt:     at,
	}
	canceled := &subscription.WebhookEvent{
		Type:           subscription.EventSubscriptionCancelled,
		SubscriptionID: "sub_1",
		CustomerID:     "u1",
		PriceID:        "pri_premium_plus_yearly",
		Interval:       "year",
		OccurredAt:     at.Add(time.Minute),
	}

	// the cancellation arrives first
	require.NoError(t, sync.Apply(ctx, canceled))
	require.NoError(t, sync.Apply(ctx, activated))

	assert.Equal(t, subscription.TierBasic, resolver.Resolve(ctx, "u1"))
	assert.Equal(t, 1, notified)

	doc, err := store.Get(ctx, "customers/u1/subscriptions/sub_1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCanceled, doc.String("status"))
	assert.Equal(t, at.Add(time.Minute).Format(time.RFC3339Nano), doc.String("occurred_at"))

	// a newer event still applies
	reactivated := *activated
	reactivated.OccurredAt = at.Add(2 * time.Minute)
	require.NoError(t, sync.Apply(ctx, &reactivated))
	assert.Equal(t, subscription.TierPremiumPlus, resolver.Resolve(ctx, "u1"))
	assert.Equal(t, 2, notified)
}

func TestWebhookSync_IgnoredEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := docstore.NewMemoryStore()
	sync := subscription.NewWebhookSync(store, &mockProvider{}, nil, nil)

	require.NoError(t, sync.Apply(ctx, &subscription.WebhookEvent{
		Type:           subscription.EventPaymentSucceeded,
		SubscriptionID: "sub_1",
		CustomerID:     "u1",
		Status:         "completed",
	}))
	require.NoError(t, sync.Apply(ctx, &subscription.WebhookEvent{
		Type:           subscription.EventSubscriptionUpdated,
		SubscriptionID: "sub_1",
		Status:         "active",
	}))

	docs, err := store.Query(ctx, subscription.SubscriptionsPath("u1"))
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.ErrorIs(t, sync.Apply(ctx, nil), subscription.ErrInvalidWebhook)
	assert.ErrorIs(t, sync.Apply(ctx, &subscription.WebhookEvent{
		Type:           subscription.EventSubscriptionUpdated,
		SubscriptionID: "sub_1",
		CustomerID:     "u1",
	}), subscription.ErrInvalidWebhook)
}

func TestWebhookSync_InvalidSignature(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	provider.On("ParseWebhook", mock.Anything, mock.Anything, "bad").
		Return(nil, errors.Join(subscription.ErrInvalidWebhook, errors.New("signature mismatch")))

	sync := subscription.NewWebhookSync(docstore.NewMemoryStore(), provider, nil, nil)
	err := sync.Handle(context.Background(), []byte("{}"), "bad")
	assert.ErrorIs(t, err, subscription.ErrInvalidWebhook)

	noProvider := subscription.NewWebhookSync(docstore.NewMemoryStore(), nil, nil, nil)
	assert.ErrorIs(t, noProvider.Handle(context.Background(), nil, ""), subscription.ErrProviderNotReady)
}
