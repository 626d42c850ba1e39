package subscription_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/metrics"
	"github.com/dmitrymomot/summarist/svc/subscription"
)

// failingStore fails every query.
type failingStore struct {
	*docstore.MemoryStore
	err error
}

func (s *failingStore) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]*docstore.Document, error) {
	return nil, s.err
}

// slowStore blocks queries until the context is done.
type slowStore struct {
	*docstore.MemoryStore
}

func (s *slowStore) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]*docstore.Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type resolutionRecorder struct {
	metrics.Noop
	mu     sync.Mutex
	tiers  []string
	failed int
}

func (r *resolutionRecorder) RecordResolution(tier string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers = append(r.tiers, tier)
	if err != nil {
		r.failed++
	}
}

func putRecord(t *testing.T, store docstore.Store, uid, id, status, interval string) {
	t.Helper()
	err := store.Set(context.Background(), docstore.Join(subscription.SubscriptionsPath(uid), id), map[string]any{
		"status": status,
		"items": []map[string]any{
			{"price": map[string]any{"id": "pri_" + id, "interval": interval}},
		},
	})
	require.NoError(t, err)
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		records  [][3]string // id, status, interval
		expected subscription.Tier
	}{
		{name: "no records", expected: subscription.TierBasic},
		{name: "active yearly", records: [][3]string{{"sub1", "active", "year"}}, expected: subscription.TierPremiumPlus},
		{name: "trialing yearly", records: [][3]string{{"sub1", "trialing", "year"}}, expected: subscription.TierPremiumPlus},
		{name: "active monthly", records: [][3]string{{"sub1", "active", "month"}}, expected: subscription.TierPremium},
		{name: "missing interval", records: [][3]string{{"sub1", "active", ""}}, expected: subscription.TierPremium},
		{name: "canceled yearly", records: [][3]string{{"sub1", "canceled", "year"}}, expected: subscription.TierBasic},
		{name: "past due monthly", records: [][3]string{{"sub1", "past_due", "month"}}, expected: subscription.TierBasic},
		{
			name:     "first record by path wins",
			records:  [][3]string{{"sub_b", "active", "year"}, {"sub_a", "active", "month"}},
			expected: subscription.TierPremium,
		},
		{
			name:     "inactive records are skipped",
			records:  [][3]string{{"sub_a", "canceled", "month"}, {"sub_b", "trialing", "year"}},
			expected: subscription.TierPremiumPlus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := docstore.NewMemoryStore()
			for _, r := range tt.records {
				putRecord(t, store, "u1", r[0], r[1], r[2])
			}

			resolver := subscription.NewResolver(store)
			assert.Equal(t, tt.expected, resolver.Resolve(context.Background(), "u1"))
		})
	}
}

func TestResolver_RecordsOfOtherUsersAreIgnored(t *testing.T) {
	t.Parallel()

	store := docstore.NewMemoryStore()
	putRecord(t, store, "u2", "sub1", "active", "year")

	resolver := subscription.NewResolver(store)
	assert.Equal(t, subscription.TierBasic, resolver.Resolve(context.Background(), "u1"))
	assert.Equal(t, subscription.TierPremiumPlus, resolver.Resolve(context.Background(), "u2"))
}

func TestResolver_EmptyIdentity(t *testing.T) {
	t.Parallel()

	rec := &resolutionRecorder{}
	resolver := subscription.NewResolver(docstore.NewMemoryStore(), subscription.WithResolverMetrics(rec))

	assert.Equal(t, subscription.TierBasic, resolver.Resolve(context.Background(), ""))
	assert.Empty(t, rec.tiers)
}

func TestResolver_FailuresYieldBasic(t *testing.T) {
	t.Parallel()

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		rec := &resolutionRecorder{}
		store := &failingStore{MemoryStore: docstore.NewMemoryStore(), err: errors.New("permission denied")}
		putRecord(t, store, "u1", "sub1", "active", "year")

		resolver := subscription.NewResolver(store, subscription.WithResolverMetrics(rec))
		assert.Equal(t, subscription.TierBasic, resolver.Resolve(context.Background(), "u1"))
		assert.Equal(t, []string{"basic"}, rec.tiers)
		assert.Equal(t, 1, rec.failed)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		rec := &resolutionRecorder{}
		resolver := subscription.NewResolver(
			&slowStore{MemoryStore: docstore.NewMemoryStore()},
			subscription.WithResolveTimeout(20*time.Millisecond),
			subscription.WithResolverMetrics(rec),
		)

		start := time.Now()
		assert.Equal(t, subscription.TierBasic, resolver.Resolve(context.Background(), "u1"))
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, 1, rec.failed)
	})

	t.Run("malformed record", func(t *testing.T) {
		t.Parallel()
		store := docstore.NewMemoryStore()
		require.NoError(t, store.Set(context.Background(), "customers/u1/subscriptions/sub1", map[string]any{
			"status": "active",
			"items":  "not-a-list",
		}))

		resolver := subscription.NewResolver(store)
		assert.Equal(t, subscription.TierBasic, resolver.Resolve(context.Background(), "u1"))
	})
}

func TestTierForInterval(t *testing.T) {
	t.Parallel()

	assert.Equal(t, subscription.TierPremiumPlus, subscription.TierForInterval("year"))
	assert.Equal(t, subscription.TierPremium, subscription.TierForInterval("month"))
	assert.Equal(t, subscription.TierPremium, subscription.TierForInterval(""))
	assert.True(t, subscription.TierPremium.IsPaid())
	assert.True(t, subscription.TierPremiumPlus.IsPaid())
	assert.False(t, subscription.TierBasic.IsPaid())
	assert.Equal(t, "premium-plus", subscription.TierPremiumPlus.String())
}
