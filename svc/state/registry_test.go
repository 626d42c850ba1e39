package state_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/pkg/metrics"
	"github.com/dmitrymomot/summarist/svc/auth"
	"github.com/dmitrymomot/summarist/svc/state"
	"github.com/dmitrymomot/summarist/svc/subscription"
)

type sessionsRecorder struct {
	metrics.Noop
	mu   sync.Mutex
	last int
}

func (r *sessionsRecorder) SetActiveSessions(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = n
}

func (r *sessionsRecorder) value() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func TestRegistry_GetWiresIdentityChannel(t *testing.T) {
	t.Parallel()

	resolver := newBlockingResolver()
	channel := auth.NewChannel()
	registry := state.NewRegistry(resolver, channel)
	defer registry.Close()

	c, created := registry.Get("s1")
	require.True(t, created)
	assert.Equal(t, state.IdentityUnknown, c.Snapshot().Identity.Status)

	same, created := registry.Get("s1")
	assert.False(t, created)
	assert.Same(t, c, same)

	channel.Publish("s1", &auth.Identity{ID: "u1", Email: "a@b.com"})
	assert.Equal(t, state.Present("u1", "a@b.com"), c.Snapshot().Identity)
	resolver.gate("u1") <- subscription.TierPremiumPlus
	c.Wait()
	assert.Equal(t, subscription.TierPremiumPlus, c.Snapshot().Tier)

	channel.Publish("s1", nil)
	assert.Equal(t, state.IdentityAbsent, c.Snapshot().Identity.Status)

	other, _ := registry.Get("s2")
	assert.Equal(t, state.IdentityUnknown, other.Snapshot().Identity.Status)
}

func TestRegistry_NewContainerReceivesRestoredIdentity(t *testing.T) {
	t.Parallel()

	channel := auth.NewChannel()
	channel.Publish("s1", nil)

	registry := state.NewRegistry(newBlockingResolver(), channel)
	c, created := registry.Get("s1")
	require.True(t, created)

	snap := c.Snapshot()
	assert.Equal(t, state.IdentityAbsent, snap.Identity.Status)
	assert.False(t, snap.SubscriptionLoading)
}

func TestRegistry_EvictionClosesContainer(t *testing.T) {
	t.Parallel()

	rec := &sessionsRecorder{}
	channel := auth.NewChannel()
	registry := state.NewRegistry(newBlockingResolver(), channel,
		state.WithCapacity(1),
		state.WithRegistryMetrics(rec),
	)

	first, _ := registry.Get("s1")
	_, _ = registry.Get("s2")
	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, 1, rec.value())

	channel.Publish("s1", nil)
	first.OpenModal()
	snap := first.Snapshot()
	assert.Equal(t, state.IdentityUnknown, snap.Identity.Status)
	assert.False(t, snap.ModalOpen)

	// the evicted session gets a fresh container
	again, created := registry.Get("s1")
	assert.True(t, created)
	assert.NotSame(t, first, again)
	assert.Equal(t, 1, registry.Len())

	registry.Release("s1")
	assert.Equal(t, 0, registry.Len())
	assert.Eventually(t, func() bool { return rec.value() == 0 }, time.Second, time.Millisecond)
}

func TestRegistry_RefreshUser(t *testing.T) {
	t.Parallel()

	resolver := newBlockingResolver()
	channel := auth.NewChannel()
	registry := state.NewRegistry(resolver, channel)
	defer registry.Close()

	laptop, _ := registry.Get("laptop")
	phone, _ := registry.Get("phone")
	other, _ := registry.Get("other")
	channel.Publish("laptop", &auth.Identity{ID: "u1"})
	channel.Publish("phone", &auth.Identity{ID: "u1"})
	channel.Publish("other", &auth.Identity{ID: "u2"})
	resolver.waitCalls(t, 3)
	resolver.gate("u1") <- subscription.TierBasic
	resolver.gate("u1") <- subscription.TierBasic
	resolver.gate("u2") <- subscription.TierBasic
	laptop.Wait()
	phone.Wait()
	other.Wait()

	assert.Equal(t, 2, registry.RefreshUser("u1"))
	assert.True(t, laptop.Snapshot().SubscriptionLoading)
	assert.True(t, phone.Snapshot().SubscriptionLoading)
	assert.False(t, other.Snapshot().SubscriptionLoading)
	assert.Zero(t, registry.RefreshUser(""))
}

func TestNewRegistry_PanicsWithoutDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { state.NewRegistry(nil, auth.NewChannel()) })
	assert.Panics(t, func() { state.NewRegistry(newBlockingResolver(), nil) })
}
