package state_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/svc/auth"
	"github.com/dmitrymomot/summarist/svc/state"
	"github.com/dmitrymomot/summarist/svc/subscription"
)

func TestGate(t *testing.T) {
	t.Parallel()

	present := func(tier subscription.Tier, loading bool) state.Snapshot {
		return state.Snapshot{Identity: state.Present("u1", "a@b.com"), Tier: tier, SubscriptionLoading: loading}
	}

	tests := []struct {
		name     string
		snap     state.Snapshot
		required bool
		expected state.Access
	}{
		{name: "unknown identity", snap: state.Snapshot{Identity: state.Unknown(), SubscriptionLoading: true}, expected: state.AccessWait},
		{name: "signed out", snap: state.Snapshot{Identity: state.Absent()}, expected: state.AccessLogin},
		{name: "signed out premium book", snap: state.Snapshot{Identity: state.Absent()}, required: true, expected: state.AccessLogin},
		{name: "tier loading", snap: present(subscription.TierBasic, true), required: true, expected: state.AccessWait},
		{name: "basic on free book", snap: present(subscription.TierBasic, false), expected: state.AccessGranted},
		{name: "basic on premium book", snap: present(subscription.TierBasic, false), required: true, expected: state.AccessChoosePlan},
		{name: "premium on premium book", snap: present(subscription.TierPremium, false), required: true, expected: state.AccessGranted},
		{name: "premium plus on premium book", snap: present(subscription.TierPremiumPlus, false), required: true, expected: state.AccessGranted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, state.Gate(tt.snap, tt.required))
		})
	}
}

func TestContainer_GateOpensModal(t *testing.T) {
	t.Parallel()

	c := state.NewContainer(newBlockingResolver())
	assert.Equal(t, state.AccessWait, c.Gate(false))
	assert.False(t, c.Snapshot().ModalOpen)

	c.SetIdentity(nil)
	assert.Equal(t, state.AccessLogin, c.Gate(true))
	assert.True(t, c.Snapshot().ModalOpen)

	c.SetIdentity(&auth.Identity{ID: "u1"})
	assert.Equal(t, state.AccessWait, c.Gate(true))
	require.NoError(t, c.Close())
}

func TestSnapshotJSON(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(state.Snapshot{
		Identity: state.Present("u1", "a@b.com"),
		Tier:     subscription.TierPremiumPlus,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"identity": {"status": "present", "id": "u1", "email": "a@b.com"},
		"modalOpen": false,
		"tier": "premium-plus",
		"subscriptionLoading": false
	}`, string(raw))

	raw, err = json.Marshal(state.Absent())
	require.NoError(t, err)
	assert.JSONEq(t, `{"status": "absent"}`, string(raw))
}
