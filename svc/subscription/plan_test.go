package subscription_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/svc/subscription"
)

func TestDefaultPlans(t *testing.T) {
	t.Parallel()

	plans := subscription.DefaultPlans()
	list := plans.List()
	require.Len(t, list, 2)
	assert.Equal(t, "yearly", list[0].ID)
	assert.Equal(t, 7, list[0].TrialDays)
	assert.Equal(t, subscription.TierPremiumPlus, list[0].Tier())
	assert.Equal(t, subscription.TierPremium, list[1].Tier())

	plan, ok := plans.ByPriceID("pri_premium_monthly")
	require.True(t, ok)
	assert.Equal(t, "monthly", plan.ID)

	_, ok = plans.Get("weekly")
	assert.False(t, ok)
}

func TestParsePlans(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		plans, err := subscription.ParsePlans([]byte(`
plans:
  - id: annual
    name: Annual
    price_id: pri_annual
    interval: year
    trial_days: 14
    features: [summaries, audio]
  - id: monthly
    name: Monthly
    price_id: pri_monthly
    interval: month
`))
		require.NoError(t, err)

		plan, ok := plans.Get("annual")
		require.True(t, ok)
		assert.Equal(t, "pri_annual", plan.PriceID)
		assert.Equal(t, 14, plan.TrialDays)
		assert.Equal(t, []string{"summaries", "audio"}, plan.Features)
	})

	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: "plans: []"},
		{name: "missing price", yaml: "plans:\n  - id: a\n    interval: year\n"},
		{name: "bad interval", yaml: "plans:\n  - id: a\n    price_id: p\n    interval: week\n"},
		{name: "duplicate id", yaml: "plans:\n  - id: a\n    price_id: p\n    interval: year\n  - id: a\n    price_id: q\n    interval: month\n"},
		{name: "negative trial", yaml: "plans:\n  - id: a\n    price_id: p\n    interval: year\n    trial_days: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := subscription.ParsePlans([]byte(tt.yaml))
			assert.ErrorIs(t, err, subscription.ErrInvalidPlan)
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		_, err := subscription.ParsePlans([]byte("plans: ["))
		assert.ErrorIs(t, err, subscription.ErrFailedToLoadPlans)
	})
}

func TestLoadPlans(t *testing.T) {
	t.Parallel()

	plans, err := subscription.LoadPlans("")
	require.NoError(t, err)
	assert.Len(t, plans.List(), 2)

	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plans:\n  - id: solo\n    price_id: pri_solo\n    interval: month\n"), 0o600))
	plans, err = subscription.LoadPlans(path)
	require.NoError(t, err)
	require.Len(t, plans.List(), 1)
	assert.Equal(t, "solo", plans.List()[0].ID)

	_, err = subscription.LoadPlans(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, subscription.ErrFailedToLoadPlans)
}
