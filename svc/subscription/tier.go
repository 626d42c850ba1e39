package subscription

// Tier is the billing classification that governs feature access.
type Tier string

const (
	TierBasic       Tier = "basic"
	TierPremium     Tier = "premium"
	TierPremiumPlus Tier = "premium-plus"
)

func (t Tier) String() string {
	return string(t)
}

// IsPaid reports whether the tier unlocks subscriber-only content.
func (t Tier) IsPaid() bool {
	return t == TierPremium || t == TierPremiumPlus
}

// TierForInterval maps a billing interval to its tier: yearly billing is
// PremiumPlus, anything else is Premium.
func TierForInterval(interval string) Tier {
	if interval == IntervalYear {
		return TierPremiumPlus
	}
	return TierPremium
}

// Subscription statuses written by the billing sync.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
	StatusPaused   = "paused"
)

// Billing intervals.
const (
	IntervalYear  = "year"
	IntervalMonth = "month"
)
