package state

// Access is the outcome of gating a read or listen action.
type Access string

const (
	// AccessGranted lets the user open the summary or player.
	AccessGranted Access = "granted"
	// AccessLogin asks the user to sign in; the sign-in modal should open.
	AccessLogin Access = "login"
	// AccessWait means the identity or tier is still being resolved.
	AccessWait Access = "wait"
	// AccessChoosePlan sends the user to the plan picker.
	AccessChoosePlan Access = "choose_plan"
)

// Gate decides whether the session in s may read or listen to a book.
func Gate(s Snapshot, requiresSubscription bool) Access {
	switch {
	case s.Identity.Status == IdentityUnknown:
		return AccessWait
	case !s.Identity.IsPresent():
		return AccessLogin
	case s.SubscriptionLoading:
		return AccessWait
	case requiresSubscription && !s.Tier.IsPaid():
		return AccessChoosePlan
	default:
		return AccessGranted
	}
}

// Gate evaluates access against the current state and opens the sign-in
// modal when the user has to sign in first.
func (c *Container) Gate(requiresSubscription bool) Access {
	access := Gate(c.Snapshot(), requiresSubscription)
	if access == AccessLogin {
		c.OpenModal()
	}
	return access
}
