package subscription

import "errors"

var (
	ErrNotAuthenticated   = errors.New("subscription: user is not authenticated")
	ErrUnknownPlan        = errors.New("subscription: unknown plan")
	ErrInvalidPlan        = errors.New("subscription: invalid plan definition")
	ErrFailedToLoadPlans  = errors.New("subscription: failed to load plans")
	ErrCheckoutFailed     = errors.New("subscription: checkout failed")
	ErrNoPortalURL        = errors.New("subscription: no portal URL returned")
	ErrInvalidWebhook     = errors.New("subscription: invalid webhook")
	ErrProviderNotReady   = errors.New("subscription: billing provider is not configured")
	ErrInvalidCheckoutDoc = errors.New("subscription: invalid checkout session document")

	ErrWorkerAlreadyStarted = errors.New("subscription: checkout worker already started")
	ErrWorkerNotStarted     = errors.New("subscription: checkout worker not started")
)
