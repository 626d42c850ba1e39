package subscription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/logger"
)

// PortalService issues customer billing portal links.
type PortalService struct {
	store     docstore.Store
	provider  BillingProvider
	returnURL string
	logger    *slog.Logger
}

// NewPortalService creates a PortalService. returnURL is where the portal
// sends the customer back to.
func NewPortalService(store docstore.Store, provider BillingProvider, cfg Config, l *slog.Logger) *PortalService {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PortalService{
		store:     store,
		provider:  provider,
		returnURL: strings.TrimRight(cfg.BaseURL, "/") + cfg.PortalReturn,
		logger:    l,
	}
}

// PortalURL returns a portal link for the customer's current subscription.
// Customers without an active or trialing subscription get ErrNoPortalURL.
func (s *PortalService) PortalURL(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", ErrNotAuthenticated
	}
	if s.provider == nil {
		return "", ErrProviderNotReady
	}

	docs, err := s.store.Query(ctx, SubscriptionsPath(customerID),
		docstore.In("status", StatusActive, StatusTrialing, StatusPastDue),
	)
	if err != nil {
		return "", fmt.Errorf("failed to load subscriptions: %w", err)
	}
	if len(docs) == 0 {
		return "", ErrNoPortalURL
	}

	var rec Record
	if err := docs[0].Decode(&rec); err != nil {
		return "", err
	}
	if rec.ProviderCustomerID == "" {
		return "", fmt.Errorf("%w: subscription has no billing customer", ErrNoPortalURL)
	}

	link, err := s.provider.GetCustomerPortalLink(ctx, PortalRequest{
		ProviderCustomerID: rec.ProviderCustomerID,
		SubscriptionIDs:    []string{docs[0].ID()},
		ReturnURL:          s.returnURL,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create portal link",
			logger.UserID(customerID),
			logger.Error(err),
			logger.Component("billing_portal"),
		)
		if errors.Is(err, ErrNoPortalURL) {
			return "", err
		}
		return "", errors.Join(ErrNoPortalURL, err)
	}
	if link == nil || link.URL == "" {
		return "", ErrNoPortalURL
	}
	return link.URL, nil
}
