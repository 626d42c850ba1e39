package subscription

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/metrics"
)

// DefaultResolveTimeout bounds a single tier resolution.
const DefaultResolveTimeout = 10 * time.Second

// SubscriptionsPath returns the collection holding a customer's billing records.
func SubscriptionsPath(customerID string) string {
	return docstore.Join("customers", customerID, "subscriptions")
}

// Record is the stored shape of a billing record.
type Record struct {
	Status             string `json:"status"`
	ProviderCustomerID string `json:"provider_customer_id,omitempty"`
	Items              []Item `json:"items"`
}

// Item is one line of a billing record.
type Item struct {
	Price Price `json:"price"`
}

// Price identifies the billed price and its interval.
type Price struct {
	ID       string `json:"id,omitempty"`
	Interval string `json:"interval"`
}

// Interval returns the interval of the first item or "".
func (r Record) Interval() string {
	if len(r.Items) == 0 {
		return ""
	}
	return r.Items[0].Price.Interval
}

// Resolver derives a Tier from the billing records in the document store.
type Resolver struct {
	store   docstore.Store
	timeout time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder
}

// ResolverOption configures Resolver.
type ResolverOption func(*Resolver)

// WithResolveTimeout bounds every resolution. Non-positive values are ignored.
func WithResolveTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithResolverLogger sets the logger.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithResolverMetrics sets the metrics recorder.
func WithResolverMetrics(m metrics.Recorder) ResolverOption {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewResolver creates a Resolver reading from store.
func NewResolver(store docstore.Store, opts ...ResolverOption) *Resolver {
	if store == nil {
		panic("subscription: document store is required")
	}
	r := &Resolver{
		store:   store,
		timeout: DefaultResolveTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the tier of the given identity. It never fails: any store
// error, decode error or timeout yields TierBasic and is logged.
//
// When several active or trialing records exist the first one by document
// path wins.
func (r *Resolver) Resolve(ctx context.Context, identityID string) Tier {
	if identityID == "" {
		return TierBasic
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tier, err := r.resolve(ctx, identityID)
	if err != nil {
		r.logger.ErrorContext(ctx, "subscription resolution failed, falling back to basic",
			logger.UserID(identityID),
			logger.Component("subscription_resolver"),
			logger.Error(err),
		)
		tier = TierBasic
	}
	r.metrics.RecordResolution(tier.String(), err)
	return tier
}

func (r *Resolver) resolve(ctx context.Context, identityID string) (Tier, error) {
	docs, err := r.store.Query(ctx, SubscriptionsPath(identityID),
		docstore.In("status", StatusActive, StatusTrialing),
	)
	if err != nil {
		return TierBasic, err
	}
	// Stores that ignore the context may return late; treat that as a timeout.
	if err := ctx.Err(); err != nil {
		return TierBasic, err
	}
	if len(docs) == 0 {
		return TierBasic, nil
	}

	var rec Record
	if err := docs[0].Decode(&rec); err != nil {
		return TierBasic, err
	}
	return TierForInterval(rec.Interval()), nil
}
