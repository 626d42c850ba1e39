package subscription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/metrics"
)

// DefaultCheckoutTimeout bounds the wait for a checkout URL.
const DefaultCheckoutTimeout = 30 * time.Second

// CheckoutSessionsPath returns the collection of a customer's checkout sessions.
func CheckoutSessionsPath(customerID string) string {
	return docstore.Join("customers", customerID, "checkout_sessions")
}

// Dispatcher hands a freshly written checkout-session document to whatever
// fills in its url or error.
type Dispatcher interface {
	Dispatch(ctx context.Context, path string)
}

// CheckoutService creates checkout sessions and waits for the hosted URL.
//
// A session is a document holding {price, success_url, cancel_url}. The
// billing side later writes either "url" or "error.message" into it; the
// first of the two to appear settles the call.
type CheckoutService struct {
	store      docstore.Store
	plans      *Plans
	dispatcher Dispatcher
	cfg        Config
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// CheckoutOption configures CheckoutService.
type CheckoutOption func(*CheckoutService)

// WithDispatcher sets the session processor notified after each write.
func WithDispatcher(d Dispatcher) CheckoutOption {
	return func(s *CheckoutService) {
		s.dispatcher = d
	}
}

// WithCheckoutConfig sets timeouts and redirect URLs.
func WithCheckoutConfig(cfg Config) CheckoutOption {
	return func(s *CheckoutService) {
		s.cfg = cfg
	}
}

// WithCheckoutLogger sets the logger.
func WithCheckoutLogger(l *slog.Logger) CheckoutOption {
	return func(s *CheckoutService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCheckoutMetrics sets the metrics recorder.
func WithCheckoutMetrics(m metrics.Recorder) CheckoutOption {
	return func(s *CheckoutService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(store docstore.Store, plans *Plans, opts ...CheckoutOption) *CheckoutService {
	if store == nil {
		panic("subscription: document store is required")
	}
	if plans == nil {
		plans = DefaultPlans()
	}
	s := &CheckoutService{
		store: store,
		plans: plans,
		cfg: Config{
			CheckoutTimeout: DefaultCheckoutTimeout,
			BaseURL:         "http://localhost:8080",
			SuccessPath:     "/for-you",
			CancelPath:      "/choose-plan",
		},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.CheckoutTimeout <= 0 {
		s.cfg.CheckoutTimeout = DefaultCheckoutTimeout
	}
	return s
}

// Plans returns the plan catalog.
func (s *CheckoutService) Plans() *Plans {
	return s.plans
}

// CheckoutURL creates a checkout session for the plan and returns the hosted
// checkout URL once the billing side provides it.
func (s *CheckoutService) CheckoutURL(ctx context.Context, customerID, planID string) (string, error) {
	if customerID == "" {
		return "", ErrNotAuthenticated
	}
	plan, ok := s.plans.Get(planID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}

	path, err := s.store.Add(ctx, CheckoutSessionsPath(customerID), map[string]any{
		"price":       plan.PriceID,
		"plan":        plan.ID,
		"success_url": s.url(s.cfg.SuccessPath),
		"cancel_url":  s.url(s.cfg.CancelPath),
	})
	if err != nil {
		s.metrics.RecordCheckout("store_error")
		return "", errors.Join(ErrCheckoutFailed, err)
	}

	log := s.logger.With(
		logger.UserID(customerID),
		logger.Plan(plan.ID),
		logger.Path(path),
		logger.Component("checkout"),
	)
	log.InfoContext(ctx, "checkout session created")

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, path)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.CheckoutTimeout)
	defer cancel()

	var url string
	err = docstore.WaitFor(waitCtx, s.store, path, func(doc *docstore.Document) (bool, error) {
		if msg := doc.String("error", "message"); msg != "" {
			return false, fmt.Errorf("%w: %s", ErrCheckoutFailed, msg)
		}
		url = doc.String("url")
		return url != "", nil
	})
	switch {
	case err == nil:
		s.metrics.RecordCheckout("resolved")
		log.InfoContext(ctx, "checkout url ready")
		return url, nil
	case errors.Is(err, ErrCheckoutFailed):
		s.metrics.RecordCheckout("rejected")
		log.WarnContext(ctx, "checkout rejected", logger.Error(err))
		return "", err
	default:
		s.metrics.RecordCheckout("timeout")
		log.ErrorContext(ctx, "checkout did not settle", logger.Error(err))
		return "", errors.Join(ErrCheckoutFailed, err)
	}
}

func (s *CheckoutService) url(path string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + path
}
