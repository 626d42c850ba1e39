package subscription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/summarist/pkg/docstore"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/metrics"
)

// CheckoutWorker fills pending checkout-session documents with a hosted
// checkout URL from the billing provider, or with an error message.
// It implements Dispatcher.
type CheckoutWorker struct {
	store    docstore.Store
	provider BillingProvider
	logger   *slog.Logger
	metrics  metrics.Recorder

	workers     int
	taskTimeout time.Duration
	jobs        chan string

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WorkerOption configures CheckoutWorker.
type WorkerOption func(*CheckoutWorker)

// WithWorkers sets the number of concurrent processors.
func WithWorkers(n int) WorkerOption {
	return func(w *CheckoutWorker) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithWorkerLogger sets the logger.
func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(w *CheckoutWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithWorkerMetrics sets the metrics recorder.
func WithWorkerMetrics(m metrics.Recorder) WorkerOption {
	return func(w *CheckoutWorker) {
		if m != nil {
			w.metrics = m
		}
	}
}

// NewCheckoutWorker creates a worker. Call Start before dispatching.
func NewCheckoutWorker(store docstore.Store, provider BillingProvider, opts ...WorkerOption) *CheckoutWorker {
	if store == nil {
		panic("subscription: document store is required")
	}
	if provider == nil {
		panic("subscription: billing provider is required")
	}
	w := &CheckoutWorker{
		store:       store,
		provider:    provider,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:     metrics.Noop{},
		workers:     4,
		taskTimeout: 20 * time.Second,
		jobs:        make(chan string, 128),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the processors. They stop when ctx is done or Stop is called.
func (w *CheckoutWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return ErrWorkerAlreadyStarted
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	for range w.workers {
		w.wg.Add(1)
		go w.run(w.ctx)
	}

	w.logger.InfoContext(ctx, "checkout worker started",
		slog.Int("workers", w.workers),
		logger.Component("checkout_worker"),
	)
	return nil
}

// Stop cancels the processors and waits for in-flight sessions.
func (w *CheckoutWorker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrWorkerNotStarted
	}
	w.cancel()
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("checkout worker stopped", logger.Component("checkout_worker"))
	return nil
}

// Dispatch queues a checkout-session document. When the worker is not
// running or its queue is full the session is failed right away so the
// waiting caller is not left hanging.
func (w *CheckoutWorker) Dispatch(ctx context.Context, path string) {
	w.mu.Lock()
	running := w.ctx != nil && w.ctx.Err() == nil
	w.mu.Unlock()

	if running {
		select {
		case w.jobs <- path:
			return
		default:
		}
	}

	w.logger.WarnContext(ctx, "checkout worker unavailable",
		logger.Path(path),
		slog.Bool("running", running),
		logger.Component("checkout_worker"),
	)
	_ = w.fail(context.WithoutCancel(ctx), path, errors.New("checkout is temporarily unavailable"))
}

func (w *CheckoutWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.jobs:
			taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
			if err := w.Process(taskCtx, path); err != nil {
				w.logger.ErrorContext(taskCtx, "failed to process checkout session",
					logger.Path(path),
					logger.Error(err),
					logger.Component("checkout_worker"),
				)
			}
			cancel()
		}
	}
}

// Process settles one checkout-session document. Documents that already
// carry a url or an error are left untouched.
func (w *CheckoutWorker) Process(ctx context.Context, path string) error {
	customerID, err := customerFromSessionPath(path)
	if err != nil {
		return err
	}

	doc, err := w.store.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load checkout session: %w", err)
	}
	if doc.String("url") != "" || doc.String("error", "message") != "" {
		return nil
	}

	priceID := doc.String("price")
	if priceID == "" {
		return w.fail(ctx, path, errors.New("checkout session has no price"))
	}

	link, err := w.provider.CreateCheckoutLink(ctx, CheckoutRequest{
		PriceID:    priceID,
		CustomerID: customerID,
		SuccessURL: doc.String("success_url"),
		CancelURL:  doc.String("cancel_url"),
	})
	if err != nil {
		w.metrics.RecordCheckout("provider_error")
		w.logger.WarnContext(ctx, "billing provider rejected checkout",
			logger.UserID(customerID),
			logger.Error(err),
			logger.Component("checkout_worker"),
		)
		return w.fail(ctx, path, errors.New("payment provider could not create a checkout session"))
	}

	if err := w.store.Set(ctx, path, map[string]any{
		"url":        link.URL,
		"session_id": link.SessionID,
	}); err != nil {
		return fmt.Errorf("failed to store checkout url: %w", err)
	}
	w.metrics.RecordCheckout("created")
	return nil
}

// fail records a user-facing message on the session document.
func (w *CheckoutWorker) fail(ctx context.Context, path string, cause error) error {
	if err := w.store.Set(ctx, path, map[string]any{
		"error": map[string]any{"message": cause.Error()},
	}); err != nil {
		return fmt.Errorf("failed to store checkout error: %w", err)
	}
	return nil
}

// customerFromSessionPath extracts {uid} from customers/{uid}/checkout_sessions/{id}.
func customerFromSessionPath(path string) (string, error) {
	segments := strings.Split(path, "/")
	if len(segments) != 4 || segments[0] != "customers" || segments[2] != "checkout_sessions" || segments[1] == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidCheckoutDoc, path)
	}
	return segments[1], nil
}
