package state

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/summarist/pkg/broadcast"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/svc/auth"
	"github.com/dmitrymomot/summarist/svc/subscription"
)

// TierResolver derives the subscription tier of an identity. It must not
// fail: errors are expected to map to subscription.TierBasic.
type TierResolver interface {
	Resolve(ctx context.Context, identityID string) subscription.Tier
}

// Snapshot is a consistent copy of a container's fields.
type Snapshot struct {
	Identity            Identity          `json:"identity"`
	ModalOpen           bool              `json:"modalOpen"`
	Tier                subscription.Tier `json:"tier"`
	SubscriptionLoading bool              `json:"subscriptionLoading"`
}

// Container holds one session's identity, modal visibility and
// subscription tier.
//
// Mutations are serialized. Each one that changes the snapshot or starts a
// tier resolution notifies every observer synchronously,
// in mutation order, with the snapshot it produced. Observers must not call
// mutators from inside the callback.
//
// Each tier resolution is tagged with a generation number. A result is
// applied only if no identity change or refresh happened since it started;
// superseded results are dropped.
type Container struct {
	resolver TierResolver
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	// writeMu serializes mutations together with their notifications.
	writeMu sync.Mutex

	mu        sync.Mutex
	snap      Snapshot
	gen       uint64
	closed    bool
	observers map[uint64]func(Snapshot)
	nextObs   uint64

	stream *broadcast.MemoryBroadcaster[Snapshot]
	wg     sync.WaitGroup
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for discarded resolutions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStreamBuffer sets how many snapshots a stream subscriber may lag
// behind before it is dropped.
func WithStreamBuffer(n int) Option {
	return func(c *Container) {
		c.stream = broadcast.NewMemoryBroadcaster[Snapshot](n)
	}
}

// NewContainer creates a container in the initial state: identity unknown,
// tier basic, loading.
func NewContainer(resolver TierResolver, opts ...Option) *Container {
	if resolver == nil {
		panic("state: tier resolver is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Container{
		resolver: resolver,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:      ctx,
		cancel:   cancel,
		snap: Snapshot{
			Identity:            Unknown(),
			Tier:                subscription.TierBasic,
			SubscriptionLoading: true,
		},
		observers: make(map[uint64]func(Snapshot)),
		stream:    broadcast.NewMemoryBroadcaster[Snapshot](16),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Container) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// SetIdentity records a sign-in (non-nil) or sign-out (nil).
//
// On sign-in the tier is reset to basic, loading is set and the resolver runs
// in the background. On sign-out the tier becomes basic and loading false
// right away, and any resolution still in flight is discarded.
func (c *Container) SetIdentity(id *auth.Identity) {
	c.mutate(func(s *Snapshot) (start bool) {
		s.Identity = fromAuth(id)
		s.Tier = subscription.TierBasic
		s.SubscriptionLoading = id != nil
		return id != nil
	})
}

// OpenModal shows the sign-in modal.
func (c *Container) OpenModal() {
	c.mutate(func(s *Snapshot) bool {
		s.ModalOpen = true
		return false
	})
}

// CloseModal hides the sign-in modal.
func (c *Container) CloseModal() {
	c.mutate(func(s *Snapshot) bool {
		s.ModalOpen = false
		return false
	})
}

// RefreshSubscription re-resolves the tier of the present identity, for
// example after returning from checkout. The current tier is kept until the
// new one arrives. No-op without notification when nobody is signed in.
func (c *Container) RefreshSubscription() {
	c.mutate(func(s *Snapshot) bool {
		if !s.Identity.IsPresent() {
			return false
		}
		s.SubscriptionLoading = true
		return true
	})
}

// Subscribe registers fn to be called after every mutation.
func (c *Container) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	c.nextObs++
	id := c.nextObs
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Stream returns a subscriber receiving every later snapshot until ctx is
// done or the container is closed. Slow readers are dropped.
func (c *Container) Stream(ctx context.Context) broadcast.Subscriber[Snapshot] {
	return c.stream.Subscribe(ctx)
}

// Wait blocks until every resolution started so far has settled.
func (c *Container) Wait() {
	c.wg.Wait()
}

// Close tears the container down. Observers are dropped, streams end and
// late resolutions are ignored. Close is idempotent.
func (c *Container) Close() error {
	c.writeMu.Lock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.writeMu.Unlock()
		return nil
	}
	c.closed = true
	c.gen++
	clear(c.observers)
	c.mu.Unlock()
	c.writeMu.Unlock()

	c.cancel()
	return c.stream.Close()
}

// mutate applies fn and notifies. When fn reports start, a resolution for
// the resulting identity is launched under a fresh generation. A call that
// neither changes the snapshot nor starts a resolution is not a mutation and
// notifies nobody.
func (c *Container) mutate(fn func(*Snapshot) bool) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.snap
	start := fn(&c.snap)
	if !start && prev == c.snap {
		c.mu.Unlock()
		return
	}
	if start || prev.Identity != c.snap.Identity {
		c.gen++
	}
	gen, snap := c.gen, c.snap
	observers := c.observersLocked()
	c.mu.Unlock()

	if start {
		c.resolve(gen, snap.Identity.ID)
	}
	c.notify(observers, snap)
}

func (c *Container) resolve(gen uint64, identityID string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		tier := c.resolver.Resolve(c.ctx, identityID)
		c.settle(gen, identityID, tier)
	}()
}

func (c *Container) settle(gen uint64, identityID string, tier subscription.Tier) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale subscription resolution",
			logger.UserID(identityID),
			logger.Tier(tier.String()),
			logger.Component("session_state"),
		)
		return
	}
	c.snap.Tier = tier
	c.snap.SubscriptionLoading = false
	snap := c.snap
	observers := c.observersLocked()
	c.mu.Unlock()

	c.notify(observers, snap)
}

func (c *Container) observersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		out = append(out, fn)
	}
	return out
}

func (c *Container) notify(observers []func(Snapshot), snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
	_ = c.stream.Broadcast(c.ctx, broadcast.Message[Snapshot]{Data: snap})
}
