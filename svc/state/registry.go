package state

import (
	"io"
	"log/slog"

	"github.com/dmitrymomot/summarist/pkg/cache"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/metrics"
	"github.com/dmitrymomot/summarist/svc/auth"
)

// DefaultCapacity bounds how many session containers are kept in memory.
const DefaultCapacity = 10_000

// IdentitySource announces identity changes per session. *auth.Channel
// implements it.
type IdentitySource interface {
	OnIdentityChanged(sessionID string, fn func(*auth.Identity)) (unsubscribe func())
}

// Registry keeps one Container per browser session, wired to the identity
// source. The least recently used containers are closed when the registry
// is full.
type Registry struct {
	containers *cache.LRUCache[string, *registryEntry]
	identities IdentitySource
	resolver   TierResolver
	capacity   int
	opts       []Option
	logger     *slog.Logger
	metrics    metrics.Recorder
}

type registryEntry struct {
	container   *Container
	unsubscribe func()
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCapacity bounds how many containers are kept. Non-positive values are ignored.
func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// WithContainerOptions sets options applied to every new container.
func WithContainerOptions(opts ...Option) RegistryOption {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistryMetrics reports the live container count to m.
func WithRegistryMetrics(m metrics.Recorder) RegistryOption {
	return func(r *Registry) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewRegistry creates a registry whose containers resolve tiers with resolver
// and follow identity changes from identities. Both are required.
func NewRegistry(resolver TierResolver, identities IdentitySource, opts ...RegistryOption) *Registry {
	if resolver == nil || identities == nil {
		panic("state: tier resolver and identity source are required")
	}
	r := &Registry{
		identities: identities,
		resolver:   resolver,
		capacity:   DefaultCapacity,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:    metrics.Noop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.containers = cache.NewLRUCache[string, *registryEntry](r.capacity)
	r.containers.SetEvictCallback(func(sessionID string, e *registryEntry) {
		e.unsubscribe()
		_ = e.container.Close()
		r.metrics.SetActiveSessions(r.containers.Len())
		r.logger.Debug("session state released",
			logger.SessionID(sessionID),
			logger.Component("session_state"),
		)
	})
	return r
}

// Get returns the container of sessionID, creating and subscribing it on
// first access. created reports whether it was just made; the caller should
// then restore the session's identity so the container leaves Unknown.
func (r *Registry) Get(sessionID string) (c *Container, created bool) {
	e, existed := r.containers.GetOrCreate(sessionID, func() *registryEntry {
		container := NewContainer(r.resolver, r.opts...)
		return &registryEntry{
			container:   container,
			unsubscribe: r.identities.OnIdentityChanged(sessionID, container.SetIdentity),
		}
	})
	if !existed {
		r.metrics.SetActiveSessions(r.containers.Len())
	}
	return e.container, !existed
}

// Release closes and forgets the container of sessionID.
func (r *Registry) Release(sessionID string) {
	r.containers.Remove(sessionID)
}

// RefreshUser re-resolves the tier of every session signed in as userID,
// for example after a billing webhook. It returns how many were refreshed.
func (r *Registry) RefreshUser(userID string) int {
	if userID == "" {
		return 0
	}
	n := 0
	for _, e := range r.containers.Values() {
		if id := e.container.Snapshot().Identity; id.IsPresent() && id.ID == userID {
			e.container.RefreshSubscription()
			n++
		}
	}
	return n
}

// Len returns the number of live containers.
func (r *Registry) Len() int {
	return r.containers.Len()
}

// Close releases every container.
func (r *Registry) Close() error {
	r.containers.Clear()
	return nil
}
