package auth

import (
	"sync"
)

// Channel fans identity changes out per browser session.
//
// A handler registered with OnIdentityChanged receives the session's current
// identity right away when one has been published (nil meaning signed out),
// then every later change. Deliveries for one session are serialized and
// arrive in publish order.
type Channel struct {
	mu       sync.Mutex
	sessions map[string]*channelEntry
	nextID   uint64
}

type channelEntry struct {
	deliver  sync.Mutex
	current  *Identity
	known    bool
	handlers map[uint64]func(*Identity)
}

// NewChannel creates a channel with no listeners.
func NewChannel() *Channel {
	return &Channel{sessions: make(map[string]*channelEntry)}
}

func (c *Channel) entry(sessionID string) *channelEntry {
	e, ok := c.sessions[sessionID]
	if !ok {
		e = &channelEntry{handlers: make(map[uint64]func(*Identity))}
		c.sessions[sessionID] = e
	}
	return e
}

// OnIdentityChanged registers fn for sessionID and returns its unsubscribe func.
func (c *Channel) OnIdentityChanged(sessionID string, fn func(*Identity)) func() {
	c.mu.Lock()
	e := c.entry(sessionID)
	c.nextID++
	id := c.nextID
	c.mu.Unlock()

	// Registering under the delivery lock keeps the replayed value and
	// concurrent publishes in order.
	e.deliver.Lock()
	c.mu.Lock()
	e.handlers[id] = fn
	current, known := e.current, e.known
	c.mu.Unlock()
	if known {
		fn(copyIdentity(current))
	}
	e.deliver.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(e.handlers, id)
			if len(e.handlers) == 0 && c.sessions[sessionID] == e {
				delete(c.sessions, sessionID)
			}
		})
	}
}

// Publish records id as the session's identity and notifies its handlers.
// A nil id means signed out.
func (c *Channel) Publish(sessionID string, id *Identity) {
	c.mu.Lock()
	e := c.entry(sessionID)
	c.mu.Unlock()

	e.deliver.Lock()
	defer e.deliver.Unlock()

	c.mu.Lock()
	e.current = copyIdentity(id)
	e.known = true
	handlers := make([]func(*Identity), 0, len(e.handlers))
	for _, fn := range e.handlers {
		handlers = append(handlers, fn)
	}
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(copyIdentity(id))
	}
}

// Current returns the last published identity of the session.
func (c *Channel) Current(sessionID string) (*Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sessions[sessionID]
	if !ok || !e.known {
		return nil, false
	}
	return copyIdentity(e.current), true
}

func copyIdentity(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
