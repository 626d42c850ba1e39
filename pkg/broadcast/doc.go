// Package broadcast fans typed messages out to in-process subscribers.
//
// It backs the document watch of the in-memory store and the live session
// state stream:
//
//	b := broadcast.NewMemoryBroadcaster[Snapshot](8)
//	sub := b.Subscribe(ctx)
//	_ = b.Broadcast(ctx, broadcast.Message[Snapshot]{Data: snap})
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
//
// Subscribers are removed when their context ends, when they fall behind,
// or when the broadcaster is closed.
package broadcast
