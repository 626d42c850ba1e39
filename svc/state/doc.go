// Package state tracks per-session identity, sign-in modal visibility and
// subscription tier.
//
// A Container starts with an unknown identity and a basic tier. SetIdentity
// moves it to present or absent; on sign-in the tier is resolved in the
// background and only the latest resolution is ever applied. Observers are
// notified synchronously after every mutation, and Stream exposes the same
// snapshots to server-sent event handlers.
//
// Registry keeps one Container per browser session and subscribes it to the
// identity channel:
//
//	registry := state.NewRegistry(resolver, channel)
//	c, created := registry.Get(sess.ID)
//	if created {
//		authService.Restore(sess)
//	}
//	snap := c.Snapshot()
package state
