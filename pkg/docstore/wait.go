package docstore

import (
	"context"
)

// WaitFor watches the document at path until cond reports done.
// The first snapshot for which cond returns done (or an error) settles the call,
// later writes are ignored.
func WaitFor(ctx context.Context, store Store, path string, cond func(*Document) (bool, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, err := store.Watch(ctx, path)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case doc, ok := <-changes:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return ErrWatchStopped
			}
			done, err := cond(doc)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}
