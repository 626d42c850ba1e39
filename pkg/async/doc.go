// Package async runs functions in goroutines and exposes their results as
// generic futures.
//
//	selected := async.Go(ctx, func(ctx context.Context) ([]Book, error) {
//		return client.fetchList(ctx, StatusSelected)
//	})
//	books, err := selected.Await()
//
// WaitAll stops at the first error; Settle collects every outcome.
package async
