// Package catalog reads books from the catalog HTTP endpoints.
//
// The endpoints have no error schema, so the client never returns errors:
// a network failure, a non-2xx status or a body that is not JSON all read as
// "no results". Failures are logged and counted.
//
//	c := catalog.NewClient(cfg, catalog.WithCache(catalog.NewMemoryCache(512)))
//	page := c.ForYou(ctx)
//	book, ok := c.Book(ctx, "f9gy1gpai8")
//
// Responses can be cached in process (MemoryCache) or in Redis (RedisCache).
// A failing cache falls through to the endpoint.
package catalog
