// Package cache provides a generic, concurrency-safe LRU cache with an
// optional eviction callback.
//
//	c := cache.NewLRUCache[string, *state.Container](1024)
//	c.SetEvictCallback(func(_ string, ct *state.Container) { ct.Close() })
//	ct, _ := c.GetOrCreate(sessionID, func() *state.Container { return state.New(resolver) })
//
// Get, Put, GetOrCreate and Remove are O(1). Eviction callbacks run after
// the internal lock is released.
package cache
