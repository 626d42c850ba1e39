// Package redis connects to Redis with a retrying dial and exposes a small
// prefixed key-value Storage used for web sessions and catalog caching.
//
// Integration tests run against a live server when REDIS_TEST_URL is set.
package redis
