// Package requestid assigns every HTTP request a correlation id, exposes it
// through the request context and injects it into structured logs via
// LoggerExtractor.
package requestid
