// Package httpserver runs an http.Handler until the given context ends and
// then drains in-flight requests. HealthHandler backs /healthz.
package httpserver
