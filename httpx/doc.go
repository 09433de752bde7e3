// Package httpx builds pooled *http.Client values for service-to-service calls:
// - safe, reusable transports with sane defaults
// - default headers, user agent and request id injection as middleware
// - before/after hook points for logging and metrics without hard dependencies
//
// It deliberately has no retry logic; callers own resilience policy.
package httpx
