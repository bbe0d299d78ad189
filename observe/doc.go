// Package observe provides the logging, tracing and metrics side channel for
// upstream page fetches.
//
// An Observer owns the OpenTelemetry providers and a zap-backed structured
// Logger. Middleware wraps a FetchFunc so that every exchange is logged with
// its outbound URL before it is sent, traced as a client span, and counted;
// failures are logged with their error before being returned unchanged.
// Nothing in this package alters a fetch result.
package observe
