// Package transport provides the HTTP plumbing shared by portier's
// handlers: a middleware chain, panic recovery, request ID assignment
// (X-Request-ID), structured access logging via log/slog, and JSON
// error responses in the ErrorResponse format from pkg/api.
//
// Handlers and middleware here operate on plain net/http types so they
// compose with any http.Handler, including the authentication middleware
// in pkg/auth and the metrics middleware in pkg/observability.
package transport
