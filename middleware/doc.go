// Package middleware exposes HTTP adapters that enforce goGuard token
// validation and rate limiting in front of standard net/http handlers.
//
// # Guards
//
//   - [Guard] — validates the bearer token for a purpose; anonymous or
//     required enforcement.
//   - [RateLimit] — runs requests through the engine's rate limiter and
//     writes the 429 contract body on rejection.
//
// Guard reads the Authorization header, calls Engine.Validate, and injects
// the validated identity into the request context for handlers to read via
// [AuthResultFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication or rate limiting itself — all decisions are
// delegated to the Engine.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access the token or bucket stores (Engine handles I/O).
//   - Distinguish validation failure causes to the client.
package middleware
