// Package token encodes and verifies the signed credential strings issued by
// goGuard: compact HS256 JWTs carrying identity, role, purpose, and lifetime
// claims. Access and refresh tokens are signed with distinct keys so that
// compromise of one key cannot forge tokens of the other purpose.
//
// # Architecture boundaries
//
// The codec is a pure function over keys and claims. [Codec.Decode] verifies
// shape and signature only — it deliberately performs no expiry or store
// checks, so the same primitive serves both full validation (done by the
// engine against the token store) and opportunistic identity peeking (done by
// the rate limiter for USER-scoped rules).
//
// # What this package must NOT do
//
//   - Perform I/O or consult the token store.
//   - Validate expiry, issuance time, or store membership.
//   - Import goGuard or any sibling package.
package token
