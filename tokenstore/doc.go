// Package tokenstore defines the durable record of live credentials and the
// store contract the goGuard engine validates against. A record exists for at
// most one current token per (user, purpose); absence of a record means the
// token was revoked or superseded.
//
// # Implementations
//
//   - [RedisStore] — production store; one Redis key per (user, purpose)
//     holding a versioned binary record that expires with the token, plus an
//     atomic MULTI/EXEC pair write for issuance.
//   - [MemoryStore] — process-local store for tests and single-node
//     embedding.
//
// # Design
//
// The store persists the exact signed string alongside the metadata. That is
// what lets validation detect a token that is well-signed and unexpired but
// was superseded by a later issuance for the same (user, purpose).
//
// # What this package must NOT do
//
//   - Check token expiry or make validation decisions (engine's job).
//   - Parse or verify signed token strings.
//   - Import goGuard or any sibling package.
package tokenstore
