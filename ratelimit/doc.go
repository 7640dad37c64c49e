// Package ratelimit guards sensitive endpoints with token-bucket admission
// control. An ordered rule list maps request paths to (capacity, window,
// scope) budgets; the first matching rule wins, so configuration order is
// part of the contract.
//
// # Scopes
//
//   - ScopeIP — one bucket per caller IP per path.
//   - ScopeUser — one bucket per authenticated user per path, resolved by
//     opportunistically decoding the bearer credential; falls back to the IP
//     bucket when no identity can be decoded.
//   - ScopeGlobal — one shared bucket per path for all callers.
//
// # Concurrency
//
// Bucket state lives behind the injected [BucketStore], whose Take operation
// is atomic per key: get-or-create of a brand-new bucket and the
// refill-then-consume mutation happen as one unit, so racing first-time
// callers can never admit more than capacity between them. [MemoryBucketStore]
// serves single-process deployments; [RedisBucketStore] shares budgets across
// replicas using WATCH/MULTI optimistic transactions.
//
// # What this package must NOT do
//
//   - Fully validate credentials (identity peeking is signature-check only,
//     delegated to the injected [IdentityPeeker]).
//   - Write HTTP responses (the middleware package owns the 429 body).
//   - Import goGuard or any sibling package.
package ratelimit
