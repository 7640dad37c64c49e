// Package goGuard provides a token lifecycle engine — issuance, validation,
// rotation, and revocation of signed access/refresh credential pairs — plus
// token-bucket rate limiting for the endpoints that mint and consume those
// credentials.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goGuard is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (TokenPair, AuthResult, MetricsSnapshot). Mechanics live in
// subpackages: token (signed credential codec), tokenstore (durable record
// store), ratelimit (admission control), middleware (net/http adapters), and
// metrics/export (OTel and Prometheus exporters).
//
// # Token lifecycle
//
// Per (user, purpose) a token moves NoToken -> Issued -> Expired, Superseded,
// or Revoked. Issued is re-entered by a fresh IssuePair or RotateAccess,
// which supersedes the prior token: the store keeps the exact signed string,
// so an old but still-unexpired credential fails validation the moment a
// newer one replaces it.
//
// # Failure surface
//
// Every validation failure — bad signature, wrong purpose, revoked,
// superseded, expired — comes back as [ErrInvalidToken]. Responses built on
// it cannot leak which check failed; audit events carry the reason for
// operators.
package goGuard
