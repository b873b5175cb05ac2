// Package middleware exposes an HTTP middleware adapter for session-token
// enforcement built on top of accountkit.Engine verification.
//
// # Guard
//
// [Guard] reads the Authorization header, calls Engine.VerifyToken, and
// injects the verified [Identity] into the request context for downstream
// handlers to read via [IdentityFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.VerifyToken.
//
// # What this package must NOT do
//
//   - Parse or create session tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from VerifyToken.
package middleware
