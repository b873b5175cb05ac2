// Package token issues and verifies the HS256-signed session tokens handed to
// callers by the account engine.
//
// # Claims
//
// Tokens carry the registered sub, iss, iat, and exp claims plus a single
// custom "name" claim holding the identity string chosen by the flow that
// issued the token.
//
// # Architecture boundaries
//
// This package owns signing and parsing only. Which identity goes into the
// name claim, and what a verified token authorizes, is the Engine's concern.
//
// # What this package must NOT do
//
//   - Persist tokens or keep a revocation list.
//   - Import any other accountkit package.
//   - Log token strings or the signing secret at runtime.
package token
