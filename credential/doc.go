// Package credential implements salted secret hashing and verification with
// Argon2id defaults.
//
// # Output format
//
// Salts and digests are handled as standalone base64 strings. The salt is
// generated once per account and stored next to the digest, so the same
// [Argon2.HashWithSalt] call hashes both login passwords and password-reset
// keys against the account's own salt.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Credential policy (length,
// reset lifecycle) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve secrets — callers supply plaintext and receive digests.
//   - Import any other accountkit package.
//   - Log plaintext secrets or hash parameters at runtime.
package credential
