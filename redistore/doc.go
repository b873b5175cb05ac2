// Package redistore is the Redis-backed account record store bundled with
// accountkit.
//
// # Key layout
//
// All keys live under a configurable prefix (default "acct"):
//
//	<prefix>:rec:<id>      hash holding the account record fields
//	<prefix>:user:<name>   username uniqueness index, value is the account id
//	<prefix>:email:<addr>  email uniqueness index, value is the account id
//	<prefix>:resets        set of account ids with a reset key outstanding
//
// Ledger fields are stored as native integer hash fields so balance and
// counter mutations are single server-side operations. Floor-checked balance
// adjustment runs as a Lua script: the read, check, and write execute
// atomically, so concurrent adjustments can never lose an update or cross the
// zero floor.
//
// # Architecture boundaries
//
// This package speaks Redis and its own Record type only. Mapping store
// sentinels onto the engine's error taxonomy happens in the accountkit root
// package.
//
// # What this package must NOT do
//
//   - Hash, verify, or otherwise interpret credential material.
//   - Import any other accountkit package.
package redistore
