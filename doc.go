// Package accountkit provides the account credential and ledger engine for an
// investment platform backend: registration, login, signed session tokens,
// password-reset key lifecycle, and atomic balance/deposit/withdrawal/referral
// counters, backed by Redis.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// accountkit is the public surface. It exposes [Engine], [Builder], [Config],
// the [AccountStore] collaborator boundary, and value types (Profile,
// RegisterResult, MetricsSnapshot, etc.). HTTP routing, process bootstrap,
// and outbound mail transport are the host's responsibility; the engine only
// defines when a reset notification must be sent and what it carries, through
// the [ResetNotifier] interface.
//
// # What this package must NOT do
//
//   - Expose Redis clients or record encodings in its public API beyond the
//     provided redistore constructor.
//   - Retain any in-process cache of account state between calls — the store
//     is the single source of truth and the single serialization point.
//   - Return credential-bearing fields (password hash, salt, reset key hash)
//     from any profile-shaped value.
//
// # Concurrency contract
//
// Counter mutations are delegated to single store-level atomic operations, so
// N concurrent increments against one account always produce a final value
// reflecting all N deltas. Operations on different account ids are fully
// independent.
package accountkit
