// Package internal contains helper utilities that are intentionally private to
// accountkit, currently secure random generation for reset keys and referral
// codes.
//
// # What this package must NOT do
//
//   - Export types that appear in the public accountkit API.
//   - Be imported by any package outside the accountkit module.
package internal
