// Package kv provides the TTL key-value credential store: a small Store
// abstraction with a Redis implementation, and the two record stores built
// on it (refresh credentials keyed by subject id, opaque sessions keyed by
// random id).
//
// No cross-request locking exists here. Writes for a given key are
// last-writer-wins; concurrent logins for one subject leave exactly one
// record behind, which preserves the single-active-credential invariant at
// the cost of silently invalidating the loser.
package kv
