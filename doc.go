// Package authkit authenticates HTTP requests for a multi-user
// application and manages the credentials that prove identity across
// requests.
//
// Two mutually exclusive strategies are supported, chosen once at process
// startup via [Config.Strategy]: a stateless signed-token strategy (JWT
// access + refresh pair, revocable through a Redis-backed record keyed by
// subject id) and a stateful opaque-session strategy (random session id
// resolved through Redis on every request). Both enforce at most one
// active credential set per subject: a new login unconditionally
// supersedes the previous one.
//
// The package is the public surface. Construction happens through [New];
// the per-request gate lives in the middleware subpackage; the codec and
// stores live in token and kv. Everything is safe for concurrent use
// after construction, and there is deliberately no cross-request locking:
// concurrent logins for one subject race last-writer-wins at the store,
// which preserves the single-credential invariant regardless of which
// write lands.
package authkit
