// Package audit carries structured lifecycle events (login, logout,
// refresh, rotation outcomes) to a pluggable sink through a buffered,
// non-blocking dispatcher. The events preserve failure detail that the
// public error surface intentionally collapses.
package audit
