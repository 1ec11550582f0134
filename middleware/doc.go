// Package middleware provides the HTTP request authentication gate.
//
// The gate sits in front of an application's router, short-circuits
// unauthenticated requests with 401, and attaches the verified identity
// to the request context for authenticated ones. Which credential shape
// it accepts is decided by the authkit.Strategy it is built with.
package middleware
