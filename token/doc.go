// Package token implements the signed-credential codec: issuance and
// verification of HS256 access and refresh tokens.
//
// Verification is local and allocation-light; it performs no I/O, which
// keeps per-request access-token checks off the credential store entirely.
// Only refresh usage (handled by the lifecycle service) touches Redis.
package token
