package authkit

import "context"

// CredentialMethod names the strategy that produced an Identity.
type CredentialMethod string

const (
	// MethodToken means the identity came from a verified access token.
	MethodToken CredentialMethod = "token"
	// MethodSession means the identity came from a resolved opaque
	// session.
	MethodSession CredentialMethod = "session"
)

// Identity is the verified, request-scoped result of authentication. It
// is constructed only by a successful Strategy.Authenticate, never
// persisted, and lives for the duration of one request. Credential holds
// the raw validated value (token or session id) for downstream use.
type Identity struct {
	UserID     int64
	Email      string
	Nickname   string
	Method     CredentialMethod
	Credential string
}

type identityContextKey struct{}

// WithIdentity attaches a verified identity to the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity attached by the gate, if any.
// Business handlers use it to scope operations to the calling user.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok
}
