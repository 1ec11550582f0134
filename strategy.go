package authkit

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hyunsoolee0506/authkit/kv"
	"github.com/hyunsoolee0506/authkit/token"
)

// Strategy authenticates one inbound request. Implementations are
// read-only: they never write to the credential store. The concrete
// strategy is chosen once at startup by New, never per request.
type Strategy interface {
	// Authenticate extracts and verifies the request's credential. On
	// success it returns the request-scoped identity; on failure it
	// returns ErrMissingCredential, a token verification error, or
	// ErrSessionRejected.
	Authenticate(r *http.Request) (*Identity, error)
}

// TokenStrategy verifies bearer access tokens locally, with no store
// round-trip on the request path.
type TokenStrategy struct {
	codec  *token.Codec
	cookie string
}

func NewTokenStrategy(codec *token.Codec, accessCookie string) *TokenStrategy {
	return &TokenStrategy{codec: codec, cookie: accessCookie}
}

func (s *TokenStrategy) Authenticate(r *http.Request) (*Identity, error) {
	raw, ok := extractBearer(r, s.cookie)
	if !ok {
		return nil, ErrMissingCredential
	}

	claims, err := s.codec.Verify(raw)
	if err != nil {
		return nil, err
	}
	// A refresh token must never pass where an access token is required,
	// even before it expires.
	if claims.Kind != token.KindAccess {
		return nil, token.ErrWrongKind
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	return &Identity{
		UserID:     userID,
		Email:      claims.Email,
		Method:     MethodToken,
		Credential: raw,
	}, nil
}

// SessionStrategy resolves an opaque session id cookie through the
// session store on every request.
type SessionStrategy struct {
	sessions *kv.SessionStore
	cookie   string
}

func NewSessionStrategy(sessions *kv.SessionStore, sessionCookie string) *SessionStrategy {
	return &SessionStrategy{sessions: sessions, cookie: sessionCookie}
}

func (s *SessionStrategy) Authenticate(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(s.cookie)
	if err != nil || cookie.Value == "" {
		return nil, ErrMissingCredential
	}

	record, err := s.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		// Store unavailability fails closed: an unreachable store is an
		// authentication failure, never a pass.
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrSessionRejected
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionRejected, err)
	}

	return &Identity{
		UserID:     record.UserID,
		Nickname:   record.Nickname,
		Method:     MethodSession,
		Credential: cookie.Value,
	}, nil
}

// extractBearer looks for the credential in the Authorization header
// first, then falls back to the named cookie. First match wins.
func extractBearer(r *http.Request, cookieName string) (string, bool) {
	const bearer = "Bearer "

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, bearer) && header != bearer {
		return header[len(bearer):], true
	}

	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	return "", false
}
