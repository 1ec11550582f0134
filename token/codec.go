package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates access tokens from refresh tokens. The marker is
// embedded in the signed claims so one kind can never be replayed as the
// other.
type Kind string

const (
	// KindAccess marks a short-lived per-request credential.
	KindAccess Kind = "access"
	// KindRefresh marks a long-lived credential used only to mint new
	// access tokens.
	KindRefresh Kind = "refresh"
)

// Verification failures. Verify never panics and never returns a raw
// library error; every failure maps onto exactly one of these sentinels.
var (
	ErrMalformed            = errors.New("malformed token")
	ErrSignatureInvalid     = errors.New("token signature invalid")
	ErrExpired              = errors.New("token expired")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	ErrWrongKind            = errors.New("wrong token kind")
)

// Claims is the decoded payload of a verified token. Subject carries the
// user id in decimal form; Email is present on access tokens only so a
// leaked refresh token exposes less.
type Claims struct {
	Email string `json:"email,omitempty"`
	Kind  Kind   `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as an integer user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric subject", ErrMalformed)
	}
	return id, nil
}

// Codec issues and verifies HS256-signed tokens. The signing key is fixed
// at construction and never exposed; all methods are safe for concurrent
// use.
type Codec struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

const minKeyBytes = 32

// NewCodec builds a Codec from raw HMAC key material and the configured
// lifetimes for each token kind.
func NewCodec(key []byte, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(key) < minKeyBytes {
		return nil, fmt.Errorf("signing key must be at least %d bytes", minKeyBytes)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if refreshTTL < accessTTL {
		return nil, errors.New("refresh TTL shorter than access TTL")
	}
	return &Codec{key: key, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// Issue signs a new token of the given kind for userID. The email claim is
// only included on access tokens; refresh tokens carry the bare subject.
func (c *Codec) Issue(kind Kind, userID int64, email string) (string, error) {
	now := time.Now()

	ttl := c.accessTTL
	if kind == KindRefresh {
		ttl = c.refreshTTL
		email = ""
	}

	// The jti makes every issued token unique even when two issuances
	// share the same second-precision iat/exp. Revocation checks compare
	// token strings textually, so identical strings would make a
	// superseded credential indistinguishable from the current one.
	claims := Claims{
		Email: email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Verify checks signature, structure, and expiry. It does not consult any
// store; validity of an access token is purely cryptographic and
// time-based.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.NewParser().ParseWithClaims(tokenStr, claims, c.keyFunc)
	if err != nil {
		return nil, translateError(err)
	}
	if !tok.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// ExpiryOf re-derives the expiry timestamp from a token after checking its
// signature, skipping claim validation. Used for TTL bookkeeping when a
// refresh token is persisted; an already-expired token still yields its
// recorded expiry.
func (c *Codec) ExpiryOf(tokenStr string) (time.Time, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(tokenStr, claims, c.keyFunc); err != nil {
		return time.Time{}, translateError(err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrMalformed
	}
	return claims.ExpiresAt.Time, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, ErrUnsupportedAlgorithm
	}
	return c.key, nil
}

func translateError(err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return ErrUnsupportedAlgorithm
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrUnsupportedAlgorithm
	default:
		return ErrMalformed
	}
}
