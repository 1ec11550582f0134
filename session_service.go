package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/hyunsoolee0506/authkit/audit"
	"github.com/hyunsoolee0506/authkit/kv"
	"github.com/hyunsoolee0506/authkit/password"
)

// SessionService is the credential lifecycle orchestrator for the
// session strategy. Login mints an opaque server-side session; the
// browser only ever holds the random id.
type SessionService struct {
	sessions *kv.SessionStore
	users    UserProvider
	hasher   *password.Bcrypt
	ttl      time.Duration
	audit    *audit.Dispatcher
	metrics  *Metrics
}

// Register creates an account. Identical semantics to the token
// strategy's Register; the strategies only diverge after signup.
func (s *SessionService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	id, err := register(ctx, s.users, s.hasher, input)
	s.emit(ctx, audit.TypeRegister, id, err)
	return id, err
}

// Login verifies the password and creates a session, returning the
// opaque session id for the caller to set as a cookie. Any existing
// session for the user is evicted first.
func (s *SessionService) Login(ctx context.Context, email, plainPassword string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.metrics.loginResult("failure")
		s.emit(ctx, audit.TypeSessionLogin, 0, ErrUserNotFound)
		return "", ErrUserNotFound
	}

	if !s.hasher.Compare(user.PasswordHash, plainPassword) {
		s.metrics.loginResult("failure")
		s.emit(ctx, audit.TypeSessionLogin, user.ID, ErrInvalidCredentials)
		return "", ErrInvalidCredentials
	}

	sid, err := s.sessions.Create(ctx, user.ID, user.Nickname, s.ttl)
	if err != nil {
		s.metrics.loginResult("failure")
		s.emit(ctx, audit.TypeSessionLogin, user.ID, err)
		return "", err
	}

	s.metrics.loginResult("success")
	s.emit(ctx, audit.TypeSessionLogin, user.ID, nil)
	return sid, nil
}

// Logout destroys the session. The returned bool is false when the
// session was already gone, which is not an error.
func (s *SessionService) Logout(ctx context.Context, sid string) (bool, error) {
	existed, err := s.sessions.Delete(ctx, sid)
	if err != nil {
		s.emit(ctx, audit.TypeSessionLogout, 0, err)
		return false, err
	}

	s.metrics.logout()
	s.emit(ctx, audit.TypeSessionLogout, 0, nil)
	return existed, nil
}

// Session resolves a session id to its record. Unknown or expired ids
// report ErrSessionRejected.
func (s *SessionService) Session(ctx context.Context, sid string) (*kv.SessionRecord, error) {
	record, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrSessionRejected
		}
		return nil, err
	}
	return record, nil
}

func (s *SessionService) emit(ctx context.Context, eventType string, userID int64, cause error) {
	event := audit.Event{Type: eventType, UserID: userID, Success: cause == nil}
	if cause != nil {
		event.Reason = cause.Error()
	}
	s.audit.Emit(ctx, event)
}
