package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/hyunsoolee0506/authkit/audit"
	"github.com/hyunsoolee0506/authkit/kv"
	"github.com/hyunsoolee0506/authkit/password"
	"github.com/hyunsoolee0506/authkit/token"
)

// Service is the credential lifecycle orchestrator for the token
// strategy. It is the only writer to the refresh store; the gate only
// reads. All methods are safe for concurrent use.
type Service struct {
	codec   *token.Codec
	refresh *kv.RefreshStore
	users   UserProvider
	hasher  *password.Bcrypt
	audit   *audit.Dispatcher
	metrics *Metrics
}

// Register creates an account after duplicate checks. Password hashing
// happens here; persistence belongs to the UserProvider.
func (s *Service) Register(ctx context.Context, input RegisterInput) (int64, error) {
	id, err := register(ctx, s.users, s.hasher, input)
	s.emit(ctx, audit.TypeRegister, id, err)
	return id, err
}

// Login verifies the password and issues a fresh access+refresh pair.
// Any previously stored refresh credential for the subject is evicted
// first, so at most one session stays active per user.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (*TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.metrics.loginResult("failure")
		s.emit(ctx, audit.TypeLogin, 0, ErrUserNotFound)
		return nil, ErrUserNotFound
	}

	if !s.hasher.Compare(user.PasswordHash, plainPassword) {
		s.metrics.loginResult("failure")
		s.emit(ctx, audit.TypeLogin, user.ID, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	if _, err := s.refresh.Delete(ctx, user.ID); err != nil {
		s.metrics.loginResult("failure")
		s.emit(ctx, audit.TypeLogin, user.ID, err)
		return nil, err
	}

	pair, err := s.issuePair(ctx, user.ID, user.Email)
	if err != nil {
		s.metrics.loginResult("failure")
		s.emit(ctx, audit.TypeLogin, user.ID, err)
		return nil, err
	}

	s.metrics.loginResult("success")
	s.emit(ctx, audit.TypeLogin, user.ID, nil)
	return pair, nil
}

// Logout revokes the subject's refresh credential. Idempotent: the
// returned bool is false when there was nothing to revoke ("already
// logged out"), which is not an error.
func (s *Service) Logout(ctx context.Context, userID int64) (bool, error) {
	existed, err := s.refresh.Delete(ctx, userID)
	if err != nil {
		s.emit(ctx, audit.TypeLogout, userID, err)
		return false, err
	}

	s.metrics.logout()
	s.emit(ctx, audit.TypeLogout, userID, nil)
	return existed, nil
}

// Refresh rotates a refresh credential: the presented token must verify
// cryptographically and match the stored value byte for byte, defeating
// stolen-but-superseded tokens. On success a new pair is issued and the
// stored record is replaced. Every failure collapses to
// ErrRefreshRejected so callers cannot probe store state.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, record, err := s.validateRefresh(ctx, refreshToken)
	if err != nil {
		return nil, s.rejectRefresh(ctx, userID, err)
	}

	pair, err := s.issuePair(ctx, userID, record.Email)
	if err != nil {
		return nil, s.rejectRefresh(ctx, userID, err)
	}

	s.metrics.refreshResult("success")
	s.emit(ctx, audit.TypeRefresh, userID, nil)
	return pair, nil
}

// ReissueAccess mints a new access token from a still-valid refresh
// credential without rotating it. The stored record is untouched.
func (s *Service) ReissueAccess(ctx context.Context, refreshToken string) (string, error) {
	userID, record, err := s.validateRefresh(ctx, refreshToken)
	if err != nil {
		s.emit(ctx, audit.TypeReissue, userID, err)
		return "", ErrRefreshRejected
	}

	access, err := s.codec.Issue(token.KindAccess, userID, record.Email)
	if err != nil {
		s.emit(ctx, audit.TypeReissue, userID, err)
		return "", ErrRefreshRejected
	}

	s.emit(ctx, audit.TypeReissue, userID, nil)
	return access, nil
}

// validateRefresh runs the shared verification path: signature+expiry,
// kind marker, then textual match against the stored record.
func (s *Service) validateRefresh(ctx context.Context, refreshToken string) (int64, *kv.RefreshRecord, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return 0, nil, err
	}
	if claims.Kind != token.KindRefresh {
		return 0, nil, token.ErrWrongKind
	}

	userID, err := claims.UserID()
	if err != nil {
		return 0, nil, err
	}

	record, err := s.refresh.Get(ctx, userID)
	if err != nil {
		return userID, nil, err
	}
	if record.RefreshToken != refreshToken {
		return userID, nil, errors.New("refresh token superseded")
	}

	return userID, record, nil
}

func (s *Service) issuePair(ctx context.Context, userID int64, email string) (*TokenPair, error) {
	accessToken, err := s.codec.Issue(token.KindAccess, userID, email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.Issue(token.KindRefresh, userID, "")
	if err != nil {
		return nil, err
	}

	expiry, err := s.codec.ExpiryOf(refreshToken)
	if err != nil {
		return nil, err
	}
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return nil, errors.New("refresh token already expired at issue")
	}

	record := kv.RefreshRecord{RefreshToken: refreshToken, Email: email}
	if err := s.refresh.Save(ctx, userID, record, ttl); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken, UserID: userID}, nil
}

func (s *Service) rejectRefresh(ctx context.Context, userID int64, cause error) error {
	s.metrics.refreshResult("rejected")
	s.emit(ctx, audit.TypeRefresh, userID, cause)
	return ErrRefreshRejected
}

func (s *Service) emit(ctx context.Context, eventType string, userID int64, cause error) {
	event := audit.Event{Type: eventType, UserID: userID, Success: cause == nil}
	if cause != nil {
		event.Reason = cause.Error()
	}
	s.audit.Emit(ctx, event)
}

// register is shared by both strategies; the original app duplicated
// signup across its two auth services and the checks are identical.
func register(ctx context.Context, users UserProvider, hasher *password.Bcrypt, input RegisterInput) (int64, error) {
	exists, err := users.EmailExists(ctx, input.Email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateEmail
	}

	exists, err = users.NicknameExists(ctx, input.Nickname)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateNickname
	}

	hash, err := hasher.Hash(input.Password)
	if err != nil {
		return 0, err
	}

	user, err := users.CreateUser(ctx, CreateUserInput{
		Email:        input.Email,
		Nickname:     input.Nickname,
		PasswordHash: hash,
	})
	if err != nil {
		return 0, err
	}

	return user.ID, nil
}
