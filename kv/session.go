package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	sessionKeyPrefix = "session:"
	userIndexPrefix  = "session_user:"
)

// SessionRecord is the server-side state behind an opaque session id.
type SessionRecord struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
}

// SessionStore manages opaque sessions for the stateful strategy. Session
// ids are random (uuid v4) and never derived from the subject id. A
// per-user index key enforces at most one live session per subject:
// creating a session evicts the subject's previous one.
type SessionStore struct {
	store Store
}

func NewSessionStore(store Store) *SessionStore {
	return &SessionStore{store: store}
}

func sessionKey(sid string) string {
	return sessionKeyPrefix + sid
}

func userIndexKey(userID int64) string {
	return userIndexPrefix + strconv.FormatInt(userID, 10)
}

// Create stores a new session for the user and returns its opaque id. Any
// existing session for the same user is deleted first.
func (s *SessionStore) Create(ctx context.Context, userID int64, nickname string, ttl time.Duration) (string, error) {
	if prev, err := s.store.Get(ctx, userIndexKey(userID)); err == nil {
		if _, err := s.store.Delete(ctx, sessionKey(prev)); err != nil {
			return "", err
		}
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	sid := uuid.NewString()
	data, err := json.Marshal(SessionRecord{UserID: userID, Nickname: nickname})
	if err != nil {
		return "", fmt.Errorf("encode session record: %w", err)
	}

	if err := s.store.Put(ctx, sessionKey(sid), string(data), ttl); err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, userIndexKey(userID), sid, ttl); err != nil {
		return "", err
	}

	return sid, nil
}

// Get resolves an opaque session id, or ErrNotFound when the session does
// not exist or has expired.
func (s *SessionStore) Get(ctx context.Context, sid string) (*SessionRecord, error) {
	value, err := s.store.Get(ctx, sessionKey(sid))
	if err != nil {
		return nil, err
	}

	var record SessionRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	return &record, nil
}

// Delete removes a session. The returned bool reports whether it existed.
// The user index entry is cleared only when it still points at this
// session, so a concurrent re-login is not clobbered.
func (s *SessionStore) Delete(ctx context.Context, sid string) (bool, error) {
	record, err := s.Get(ctx, sid)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}

	existed, err := s.store.Delete(ctx, sessionKey(sid))
	if err != nil {
		return false, err
	}

	if record != nil {
		current, err := s.store.Get(ctx, userIndexKey(record.UserID))
		if err == nil && current == sid {
			if _, err := s.store.Delete(ctx, userIndexKey(record.UserID)); err != nil {
				return existed, err
			}
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return existed, err
		}
	}

	return existed, nil
}
