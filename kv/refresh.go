package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const refreshKeyPrefix = "refresh_token:"

// RefreshRecord is the stored state for a subject's currently-valid
// refresh credential. Presence of this record is the sole source of truth
// for whether a refresh token is still usable; the email rides along so
// rotation can mint access tokens without a user lookup.
type RefreshRecord struct {
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"email"`
}

// RefreshStore keeps at most one RefreshRecord per subject id. Save
// unconditionally supersedes any prior record, which is what enforces
// single-active-session semantics for the token strategy.
type RefreshStore struct {
	store Store
}

func NewRefreshStore(store Store) *RefreshStore {
	return &RefreshStore{store: store}
}

func refreshKey(userID int64) string {
	return refreshKeyPrefix + strconv.FormatInt(userID, 10)
}

// Save writes the record with TTL equal to the refresh credential's
// remaining lifetime, replacing any existing record for the subject.
func (s *RefreshStore) Save(ctx context.Context, userID int64, record RefreshRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode refresh record: %w", err)
	}
	return s.store.Put(ctx, refreshKey(userID), string(data), ttl)
}

// Get returns the current record for the subject, or ErrNotFound when the
// subject has no live refresh credential.
func (s *RefreshStore) Get(ctx context.Context, userID int64) (*RefreshRecord, error) {
	value, err := s.store.Get(ctx, refreshKey(userID))
	if err != nil {
		return nil, err
	}

	var record RefreshRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("decode refresh record: %w", err)
	}
	return &record, nil
}

// Delete revokes the subject's refresh credential. The returned bool
// reports whether a record existed; deleting an absent record is not an
// error.
func (s *RefreshStore) Delete(ctx context.Context, userID int64) (bool, error) {
	return s.store.Delete(ctx, refreshKey(userID))
}
