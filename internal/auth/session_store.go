package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"yatube/internal/cache"
)

const sessionKeyPrefix = "session:"

// SessionStoreInterface defines the interface for session storage operations.
type SessionStoreInterface interface {
	Store(ctx context.Context, sessionID string, userID uint, username string, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (userID uint, username string, err error)
	Delete(ctx context.Context, sessionID string) error
}

// SessionStore keeps live sessions in Redis. A token whose session id is
// missing here is treated as logged out even if the JWT still verifies.
type SessionStore struct {
	cache *cache.Client
}

// Ensure SessionStore implements SessionStoreInterface
var _ SessionStoreInterface = (*SessionStore)(nil)

// NewSessionStore creates a new session store.
func NewSessionStore(cache *cache.Client) *SessionStore {
	return &SessionStore{cache: cache}
}

// Store records a session in Redis with TTL.
func (s *SessionStore) Store(ctx context.Context, sessionID string, userID uint, username string, ttl time.Duration) error {
	data := map[string]interface{}{
		"user_id":  userID,
		"username": username,
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	key := sessionKeyPrefix + sessionID
	return s.cache.Set(ctx, key, payload, ttl)
}

// Get retrieves session data from Redis.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (userID uint, username string, err error) {
	key := sessionKeyPrefix + sessionID
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return 0, "", fmt.Errorf("session not found")
	}

	var sessionData map[string]interface{}
	if err := json.Unmarshal(data, &sessionData); err != nil {
		return 0, "", fmt.Errorf("unmarshal session data: %w", err)
	}

	uid, ok := sessionData["user_id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("invalid user_id in session data")
	}
	userID = uint(uid)

	username, ok = sessionData["username"].(string)
	if !ok {
		return 0, "", fmt.Errorf("invalid username in session data")
	}

	return userID, username, nil
}

// Delete removes a session from Redis.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	key := sessionKeyPrefix + sessionID
	return s.cache.Delete(ctx, key)
}
