package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/calculadrink/platform/internal/infrastructure/redis"
)

// SessionStore keeps a per-company session version counter in Redis. Tokens
// are stamped with the version current at login; bumping the counter (on
// password reset or suspension) invalidates every outstanding token at once.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a session store backed by the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(companyID string) string {
	return "session_version:" + companyID
}

// CurrentVersion returns the session version for a company (0 if never bumped).
func (s *SessionStore) CurrentVersion(ctx context.Context, companyID string) (int64, error) {
	v, err := s.client.Get(ctx, sessionKey(companyID))
	if err != nil {
		return 0, fmt.Errorf("get session version: %w", err)
	}
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse session version: %w", err)
	}
	return n, nil
}

// Revoke invalidates every outstanding session of a company.
func (s *SessionStore) Revoke(ctx context.Context, companyID string) error {
	if _, err := s.client.Incr(ctx, sessionKey(companyID)); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}
