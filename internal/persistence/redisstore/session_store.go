// Package redisstore keeps sessions in Redis so several portal instances can share them.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/recruitment-portal/internal/persistence"
)

const defaultPrefix = "portal"

// SessionStore implements persistence.SessionRepository on Redis.
// Session keys expire with the session itself, so DeleteExpiredSessions has nothing to do.
type SessionStore struct {
	rdb    *redis.Client
	prefix string
}

var _ persistence.SessionRepository = (*SessionStore)(nil)

// Open parses url, connects and pings the server.
func Open(ctx context.Context, url string) (*SessionStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return New(rdb, defaultPrefix), nil
}

// New wraps an existing client. Keys are namespaced under prefix.
func New(rdb *redis.Client, prefix string) *SessionStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionStore{rdb: rdb, prefix: prefix}
}

// Close closes the Redis connection.
func (s *SessionStore) Close() error {
	return s.rdb.Close()
}

// Ping checks connectivity.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *SessionStore) sessionKey(token string) string {
	return s.prefix + ":session:" + token
}

func (s *SessionStore) userKey(userID int64) string {
	return s.prefix + ":user_sessions:" + strconv.FormatInt(userID, 10)
}

type sessionRecord struct {
	ID             string     `json:"id"`
	UserID         int64      `json:"user_id"`
	Token          string     `json:"token"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
}

func encode(session persistence.Session) ([]byte, error) {
	return json.Marshal(sessionRecord(session))
}

func decode(data []byte) (persistence.Session, error) {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return persistence.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return persistence.Session(rec), nil
}

func ttlUntil(expiresAt time.Time) time.Duration {
	ttl := time.Until(expiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// CreateSession stores a new session. Reusing a token is rejected.
func (s *SessionStore) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.Token == "" || session.UserID == 0 {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}
	payload, err := encode(session)
	if err != nil {
		return persistence.Session{}, err
	}

	created, err := s.rdb.SetNX(ctx, s.sessionKey(session.Token), payload, ttlUntil(session.ExpiresAt)).Result()
	if err != nil {
		return persistence.Session{}, err
	}
	if !created {
		return persistence.Session{}, persistence.ErrDuplicate
	}

	userKey := s.userKey(session.UserID)
	if _, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, userKey, session.Token)
		pipe.Expire(ctx, userKey, ttlUntil(session.ExpiresAt))
		return nil
	}); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// GetSession loads a session by token.
func (s *SessionStore) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	data, err := s.rdb.Get(ctx, s.sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return persistence.Session{}, persistence.ErrNotFound
	}
	if err != nil {
		return persistence.Session{}, err
	}
	return decode(data)
}

// UpdateSession overwrites an existing session and refreshes its key expiry.
func (s *SessionStore) UpdateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	payload, err := encode(session)
	if err != nil {
		return persistence.Session{}, err
	}
	updated, err := s.rdb.SetXX(ctx, s.sessionKey(session.Token), payload, ttlUntil(session.ExpiresAt)).Result()
	if err != nil {
		return persistence.Session{}, err
	}
	if !updated {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

// RevokeSession marks the session identified by token as revoked.
func (s *SessionStore) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, err := s.GetSession(ctx, token)
	if err != nil {
		return persistence.Session{}, err
	}
	if session.RevokedAt != nil {
		return session, nil
	}
	session.RevokedAt = &revokedAt
	return s.UpdateSession(ctx, session)
}

// RevokeUserSessions revokes every live session belonging to userID.
func (s *SessionStore) RevokeUserSessions(ctx context.Context, userID int64, revokedAt time.Time) error {
	userKey := s.userKey(userID)
	tokens, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}
	var stale []any
	for _, token := range tokens {
		if _, err := s.RevokeSession(ctx, token, revokedAt); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				stale = append(stale, token)
				continue
			}
			return err
		}
	}
	if len(stale) == 0 {
		return nil
	}
	if err := s.rdb.SRem(ctx, userKey, stale...).Err(); err != nil {
		return fmt.Errorf("prune expired session tokens: %w", err)
	}
	return nil
}

// DeleteExpiredSessions is a no-op: Redis expires session keys on its own.
func (s *SessionStore) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return nil
}
