package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"cambiacartas-api/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionTokenPrefix is the prefix for all session tokens
	SessionTokenPrefix = "cct_"

	// SessionRedisKeyPrefix is the Redis key prefix for sessions
	SessionRedisKeyPrefix = "cambiacartas:session:"
)

// SessionService handles session token generation and validation.
type SessionService struct {
	redis *redis.Client
	ttl   time.Duration

	mu        sync.RWMutex
	listeners []func(model.SessionEvent)
}

// NewSessionService creates a new session service.
func NewSessionService(redisClient *redis.Client, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Subscribe registers a callback invoked on every session lifecycle
// event. Callbacks run synchronously; keep them cheap.
func (s *SessionService) Subscribe(fn func(model.SessionEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *SessionService) emit(eventType model.SessionEventType, profileID string) {
	event := model.SessionEvent{Type: eventType, ProfileID: profileID, At: time.Now()}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn(event)
	}
}

// Create generates a new session token and stores it in Redis.
func (s *SessionService) Create(ctx context.Context, profileID, username string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := SessionTokenPrefix + hex.EncodeToString(tokenBytes)

	session := model.Session{
		ProfileID: profileID,
		Username:  username,
		CreatedAt: time.Now(),
	}
	session.ExpiresAt = session.CreatedAt.Add(s.ttl)

	jsonData, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}

	key := SessionRedisKeyPrefix + token
	if err := s.redis.Set(ctx, key, jsonData, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	log.Printf("[SessionService] Created session for profile_id=%s, expires=%v",
		profileID, session.ExpiresAt)

	s.emit(model.SessionCreated, session.ProfileID)
	return token, nil
}

// Validate checks if a token is valid and returns its session.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	if len(token) < len(SessionTokenPrefix) || token[:len(SessionTokenPrefix)] != SessionTokenPrefix {
		return nil, fmt.Errorf("invalid token format")
	}

	key := SessionRedisKeyPrefix + token
	jsonData, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found or expired")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(jsonData, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		s.redis.Del(ctx, key)
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

// Refresh extends the TTL of an existing session.
func (s *SessionService) Refresh(ctx context.Context, token string) error {
	key := SessionRedisKeyPrefix + token

	jsonData, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(jsonData, &session); err != nil {
		return err
	}

	session.ExpiresAt = time.Now().Add(s.ttl)

	newJSON, _ := json.Marshal(session)
	if err := s.redis.Set(ctx, key, newJSON, s.ttl).Err(); err != nil {
		return err
	}

	s.emit(model.SessionRefreshed, session.ProfileID)
	return nil
}

// Revoke deletes a session from Redis.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	key := SessionRedisKeyPrefix + token

	if jsonData, err := s.redis.Get(ctx, key).Bytes(); err == nil {
		var session model.Session
		if json.Unmarshal(jsonData, &session) == nil {
			defer s.emit(model.SessionRevoked, session.ProfileID)
		}
	}

	return s.redis.Del(ctx, key).Err()
}
