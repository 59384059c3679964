package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session describes the authenticated console actor for one request. Token
// issuance belongs to the auth service; the console only resolves tokens that
// already exist.
type Session struct {
	Token       string   `json:"-"`
	ActorID     string   `json:"actorId"`
	Email       string   `json:"email"`
	TeamID      string   `json:"teamId"`
	Permissions []string `json:"permissions"`
	IsPlatform  bool     `json:"isPlatform"`
}

// HasPermission reports whether the session was granted the permission key.
func (s *Session) HasPermission(key string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.Permissions {
		if p == key {
			return true
		}
	}
	return false
}

// SessionManager resolves bearer tokens against the Redis session store and
// refreshes their TTL on use.
type SessionManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, ttl: ttl}
}

// Resolve loads the session behind token. Unknown or expired tokens return
// ErrSessionNotFound.
func (sm *SessionManager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	raw, err := sm.client.Get(ctx, sm.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("shared: resolve session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("shared: decode session: %w", err)
	}
	sess.Token = token
	if sm.ttl > 0 {
		_ = sm.client.Expire(ctx, sm.key(token), sm.ttl).Err()
	}
	return &sess, nil
}

// Put stores a session under its token. Used by tests and by the auth
// service's provisioning hook.
func (sm *SessionManager) Put(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("shared: encode session: %w", err)
	}
	return sm.client.Set(ctx, sm.key(sess.Token), raw, sm.ttl).Err()
}

func (sm *SessionManager) key(token string) string {
	return "lnk:session:" + token
}
