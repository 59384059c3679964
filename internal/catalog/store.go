package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "lnk:catalog:v1"

type cachePayload struct {
	Groups []Group           `json:"groups"`
	Labels map[string]string `json:"labels"`
}

// Store serves the catalog, caching the serialized form in Redis so other
// console instances skip rebuilding it. The catalog is resolved at most once
// per process and shared read-only after that.
type Store struct {
	client *redis.Client
	logger *slog.Logger
	source func() *Catalog
	ttl    time.Duration

	once   sync.Once
	loaded *Catalog
}

// NewStore constructs a Store. source supplies the authoritative catalog when
// the cache is cold; Default is the usual choice.
func NewStore(client *redis.Client, logger *slog.Logger, source func() *Catalog, ttl time.Duration) *Store {
	if source == nil {
		source = Default
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, logger: logger, source: source, ttl: ttl}
}

// Get returns the catalog, from the in-process copy, the Redis cache, or the
// source, in that order. Cache failures fall back to the source; the catalog
// must always be available.
func (s *Store) Get(ctx context.Context) *Catalog {
	s.once.Do(func() {
		s.loaded = s.resolve(ctx)
	})
	return s.loaded
}

func (s *Store) resolve(ctx context.Context) *Catalog {
	if s.client != nil {
		raw, err := s.client.Get(ctx, cacheKey).Bytes()
		switch {
		case err == nil:
			var payload cachePayload
			if err := json.Unmarshal(raw, &payload); err == nil {
				return New(payload.Groups, payload.Labels)
			}
			s.log(ctx, "catalog cache payload corrupt, rebuilding")
		case !errors.Is(err, redis.Nil):
			s.log(ctx, "catalog cache read failed", slog.Any("error", err))
		}
	}

	cat := s.source()
	if s.client != nil {
		payload := cachePayload{Groups: cat.GroupsInOrder(), Labels: cat.labels}
		if raw, err := json.Marshal(payload); err == nil {
			if err := s.client.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
				s.log(ctx, "catalog cache write failed", slog.Any("error", err))
			}
		}
	}
	return cat
}

func (s *Store) log(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}
