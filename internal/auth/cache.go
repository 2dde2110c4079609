package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cuongbtq/fieldservice-be/internal/model"
)

// SessionCache memoizes user lookups for a short time
type SessionCache interface {
	Get(ctx context.Context, userID string) (*model.User, bool)
	Set(ctx context.Context, user *model.User)
	Invalidate(ctx context.Context, userID string)
}

// cachedUser is what a SessionCache holds for a user. The Google refresh
// token never leaves the database; only whether one is linked is kept.
type cachedUser struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	Role            string    `json:"role"`
	IsActive        bool      `json:"is_active"`
	GoogleConnected bool      `json:"google_connected"`
	CreatedAt       time.Time `json:"created_at"`
}

func toCached(u *model.User) cachedUser {
	return cachedUser{
		ID:              u.ID,
		OrganizationID:  u.OrganizationID,
		Email:           u.Email,
		FullName:        u.FullName,
		Role:            u.Role,
		IsActive:        u.IsActive,
		GoogleConnected: u.GoogleConnected(),
		CreatedAt:       u.CreatedAt,
	}
}

func (c cachedUser) user() *model.User {
	return &model.User{
		ID:                 c.ID,
		OrganizationID:     c.OrganizationID,
		Email:              c.Email,
		FullName:           c.FullName,
		Role:               c.Role,
		IsActive:           c.IsActive,
		GoogleRefreshToken: sql.NullString{Valid: c.GoogleConnected},
		CreatedAt:          c.CreatedAt,
	}
}

type memoryEntry struct {
	user      cachedUser
	expiresAt time.Time
}

// MemoryCache is a process-local SessionCache
type MemoryCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, userID string) (*model.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[userID]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, userID)
		return nil, false
	}
	return e.user.user(), true
}

func (c *MemoryCache) Set(_ context.Context, user *model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[user.ID] = memoryEntry{user: toCached(user), expiresAt: c.now().Add(c.ttl)}
}

func (c *MemoryCache) Invalidate(_ context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// RedisCache is a SessionCache shared by every API replica.
// Redis errors degrade to cache misses.
type RedisCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func NewRedisCache(client goredis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: "fieldservice:session:",
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, userID string) (*model.User, bool) {
	raw, err := c.client.Get(ctx, c.prefix+userID).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("Session cache read failed", slog.String("user_id", userID), slog.Any("error", err))
		}
		return nil, false
	}

	var cached cachedUser
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.Warn("Session cache entry is corrupt", slog.String("user_id", userID), slog.Any("error", err))
		return nil, false
	}
	return cached.user(), true
}

func (c *RedisCache) Set(ctx context.Context, user *model.User) {
	raw, err := json.Marshal(toCached(user))
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+user.ID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Session cache write failed", slog.String("user_id", user.ID), slog.Any("error", err))
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, c.prefix+userID).Err(); err != nil {
		c.logger.Warn("Session cache invalidation failed", slog.String("user_id", userID), slog.Any("error", err))
	}
}
