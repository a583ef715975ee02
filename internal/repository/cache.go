// Package repository defines data access interfaces for Atlas Tasks.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/domain"
)

// =============================================================================
// Cache Interface
// =============================================================================

// Cache defines the interface for caching operations. Implemented by an
// in-memory cache for single-node deployments and by Redis for
// distributed ones.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}

// CacheError represents a cache error type.
type CacheError string

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"

	// ErrCacheUnavailable indicates the cache is unavailable.
	ErrCacheUnavailable CacheError = "cache unavailable"
)

func (e CacheError) Error() string {
	return string(e)
}

// CacheKey generates cache keys for common scenarios.
type CacheKey struct{}

// UserByID returns a cache key for a user record.
func (CacheKey) UserByID(id string) string {
	return "cache:user:id:" + id
}

// UserByEmail returns a cache key for a user record keyed by email.
func (CacheKey) UserByEmail(email string) string {
	return "cache:user:email:" + email
}

// =============================================================================
// Cached User Repository
// =============================================================================

// userCacheTTL bounds staleness of cached principal records. Role changes
// become visible within this window at the latest.
const userCacheTTL = 30 * time.Second

// cachedUserRepository wraps a UserRepository with a read-through cache.
// Assignee resolution hits the user store on every task create/update, so
// hot principal records are worth keeping close.
type cachedUserRepository struct {
	inner  UserRepository
	cache  Cache
	keys   CacheKey
	logger zerolog.Logger
}

// NewCachedUserRepository decorates a UserRepository with a read-through
// cache for the lookup paths. Mutations write through and invalidate.
func NewCachedUserRepository(inner UserRepository, cache Cache, logger zerolog.Logger) UserRepository {
	return &cachedUserRepository{
		inner:  inner,
		cache:  cache,
		logger: logger.With().Str("component", "user_cache").Logger(),
	}
}

func (r *cachedUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.inner.Create(ctx, user); err != nil {
		return err
	}
	r.store(ctx, user)
	return nil
}

func (r *cachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := r.lookup(ctx, r.keys.UserByID(id)); ok {
		return user, nil
	}

	user, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, user)
	return user, nil
}

func (r *cachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := r.lookup(ctx, r.keys.UserByEmail(email)); ok {
		return user, nil
	}

	user, err := r.inner.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	r.store(ctx, user)
	return user, nil
}

func (r *cachedUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	// Existence is a pre-insert check; it must see the store, not the cache.
	return r.inner.ExistsByEmail(ctx, email)
}

func (r *cachedUserRepository) Update(ctx context.Context, user *domain.User) error {
	// Read the pre-update record first: if the email changed, the old
	// email's key must be dropped too or logins against the old address
	// keep hitting the stale cache entry until the TTL expires.
	prev, err := r.inner.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := r.inner.Update(ctx, user); err != nil {
		return err
	}
	r.invalidate(ctx, user.ID, user.Email)
	if prev.Email != user.Email {
		_ = r.cache.Delete(ctx, r.keys.UserByEmail(prev.Email))
	}
	return nil
}

func (r *cachedUserRepository) Delete(ctx context.Context, id string) error {
	user, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, user.ID, user.Email)
	return nil
}

func (r *cachedUserRepository) List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error) {
	return r.inner.List(ctx, opts)
}

// cachedUser re-adds the password hash to the serialized form. The domain
// struct excludes it from JSON for API responses, but the cache sits
// behind the repository boundary and login verifies against the hash.
type cachedUser struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

// lookup fetches and decodes a cached user. Cache failures degrade to a
// store read; they are never surfaced to callers.
func (r *cachedUserRepository) lookup(ctx context.Context, key string) (*domain.User, bool) {
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}

	var rec cachedUser
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Debug().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		_ = r.cache.Delete(ctx, key)
		return nil, false
	}
	user := rec.User
	user.PasswordHash = rec.PasswordHash
	return &user, true
}

// store writes a user under both lookup keys.
func (r *cachedUserRepository) store(ctx context.Context, user *domain.User) {
	data, err := json.Marshal(cachedUser{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, r.keys.UserByID(user.ID), data, userCacheTTL); err != nil {
		r.logger.Debug().Err(err).Msg("cache write failed")
		return
	}
	_ = r.cache.Set(ctx, r.keys.UserByEmail(user.Email), data, userCacheTTL)
}

func (r *cachedUserRepository) invalidate(ctx context.Context, id, email string) {
	_ = r.cache.Delete(ctx, r.keys.UserByID(id))
	_ = r.cache.Delete(ctx, r.keys.UserByEmail(email))
}

// Ensure cachedUserRepository implements UserRepository.
var _ UserRepository = (*cachedUserRepository)(nil)
