package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/repository"
)

// TenantCache caches domain name → company resolution results in Redis.
// Entries are JSON snapshots of the company row; mutation paths invalidate
// by domain name.
type TenantCache struct {
	client *redis.Client
	prefix string
}

// NewTenantCache constructs a Redis-backed tenant cache with the given key prefix.
func NewTenantCache(client *redis.Client, prefix string) *TenantCache {
	if prefix == "" {
		prefix = "access:tenant"
	}
	return &TenantCache{client: client, prefix: prefix}
}

func (c *TenantCache) key(domainName string) string {
	return fmt.Sprintf("%s:%s", c.prefix, strings.ToLower(domainName))
}

// GetCompanyByDomain returns the cached company for the domain, or
// repository.ErrNotFound on a miss.
func (c *TenantCache) GetCompanyByDomain(ctx context.Context, domainName string) (*domain.Company, error) {
	payload, err := c.client.Get(ctx, c.key(domainName)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get tenant cache entry: %w", err)
	}

	var company domain.Company
	if err := json.Unmarshal([]byte(payload), &company); err != nil {
		return nil, fmt.Errorf("decode tenant cache entry: %w", err)
	}

	return &company, nil
}

// SetCompanyByDomain stores the resolved company under the domain key.
func (c *TenantCache) SetCompanyByDomain(ctx context.Context, domainName string, company domain.Company, ttl time.Duration) error {
	payload, err := json.Marshal(company)
	if err != nil {
		return fmt.Errorf("encode tenant cache entry: %w", err)
	}

	if err := c.client.Set(ctx, c.key(domainName), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set tenant cache entry: %w", err)
	}

	return nil
}

// InvalidateDomain drops the cache entry for the domain.
func (c *TenantCache) InvalidateDomain(ctx context.Context, domainName string) error {
	if err := c.client.Del(ctx, c.key(domainName)).Err(); err != nil {
		return fmt.Errorf("delete tenant cache entry: %w", err)
	}
	return nil
}

var _ port.TenantCache = (*TenantCache)(nil)
