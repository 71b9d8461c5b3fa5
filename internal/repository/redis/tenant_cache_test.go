package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/ostanin/backoffice-access/internal/core/domain"
	"github.com/ostanin/backoffice-access/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestTenantCache_SetAndGet(t *testing.T) {
	client, server := newTestRedis(t)
	cache := NewTenantCache(client, "tenant")

	ctx := context.Background()
	ttl := 5 * time.Minute
	company := domain.Company{ID: "company-1", Name: "Acme", IsActive: true}

	if err := cache.SetCompanyByDomain(ctx, "acme.example.com", company, ttl); err != nil {
		t.Fatalf("SetCompanyByDomain returned error: %v", err)
	}

	got, err := cache.GetCompanyByDomain(ctx, "acme.example.com")
	if err != nil {
		t.Fatalf("GetCompanyByDomain returned error: %v", err)
	}
	if got.ID != company.ID || got.Name != company.Name || !got.IsActive {
		t.Fatalf("unexpected cached company: %+v", got)
	}

	remaining := server.TTL("tenant:acme.example.com")
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}
}

func TestTenantCache_KeyIsCaseInsensitive(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewTenantCache(client, "tenant")

	ctx := context.Background()
	company := domain.Company{ID: "company-1", Name: "Acme", IsActive: true}

	if err := cache.SetCompanyByDomain(ctx, "ACME.Example.COM", company, time.Minute); err != nil {
		t.Fatalf("SetCompanyByDomain returned error: %v", err)
	}

	if _, err := cache.GetCompanyByDomain(ctx, "acme.example.com"); err != nil {
		t.Fatalf("expected lowercase lookup to hit, got error: %v", err)
	}
}

func TestTenantCache_GetMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewTenantCache(client, "tenant")

	_, err := cache.GetCompanyByDomain(context.Background(), "unknown.example.com")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound, got %v", err)
	}
}

func TestTenantCache_InvalidateDomain(t *testing.T) {
	client, _ := newTestRedis(t)
	cache := NewTenantCache(client, "tenant")

	ctx := context.Background()
	company := domain.Company{ID: "company-1", Name: "Acme", IsActive: true}

	if err := cache.SetCompanyByDomain(ctx, "acme.example.com", company, time.Minute); err != nil {
		t.Fatalf("SetCompanyByDomain returned error: %v", err)
	}

	if err := cache.InvalidateDomain(ctx, "acme.example.com"); err != nil {
		t.Fatalf("InvalidateDomain returned error: %v", err)
	}

	if _, err := cache.GetCompanyByDomain(ctx, "acme.example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected miss after invalidation, got %v", err)
	}
}
