package caching

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CacheService covers the two cache concerns of the pricing engine: the
// resolved VES/USD exchange rate, and invalidating a tenant's cached
// products after a bulk update rewrites their prices.
type CacheService interface {
	GetExchangeRate(ctx context.Context) (decimal.Decimal, bool, error)
	SetExchangeRate(ctx context.Context, rate decimal.Decimal, ttl time.Duration) error
	InvalidateTenantProducts(ctx context.Context, tenantID uuid.UUID) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

const exchangeRateKey = "bodegamart:exchange_rate:ves_usd"

func (r *redisCacheService) GetExchangeRate(ctx context.Context) (decimal.Decimal, bool, error) {
	data, err := r.client.Get(ctx, exchangeRateKey).Result()
	if err != nil {
		if err == redis.Nil {
			return decimal.Zero, false, nil // cache miss
		}
		return decimal.Zero, false, err
	}

	rate, err := decimal.NewFromString(data)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid cached exchange rate %q: %w", data, err)
	}
	return rate, true, nil
}

func (r *redisCacheService) SetExchangeRate(ctx context.Context, rate decimal.Decimal, ttl time.Duration) error {
	return r.client.Set(ctx, exchangeRateKey, rate.String(), ttl).Err()
}

// InvalidateTenantProducts deletes every cached product of the tenant. Bulk
// updates rewrite prices wholesale, so per-key invalidation is pointless.
func (r *redisCacheService) InvalidateTenantProducts(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("bodegamart:product:%s:*", tenantID.String())

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return nil
}
