package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "product:"

// ProductRepository is a Redis read-through cache in front of another
// repository. Lookups by id are cached; queries always go to the backing store.
type ProductRepository struct {
	next   domain.ProductRepository
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	logger *slog.Logger
}

// NewProductRepository wraps next with a Redis cache
func NewProductRepository(next domain.ProductRepository, rdb *redis.Client, ttl time.Duration, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{next: next, redis: rdb, ttl: ttl, tracer: tracer, logger: logger}
}

// NewClient connects to Redis and verifies the connection
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

type cachedProduct struct {
	ID         string              `json:"id"`
	Name       string              `json:"name,omitempty"`
	RewardRate decimal.Decimal     `json:"reward_rate"`
	StepAmount decimal.NullDecimal `json:"step_amount"`
	LockTerm   *int                `json:"lock_term"`
	Status     domain.Status       `json:"status"`
	CreateAt   time.Time           `json:"create_at"`
	UpdateAt   time.Time           `json:"update_at"`
}

func key(id string) string {
	return keyPrefix + id
}

// Save stores through to the backing repository, then primes the cache
func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	saved, err := r.next.Save(ctx, p)
	if err != nil {
		return nil, err
	}
	r.store(ctx, saved)
	return saved, nil
}

// FindOne serves from Redis when possible and fills the cache on a miss.
// Absent products are not cached.
func (r *ProductRepository) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "cache.ProductRepository.FindOne")
	defer span.End()

	data, err := r.redis.Get(ctx, key(id)).Bytes()
	switch {
	case err == nil:
		var cp cachedProduct
		if jerr := json.Unmarshal(data, &cp); jerr == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			p := domain.Product(cp)
			return &p, nil
		}
		r.logger.WarnContext(ctx, "Discarding unreadable cache entry", slog.String("product_id", id))
	case !errors.Is(err, redis.Nil):
		r.logger.WarnContext(ctx, "Cache read failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))

	p, err := r.next.FindOne(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	r.store(ctx, p)
	return p, nil
}

// FindAll is not cached
func (r *ProductRepository) FindAll(ctx context.Context, pred domain.Predicate, page domain.PageRequest) (*domain.Page, error) {
	return r.next.FindAll(ctx, pred, page)
}

func (r *ProductRepository) store(ctx context.Context, p *domain.Product) {
	data, err := json.Marshal(cachedProduct(*p))
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, key(p.ID), data, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "Cache write failed",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
}
