package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	reward_rate NUMERIC NOT NULL,
	step_amount NUMERIC,
	lock_term   INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	create_at   TIMESTAMPTZ NOT NULL,
	update_at   TIMESTAMPTZ NOT NULL
);
ALTER TABLE products
	ALTER COLUMN reward_rate TYPE NUMERIC,
	ALTER COLUMN step_amount TYPE NUMERIC;
CREATE INDEX IF NOT EXISTS products_reward_rate_idx ON products (reward_rate);
CREATE INDEX IF NOT EXISTS products_status_idx ON products (status);
`

// ProductRepository stores products in Postgres through a pgx pool
type ProductRepository struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *slog.Logger
}

// NewPool opens a pgx pool using the storage settings
func NewPool(ctx context.Context, cfg *config.StorageConfig, dsn string) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid pg config: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

// NewProductRepository creates a pgx-backed product repository
func NewProductRepository(pool *pgxpool.Pool, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{pool: pool, tracer: tracer, logger: logger}
}

// Migrate creates the products table when it does not exist
func (r *ProductRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

func fail(span trace.Span, op string, err error) error {
	serr := domain.NewStorageError(op, err)
	span.RecordError(serr)
	span.SetStatus(codes.Error, op+" failed")
	return serr
}

// Save inserts a new product row and returns it as stored
func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.ProductRepository.Save")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", p.ID))

	row := r.pool.QueryRow(ctx, insertProduct,
		p.ID, p.Name, p.RewardRate, p.StepAmount, p.LockTermValue(), string(p.Status), p.CreateAt, p.UpdateAt,
	)
	saved, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fail(span, "save", domain.ErrDuplicateID)
		}
		r.logger.ErrorContext(ctx, "Failed to insert product",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
		return nil, fail(span, "save", err)
	}

	span.SetStatus(codes.Ok, "Product stored")
	return saved, nil
}

// FindOne loads a product by id
func (r *ProductRepository) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.ProductRepository.FindOne")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	row := r.pool.QueryRow(ctx, "SELECT "+selectColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		span.SetAttributes(attribute.Bool("product.found", false))
		return nil, nil
	}
	if err != nil {
		return nil, fail(span, "find_one", err)
	}

	span.SetAttributes(attribute.Bool("product.found", true))
	span.SetStatus(codes.Ok, "Product found")
	return p, nil
}

// FindAll counts the matching rows and loads the requested page
func (r *ProductRepository) FindAll(ctx context.Context, pred domain.Predicate, req domain.PageRequest) (*domain.Page, error) {
	ctx, span := r.tracer.Start(ctx, "postgres.ProductRepository.FindAll")
	defer span.End()

	req = req.Normalize()

	countSQL, pageSQL, args, err := buildQueries(pred, req)
	if err != nil {
		return nil, fail(span, "find_all", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fail(span, "count", err)
	}

	rows, err := r.pool.Query(ctx, pageSQL, append(args, req.Size, req.Offset())...)
	if err != nil {
		return nil, fail(span, "find_all", err)
	}
	defer rows.Close()

	var content []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fail(span, "find_all", err)
		}
		content = append(content, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(span, "find_all", err)
	}

	span.SetAttributes(
		attribute.Int64("product.total", total),
		attribute.Int("product.count", len(content)),
	)
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return &domain.Page{
		Content:       content,
		TotalElements: total,
		Page:          req.Page,
		Size:          req.Size,
	}, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p        domain.Product
		status   string
		lockTerm int
	)
	if err := row.Scan(&p.ID, &p.Name, &p.RewardRate, &p.StepAmount, &lockTerm, &status, &p.CreateAt, &p.UpdateAt); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	p.LockTerm = &lockTerm
	return &p, nil
}
