package mysql

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// ProductRepository stores products in MySQL through GORM
type ProductRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// NewProductRepository creates a GORM-backed product repository
func NewProductRepository(db *gorm.DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, tracer: tracer, logger: logger}
}

// AutoMigrate creates or updates the products table
func (r *ProductRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&ProductPO{})
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Duplicate entry") ||
		strings.Contains(errStr, "1062")
}

func fail(span trace.Span, op string, err error) error {
	serr := domain.NewStorageError(op, err)
	span.RecordError(serr)
	span.SetStatus(codes.Error, op+" failed")
	return serr
}

// Save inserts a new product row and returns it as stored
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "mysql.ProductRepository.Save")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", product.ID))

	po := fromDomain(product)
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, fail(span, "save", domain.ErrDuplicateID)
		}
		r.logger.ErrorContext(ctx, "Failed to insert product",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		return nil, fail(span, "save", err)
	}

	// read back so callers see the values as the column stored them
	var stored ProductPO
	if err := r.db.WithContext(ctx).First(&stored, "id = ?", po.ID).Error; err != nil {
		return nil, fail(span, "save", err)
	}

	span.SetStatus(codes.Ok, "Product stored")
	return stored.toDomain(), nil
}

// FindOne loads a product by primary key
func (r *ProductRepository) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "mysql.ProductRepository.FindOne")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	var po ProductPO
	err := r.db.WithContext(ctx).First(&po, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		span.SetAttributes(attribute.Bool("product.found", false))
		return nil, nil
	}
	if err != nil {
		return nil, fail(span, "find_one", err)
	}

	span.SetAttributes(attribute.Bool("product.found", true))
	span.SetStatus(codes.Ok, "Product found")
	return po.toDomain(), nil
}

// FindAll counts the matching rows and loads the requested page
func (r *ProductRepository) FindAll(ctx context.Context, pred domain.Predicate, req domain.PageRequest) (*domain.Page, error) {
	ctx, span := r.tracer.Start(ctx, "mysql.ProductRepository.FindAll")
	defer span.End()

	req = req.Normalize()
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&ProductPO{}).Scopes(Where(pred)).Count(&total).Error; err != nil {
		return nil, fail(span, "count", err)
	}

	var rows []ProductPO
	err := db.Scopes(Where(pred), OrderBy(req.Sort)).
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&rows).Error
	if err != nil {
		return nil, fail(span, "find_all", err)
	}

	content := make([]*domain.Product, len(rows))
	for i := range rows {
		content[i] = rows[i].toDomain()
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
