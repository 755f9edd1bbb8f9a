package memory

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ProductRepository is an in-memory implementation of domain.ProductRepository.
// Predicates are evaluated directly against the stored products.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		products: make(map[string]domain.Product),
		tracer:   tracer,
		logger:   logger,
	}
}

// Save stores a new product; an existing id is rejected
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Save")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", product.ID))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists {
		err := domain.NewStorageError("save", domain.ErrDuplicateID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Duplicate product id")
		return nil, err
	}

	r.products[product.ID] = *product

	r.logger.DebugContext(ctx, "Product stored in repository",
		slog.String("product_id", product.ID),
	)

	saved := *product
	span.SetStatus(codes.Ok, "Product stored")
	return &saved, nil
}

// FindOne retrieves a product by ID
func (r *ProductRepository) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindOne")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		span.SetAttributes(attribute.Bool("product.found", false))
		r.logger.DebugContext(ctx, "Product not in repository",
			slog.String("product_id", id),
		)
		return nil, nil
	}

	span.SetAttributes(attribute.Bool("product.found", true))
	span.SetStatus(codes.Ok, "Product found")
	return &product, nil
}

// FindAll returns the requested page of products matching pred
func (r *ProductRepository) FindAll(ctx context.Context, pred domain.Predicate, req domain.PageRequest) (*domain.Page, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	req = req.Normalize()

	r.mu.RLock()
	matches := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if pred.Matches(&product) {
			p := product
			matches = append(matches, &p)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *domain.Product) int {
		return compareProducts(a, b, req.Sort)
	})

	total := len(matches)
	start := min(req.Offset(), total)
	end := min(start+req.Size, total)

	span.SetAttributes(
		attribute.Int("product.total", total),
		attribute.Int("product.count", end-start),
	)

	r.logger.DebugContext(ctx, "Products queried in repository",
		slog.Int("total", total),
		slog.Int("count", end-start),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return &domain.Page{
		Content:       matches[start:end],
		TotalElements: int64(total),
		Page:          req.Page,
		Size:          req.Size,
	}, nil
}

// compareProducts orders by the sort keys, then by id so pages are stable
func compareProducts(a, b *domain.Product, orders []domain.Order) int {
	for _, o := range orders {
		var c int
		switch o.Field {
		case domain.FieldID:
			c = cmp.Compare(a.ID, b.ID)
		case domain.FieldRewardRate:
			c = a.RewardRate.Cmp(b.RewardRate)
		case domain.FieldStatus:
			c = cmp.Compare(a.Status, b.Status)
		case domain.FieldLockTerm:
			c = cmp.Compare(a.LockTermValue(), b.LockTermValue())
		case domain.FieldCreateAt:
			c = a.CreateAt.Compare(b.CreateAt)
		case domain.FieldUpdateAt:
			c = a.UpdateAt.Compare(b.UpdateAt)
		}
		if o.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}
