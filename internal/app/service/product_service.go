package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mrops-br/product-catalog-api/internal/app/dto"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	publisher             domain.EventPublisher
	tracer                trace.Tracer
	logger                *slog.Logger
	now                   func() time.Time
	productCreatedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
	queryMatches          metric.Int64Histogram
}

// NewProductService creates a new product service.
// publisher may be nil, in which case no events are emitted.
func NewProductService(
	repo domain.ProductRepository,
	publisher domain.EventPublisher,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productCreatedCounter, _ := meter.Int64Counter(
		"products.created.total",
		metric.WithDescription("Total number of products created"),
	)

	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	queryMatches, _ := meter.Int64Histogram(
		"products.query.matches",
		metric.WithDescription("Number of products matching a query"),
		metric.WithUnit("{product}"),
	)

	return &ProductService{
		repo:                  repo,
		publisher:             publisher,
		tracer:                tracer,
		logger:                logger,
		now:                   time.Now,
		productCreatedCounter: productCreatedCounter,
		productOperations:     productOperations,
		queryMatches:          queryMatches,
	}
}

func (s *ProductService) recordOperation(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

// CreateProduct validates, defaults and stores a new product.
// Validation failures are returned before the repository is touched.
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	if req == nil {
		err := domain.MissingField("id")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Validation failed")
		s.recordOperation(ctx, "create", "invalid")
		return nil, err
	}

	product := req.ToDomain()

	span.SetAttributes(
		attribute.String("product.id", product.ID),
		attribute.String("product.reward_rate", product.RewardRate.String()),
	)

	s.logger.DebugContext(ctx, "Creating product",
		slog.String("product_id", product.ID),
		slog.String("reward_rate", product.RewardRate.String()),
	)

	if err := product.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Validation failed")
		s.logger.WarnContext(ctx, "Product rejected",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "create", "invalid")
		return nil, err
	}

	defaulted := product.ApplyDefaults(s.now())

	saved, err := s.repo.Save(ctx, &defaulted)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to store product")
		s.logger.ErrorContext(ctx, "Failed to store product",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "create", "failure")
		return nil, err
	}

	s.productCreatedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", string(saved.Status))),
	)
	s.recordOperation(ctx, "create", "success")

	s.publishCreated(ctx, span, saved)

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.String("product_id", saved.ID),
		slog.String("status", string(saved.Status)),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return saved, nil
}

// publishCreated announces a stored product. The product is already persisted,
// so a delivery failure is recorded but does not fail the create.
func (s *ProductService) publishCreated(ctx context.Context, span trace.Span, p *domain.Product) {
	if s.publisher == nil {
		return
	}

	event := domain.NewProductCreated(p, s.now())
	if err := s.publisher.PublishProductCreated(ctx, event); err != nil {
		span.RecordError(err)
		span.AddEvent("product.created.publish_failed")
		s.logger.ErrorContext(ctx, "Failed to publish product created event",
			slog.String("product_id", p.ID),
			slog.String("event_id", event.EventID.String()),
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "publish", "failure")
		return
	}
	s.recordOperation(ctx, "publish", "success")
}

// GetProduct retrieves a product by ID.
// A product that does not exist is reported as nil with a nil error.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	if id == "" {
		err := domain.MissingField("id")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Missing product id")
		s.recordOperation(ctx, "read", "invalid")
		return nil, err
	}

	s.logger.DebugContext(ctx, "Getting product by ID",
		slog.String("product_id", id),
	)

	product, err := s.repo.FindOne(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve product")
		s.logger.ErrorContext(ctx, "Failed to retrieve product",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "read", "failure")
		return nil, err
	}

	if product == nil {
		s.logger.InfoContext(ctx, "Product not found",
			slog.String("product_id", id),
		)
		s.recordOperation(ctx, "read", "not_found")
		span.SetStatus(codes.Ok, "Product not found")
		return nil, nil
	}

	s.recordOperation(ctx, "read", "success")
	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return product, nil
}

// QueryProducts compiles the criteria and returns the matching page as
// reported by the repository.
func (s *ProductService) QueryProducts(ctx context.Context, criteria domain.FilterCriteria) (*domain.Page, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.QueryProducts")
	defer span.End()

	pred := domain.Compile(criteria)

	span.SetAttributes(
		attribute.Int("query.terms", len(pred.Terms)),
		attribute.Int("query.page", criteria.Page.Page),
		attribute.Int("query.size", criteria.Page.Size),
	)

	s.logger.DebugContext(ctx, "Querying products",
		slog.Any("id_list", criteria.IDList),
		slog.Any("min_reward_rate", criteria.MinRewardRate),
		slog.Any("max_reward_rate", criteria.MaxRewardRate),
		slog.Any("status_list", criteria.StatusList),
		slog.Int("page", criteria.Page.Page),
		slog.Int("size", criteria.Page.Size),
	)

	page, err := s.repo.FindAll(ctx, pred, criteria.Page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to query products")
		s.logger.ErrorContext(ctx, "Failed to query products",
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "query", "failure")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("product.count", len(page.Content)),
		attribute.Int64("product.total", page.TotalElements),
	)
	s.queryMatches.Record(ctx, page.TotalElements)
	s.recordOperation(ctx, "query", "success")

	s.logger.DebugContext(ctx, "Products queried successfully",
		slog.Int("count", len(page.Content)),
		slog.Int64("total", page.TotalElements),
	)

	span.SetStatus(codes.Ok, "Products queried successfully")
	return page, nil
}
