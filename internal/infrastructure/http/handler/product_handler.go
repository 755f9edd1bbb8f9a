package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/product-catalog-api/internal/app/dto"
	"github.com/mrops-br/product-catalog-api/internal/app/service"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/response"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &req)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusCreated, dto.ToProductResponse(product))
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	if product == nil {
		response.Error(w, http.StatusNotFound, fmt.Errorf("product %s not found", id))
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductResponse(product))
}

// QueryProducts handles GET /products
func (h *ProductHandler) QueryProducts(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseCriteria(r.URL.Query())
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	page, err := h.service.QueryProducts(r.Context(), criteria)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToPageResponse(page))
}

// ParseCriteria reads filter criteria from query parameters. List parameters
// accept repeated keys and comma-separated values; sort takes "field[,asc|desc]".
func ParseCriteria(q url.Values) (domain.FilterCriteria, error) {
	var c domain.FilterCriteria

	c.IDList = splitList(q["idList"])
	for _, s := range splitList(q["statusList"]) {
		status := domain.Status(strings.ToUpper(s))
		if !status.Valid() {
			return c, fmt.Errorf("invalid statusList value %q", s)
		}
		c.StatusList = append(c.StatusList, status)
	}

	var err error
	if c.MinRewardRate, err = parseDecimal(q, "minRewardRate"); err != nil {
		return c, err
	}
	if c.MaxRewardRate, err = parseDecimal(q, "maxRewardRate"); err != nil {
		return c, err
	}
	if c.Page.Page, err = parseInt(q, "page"); err != nil {
		return c, err
	}
	if c.Page.Size, err = parseInt(q, "size"); err != nil {
		return c, err
	}

	for _, s := range q["sort"] {
		field, dir, _ := strings.Cut(s, ",")
		order := domain.Order{Field: domain.Field(strings.TrimSpace(field))}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			order.Descending = true
		default:
			return c, fmt.Errorf("invalid sort direction %q", dir)
		}
		c.Page.Sort = append(c.Page.Sort, order)
	}

	return c, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseDecimal(q url.Values, key string) (*decimal.Decimal, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.New("invalid " + key + ": " + raw)
	}
	return &d, nil
}

func parseInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + key + ": " + raw)
	}
	return n, nil
}
