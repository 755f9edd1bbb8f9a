package dto

import (
	"time"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents the request to create a product
type CreateProductRequest struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	RewardRate decimal.Decimal     `json:"rewardRate"`
	StepAmount decimal.NullDecimal `json:"stepAmount"`
	LockTerm   *int                `json:"lockTerm"`
	Status     domain.Status       `json:"status"`
	CreateAt   *time.Time          `json:"createAt"`
	UpdateAt   *time.Time          `json:"updateAt"`
}

// ToDomain converts the request into an unvalidated domain Product
func (r *CreateProductRequest) ToDomain() *domain.Product {
	p := &domain.Product{
		ID:         r.ID,
		Name:       r.Name,
		RewardRate: r.RewardRate,
		StepAmount: r.StepAmount,
		LockTerm:   r.LockTerm,
		Status:     r.Status,
	}
	if r.CreateAt != nil {
		p.CreateAt = *r.CreateAt
	}
	if r.UpdateAt != nil {
		p.UpdateAt = *r.UpdateAt
	}
	return p
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name,omitempty"`
	RewardRate decimal.Decimal `json:"rewardRate"`
	StepAmount decimal.Decimal `json:"stepAmount"`
	LockTerm   int             `json:"lockTerm"`
	Status     domain.Status   `json:"status"`
	CreateAt   time.Time       `json:"createAt"`
	UpdateAt   time.Time       `json:"updateAt"`
}

// PageResponse carries one page of products plus pagination metadata
type PageResponse struct {
	Content       []*ProductResponse `json:"content"`
	TotalElements int64              `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
	Page          int                `json:"page"`
	Size          int                `json:"size"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		RewardRate: p.RewardRate,
		StepAmount: p.StepAmount.Decimal,
		LockTerm:   p.LockTermValue(),
		Status:     p.Status,
		CreateAt:   p.CreateAt,
		UpdateAt:   p.UpdateAt,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

// ToPageResponse converts a domain Page to PageResponse
func ToPageResponse(page *domain.Page) *PageResponse {
	return &PageResponse{
		Content:       ToProductResponseList(page.Content),
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages(),
		Page:          page.Page,
		Size:          page.Size,
	}
}
