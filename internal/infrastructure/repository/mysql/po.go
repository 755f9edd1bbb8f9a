package mysql

import (
	"time"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductPO is the persisted row shape of a product.
// Decimal columns use the widest precision and scale MySQL allows.
type ProductPO struct {
	ID         string              `gorm:"primaryKey;size:64"`
	Name       string              `gorm:"size:255"`
	RewardRate decimal.Decimal     `gorm:"type:decimal(65,30);not null;index"`
	StepAmount decimal.NullDecimal `gorm:"type:decimal(65,30)"`
	LockTerm   int                 `gorm:"not null;default:0"`
	Status     string              `gorm:"size:32;not null;index"`
	CreateAt   time.Time           `gorm:"column:create_at;not null"`
	UpdateAt   time.Time           `gorm:"column:update_at;not null"`
}

func (ProductPO) TableName() string {
	return "products"
}

func fromDomain(p *domain.Product) *ProductPO {
	return &ProductPO{
		ID:         p.ID,
		Name:       p.Name,
		RewardRate: p.RewardRate,
		StepAmount: p.StepAmount,
		LockTerm:   p.LockTermValue(),
		Status:     string(p.Status),
		CreateAt:   p.CreateAt,
		UpdateAt:   p.UpdateAt,
	}
}

func (po *ProductPO) toDomain() *domain.Product {
	lockTerm := po.LockTerm
	return &domain.Product{
		ID:         po.ID,
		Name:       po.Name,
		RewardRate: po.RewardRate,
		StepAmount: po.StepAmount,
		LockTerm:   &lockTerm,
		Status:     domain.Status(po.Status),
		CreateAt:   po.CreateAt,
		UpdateAt:   po.UpdateAt,
	}
}
