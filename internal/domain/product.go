package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a product
type Status string

const (
	StatusAuditing Status = "AUDITING"
	StatusInSell   Status = "IN_SELL"
	StatusLocked   Status = "LOCKED"
	StatusFinished Status = "FINISHED"
)

// Valid reports whether s is a known lifecycle state
func (s Status) Valid() bool {
	switch s {
	case StatusAuditing, StatusInSell, StatusLocked, StatusFinished:
		return true
	}
	return false
}

var (
	minRewardRate = decimal.Zero
	maxRewardRate = decimal.NewFromInt(30)
)

// Product represents the product entity
type Product struct {
	ID         string
	Name       string
	RewardRate decimal.Decimal
	StepAmount decimal.NullDecimal
	LockTerm   *int
	Status     Status
	CreateAt   time.Time
	UpdateAt   time.Time
}

// Validate performs business validation on the product.
// Rules are checked in order and the first failure is returned.
func (p *Product) Validate() error {
	if p == nil || p.ID == "" {
		return MissingField("id")
	}

	// lower bound is exclusive, upper bound inclusive
	if !p.RewardRate.GreaterThan(minRewardRate) || p.RewardRate.GreaterThan(maxRewardRate) {
		return OutOfRange("rewardRate")
	}

	if p.StepAmount.Valid && !p.StepAmount.Decimal.Equal(p.StepAmount.Decimal.Truncate(0)) {
		return InvalidFormat("stepAmount")
	}

	return nil
}

// ApplyDefaults returns a copy of the product with unset fields filled in.
// Fields that are already set are never overwritten, so applying it twice
// yields the same product.
func (p Product) ApplyDefaults(now time.Time) Product {
	if p.CreateAt.IsZero() {
		p.CreateAt = now
	}
	if p.UpdateAt.IsZero() {
		p.UpdateAt = now
	}
	if !p.StepAmount.Valid {
		p.StepAmount = decimal.NewNullDecimal(decimal.Zero)
	}
	if p.LockTerm == nil {
		zero := 0
		p.LockTerm = &zero
	}
	if p.Status == "" {
		p.Status = StatusAuditing
	}
	return p
}

// LockTermValue returns the lock term, treating an unset term as zero
func (p *Product) LockTermValue() int {
	if p.LockTerm == nil {
		return 0
	}
	return *p.LockTerm
}
