package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps Page*Size within int for every allowed size
	MaxPage = math.MaxInt / MaxPageSize
)

// Field names a product attribute that can be filtered or sorted on
type Field string

const (
	FieldID         Field = "id"
	FieldRewardRate Field = "rewardRate"
	FieldStatus     Field = "status"
	FieldLockTerm   Field = "lockTerm"
	FieldCreateAt   Field = "createAt"
	FieldUpdateAt   Field = "updateAt"
)

// Sortable reports whether results can be ordered by f
func (f Field) Sortable() bool {
	switch f {
	case FieldID, FieldRewardRate, FieldStatus, FieldLockTerm, FieldCreateAt, FieldUpdateAt:
		return true
	}
	return false
}

// Order is one sort key of a page request
type Order struct {
	Field      Field
	Descending bool
}

// PageRequest asks for one page of results. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
	Sort []Order
}

// Normalize returns a copy with defaults applied and unknown sort keys removed
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Page > MaxPage {
		r.Page = MaxPage
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}

	sort := make([]Order, 0, len(r.Sort)+1)
	for _, o := range r.Sort {
		if o.Field.Sortable() {
			sort = append(sort, o)
		}
	}
	if len(sort) == 0 {
		sort = append(sort, Order{Field: FieldID})
	}
	r.Sort = sort
	return r
}

// Offset is the number of matching rows skipped before this page.
// It is only meaningful on a normalized request.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// FilterCriteria is an optional, partial query over the product set.
// A nil bound or an empty list means the criterion is not set.
type FilterCriteria struct {
	IDList        []string
	MinRewardRate *decimal.Decimal
	MaxRewardRate *decimal.Decimal
	StatusList    []Status
	Page          PageRequest
}

// Page is one page of a query result
type Page struct {
	Content       []*Product
	TotalElements int64
	Page          int
	Size          int
}

// TotalPages is the number of pages needed to hold every matching product
func (p *Page) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}
