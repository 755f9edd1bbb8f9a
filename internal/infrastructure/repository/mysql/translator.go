package mysql

import (
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// columns maps domain fields to table columns
var columns = map[domain.Field]string{
	domain.FieldID:         "id",
	domain.FieldRewardRate: "reward_rate",
	domain.FieldStatus:     "status",
	domain.FieldLockTerm:   "lock_term",
	domain.FieldCreateAt:   "create_at",
	domain.FieldUpdateAt:   "update_at",
}

// Where translates a predicate into a GORM scope.
// Each term becomes one WHERE expression; GORM joins them with AND.
func Where(pred domain.Predicate) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, term := range pred.Terms {
			expr, ok := expression(term)
			if !ok {
				_ = db.AddError(&unsupportedTermError{term: term})
				continue
			}
			db = db.Where(expr)
		}
		return db
	}
}

// OrderBy translates sort keys into a GORM scope.
// id is appended as a final key so pages do not overlap.
func OrderBy(orders []domain.Order) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		byID := false
		for _, o := range orders {
			col, ok := columns[o.Field]
			if !ok {
				continue
			}
			byID = byID || o.Field == domain.FieldID
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: o.Descending})
		}
		if !byID {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
		}
		return db
	}
}

func expression(term domain.Condition) (clause.Expression, bool) {
	col, ok := columns[term.Field]
	if !ok {
		return nil, false
	}
	column := clause.Column{Name: col}

	switch term.Op {
	case domain.OpIn:
		values := make([]interface{}, len(term.Values))
		for i, v := range term.Values {
			values[i] = v
		}
		return clause.IN{Column: column, Values: values}, true
	case domain.OpGte:
		return clause.Gte{Column: column, Value: term.Bound}, true
	case domain.OpLte:
		return clause.Lte{Column: column, Value: term.Bound}, true
	}
	return nil, false
}

type unsupportedTermError struct {
	term domain.Condition
}

func (e *unsupportedTermError) Error() string {
	return "unsupported predicate term on field " + string(e.term.Field) + " " + e.term.Op.String()
}
