package postgres

import (
	"fmt"
	"strings"

	"github.com/mrops-br/product-catalog-api/internal/domain"
)

var columns = map[domain.Field]string{
	domain.FieldID:         "id",
	domain.FieldRewardRate: "reward_rate",
	domain.FieldStatus:     "status",
	domain.FieldLockTerm:   "lock_term",
	domain.FieldCreateAt:   "create_at",
	domain.FieldUpdateAt:   "update_at",
}

const selectColumns = "id, name, reward_rate, step_amount, lock_term, status, create_at, update_at"

const insertProduct = "INSERT INTO products (" + selectColumns + ") " +
	"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING " + selectColumns

// whereClause renders a predicate as a WHERE clause with positional
// arguments. An empty predicate renders as an empty string.
func whereClause(pred domain.Predicate) (string, []any, error) {
	if pred.IsEmpty() {
		return "", nil, nil
	}

	parts := make([]string, 0, len(pred.Terms))
	args := make([]any, 0, len(pred.Terms))
	for _, term := range pred.Terms {
		col, ok := columns[term.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported predicate field %q", term.Field)
		}

		args = append(args, termArg(term))
		n := len(args)

		switch term.Op {
		case domain.OpIn:
			parts = append(parts, fmt.Sprintf("%s = ANY($%d)", col, n))
		case domain.OpGte:
			parts = append(parts, fmt.Sprintf("%s >= $%d", col, n))
		case domain.OpLte:
			parts = append(parts, fmt.Sprintf("%s <= $%d", col, n))
		default:
			return "", nil, fmt.Errorf("unsupported predicate operator %s", term.Op)
		}
	}

	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func termArg(term domain.Condition) any {
	if term.Op == domain.OpIn {
		return term.Values
	}
	return term.Bound
}

// orderClause renders sort keys, always ending with id for stable paging
func orderClause(orders []domain.Order) string {
	parts := make([]string, 0, len(orders)+1)
	byID := false
	for _, o := range orders {
		col, ok := columns[o.Field]
		if !ok {
			continue
		}
		byID = byID || o.Field == domain.FieldID
		if o.Descending {
			parts = append(parts, col+" DESC")
		} else {
			parts = append(parts, col+" ASC")
		}
	}
	if !byID {
		parts = append(parts, "id ASC")
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// buildQueries returns the count query and the page query for a request
func buildQueries(pred domain.Predicate, req domain.PageRequest) (count string, page string, args []any, err error) {
	where, args, err := whereClause(pred)
	if err != nil {
		return "", "", nil, err
	}

	count = "SELECT count(*) FROM products" + where
	page = fmt.Sprintf("SELECT %s FROM products%s%s LIMIT $%d OFFSET $%d",
		selectColumns, where, orderClause(req.Sort), len(args)+1, len(args)+2)
	return count, page, args, nil
}
