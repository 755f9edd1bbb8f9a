package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Op is the comparison a Condition applies to its field
type Op int

const (
	OpIn Op = iota
	OpGte
	OpLte
)

func (o Op) String() string {
	switch o {
	case OpIn:
		return "IN"
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	}
	return "?"
}

// Condition is a single field comparison.
// OpIn uses Values, OpGte and OpLte use Bound.
type Condition struct {
	Field  Field
	Op     Op
	Values []string
	Bound  decimal.Decimal
}

// In builds a membership condition
func In(field Field, values ...string) Condition {
	return Condition{Field: field, Op: OpIn, Values: values}
}

// Gte builds a lower-bound condition
func Gte(field Field, bound decimal.Decimal) Condition {
	return Condition{Field: field, Op: OpGte, Bound: bound}
}

// Lte builds an upper-bound condition
func Lte(field Field, bound decimal.Decimal) Condition {
	return Condition{Field: field, Op: OpLte, Bound: bound}
}

// Matches evaluates the condition against p
func (c Condition) Matches(p *Product) bool {
	switch c.Op {
	case OpIn:
		v, ok := stringValue(p, c.Field)
		return ok && slices.Contains(c.Values, v)
	case OpGte:
		v, ok := decimalValue(p, c.Field)
		return ok && v.GreaterThanOrEqual(c.Bound)
	case OpLte:
		v, ok := decimalValue(p, c.Field)
		return ok && v.LessThanOrEqual(c.Bound)
	}
	return false
}

// Equal compares two conditions; decimal bounds compare by value
func (c Condition) Equal(other Condition) bool {
	return c.Field == other.Field &&
		c.Op == other.Op &&
		slices.Equal(c.Values, other.Values) &&
		c.Bound.Equal(other.Bound)
}

func stringValue(p *Product, f Field) (string, bool) {
	switch f {
	case FieldID:
		return p.ID, true
	case FieldStatus:
		return string(p.Status), true
	}
	return "", false
}

func decimalValue(p *Product, f Field) (decimal.Decimal, bool) {
	switch f {
	case FieldRewardRate:
		return p.RewardRate, true
	case FieldLockTerm:
		return decimal.NewFromInt(int64(p.LockTermValue())), true
	}
	return decimal.Zero, false
}

// Predicate is the conjunction of its terms. No terms matches every product.
type Predicate struct {
	Terms []Condition
}

// And concatenates predicates into one conjunction
func And(preds ...Predicate) Predicate {
	var out Predicate
	for _, p := range preds {
		out.Terms = append(out.Terms, p.Terms...)
	}
	return out
}

// IsEmpty reports whether the predicate matches everything
func (p Predicate) IsEmpty() bool {
	return len(p.Terms) == 0
}

// Matches reports whether every term holds for product
func (p Predicate) Matches(product *Product) bool {
	for _, t := range p.Terms {
		if !t.Matches(product) {
			return false
		}
	}
	return true
}

// Equal compares two predicates term by term
func (p Predicate) Equal(other Predicate) bool {
	return slices.EqualFunc(p.Terms, other.Terms, Condition.Equal)
}

// Compile turns filter criteria into a predicate.
// A reward-rate bound of zero or less counts as unset and adds no term.
func Compile(c FilterCriteria) Predicate {
	var terms []Condition

	if len(c.IDList) > 0 {
		terms = append(terms, In(FieldID, c.IDList...))
	}
	if c.MinRewardRate != nil && c.MinRewardRate.IsPositive() {
		terms = append(terms, Gte(FieldRewardRate, *c.MinRewardRate))
	}
	if c.MaxRewardRate != nil && c.MaxRewardRate.IsPositive() {
		terms = append(terms, Lte(FieldRewardRate, *c.MaxRewardRate))
	}
	if len(c.StatusList) > 0 {
		statuses := make([]string, len(c.StatusList))
		for i, s := range c.StatusList {
			statuses[i] = string(s)
		}
		terms = append(terms, In(FieldStatus, statuses...))
	}

	return Predicate{Terms: terms}
}
