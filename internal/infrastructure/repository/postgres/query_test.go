package postgres

import (
	"testing"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereClause_Empty(t *testing.T) {
	where, args, err := whereClause(domain.Compile(domain.FilterCriteria{}))
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestWhereClause_AllTerms(t *testing.T) {
	lo, hi := decimal.NewFromInt(2), decimal.NewFromInt(10)
	pred := domain.Compile(domain.FilterCriteria{
		IDList:        []string{"P1", "P2"},
		MinRewardRate: &lo,
		MaxRewardRate: &hi,
		StatusList:    []domain.Status{domain.StatusAuditing},
	})

	where, args, err := whereClause(pred)
	require.NoError(t, err)

	assert.Equal(t, " WHERE id = ANY($1) AND reward_rate >= $2 AND reward_rate <= $3 AND status = ANY($4)", where)
	require.Len(t, args, 4)
	assert.Equal(t, []string{"P1", "P2"}, args[0])
	assert.True(t, lo.Equal(args[1].(decimal.Decimal)))
	assert.Equal(t, []string{"AUDITING"}, args[3])
}

func TestWhereClause_ZeroBoundIgnored(t *testing.T) {
	zero := decimal.Zero
	where, _, err := whereClause(domain.Compile(domain.FilterCriteria{MinRewardRate: &zero}))
	require.NoError(t, err)
	assert.Empty(t, where)
}

func TestWhereClause_UnsupportedField(t *testing.T) {
	_, _, err := whereClause(domain.Predicate{Terms: []domain.Condition{domain.In("name", "x")}})
	assert.Error(t, err)
}

func TestBuildQueries(t *testing.T) {
	lo := decimal.NewFromInt(3)
	pred := domain.Compile(domain.FilterCriteria{MinRewardRate: &lo})
	req := domain.PageRequest{Page: 1, Size: 20, Sort: []domain.Order{{Field: domain.FieldCreateAt, Descending: true}}}.Normalize()

	count, page, args, err := buildQueries(pred, req)
	require.NoError(t, err)

	assert.Equal(t, "SELECT count(*) FROM products WHERE reward_rate >= $1", count)
	assert.Equal(t,
		"SELECT "+selectColumns+" FROM products WHERE reward_rate >= $1 ORDER BY create_at DESC, id ASC LIMIT $2 OFFSET $3",
		page)
	assert.Len(t, args, 1)
}

func TestOrderClause_IDNotRepeated(t *testing.T) {
	assert.Equal(t, " ORDER BY id DESC", orderClause([]domain.Order{{Field: domain.FieldID, Descending: true}}))
}

func TestInsertProduct_ReturnsStoredRow(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO products (id, name, reward_rate, step_amount, lock_term, status, create_at, update_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) "+
			"RETURNING id, name, reward_rate, step_amount, lock_term, status, create_at, update_at",
		insertProduct)
}

func TestSchema_DecimalColumnsAreUnconstrained(t *testing.T) {
	assert.Contains(t, schema, "reward_rate NUMERIC NOT NULL")
	assert.Contains(t, schema, "step_amount NUMERIC,")
	assert.NotContains(t, schema, "NUMERIC(")
}
