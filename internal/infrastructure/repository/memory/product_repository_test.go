package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestRepository(t *testing.T) *ProductRepository {
	t.Helper()
	return NewProductRepository(noop.NewTracerProvider().Tracer("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seed(t *testing.T, repo *ProductRepository, products ...domain.Product) {
	t.Helper()
	for _, p := range products {
		_, err := repo.Save(context.Background(), &p)
		require.NoError(t, err)
	}
}

func product(id, rate string, status domain.Status) domain.Product {
	return domain.Product{ID: id, RewardRate: decimal.RequireFromString(rate), Status: status}
}

func ids(page *domain.Page) []string {
	out := make([]string, len(page.Content))
	for i, p := range page.Content {
		out[i] = p.ID
	}
	return out
}

func TestSaveAndFindOne(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	p := product("P1", "5.5", domain.StatusAuditing)
	saved, err := repo.Save(ctx, &p)
	require.NoError(t, err)
	assert.Equal(t, "P1", saved.ID)

	// stored value is a copy
	p.Name = "changed"

	got, err := repo.FindOne(ctx, "P1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Name)
	assert.True(t, got.RewardRate.Equal(decimal.RequireFromString("5.5")))
}

func TestFindOne_Absent(t *testing.T) {
	got, err := newTestRepository(t).FindOne(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSave_DuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	seed(t, repo, product("P1", "1", domain.StatusAuditing))

	dup := product("P1", "2", domain.StatusAuditing)
	_, err := repo.Save(ctx, &dup)

	var storageErr *domain.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestFindAll_FilterSortAndPaginate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	seed(t, repo,
		product("P1", "1.5", domain.StatusAuditing),
		product("P2", "2", domain.StatusAuditing),
		product("P3", "7.25", domain.StatusInSell),
		product("P4", "10", domain.StatusAuditing),
		product("P5", "12", domain.StatusAuditing),
	)

	lo, hi := decimal.NewFromInt(2), decimal.NewFromInt(10)
	pred := domain.Compile(domain.FilterCriteria{
		MinRewardRate: &lo,
		MaxRewardRate: &hi,
		StatusList:    []domain.Status{domain.StatusAuditing},
	})

	page, err := repo.FindAll(ctx, pred, domain.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"P2", "P4"}, ids(page))
	assert.EqualValues(t, 2, page.TotalElements)

	all, err := repo.FindAll(ctx, domain.Predicate{}, domain.PageRequest{
		Page: 1,
		Size: 2,
		Sort: []domain.Order{{Field: domain.FieldRewardRate, Descending: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"P3", "P2"}, ids(all))
	assert.EqualValues(t, 5, all.TotalElements)
	assert.Equal(t, 3, all.TotalPages())
	assert.Equal(t, 1, all.Page)
}

func TestFindAll_PageBeyondEnd(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo, product("P1", "1", domain.StatusAuditing))

	page, err := repo.FindAll(context.Background(), domain.Predicate{}, domain.PageRequest{Page: 4, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.EqualValues(t, 1, page.TotalElements)
}

func TestFindAll_HugePageIndex(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo, product("P1", "1", domain.StatusAuditing))

	var (
		page *domain.Page
		err  error
	)
	require.NotPanics(t, func() {
		page, err = repo.FindAll(context.Background(), domain.Predicate{}, domain.PageRequest{Page: 1844674407370955161, Size: 10})
	})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.EqualValues(t, 1, page.TotalElements)
	assert.Equal(t, domain.MaxPage, page.Page)
}
