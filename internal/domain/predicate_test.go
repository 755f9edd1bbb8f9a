package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func sampleProducts() []*Product {
	return []*Product{
		{ID: "P1", RewardRate: dec("1.5"), Status: StatusAuditing},
		{ID: "P2", RewardRate: dec("2"), Status: StatusAuditing},
		{ID: "P3", RewardRate: dec("7.25"), Status: StatusInSell},
		{ID: "P4", RewardRate: dec("10"), Status: StatusAuditing},
		{ID: "P5", RewardRate: dec("12"), Status: StatusAuditing},
	}
}

func matchingIDs(pred Predicate, products []*Product) []string {
	var ids []string
	for _, p := range products {
		if pred.Matches(p) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func TestCompile_EmptyCriteriaMatchesEverything(t *testing.T) {
	pred := Compile(FilterCriteria{})

	assert.True(t, pred.IsEmpty())
	assert.Equal(t, []string{"P1", "P2", "P3", "P4", "P5"}, matchingIDs(pred, sampleProducts()))
}

func TestCompile_EmptyListsAreInactive(t *testing.T) {
	pred := Compile(FilterCriteria{IDList: []string{}, StatusList: []Status{}})
	assert.True(t, pred.IsEmpty())
}

func TestCompile_NonPositiveBoundsAreIgnored(t *testing.T) {
	absent := Compile(FilterCriteria{StatusList: []Status{StatusAuditing}})

	for _, v := range []string{"0", "0.00", "-1", "-0.5"} {
		t.Run("min="+v, func(t *testing.T) {
			got := Compile(FilterCriteria{MinRewardRate: ptr(dec(v)), StatusList: []Status{StatusAuditing}})
			assert.True(t, got.Equal(absent))
		})
		t.Run("max="+v, func(t *testing.T) {
			got := Compile(FilterCriteria{MaxRewardRate: ptr(dec(v)), StatusList: []Status{StatusAuditing}})
			assert.True(t, got.Equal(absent))
		})
	}
}

func TestCompile_ZeroMinIsNotEnforced(t *testing.T) {
	products := append(sampleProducts(), &Product{ID: "P6", RewardRate: dec("-3"), Status: StatusAuditing})

	pred := Compile(FilterCriteria{MinRewardRate: ptr(decimal.Zero)})

	assert.Contains(t, matchingIDs(pred, products), "P6")
}

func TestCompile_TermOrder(t *testing.T) {
	pred := Compile(FilterCriteria{
		IDList:        []string{"P1", "P2"},
		MinRewardRate: ptr(dec("2")),
		MaxRewardRate: ptr(dec("10")),
		StatusList:    []Status{StatusAuditing, StatusInSell},
	})

	want := Predicate{Terms: []Condition{
		In(FieldID, "P1", "P2"),
		Gte(FieldRewardRate, dec("2")),
		Lte(FieldRewardRate, dec("10")),
		In(FieldStatus, "AUDITING", "IN_SELL"),
	}}
	require.Len(t, pred.Terms, 4)
	assert.True(t, pred.Equal(want))
}

func TestCompile_RangeAndStatus(t *testing.T) {
	pred := Compile(FilterCriteria{
		MinRewardRate: ptr(dec("2")),
		MaxRewardRate: ptr(dec("10")),
		StatusList:    []Status{StatusAuditing},
	})

	// bounds are inclusive
	assert.Equal(t, []string{"P2", "P4"}, matchingIDs(pred, sampleProducts()))
}

func TestCompile_IDList(t *testing.T) {
	pred := Compile(FilterCriteria{IDList: []string{"P3", "P5", "missing"}})
	assert.Equal(t, []string{"P3", "P5"}, matchingIDs(pred, sampleProducts()))
}

func TestAnd(t *testing.T) {
	a := Predicate{Terms: []Condition{In(FieldID, "P1")}}
	b := Predicate{Terms: []Condition{Gte(FieldRewardRate, dec("1"))}}

	got := And(a, Predicate{}, b)

	assert.Len(t, got.Terms, 2)
	assert.True(t, And().IsEmpty())
}

func TestConditionEqual_DecimalScale(t *testing.T) {
	assert.True(t, Gte(FieldRewardRate, dec("2")).Equal(Gte(FieldRewardRate, dec("2.00"))))
	assert.False(t, Gte(FieldRewardRate, dec("2")).Equal(Lte(FieldRewardRate, dec("2"))))
}

func TestPageRequestNormalize(t *testing.T) {
	r := PageRequest{Page: -2, Size: 500, Sort: []Order{{Field: "name"}, {Field: FieldRewardRate, Descending: true}}}.Normalize()

	assert.Equal(t, 0, r.Page)
	assert.Equal(t, MaxPageSize, r.Size)
	assert.Equal(t, []Order{{Field: FieldRewardRate, Descending: true}}, r.Sort)

	d := PageRequest{}.Normalize()
	assert.Equal(t, DefaultPageSize, d.Size)
	assert.Equal(t, []Order{{Field: FieldID}}, d.Sort)
	assert.Equal(t, 0, d.Offset())
}

func TestPageRequestNormalize_HugePageDoesNotOverflow(t *testing.T) {
	for _, size := range []int{0, 1, 10, MaxPageSize, 1000} {
		r := PageRequest{Page: 1844674407370955161, Size: size}.Normalize()
		assert.Equal(t, MaxPage, r.Page)
		assert.GreaterOrEqual(t, r.Offset(), 0)
	}

	r := PageRequest{Page: math.MaxInt, Size: MaxPageSize}.Normalize()
	assert.Equal(t, MaxPage*MaxPageSize, r.Offset())
}

func TestPageTotalPages(t *testing.T) {
	assert.Equal(t, 3, (&Page{TotalElements: 21, Size: 10}).TotalPages())
	assert.Equal(t, 0, (&Page{TotalElements: 0, Size: 10}).TotalPages())
	assert.Equal(t, 0, (&Page{TotalElements: 5}).TotalPages())
}
