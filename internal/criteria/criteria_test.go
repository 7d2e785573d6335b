package criteria

import (
	"math"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromQueryCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want *int64
	}{
		{"3", ptr(int64(3))},
		{" 7 ", ptr(int64(7))},
		{"-5", nil},
		{"0", nil},
		{"abc", nil},
		{"1.5", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := FromQuery(url.Values{"category": {tt.raw}})
			assert.Equal(t, tt.want, c.CategoryID)
		})
	}
}

func TestFromQueryBounds(t *testing.T) {
	c := FromQuery(url.Values{
		"minPrice":    {"9.99"},
		"maxPrice":    {"100"},
		"minQuantity": {"2"},
		"maxQuantity": {"5.9"},
	})

	require.NotNil(t, c.MinPrice)
	require.NotNil(t, c.MaxPrice)
	assert.True(t, c.MinPrice.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, c.MaxPrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, ptr(2), c.MinQuantity)
	assert.Equal(t, ptr(5), c.MaxQuantity)
	assert.Nil(t, c.CategoryID)
}

func TestFromQueryClampsOutOfRangeQuantities(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"1e19", math.MaxInt},
		{"99999999999999999999.5", math.MaxInt},
		{"-1e19", math.MinInt},
		{"9223372036854775807", math.MaxInt},
		{"-9223372036854775808", math.MinInt},
		{"-3.7", -3},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := FromQuery(url.Values{"minQuantity": {tt.raw}, "maxQuantity": {tt.raw}})
			assert.Equal(t, ptr(tt.want), c.MinQuantity)
			assert.Equal(t, ptr(tt.want), c.MaxQuantity)
		})
	}

	loose := FromQuery(url.Values{"minQuantity": {"-1e19"}, "maxQuantity": {"1e19"}})
	for _, q := range []int{0, 10, math.MaxInt32} {
		assert.True(t, loose.Matches(1, decimal.NewFromInt(1), q))
	}
}

func TestFromQueryDropsMalformedBounds(t *testing.T) {
	c := FromQuery(url.Values{
		"minPrice":    {"cheap"},
		"maxPrice":    {""},
		"minQuantity": {"lots"},
	})
	assert.True(t, c.Empty())
}

func TestPredicateEmpty(t *testing.T) {
	sql, args := ProductCriteria{}.Predicate("p")
	assert.Empty(t, sql)
	assert.Empty(t, args)
	assert.Empty(t, Where(sql))
}

func TestPredicateComposesConjunction(t *testing.T) {
	c := FromQuery(url.Values{
		"category":    {"4"},
		"minPrice":    {"10"},
		"maxQuantity": {"3"},
	})

	sql, args := c.Predicate("p")

	assert.Equal(t, "(p.category_id = ?) AND (p.price >= ?) AND (p.quantity <= ?)", sql)
	require.Len(t, args, 3)
	assert.Equal(t, int64(4), args[0])
	assert.True(t, args[1].(decimal.Decimal).Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 3, args[2])
	assert.Equal(t, " WHERE "+sql, Where(sql))
}

func TestPredicateSingleConditionWithoutAlias(t *testing.T) {
	sql, args := FromQuery(url.Values{"minQuantity": {"1"}}).Predicate("")
	assert.Equal(t, "quantity >= ?", sql)
	assert.Equal(t, []any{1}, args)
}

func TestMatchesIsInclusive(t *testing.T) {
	c := FromQuery(url.Values{"minPrice": {"10"}, "maxPrice": {"20"}, "minQuantity": {"1"}, "maxQuantity": {"1"}})

	assert.True(t, c.Matches(1, decimal.NewFromInt(10), 1))
	assert.True(t, c.Matches(1, decimal.NewFromInt(20), 1))
	assert.False(t, c.Matches(1, decimal.RequireFromString("20.01"), 1))
	assert.False(t, c.Matches(1, decimal.NewFromInt(15), 2))
}

func TestMatchesInvertedRangeIsEmpty(t *testing.T) {
	c := FromQuery(url.Values{"minPrice": {"100"}, "maxPrice": {"10"}})
	for _, p := range []int64{5, 10, 50, 100, 500} {
		assert.False(t, c.Matches(1, decimal.NewFromInt(p), 1))
	}
}

func ptr[T any](v T) *T { return &v }
