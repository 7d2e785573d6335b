// Package criteria turns optional product search parameters into a single
// AND-combined SQL predicate.
package criteria

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductCriteria holds the filters of a product search. A nil field imposes
// no constraint. Bounds are inclusive and never checked against each other.
type ProductCriteria struct {
	CategoryID  *int64
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinQuantity *int
	MaxQuantity *int
}

// FromQuery reads category, minPrice, maxPrice, minQuantity and maxQuantity.
// Malformed values are dropped rather than reported.
func FromQuery(q url.Values) ProductCriteria {
	var c ProductCriteria

	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			c.CategoryID = &id
		}
	}

	c.MinPrice = parseDecimal(q.Get("minPrice"))
	c.MaxPrice = parseDecimal(q.Get("maxPrice"))
	c.MinQuantity = parseQuantity(q.Get("minQuantity"))
	c.MaxQuantity = parseQuantity(q.Get("maxQuantity"))

	return c
}

func (c ProductCriteria) Empty() bool {
	return c.CategoryID == nil &&
		c.MinPrice == nil && c.MaxPrice == nil &&
		c.MinQuantity == nil && c.MaxQuantity == nil
}

// Predicate renders the criteria against a products table aliased as alias.
func (c ProductCriteria) Predicate(alias string) (string, []any) {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}

	b := &Builder{}
	if c.CategoryID != nil {
		b.AndWhere(col("category_id")+" = ?", *c.CategoryID)
	}
	if c.MinPrice != nil {
		b.AndWhere(col("price")+" >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		b.AndWhere(col("price")+" <= ?", *c.MaxPrice)
	}
	if c.MinQuantity != nil {
		b.AndWhere(col("quantity")+" >= ?", *c.MinQuantity)
	}
	if c.MaxQuantity != nil {
		b.AndWhere(col("quantity")+" <= ?", *c.MaxQuantity)
	}
	return b.SQL()
}

// Matches is the in-memory form of Predicate: a product row satisfies the
// SQL predicate exactly when Matches reports true for its values.
func (c ProductCriteria) Matches(categoryID int64, price decimal.Decimal, quantity int) bool {
	switch {
	case c.CategoryID != nil && categoryID != *c.CategoryID:
		return false
	case c.MinPrice != nil && price.LessThan(*c.MinPrice):
		return false
	case c.MaxPrice != nil && price.GreaterThan(*c.MaxPrice):
		return false
	case c.MinQuantity != nil && quantity < *c.MinQuantity:
		return false
	case c.MaxQuantity != nil && quantity > *c.MaxQuantity:
		return false
	}
	return true
}

func parseDecimal(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

var (
	maxQuantity = decimal.NewFromInt(math.MaxInt)
	minQuantity = decimal.NewFromInt(math.MinInt)
)

// parseQuantity accepts integers and truncates decimals toward zero. Values
// outside the int range are clamped to its ends.
func parseQuantity(raw string) *int {
	d := parseDecimal(raw)
	if d == nil {
		return nil
	}
	var n int
	switch {
	case d.GreaterThan(maxQuantity):
		n = math.MaxInt
	case d.LessThan(minQuantity):
		n = math.MinInt
	default:
		n = int(d.IntPart())
	}
	return &n
}
