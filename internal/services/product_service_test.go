package services

import (
	"bytes"
	"net/url"
	"strconv"
	"testing"

	"catalog-api/internal/criteria"
	"catalog-api/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCreateRequiresCategory(t *testing.T) {
	f := newFixture(t)

	req := &models.ProductRequest{Name: "Hammer", Price: decimal.NewFromInt(5), Quantity: 1}
	_, err := f.products.Create(f.ctx, req)
	assert.ErrorIs(t, err, ErrCategoryRequired)

	req.Category = &models.CategoryRef{}
	_, err = f.products.Create(f.ctx, req)
	assert.ErrorIs(t, err, ErrCategoryRequired)

	req.Category = &models.CategoryRef{ID: ptr(int64(77))}
	_, err = f.products.Create(f.ctx, req)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestProductCreateValidates(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")

	_, err := f.products.Create(f.ctx, &models.ProductRequest{
		Price:    decimal.NewFromInt(-1),
		Quantity: -3,
		Category: &models.CategoryRef{ID: &c.ID},
	})

	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Len(t, appErr.Details, 3)
}

func TestProductCreateAndGet(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")

	p := f.product(t, c.ID, "Hammer", "12.50", 3)

	got, err := f.products.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 3, got.Quantity)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Tools", got.Category.Name)
	assert.NotNil(t, got.Images)
	assert.Empty(t, got.Images)

	_, err = f.products.Get(f.ctx, p.ID+100)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFindByCriteriaMatchesInMemoryFilter(t *testing.T) {
	f := newFixture(t)
	tools := f.category(t, "Tools")
	garden := f.category(t, "Garden")

	seeded := []*models.Product{
		f.product(t, tools.ID, "Hammer", "5.00", 10),
		f.product(t, tools.ID, "Saw", "15.00", 0),
		f.product(t, tools.ID, "Drill", "99.99", 4),
		f.product(t, garden.ID, "Rake", "15.00", 7),
		f.product(t, garden.ID, "Hose", "20.50", 25),
	}

	queries := []string{
		"",
		"category=" + itoa(tools.ID),
		"category=" + itoa(garden.ID) + "&minPrice=16",
		"minPrice=15&maxPrice=15",
		"minPrice=10",
		"maxPrice=15",
		"minQuantity=5",
		"maxQuantity=4",
		"minQuantity=4&maxQuantity=10",
		"minQuantity=4.9",
		"category=" + itoa(tools.ID) + "&minPrice=1&maxPrice=50&minQuantity=1&maxQuantity=20",
		"minPrice=abc&maxQuantity=",
		"maxQuantity=1e19",
		"minQuantity=-1e19",
		"minQuantity=1e19",
		"maxPrice=1e30",
	}

	for _, raw := range queries {
		t.Run(raw, func(t *testing.T) {
			q, err := url.ParseQuery(raw)
			require.NoError(t, err)
			c := criteria.FromQuery(q)

			var want []int64
			for _, p := range seeded {
				if c.Matches(p.CategoryID, p.Price, p.Quantity) {
					want = append(want, p.ID)
				}
			}

			found, err := f.products.FindByCriteria(f.ctx, c)
			require.NoError(t, err)

			var got []int64
			for _, p := range found {
				got = append(got, p.ID)
				assert.True(t, c.Matches(p.CategoryID, p.Price, p.Quantity), "product %d", p.ID)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestFindByCriteriaEdgeCases(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")
	f.product(t, c.ID, "Hammer", "5", 10)
	f.product(t, c.ID, "Saw", "15", 2)

	inverted, err := f.products.FindByCriteria(f.ctx, criteria.FromQuery(url.Values{
		"minPrice": {"20"},
		"maxPrice": {"10"},
	}))
	require.NoError(t, err)
	assert.NotNil(t, inverted)
	assert.Empty(t, inverted)

	for _, category := range []string{"-5", "abc", "0"} {
		all, err := f.products.FindByCriteria(f.ctx, criteria.FromQuery(url.Values{"category": {category}}))
		require.NoError(t, err)
		assert.Len(t, all, 2, "category=%s", category)
	}

	for _, bounds := range []url.Values{
		{"maxQuantity": {"1e19"}},
		{"minQuantity": {"-1e19"}},
		{"minQuantity": {"-1e19"}, "maxQuantity": {"1e19"}},
		{"maxPrice": {"1e30"}},
	} {
		all, err := f.products.FindByCriteria(f.ctx, criteria.FromQuery(bounds))
		require.NoError(t, err)
		assert.Len(t, all, 2, "%v", bounds)
	}

	unknown, err := f.products.FindByCriteria(f.ctx, criteria.FromQuery(url.Values{"category": {"999"}}))
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestFindByCriteriaAttachesImages(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")
	a := f.product(t, c.ID, "Hammer", "5", 10)
	b := f.product(t, c.ID, "Saw", "15", 2)

	first, err := f.images.Upload(f.ctx, a.ID, bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	second, err := f.images.Upload(f.ctx, a.ID, bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	found, err := f.products.FindByCriteria(f.ctx, criteria.ProductCriteria{})
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, a.ID, found[0].ID)
	require.Len(t, found[0].Images, 2)
	assert.Equal(t, first.ID, found[0].Images[0].ID)
	assert.Equal(t, second.ID, found[0].Images[1].ID)

	assert.Equal(t, b.ID, found[1].ID)
	assert.NotNil(t, found[1].Images)
	assert.Empty(t, found[1].Images)
}

func TestProductPartialUpdateKeepsAbsentFields(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")
	p := f.product(t, c.ID, "Hammer", "12.50", 3)

	updated, err := f.products.Update(f.ctx, p.ID, &models.ProductUpdate{Name: models.Some("Widget")})
	require.NoError(t, err)

	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, p.Description, updated.Description)
	assert.True(t, updated.Price.Equal(p.Price))
	assert.Equal(t, p.Quantity, updated.Quantity)
	assert.Equal(t, p.CategoryID, updated.CategoryID)
	assert.True(t, updated.CreatedAt.Equal(p.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
}

func TestProductUpdateAppliesZeroValues(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")
	p := f.product(t, c.ID, "Hammer", "12.50", 3)

	updated, err := f.products.Update(f.ctx, p.ID, &models.ProductUpdate{
		Description: models.Some(""),
		Price:       models.Some(decimal.Zero),
		Quantity:    models.Some(0),
	})
	require.NoError(t, err)

	assert.Equal(t, "", updated.Description)
	assert.True(t, updated.Price.IsZero())
	assert.Equal(t, 0, updated.Quantity)
	assert.Equal(t, "Hammer", updated.Name)
}

func TestProductUpdateRejectsInvalidValues(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")
	p := f.product(t, c.ID, "Hammer", "12.50", 3)

	_, err := f.products.Update(f.ctx, p.ID, &models.ProductUpdate{
		Name:     models.Some(""),
		Price:    models.Some(decimal.NewFromInt(-2)),
		Quantity: models.Some(-1),
	})
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Len(t, appErr.Details, 3)

	_, err = f.products.Update(f.ctx, p.ID, &models.ProductUpdate{
		Price: models.Some(decimal.NewFromInt(100000000)),
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"price: this value should be less than or equal to 99999999.99"}, appErr.Details)

	unchanged, err := f.products.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", unchanged.Name)
	assert.True(t, unchanged.Price.Equal(decimal.RequireFromString("12.50")))
}

func TestProductCreateRejectsPriceBeyondColumn(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")

	_, err := f.products.Create(f.ctx, &models.ProductRequest{
		Name:     "Yacht",
		Price:    decimal.RequireFromString("100000000"),
		Category: &models.CategoryRef{ID: &c.ID},
	})
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)

	p, err := f.products.Create(f.ctx, &models.ProductRequest{
		Name:     "Boat",
		Price:    decimal.RequireFromString("99999999.99"),
		Category: &models.CategoryRef{ID: &c.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "99999999.99", p.Price.StringFixed(2))
}

func TestProductUpdateMovesCategory(t *testing.T) {
	f := newFixture(t)
	tools := f.category(t, "Tools")
	garden := f.category(t, "Garden")
	p := f.product(t, tools.ID, "Rake", "9", 1)

	moved, err := f.products.Update(f.ctx, p.ID, &models.ProductUpdate{
		Category: models.Some(models.CategoryRef{ID: &garden.ID}),
	})
	require.NoError(t, err)
	assert.Equal(t, garden.ID, moved.CategoryID)
	assert.Equal(t, "Garden", moved.Category.Name)

	_, err = f.products.Update(f.ctx, p.ID, &models.ProductUpdate{
		Category: models.Some(models.CategoryRef{ID: ptr(int64(555))}),
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = f.products.Update(f.ctx, p.ID, &models.ProductUpdate{
		Category: models.Some(models.CategoryRef{}),
	})
	assert.ErrorIs(t, err, ErrCategoryRequired)

	_, err = f.products.Update(f.ctx, 999, &models.ProductUpdate{})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductDeleteRemovesImages(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")
	p := f.product(t, c.ID, "Hammer", "5", 1)

	img, err := f.images.Upload(f.ctx, p.ID, bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(f.ctx, p.ID))

	_, err = f.products.Get(f.ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = f.images.Get(f.ctx, img.ID)
	assert.ErrorIs(t, err, ErrImageNotFound)
	_, err = f.store.Open(f.ctx, img.Path)
	assert.Error(t, err)

	assert.ErrorIs(t, f.products.Delete(f.ctx, p.ID), ErrProductNotFound)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
