package services

import (
	"testing"

	"catalog-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreateListGet(t *testing.T) {
	f := newFixture(t)

	tools := f.category(t, "Tools")
	f.category(t, "Garden")
	f.product(t, tools.ID, "Hammer", "12.50", 3)

	list, err := f.categories.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Tools", list[0].Name)

	got, err := f.categories.Get(f.ctx, tools.ID)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Hammer", got.Products[0].Name)

	_, err = f.categories.Get(f.ctx, 999)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryCreateValidates(t *testing.T) {
	f := newFixture(t)

	_, err := f.categories.Create(f.ctx, &models.CategoryRequest{})

	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Equal(t, []string{"name: this value should not be blank"}, appErr.Details)
}

func TestCategoryPartialUpdate(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")

	same, err := f.categories.Update(f.ctx, c.ID, &models.CategoryUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Tools", same.Name)
	assert.True(t, same.UpdatedAt.After(c.UpdatedAt))

	renamed, err := f.categories.Update(f.ctx, c.ID, &models.CategoryUpdate{Name: models.Some("Hardware")})
	require.NoError(t, err)
	assert.Equal(t, "Hardware", renamed.Name)
	assert.True(t, renamed.CreatedAt.Equal(c.CreatedAt))

	_, err = f.categories.Update(f.ctx, c.ID, &models.CategoryUpdate{Name: models.Some("")})
	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)

	_, err = f.categories.Update(f.ctx, 404, &models.CategoryUpdate{})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryDeleteBlockedWhileProductsExist(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Tools")
	p := f.product(t, c.ID, "Hammer", "10", 1)

	err := f.categories.Delete(f.ctx, c.ID)
	assert.ErrorIs(t, err, ErrCategoryNotEmpty)

	still, err := f.categories.Get(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, still.Products, 1)
	_, err = f.products.Get(f.ctx, p.ID)
	assert.NoError(t, err)

	require.NoError(t, f.products.Delete(f.ctx, p.ID))
	require.NoError(t, f.categories.Delete(f.ctx, c.ID))

	_, err = f.categories.Get(f.ctx, c.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.ErrorIs(t, f.categories.Delete(f.ctx, c.ID), ErrCategoryNotFound)
}
