package view

import (
	"encoding/json"
	"testing"
	"time"

	"catalog-api/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProduct() models.Product {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.Product{
		ID:          7,
		CategoryID:  2,
		Name:        "Lamp",
		Description: "Desk lamp",
		Price:       decimal.RequireFromString("19.9"),
		Quantity:    4,
		CreatedAt:   now,
		UpdatedAt:   now,
		Category:    &models.Category{ID: 2, Name: "Lighting", CreatedAt: now, UpdatedAt: now},
		Images:      []models.Image{{ID: 11, ProductID: 7, Path: "a.png"}},
	}
}

func TestObjectKeepsOrder(t *testing.T) {
	obj := NewObject().With("b", 1).With("a", 2).With("b", 3)
	b, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":3,"a":2}`, string(b))
	assert.Equal(t, `{"b":3,"a":2}`, string(b))

	obj.Without("b").Without("missing")
	assert.Equal(t, []string{"a"}, obj.Keys())
}

func TestProductIndexProjection(t *testing.T) {
	obj := Product.Project(sampleProduct(), ProductsIndex)

	assert.Equal(t, []string{"id", "name", "price", "quantity", "category", "images"}, obj.Keys())

	b, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"name": "Lamp",
		"price": 19.90,
		"quantity": 4,
		"category": {"id": 2, "name": "Lighting"},
		"images": [{"id": 11}]
	}`, string(b))
}

func TestProductShowProjectionAddsDetails(t *testing.T) {
	obj := Product.Project(sampleProduct(), ProductsIndex, ProductsShow)
	obj.Without("images").With("images", Image.ProjectAll([]ImageLink{
		{Image: models.Image{ID: 11}, URL: "http://localhost/api/images/11"},
	}, ImagesIndex))

	b, err := json.Marshal(obj)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "Desk lamp", out["description"])
	assert.Contains(t, out, "createdAt")
	assert.Equal(t, []any{map[string]any{"id": float64(11), "url": "http://localhost/api/images/11"}}, out["images"])
}

func TestProductPostProjectionHasNoImages(t *testing.T) {
	fields := Product.Fields(ProductsPost)
	assert.NotContains(t, fields, "images")
	assert.Contains(t, fields, "description")
}

func TestCategoryShowListsProductsByIDAndName(t *testing.T) {
	c := models.Category{ID: 1, Name: "Tools", Products: []models.Product{sampleProduct()}}
	b, err := json.Marshal(Category.Project(c, CategoriesIndex, CategoriesShow))
	require.NoError(t, err)

	var out struct {
		Products []map[string]any `json:"products"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	require.Len(t, out.Products, 1)
	assert.Equal(t, map[string]any{"id": float64(7), "name": "Lamp"}, out.Products[0])
}

func TestUserProjectionNeverIncludesPassword(t *testing.T) {
	u := models.User{ID: 1, Username: "ann", Email: "ann@example.com", PasswordHash: "$2a$10$hash", Roles: models.Roles{models.RoleAdmin}}

	for _, groups := range [][]Group{{UserIndex}, {UserShow}, {UserRegister}, {UserIndex, UserShow, UserRegister}} {
		b, err := json.Marshal(User.Project(u, groups...))
		require.NoError(t, err)
		assert.NotContains(t, string(b), "password")
		assert.NotContains(t, string(b), "$2a$10$hash")
	}
}

func TestUnknownGroupYieldsEmptyObject(t *testing.T) {
	b, err := json.Marshal(User.Project(models.User{ID: 1}, Group("does.not.exist")))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}

func TestProjectAllNilIsEmptyList(t *testing.T) {
	b, err := json.Marshal(Product.ProjectAll(nil, ProductsIndex))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}
