package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"catalog-api/internal/db/dbtest"
	"catalog-api/internal/models"
	"catalog-api/internal/storage"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	ctx        context.Context
	store      *storage.LocalStore
	categories *CategoryService
	products   *ProductService
	images     *ImageService
	users      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := dbtest.New(t)
	logger := zerolog.Nop()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	categories := NewCategoryService(conn, logger)
	categories.now = clock.now
	products := NewProductService(conn, logger, categories, store)
	products.now = clock.now
	users := NewUserService(conn, logger)
	users.now = clock.now
	users.cost = bcrypt.MinCost

	return &fixture{
		ctx:        context.Background(),
		store:      store,
		categories: categories,
		products:   products,
		images:     NewImageService(conn, logger, products, store, 1<<20),
		users:      users,
	}
}

func (f *fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c, err := f.categories.Create(f.ctx, &models.CategoryRequest{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, categoryID int64, name, price string, quantity int) *models.Product {
	t.Helper()
	p, err := f.products.Create(f.ctx, &models.ProductRequest{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Quantity:    quantity,
		Category:    &models.CategoryRef{ID: &categoryID},
	})
	require.NoError(t, err)
	return p
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func ptr[T any](v T) *T { return &v }
