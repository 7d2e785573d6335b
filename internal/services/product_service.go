package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/criteria"
	"catalog-api/internal/models"
	"catalog-api/internal/storage"
	"catalog-api/internal/validation"

	"github.com/rs/zerolog"
)

type ProductService struct {
	db         *sql.DB
	logger     zerolog.Logger
	categories *CategoryService
	store      storage.FileStore
	validator  *validation.Validator
	now        func() time.Time
}

func NewProductService(db *sql.DB, logger zerolog.Logger, categories *CategoryService, store storage.FileStore) *ProductService {
	return &ProductService{
		db:         db,
		logger:     logger,
		categories: categories,
		store:      store,
		validator:  validation.New(),
		now:        utcNow,
	}
}

const productSelect = `
	SELECT p.id, p.category_id, p.name, p.description, p.price, p.quantity, p.created_at, p.updated_at,
		c.id, c.name, c.created_at, c.updated_at,
		i.id, i.path
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN images i ON i.product_id = p.id`

// FindByCriteria returns the products matching every supplied bound, each
// with its category and images attached, in a single query.
func (s *ProductService) FindByCriteria(ctx context.Context, c criteria.ProductCriteria) ([]models.Product, error) {
	predicate, args := c.Predicate("p")
	query := productSelect + criteria.Where(predicate) + " ORDER BY p.id, i.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error searching products")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("results", len(products)).Bool("filtered", !c.Empty()).Msg("Product search")
	return products, nil
}

// scanProducts folds joined product/image rows into products, keeping the
// order of first appearance.
func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	products := []models.Product{}
	index := map[int64]int{}

	for rows.Next() {
		var (
			p         models.Product
			cat       models.Category
			imageID   sql.NullInt64
			imagePath sql.NullString
		)
		err := rows.Scan(
			&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt,
			&cat.ID, &cat.Name, &cat.CreatedAt, &cat.UpdatedAt,
			&imageID, &imagePath,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}

		pos, seen := index[p.ID]
		if !seen {
			p.Category = &cat
			p.Images = []models.Image{}
			products = append(products, p)
			pos = len(products) - 1
			index[p.ID] = pos
		}

		if imageID.Valid {
			products[pos].Images = append(products[pos].Images, models.Image{
				ID:        imageID.Int64,
				ProductID: p.ID,
				Path:      imagePath.String,
			})
		}
	}
	return products, rows.Err()
}

func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	rows, err := s.db.QueryContext(ctx, productSelect+" WHERE p.id = ? ORDER BY i.id", id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("Error fetching product")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	return &products[0], nil
}

// Exists reports whether a product row is present.
func (s *ProductService) Exists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM products WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return true, nil
}

func (s *ProductService) resolveCategory(ctx context.Context, ref *models.CategoryRef) (*models.Category, error) {
	if ref == nil || ref.ID == nil {
		return nil, ErrCategoryRequired
	}
	return s.categories.find(ctx, s.db, *ref.ID)
}

func (s *ProductService) Create(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	if details := s.validator.Struct(req); len(details) > 0 {
		return nil, validationError(details)
	}

	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO products (category_id, name, description, price, quantity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		category.ID, req.Name, req.Description, req.Price, req.Quantity, now, now,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get product ID: %w", err)
	}

	s.logger.Info().Int64("product_id", id).Int64("category_id", category.ID).Msg("Product created")
	return s.Get(ctx, id)
}

// Update merges the supplied fields onto the stored product. Present values
// are applied even when empty or zero; absent ones keep their current value.
func (s *ProductService) Update(ctx context.Context, id int64, upd *models.ProductUpdate) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var details []string
	if upd.Name.Set {
		details = append(details, s.validator.Var("name", upd.Name.Value, "required,max=255")...)
	}
	if upd.Price.Set {
		// bounds of the DECIMAL(10,2) price column
		details = append(details, s.validator.Var("price", upd.Price.Value, "gte=0,lte=99999999.99")...)
	}
	if upd.Quantity.Set {
		details = append(details, s.validator.Var("quantity", upd.Quantity.Value, "gte=0")...)
	}
	if len(details) > 0 {
		return nil, validationError(details)
	}

	if upd.Category.Set {
		category, err := s.resolveCategory(ctx, &upd.Category.Value)
		if err != nil {
			return nil, err
		}
		p.CategoryID = category.ID
	}

	upd.Name.Apply(&p.Name)
	upd.Description.Apply(&p.Description)
	upd.Price.Apply(&p.Price)
	upd.Quantity.Apply(&p.Quantity)
	p.UpdatedAt = s.now()

	_, err = s.db.ExecContext(ctx,
		`UPDATE products SET category_id = ?, name = ?, description = ?, price = ?, quantity = ?, updated_at = ?
		 WHERE id = ?`,
		p.CategoryID, p.Name, p.Description, p.Price, p.Quantity, p.UpdatedAt, id,
	)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("Error updating product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Int64("product_id", id).Msg("Product updated")
	return s.Get(ctx, id)
}

// Delete removes the product and its image rows, then its stored files.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting product delete transaction")
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM images WHERE product_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete product images: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id); err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("Error deleting product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product delete: %w", err)
	}

	for _, img := range p.Images {
		if err := s.store.Delete(ctx, img.Path); err != nil && !errors.Is(err, storage.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", img.Path).Msg("Failed to remove image file (non-critical)")
		}
	}

	s.logger.Info().Int64("product_id", id).Int("images", len(p.Images)).Msg("Product deleted")
	return nil
}
