package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/models"
	"catalog-api/internal/validation"

	"github.com/rs/zerolog"
)

type CategoryService struct {
	db        *sql.DB
	logger    zerolog.Logger
	validator *validation.Validator
	now       func() time.Time
}

func NewCategoryService(db *sql.DB, logger zerolog.Logger) *CategoryService {
	return &CategoryService{
		db:        db,
		logger:    logger,
		validator: validation.New(),
		now:       utcNow,
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM categories ORDER BY id",
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing categories")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Get returns the category with its products attached.
func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	c, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, category_id, name, description, price, quantity, created_at, updated_at FROM products WHERE category_id = ? ORDER BY id",
		id,
	)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", id).Msg("Error fetching category products")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	c.Products = []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		c.Products = append(c.Products, p)
	}
	return c, rows.Err()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *CategoryService) find(ctx context.Context, q queryer, id int64) (*models.Category, error) {
	var c models.Category
	err := q.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM categories WHERE id = ?",
		id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", id).Msg("Error fetching category")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &c, nil
}

func (s *CategoryService) Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	if details := s.validator.Struct(req); len(details) > 0 {
		return nil, validationError(details)
	}

	now := s.now()
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (name, created_at, updated_at) VALUES (?, ?, ?)",
		req.Name, now, now,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	s.logger.Info().Int64("category_id", id).Str("name", req.Name).Msg("Category created")
	return s.Get(ctx, id)
}

// Update applies the supplied fields and bumps updatedAt.
func (s *CategoryService) Update(ctx context.Context, id int64, upd *models.CategoryUpdate) (*models.Category, error) {
	c, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if upd.Name.Set {
		if details := s.validator.Var("name", upd.Name.Value, "required,max=255"); len(details) > 0 {
			return nil, validationError(details)
		}
	}
	upd.Name.Apply(&c.Name)
	c.UpdatedAt = s.now()

	_, err = s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, updated_at = ? WHERE id = ?",
		c.Name, c.UpdatedAt, id,
	)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", id).Msg("Error updating category")
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes an empty category. Categories that still own products are
// left untouched and ErrCategoryNotEmpty is returned.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error starting category delete transaction")
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.find(ctx, tx, id); err != nil {
		return err
	}

	var products int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE category_id = ?", id).Scan(&products); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if products > 0 {
		s.logger.Warn().Int64("category_id", id).Int("products", products).Msg("Refusing to delete non-empty category")
		return ErrCategoryNotEmpty
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		s.logger.Error().Err(err).Int64("category_id", id).Msg("Error deleting category")
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category delete: %w", err)
	}

	s.logger.Info().Int64("category_id", id).Msg("Category deleted")
	return nil
}
