package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"slices"

	"catalog-api/internal/models"
	"catalog-api/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type ImageService struct {
	db       *sql.DB
	logger   zerolog.Logger
	products *ProductService
	store    storage.FileStore
	maxBytes int64
}

func NewImageService(db *sql.DB, logger zerolog.Logger, products *ProductService, store storage.FileStore, maxBytes int64) *ImageService {
	return &ImageService{
		db:       db,
		logger:   logger,
		products: products,
		store:    store,
		maxBytes: maxBytes,
	}
}

// ImageFile is the contents of a stored image.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (s *ImageService) List(ctx context.Context) ([]models.Image, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, product_id, path FROM images ORDER BY id")
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing images")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	return scanImages(rows)
}

func (s *ImageService) ListByProduct(ctx context.Context, productID int64) ([]models.Image, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, product_id, path FROM images WHERE product_id = ? ORDER BY id", productID)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("Error listing product images")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	return scanImages(rows)
}

func scanImages(rows *sql.Rows) ([]models.Image, error) {
	images := []models.Image{}
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Path); err != nil {
			return nil, fmt.Errorf("error scanning image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *ImageService) Get(ctx context.Context, id int64) (*models.Image, error) {
	var img models.Image
	err := s.db.QueryRowContext(ctx,
		"SELECT id, product_id, path FROM images WHERE id = ?", id,
	).Scan(&img.ID, &img.ProductID, &img.Path)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("image_id", id).Msg("Error fetching image")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &img, nil
}

// Open reads the stored file of an image.
func (s *ImageService) Open(ctx context.Context, id int64) (*ImageFile, error) {
	img, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rc, err := s.store.Open(ctx, img.Path)
	if errors.Is(err, storage.ErrNotExist) {
		s.logger.Warn().Int64("image_id", id).Str("path", img.Path).Msg("Image file missing from storage")
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return &ImageFile{
		Name:        img.Path,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

// readImage buffers an upload and checks its size and sniffed type.
func (s *ImageService) readImage(r io.Reader) ([]byte, *mimetype.MIME, error) {
	if r == nil {
		return nil, nil, ErrNoImageUploaded
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, ErrNoImageUploaded
	}

	var details []string
	if int64(len(data)) > s.maxBytes {
		details = append(details, fmt.Sprintf("thumbnail: the file is too large, allowed maximum is %d bytes", s.maxBytes))
	}

	mtype := mimetype.Detect(data)
	if !slices.ContainsFunc(allowedImageTypes, mtype.Is) {
		details = append(details, fmt.Sprintf("thumbnail: this file is not a valid image (detected %s)", mtype.String()))
	}

	if len(details) > 0 {
		return nil, nil, validationError(details)
	}
	return data, mtype, nil
}

func (s *ImageService) Upload(ctx context.Context, productID int64, r io.Reader) (*models.Image, error) {
	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	data, mtype, err := s.readImage(r)
	if err != nil {
		return nil, err
	}

	name := uuid.NewString() + mtype.Extension()
	if err := s.store.Save(ctx, name, bytes.NewReader(data)); err != nil {
		s.logger.Error().Err(err).Str("path", name).Msg("Error storing image file")
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, "INSERT INTO images (product_id, path) VALUES (?, ?)", productID, name)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("Error creating image")
		s.discard(ctx, name)
		return nil, fmt.Errorf("failed to create image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get image ID: %w", err)
	}

	s.logger.Info().Int64("image_id", id).Int64("product_id", productID).Str("type", mtype.String()).Msg("Image uploaded")
	return &models.Image{ID: id, ProductID: productID, Path: name}, nil
}

// Replace swaps the file behind an existing image.
func (s *ImageService) Replace(ctx context.Context, id int64, r io.Reader) (*models.Image, error) {
	img, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data, mtype, err := s.readImage(r)
	if err != nil {
		return nil, err
	}

	name := uuid.NewString() + mtype.Extension()
	if err := s.store.Save(ctx, name, bytes.NewReader(data)); err != nil {
		s.logger.Error().Err(err).Str("path", name).Msg("Error storing image file")
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, "UPDATE images SET path = ? WHERE id = ?", name, id); err != nil {
		s.logger.Error().Err(err).Int64("image_id", id).Msg("Error updating image")
		s.discard(ctx, name)
		return nil, fmt.Errorf("failed to update image: %w", err)
	}

	s.discard(ctx, img.Path)
	img.Path = name

	s.logger.Info().Int64("image_id", id).Msg("Image replaced")
	return img, nil
}

func (s *ImageService) Delete(ctx context.Context, id int64) error {
	img, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM images WHERE id = ?", id); err != nil {
		s.logger.Error().Err(err).Int64("image_id", id).Msg("Error deleting image")
		return fmt.Errorf("failed to delete image: %w", err)
	}

	s.discard(ctx, img.Path)
	s.logger.Info().Int64("image_id", id).Msg("Image deleted")
	return nil
}

func (s *ImageService) discard(ctx context.Context, name string) {
	if err := s.store.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrNotExist) {
		s.logger.Warn().Err(err).Str("path", name).Msg("Failed to remove image file (non-critical)")
	}
}
