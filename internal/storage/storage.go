// Package storage keeps uploaded product thumbnails.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

var ErrNotExist = errors.New("file does not exist")

// FileStore saves, serves and removes files by generated name.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

type Options struct {
	Driver    string
	UploadDir string
	S3Bucket  string
	S3Region  string
	S3Prefix  string
}

func New(ctx context.Context, opts Options, logger zerolog.Logger) (FileStore, error) {
	switch opts.Driver {
	case "", "local":
		logger.Info().Str("dir", opts.UploadDir).Msg("Using local file storage")
		store, err := NewLocalStore(opts.UploadDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "s3":
		logger.Info().Str("bucket", opts.S3Bucket).Str("region", opts.S3Region).Msg("Using S3 file storage")
		store, err := NewS3Store(ctx, opts.S3Bucket, opts.S3Region, opts.S3Prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", opts.Driver)
	}
}
