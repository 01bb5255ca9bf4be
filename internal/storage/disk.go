// Package storage stores uploaded media files.
//
// Two drivers are available:
//   - "local": files under a root directory, served by the API at /media
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2)
//
// Paths are slash-separated and may start with "/", as produced by the
// upload package ("/uploads/recipe/<id>.jpg").
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Disk is the driver interface.
type Disk interface {
	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader) error

	// Delete removes path. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}

// Options selects and configures a driver.
type Options struct {
	Driver string // "local" (default) or "s3"

	LocalRoot string // root directory for the local driver
	LocalURL  string // public URL prefix for the local driver, e.g. "/media"

	S3 S3Options
}

// New returns the Disk for opts.Driver.
func New(ctx context.Context, opts Options) (Disk, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "local":
		return NewLocal(opts.LocalRoot, opts.LocalURL)
	case "s3":
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}

// key turns a path into a relative slash-separated key.
func key(path string) string {
	return strings.TrimLeft(path, "/")
}
