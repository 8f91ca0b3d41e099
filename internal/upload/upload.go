// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package upload implements the media pipeline behind the admin item form:
// validate the chosen file, recompress images, upload to object storage
// with progress reporting, and hand back a cache-busted public URL. Blobs
// live at a deterministic key derived from the item id, so a re-upload for
// the same item overwrites in place.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"salonpress/internal/models"
)

const (
	// maxVideoSize is the upload cap for videos (50 MB). Images have no
	// explicit cap because they are recompressed before upload.
	maxVideoSize = 50 << 20
)

// Validation failures. These are reported to the user before anything is
// written; everything else coming out of the pipeline is a transport or
// storage failure.
var (
	ErrUnsupportedType = errors.New("unsupported media type: use JPEG, PNG, MP4 or MOV")
	ErrVideoTooLarge   = errors.New("video exceeds the 50 MB limit")
)

// allowedTypes is the fixed allow-list of declared content types. The file
// input's accept attribute is only a hint; this is the real gate.
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"video/mp4":       true,
	"video/quicktime": true,
}

// BlobStore is the object-storage surface the pipeline needs.
// Satisfied by *storage.Client.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64, progress func(int)) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
}

// File is a candidate upload as received from the form.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is what a successful save needs from the pipeline.
type Result struct {
	MediaURL  string
	MediaType models.MediaType
}

// Pipeline uploads item media for one site.
type Pipeline struct {
	blobs  BlobStore
	siteID string
}

// New creates a Pipeline. blobs must be non-nil; callers gate on storage
// being configured before constructing one.
func New(blobs BlobStore, siteID string) *Pipeline {
	return &Pipeline{blobs: blobs, siteID: siteID}
}

// Key returns the deterministic object key for an item's blob.
func (p *Pipeline) Key(collection string, itemID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/public/%s/%s.%s", collection, p.siteID, itemID, ext)
}

// Validate checks a candidate file against the allow-list and size caps
// without touching storage. Returned errors are user-facing.
func Validate(f File) error {
	if !allowedTypes[f.ContentType] {
		return ErrUnsupportedType
	}
	if strings.HasPrefix(f.ContentType, "video/") && int64(len(f.Data)) > maxVideoSize {
		return ErrVideoTooLarge
	}
	return nil
}

// SelectExt maps a declared content type to the destination extension:
// quicktime→mov, other video→mp4, image→jpg (images are re-encoded as JPEG).
func SelectExt(contentType string) (models.MediaType, string) {
	switch contentType {
	case "video/quicktime":
		return models.MediaVideo, "mov"
	case "video/mp4":
		return models.MediaVideo, "mp4"
	default:
		return models.MediaImage, "jpg"
	}
}

// Save validates and uploads a file for an item, returning the cache-busted
// public URL. prev is the item being edited, or nil on the add path; when a
// replacement changes the blob extension, the old blob is deleted
// best-effort. progress, if non-nil, receives upload percentages.
func (p *Pipeline) Save(ctx context.Context, collection string, itemID uuid.UUID, f File, prev *models.Item, progress func(int)) (Result, error) {
	if err := Validate(f); err != nil {
		return Result{}, err
	}

	mediaType, ext := SelectExt(f.ContentType)

	// Images are recompressed before upload: bounded
	// dimensions, re-encoded as JPEG. Videos go up unmodified.
	data := f.Data
	contentType := f.ContentType
	if mediaType == models.MediaImage {
		compressed, err := CompressJPEG(f.Data)
		if err != nil {
			return Result{}, fmt.Errorf("compress image: %w", err)
		}
		data = compressed
		contentType = "image/jpeg"
	}

	key := p.Key(collection, itemID, ext)
	if err := p.blobs.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data)), progress); err != nil {
		return Result{}, fmt.Errorf("upload media: %w", err)
	}

	// A fresh token per upload defeats CDN/browser caching of stale
	// content at the reused key.
	url := p.blobs.FileURL(key) + "?v=" + uuid.NewString()

	// If the replacement changed extension, drop the old blob. Failure
	// just orphans a file, so it is logged and swallowed.
	if prev != nil && prev.HasMedia() {
		if oldExt := prev.MediaType.Ext(); oldExt != ext {
			oldKey := p.Key(collection, itemID, oldExt)
			if err := p.blobs.Delete(ctx, oldKey); err != nil {
				slog.Warn("stale blob delete failed", "key", oldKey, "error", err)
			}
		}
	}

	return Result{MediaURL: url, MediaType: mediaType}, nil
}

// Remove deletes an item's blob, derived from its media type. Used when the
// item itself is deleted; best-effort, the caller has already removed the
// document.
func (p *Pipeline) Remove(ctx context.Context, collection string, item models.Item) {
	if !item.HasMedia() {
		return
	}
	key := p.Key(collection, item.ID, item.MediaType.Ext())
	if err := p.blobs.Delete(ctx, key); err != nil {
		slog.Warn("blob delete failed", "key", key, "error", err)
	}
}
