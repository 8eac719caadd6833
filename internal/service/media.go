// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/olegiv/psynverse/internal/imagehost"
	"github.com/olegiv/psynverse/internal/imaging"
	"github.com/olegiv/psynverse/internal/model"
	"github.com/olegiv/psynverse/internal/util"
)

// Upload limits
const (
	DefaultMaxUploadSize = 5 * 1024 * 1024 // 5MB
	DefaultMaxDimension  = 2560
	DefaultUploadFolder  = "psynverse"
)

// MediaConfig configures MediaService.
type MediaConfig struct {
	Folder       string
	MaxBytes     int64
	MaxDimension int
}

// MediaService validates uploaded images and forwards them to the image host.
type MediaService struct {
	uploader  imagehost.Uploader
	processor *imaging.Processor
	folder    string
	maxBytes  int64
	events    *EventService
}

// NewMediaService creates a new media service.
func NewMediaService(uploader imagehost.Uploader, cfg MediaConfig, events *EventService) *MediaService {
	if cfg.Folder == "" {
		cfg.Folder = DefaultUploadFolder
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxUploadSize
	}
	if cfg.MaxDimension < 0 {
		cfg.MaxDimension = 0
	}
	if uploader == nil {
		uploader = imagehost.Unconfigured{}
	}
	return &MediaService{
		uploader:  uploader,
		processor: imaging.NewProcessor(cfg.MaxDimension),
		folder:    cfg.Folder,
		maxBytes:  cfg.MaxBytes,
		events:    events,
	}
}

// MaxBytes returns the upload size limit.
func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload reads an image from r, prepares it and stores it on the image host
// below the configured folder.
func (s *MediaService) Upload(ctx context.Context, r io.Reader, contentType, folder string) (*imagehost.Upload, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, &Error{Kind: KindUnsupported, Message: "only image uploads are allowed"}
	}
	if !imaging.IsImage(mediaType) {
		return nil, &Error{Kind: KindUnsupported, Message: fmt.Sprintf("image type %s is not supported", mediaType)}
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, &Error{
			Kind:    KindTooLarge,
			Message: fmt.Sprintf("file size exceeds maximum allowed (%d bytes)", s.maxBytes),
		}
	}
	if len(data) == 0 {
		return nil, validationError("file is empty")
	}

	img, err := s.processor.Process(data)
	if errors.Is(err, imaging.ErrUnsupported) {
		return nil, &Error{Kind: KindUnsupported, Message: "file is not a supported image", Err: err}
	}
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "image could not be decoded", Err: err}
	}

	target := util.SanitizeFolder(s.folder, folder)
	upload, err := s.uploader.Upload(ctx, img.Reader(), target)
	if errors.Is(err, imagehost.ErrNotConfigured) {
		return nil, &Error{Kind: KindUpstream, Message: "image upload is not configured", Err: err}
	}
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Message: "image upload failed", Err: err}
	}

	s.events.record(ctx, model.EventCategoryMedia, "Image uploaded", map[string]any{
		"folder":   target,
		"publicId": upload.PublicID,
		"bytes":    len(img.Data),
		"resized":  img.Changed,
	})
	return upload, nil
}
