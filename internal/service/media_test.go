// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/psynverse/internal/imagehost"
)

type fakeUploader struct {
	folder string
	data   []byte
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader, folder string) (*imagehost.Upload, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.folder = folder
	f.data = data
	return &imagehost.Upload{
		URL:       "http://res.example.com/" + folder + "/img.png",
		SecureURL: "https://res.example.com/" + folder + "/img.png",
		PublicID:  folder + "/img",
	}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaUpload(t *testing.T) {
	up := &fakeUploader{}
	svc := NewMediaService(up, MediaConfig{Folder: "site"}, nil)
	data := pngBytes(t, 8, 8)

	res, err := svc.Upload(context.Background(), bytes.NewReader(data), "image/png", "books")
	require.NoError(t, err)

	assert.Equal(t, "site/books", up.folder)
	assert.Equal(t, data, up.data, "small images are uploaded unchanged")
	assert.Equal(t, "https://res.example.com/site/books/img.png", res.SecureURL)
}

func TestMediaUploadSanitizesFolder(t *testing.T) {
	up := &fakeUploader{}
	svc := NewMediaService(up, MediaConfig{}, nil)

	_, err := svc.Upload(context.Background(), bytes.NewReader(pngBytes(t, 2, 2)), "image/png", "../../etc//covers")
	require.NoError(t, err)
	assert.Equal(t, DefaultUploadFolder+"/etc/covers", up.folder)
}

func TestMediaUploadResizesLargeImages(t *testing.T) {
	up := &fakeUploader{}
	svc := NewMediaService(up, MediaConfig{MaxDimension: 4}, nil)

	_, err := svc.Upload(context.Background(), bytes.NewReader(pngBytes(t, 16, 8)), "image/png", "")
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(up.data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, cfg.Width)
	assert.Equal(t, 2, cfg.Height)
	assert.Equal(t, DefaultUploadFolder, up.folder)
}

func TestMediaUploadRejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		contentType string
		data        []byte
		maxBytes    int64
		want        ErrorKind
	}{
		{"non image content type", "text/plain", []byte("hello"), 0, KindUnsupported},
		{"malformed content type", "", []byte("hello"), 0, KindUnsupported},
		{"unsupported image type", "image/tiff", []byte("II*\x00"), 0, KindUnsupported},
		{"bytes are not an image", "image/png", []byte("definitely not a png"), 0, KindUnsupported},
		{"too large", "image/png", bytes.Repeat([]byte{1}, 64), 32, KindTooLarge},
		{"empty", "image/png", nil, 0, KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{}
			svc := NewMediaService(up, MediaConfig{MaxBytes: tt.maxBytes}, nil)
			_, err := svc.Upload(ctx, bytes.NewReader(tt.data), tt.contentType, "")
			assert.Equal(t, tt.want, KindOf(err))
			assert.Nil(t, up.data, "nothing should reach the image host")
		})
	}
}

func TestMediaUploadAcceptsContentTypeParams(t *testing.T) {
	svc := NewMediaService(&fakeUploader{}, MediaConfig{}, nil)
	_, err := svc.Upload(context.Background(), bytes.NewReader(pngBytes(t, 2, 2)), "image/png; charset=binary", "")
	assert.NoError(t, err)
}

func TestMediaUploadHostErrors(t *testing.T) {
	ctx := context.Background()
	data := pngBytes(t, 2, 2)

	svc := NewMediaService(nil, MediaConfig{}, nil)
	_, err := svc.Upload(ctx, bytes.NewReader(data), "image/png", "")
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.ErrorIs(t, err, imagehost.ErrNotConfigured)
	assert.True(t, strings.Contains(err.Error(), "not configured"))

	svc = NewMediaService(&fakeUploader{err: errors.New("boom")}, MediaConfig{}, nil)
	_, err = svc.Upload(ctx, bytes.NewReader(data), "image/png", "")
	assert.Equal(t, KindUpstream, KindOf(err))
}

func TestMediaUploadRecordsEvent(t *testing.T) {
	st := testStore(t)
	events := NewEventService(st.DB())
	svc := NewMediaService(&fakeUploader{}, MediaConfig{}, events)
	ctx := context.Background()

	_, err := svc.Upload(ctx, bytes.NewReader(pngBytes(t, 2, 2)), "image/png", "covers")
	require.NoError(t, err)

	list, total, err := events.ListEvents(ctx, EventFilter{Category: "media"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Contains(t, list[0].Metadata, `"folder":"psynverse/covers"`)
}
