package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"forms-service/pkg/apperror"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageSize = 5 << 20
	// MaxImagePixels caps the decoded canvas; compressed size says little about it.
	MaxImagePixels = 25_000_000
	imageBox       = 200
	jpegQuality    = 90
)

// ObjectStorage stores an object and returns its public URL.
type ObjectStorage interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOStorage wraps a connected client. publicURL overrides the endpoint in returned links.
func NewMinIOStorage(client *minio.Client, bucket, publicURL string) *MinIOStorage {
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s://%s", client.EndpointURL().Scheme, client.EndpointURL().Host)
	}
	return &MinIOStorage{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

func (m *MinIOStorage) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, name), nil
}

type UploadService struct {
	storage ObjectStorage
}

func NewUploadService(storage ObjectStorage) *UploadService {
	return &UploadService{storage: storage}
}

// UploadImage sniffs the content, shrinks the image to fit a 200x200 box, re-encodes it as
// JPEG and stores it.
func (s *UploadService) UploadImage(ctx context.Context, r io.Reader) (string, error) {
	if s.storage == nil {
		return "", apperror.New(apperror.KindValidation, "Image upload is not configured")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", apperror.Persistence(fmt.Errorf("failed to read upload: %w", err))
	}
	if len(data) == 0 {
		return "", ErrNoImage
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return "", ErrNotAnImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotAnImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", ErrNotAnImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return "", ErrImageTooManyPixels
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotAnImage
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fitInside(src, imageBox), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", apperror.Persistence(fmt.Errorf("failed to encode image: %w", err))
	}

	name := fmt.Sprintf("images/%s.jpeg", uuid.NewString())
	url, err := s.storage.Put(ctx, name, &buf, int64(buf.Len()), "image/jpeg")
	if err != nil {
		return "", apperror.Persistence(err)
	}
	return url, nil
}

// fitInside scales src down, keeping its aspect ratio, so neither side exceeds box.
func fitInside(src image.Image, box int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= box && h <= box {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	if w >= h {
		h = max(1, h*box/w)
		w = box
	} else {
		w = max(1, w*box/h)
		h = box
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
