package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"forms-service/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	name        string
	contentType string
	data        []byte
	err         error
}

func (f *fakeStorage) Put(_ context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.name, f.contentType, f.data = name, contentType, data
	return "http://cdn.local/uploads/" + name, nil
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadImageResizesToJPEG(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewUploadService(storage)

	url, err := svc.UploadImage(context.Background(), bytes.NewReader(pngImage(t, 800, 400)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://cdn.local/uploads/images/"))
	assert.True(t, strings.HasSuffix(storage.name, ".jpeg"))
	assert.Equal(t, "image/jpeg", storage.contentType)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(storage.data))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestUploadImageKeepsSmallImages(t *testing.T) {
	storage := &fakeStorage{}
	_, err := NewUploadService(storage).UploadImage(context.Background(), bytes.NewReader(pngImage(t, 50, 120)))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(storage.data))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 120, cfg.Height)
}

func TestUploadImageRejections(t *testing.T) {
	svc := NewUploadService(&fakeStorage{})
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrNotAnImage)

	_, err = svc.UploadImage(ctx, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrNoImage)

	oversized := append(pngImage(t, 10, 10), make([]byte, MaxImageSize)...)
	_, err = svc.UploadImage(ctx, bytes.NewReader(oversized))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestUploadImageHidesStorageFailure(t *testing.T) {
	svc := NewUploadService(&fakeStorage{err: errors.New("bucket unreachable")})

	_, err := svc.UploadImage(context.Background(), bytes.NewReader(pngImage(t, 10, 10)))
	require.Error(t, err)
	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
	assert.Equal(t, apperror.GenericMessage, apperror.PublicMessage(err))
}

// withDimensions rewrites the IHDR chunk of a PNG to declare a w x h canvas.
func withDimensions(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	// 8-byte signature, then length(4) "IHDR"(4) width(4) height(4) ... crc(4)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestUploadImageRejectsHugeCanvas(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewUploadService(storage)

	bomb := withDimensions(pngImage(t, 10, 10), 16000, 16000)
	cfg, err := png.DecodeConfig(bytes.NewReader(bomb))
	require.NoError(t, err)
	require.Equal(t, 16000, cfg.Width)

	_, err = svc.UploadImage(context.Background(), bytes.NewReader(bomb))
	assert.ErrorIs(t, err, ErrImageTooManyPixels)
	assert.Nil(t, storage.data)
}
