package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxStemLength = 40

// rawImageExtensions форматы, которые сохраняются как есть, если декодер их не читает
var rawImageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
	".heic": {}, ".heif": {}, ".bmp": {}, ".tif": {}, ".tiff": {},
}

// Upload загруженный клиентом файл
type Upload struct {
	Filename string
	Data     []byte
}

// DiskStore хранит ассеты на диске и отдаёт публичные URL вида <base>/uploads/YYYY-MM-DD/<uuid>-<stem>.jpg
// (исходное расширение для нераспознанных изображений)
type DiskStore struct {
	dir           string
	publicBaseURL string
	now           func() time.Time
}

func NewDiskStore(dir, publicBaseURL string) *DiskStore {
	return &DiskStore{
		dir:           dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// StoreImage нормализует изображение и сохраняет его. Возвращает публичный URL.
// Если файл с расширением изображения не декодируется, сохраняются исходные байты с исходным расширением
func (s *DiskStore) StoreImage(ctx context.Context, upload Upload) (string, error) {
	normalized, err := NormalizeImage(upload.Data)
	if err == nil {
		return s.store(ctx, normalized, upload.Filename, ".jpg")
	}
	if !errors.Is(err, ErrDecodeImage) {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if _, ok := rawImageExtensions[ext]; !ok {
		return "", err
	}
	return s.store(ctx, upload.Data, upload.Filename, ext)
}

// StoreUploadedAsset сохраняет готовые JPEG-байты под уникальным ключом
func (s *DiskStore) StoreUploadedAsset(ctx context.Context, data []byte, filename string) (string, error) {
	return s.store(ctx, data, filename, ".jpg")
}

func (s *DiskStore) store(ctx context.Context, data []byte, filename, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := s.assetKey(filename, ext)
	fullPath := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: mkdir: %v", ErrWriteAsset, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteAsset, err)
	}

	return s.publicBaseURL + "/" + key, nil
}

func (s *DiskStore) assetKey(filename, ext string) string {
	return path.Join(
		"uploads",
		s.now().UTC().Format("2006-01-02"),
		fmt.Sprintf("%s-%s%s", uuid.NewString(), sanitizeStem(filename), ext),
	)
}

// sanitizeStem оставляет от имени файла безопасный префикс [a-z0-9_-]
func sanitizeStem(filename string) string {
	base := filepath.Base(filename)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
		if b.Len() >= maxStemLength {
			break
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "image"
	}
	return out
}
