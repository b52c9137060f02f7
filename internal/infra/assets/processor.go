package assets

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Параметры нормализации изображений перед сохранением
const (
	MaxImageWidth  = 2048
	MaxImageHeight = 2048
	JPEGQuality    = 85
)

// NormalizeImage декодирует изображение с учётом EXIF-ориентации, вписывает его в 2048x2048
// (без увеличения) и перекодирует в JPEG
func NormalizeImage(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxImageWidth || bounds.Dy() > MaxImageHeight {
		img = imaging.Fit(img, MaxImageWidth, MaxImageHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeImage, err)
	}

	return buf.Bytes(), nil
}
