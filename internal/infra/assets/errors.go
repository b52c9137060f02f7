package assets

import "errors"

var (
	// ErrDecodeImage возвращается, если загруженный файл не является изображением
	ErrDecodeImage = errors.New("assets: failed to decode image")

	// ErrEncodeImage возвращается при ошибке перекодирования в JPEG
	ErrEncodeImage = errors.New("assets: failed to encode image")

	// ErrEmptyUpload возвращается для пустого файла
	ErrEmptyUpload = errors.New("assets: empty upload")

	// ErrWriteAsset возвращается при ошибке записи файла на диск
	ErrWriteAsset = errors.New("assets: failed to write asset")
)
