package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено (или принадлежит другому аккаунту)
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidStatus возвращается при попытке установить недопустимый статус
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrSlotFull возвращается, когда при возврате бронирования из отмены в слоте нет места
	ErrSlotFull = errors.New("slot is full")

	// ErrConcurrentUpdate возвращается, когда бронирование изменили параллельно
	ErrConcurrentUpdate = errors.New("booking was changed concurrently")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
