package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrStatusChanged возвращается, когда статус бронирования изменился между чтением и записью
	ErrStatusChanged = errors.New("booking.repository: booking status changed concurrently")

	// ErrDuplicateBookingNumber возвращается, когда номер бронирования уже занят
	ErrDuplicateBookingNumber = errors.New("booking.repository: booking number already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrEncodeHistory возвращается, если историю статусов не удалось сериализовать
	ErrEncodeHistory = errors.New("booking.repository: failed to encode status history")
)
