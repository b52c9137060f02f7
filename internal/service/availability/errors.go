package availability

import "errors"

var (
	// ErrInvalidDate возвращается, если дата не в формате YYYY-MM-DD
	ErrInvalidDate = errors.New("availability: invalid date")

	// ErrTimeNotBookable возвращается, если время не предлагается календарём
	// (закрыто, в прошлом или раньше минимального срока)
	ErrTimeNotBookable = errors.New("availability: time is not bookable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)
