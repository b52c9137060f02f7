package reconcile_slot_counters

import "errors"

var (
	// ErrInvalidInput возвращается при некорректном горизонте сверки
	ErrInvalidInput = errors.New("reconcile_slot_counters: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reconcile_slot_counters: internal error")
)
