package slotcounter

import "errors"

var (
	// ErrSlotFull возвращается, когда условный инкремент не прошёл: слот уже заполнен
	ErrSlotFull = errors.New("slotcounter.repository: slot is at capacity")

	// ErrCounterUnderflow возвращается, когда декремент увёл бы счетчик ниже нуля (счетчик не изменён)
	ErrCounterUnderflow = errors.New("slotcounter.repository: counter would go below zero")

	// ErrInvalidCapacity возвращается при вместимости меньше 1
	ErrInvalidCapacity = errors.New("slotcounter.repository: capacity must be positive")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slotcounter.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slotcounter.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slotcounter.repository: failed to scan row")
)
