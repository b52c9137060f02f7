package accountservice

import "errors"

var (
	// ErrAccountNotFound возвращается, когда аккаунт не найден
	ErrAccountNotFound = errors.New("accountservice client: account not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("accountservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("accountservice client: invalid response")

	// ErrServiceUnavailable возвращается, когда сервис аккаунтов недоступен или отвечает 5xx
	ErrServiceUnavailable = errors.New("accountservice client: service unavailable")
)
