package config

import "errors"

var (
	// ErrConfigNotFound возвращается, когда конфигурация календаря ещё не сохранена
	ErrConfigNotFound = errors.New("config.repository: calendar config not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("config.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("config.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("config.repository: failed to scan row")

	// ErrEncodeOverrides возвращается, если overrides не удалось сериализовать в JSON
	ErrEncodeOverrides = errors.New("config.repository: failed to encode overrides")
)
