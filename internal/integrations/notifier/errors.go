package notifier

import "errors"

var (
	// ErrConnect возвращается при ошибке подключения к брокеру
	ErrConnect = errors.New("notifier: failed to connect to broker")

	// ErrPublish возвращается при ошибке публикации сообщения
	ErrPublish = errors.New("notifier: failed to publish message")

	// ErrEmptyRecipient возвращается, если не указан получатель
	ErrEmptyRecipient = errors.New("notifier: empty recipient")
)
