package create_booking

import "errors"

var (
	// ErrBlacklisted возвращается, когда аккаунт заблокирован
	ErrBlacklisted = errors.New("create_booking: account is blacklisted")

	// ErrAccountNotFound возвращается, когда аккаунт не найден в AccountService
	ErrAccountNotFound = errors.New("create_booking: account not found")

	// ErrAddressNotFound возвращается, когда адрес не принадлежит аккаунту
	ErrAddressNotFound = errors.New("create_booking: address does not belong to the account")

	// ErrInvalidDate возвращается, когда дату не удалось разобрать
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrActiveBookingExists возвращается, когда на адрес уже есть будущее живое бронирование
	ErrActiveBookingExists = errors.New("create_booking: an upcoming booking already exists for this address")

	// ErrNotEntitled возвращается, когда нет подписки или тарифа на адрес
	ErrNotEntitled = errors.New("create_booking: no active subscription for this address")

	// ErrTimeNotBookable возвращается, когда календарь не предлагает выбранное время
	ErrTimeNotBookable = errors.New("create_booking: selected time is not available, pick another time")

	// ErrSlotFull возвращается, когда все места в слоте заняты
	ErrSlotFull = errors.New("create_booking: slot is full, pick another time")

	// ErrInvalidImage возвращается, когда загруженный файл не удалось обработать как изображение
	ErrInvalidImage = errors.New("create_booking: invalid image")

	// ErrRescheduleNotFound возвращается, когда переносимое бронирование не найдено
	ErrRescheduleNotFound = errors.New("create_booking: booking to reschedule not found")

	// ErrServiceUnavailable возвращается, когда AccountService недоступен
	ErrServiceUnavailable = errors.New("create_booking: account service unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
