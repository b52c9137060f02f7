package domain

// Значения конфигурации календаря по умолчанию
const (
	DefaultTimezone      = "America/New_York"
	DefaultSlotMinutes   = 60
	DefaultMinLeadDays   = 2
	DefaultMaxConcurrent = 1
)

// Ограничения поиска и бронирования
const (
	NextSlotHorizonDays     = 30
	BookingNumberDigits     = 8
	MaxBookingNumberRetries = 5
	MaxNoteLength           = 2000
	MaxServiceLength        = 200
	MaxImagesPerBooking     = 10
)

// Форматы даты и времени
const (
	TimeFormat      = "15:04"            // HH:MM
	DateFormat      = "2006-01-02"       // YYYY-MM-DD
	LocalSlotFormat = "2006-01-02T15:04" // дата и время слота без зоны, читается в зоне календаря
)

// Ключи шаблонов уведомлений
const (
	TemplateBookingCreated      = "booking_created"
	TemplateAdminBookingCreated = "admin_booking_created"
	TemplateBookingConfirmed    = "booking_confirmed"
	TemplateBookingCompleted    = "booking_completed"
	TemplateBookingCanceled     = "booking_canceled"
)
