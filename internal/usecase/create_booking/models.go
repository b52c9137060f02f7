package create_booking

import (
	"github.com/m04kA/SMC-SlotBooking/internal/infra/assets"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
)

// Исходы попытки бронирования для метрик
const (
	resultCreated  = "created"
	resultSlotFull = "slot_full"
	resultRejected = "rejected"
	resultError    = "error"
)

// Request модель запроса на создание бронирования
type Request struct {
	AccountID           int64           // ID аккаунта из токена
	AddressID           int64           // ID адреса аккаунта
	Service             string          // Название услуги
	Note                string          // Комментарий клиента
	Date                string          // RFC 3339 или "YYYY-MM-DDTHH:MM" в зоне календаря
	Images              []assets.Upload // Загруженные фото (опционально)
	RescheduleBookingID *int64          // Бронирование, которое переносится (опционально)
}

// Response модель ответа с созданным бронированием
type Response = models.BookingResponse
