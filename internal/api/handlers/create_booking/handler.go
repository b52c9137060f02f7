package create_booking

import (
	"errors"
	"mime"
	"net/http"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SlotBooking/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-SlotBooking/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgMissingAccountID   = "missing account"
	msgBlacklisted        = "account is not allowed to book"
	msgAccountNotFound    = "account not found"
	msgAddressNotFound    = "address not found on account"
	msgInvalidDate        = "invalid slot date"
	msgActiveBooking      = "an upcoming booking already exists for this address"
	msgNotEntitled        = "no active plan covers this address"
	msgTimeNotBookable    = "selected time is not bookable"
	msgSlotFull           = "selected slot is full"
	msgInvalidImage       = "invalid image upload"
	msgRescheduleNotFound = "booking to reschedule not found"
	msgServiceUnavailable = "account service is unavailable"
)

type Handler struct {
	useCase        CreateBookingUseCase
	maxUploadBytes int64
	logger         Logger
}

func NewHandler(useCase CreateBookingUseCase, maxUploadBytes int64, logger Logger) *Handler {
	return &Handler{
		useCase:        useCase,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Handle POST /api/v1/bookings
// Тело JSON или multipart/form-data с файлами в поле images
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing account ID")
		handlers.RespondUnauthorized(w, msgMissingAccountID)
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	req, err := decodeRequest(r, h.maxUploadBytes)
	if err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: account_id=%d, error=%v", accountID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(req); err != nil {
		h.logger.Warn("POST /bookings - Validation failed: account_id=%d, error=%v", accountID, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(accountID))
	if err != nil {
		h.respondUseCaseError(w, accountID, req.AddressID, err)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, number=%s, account_id=%d",
		result.ID, result.BookingNumber, accountID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) respondUseCaseError(w http.ResponseWriter, accountID, addressID int64, err error) {
	switch {
	case errors.Is(err, createBooking.ErrInvalidInput):
		h.logger.Warn("POST /bookings - Invalid input: account_id=%d, error=%v", accountID, err)
		handlers.RespondBadRequest(w, err.Error())

	case errors.Is(err, createBooking.ErrInvalidDate):
		h.logger.Warn("POST /bookings - Invalid date: account_id=%d", accountID)
		handlers.RespondBadRequest(w, msgInvalidDate)

	case errors.Is(err, createBooking.ErrInvalidImage):
		h.logger.Warn("POST /bookings - Invalid image: account_id=%d, error=%v", accountID, err)
		handlers.RespondBadRequest(w, msgInvalidImage)

	case errors.Is(err, createBooking.ErrAddressNotFound):
		h.logger.Warn("POST /bookings - Address not found: account_id=%d, address_id=%d", accountID, addressID)
		handlers.RespondBadRequest(w, msgAddressNotFound)

	case errors.Is(err, createBooking.ErrBlacklisted):
		h.logger.Warn("POST /bookings - Blacklisted account: account_id=%d", accountID)
		handlers.RespondForbidden(w, msgBlacklisted)

	case errors.Is(err, createBooking.ErrNotEntitled):
		h.logger.Warn("POST /bookings - Not entitled: account_id=%d, address_id=%d", accountID, addressID)
		handlers.RespondForbidden(w, msgNotEntitled)

	case errors.Is(err, createBooking.ErrAccountNotFound):
		h.logger.Warn("POST /bookings - Account not found: account_id=%d", accountID)
		handlers.RespondNotFound(w, msgAccountNotFound)

	case errors.Is(err, createBooking.ErrRescheduleNotFound):
		h.logger.Warn("POST /bookings - Reschedule target not found: account_id=%d", accountID)
		handlers.RespondNotFound(w, msgRescheduleNotFound)

	case errors.Is(err, createBooking.ErrActiveBookingExists):
		h.logger.Warn("POST /bookings - Active booking exists: account_id=%d, address_id=%d", accountID, addressID)
		handlers.RespondConflict(w, msgActiveBooking)

	case errors.Is(err, createBooking.ErrTimeNotBookable):
		h.logger.Warn("POST /bookings - Time not bookable: account_id=%d", accountID)
		handlers.RespondConflict(w, msgTimeNotBookable)

	case errors.Is(err, createBooking.ErrSlotFull):
		h.logger.Warn("POST /bookings - Slot full: account_id=%d", accountID)
		handlers.RespondConflict(w, msgSlotFull)

	case errors.Is(err, createBooking.ErrServiceUnavailable):
		h.logger.Error("POST /bookings - Account service unavailable: account_id=%d, error=%v", accountID, err)
		handlers.RespondError(w, http.StatusServiceUnavailable, msgServiceUnavailable)

	default:
		h.logger.Error("POST /bookings - Failed to create booking: account_id=%d, error=%v", accountID, err)
		handlers.RespondInternalError(w)
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
