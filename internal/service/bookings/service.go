package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/booking"
	slotcounterRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slotcounter"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	counterRepo  SlotCounterRepository
	calendar     CalendarService
	txManager    TxManager
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	counterRepo SlotCounterRepository,
	calendar CalendarService,
	txManager TxManager,
	notifier Notifier,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		counterRepo:  counterRepo,
		calendar:     calendar,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает бронирование владельца. Чужое бронирование неотличимо от отсутствующего
func (s *Service) GetByID(ctx context.Context, id, accountID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for account=%d", id, accountID)

	booking, err := s.bookingRepo.GetByIDAndAccount(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found for account=%d", id, accountID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetAccountBookings возвращает бронирования аккаунта по возрастанию времени
func (s *Service) GetAccountBookings(ctx context.Context, accountID int64) (*models.BookingListResponse, error) {
	s.logger.Info("GetAccountBookings: fetching bookings for account=%d", accountID)

	bookings, err := s.bookingRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		s.logger.Error("GetAccountBookings: repository error for account=%d: %v", accountID, err)
		return nil, fmt.Errorf("%w: GetAccountBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAccountBookings: fetched %d bookings for account=%d", len(bookings), accountID)
	return models.FromDomainBookingList(bookings), nil
}

// GetNextForAddress возвращает ближайшее живое будущее бронирование адреса или nil
func (s *Service) GetNextForAddress(ctx context.Context, accountID, addressID int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.FindUpcomingForAddress(ctx, accountID, addressID, s.timeProvider.Now(), nil)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, nil
		}
		s.logger.Error("GetNextForAddress: repository error for account=%d, address=%d: %v", accountID, addressID, err)
		return nil, fmt.Errorf("%w: GetNextForAddress - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetBookings список бронирований для администратора
func (s *Service) GetBookings(ctx context.Context, req *models.GetBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := "GetBookings: fetching bookings"
	if req.AccountID != nil {
		logMsg += fmt.Sprintf(", account=%d", *req.AccountID)
	}
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetBookings: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid status filter", ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetBookings: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(bookings), nil
}

// Cancel отмена или удаление бронирования владельцем.
// Свободно удаляемые статусы удаляются физически, остальные переводятся в Canceled.
// Чтение, смена статуса и уменьшение счетчика выполняются в одной транзакции под блокировкой строки,
// поэтому параллельные отмены освобождают место ровно один раз
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancelResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by account=%d", bookingID, req.AccountID)

	var resp *models.CancelResponse
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// 1. Получаем бронирование в рамках аккаунта (FOR UPDATE)
		booking, err := s.bookingRepo.GetByIDAndAccount(ctx, bookingID, req.AccountID)
		if err != nil {
			return err
		}

		// 2. Повторная отмена ничего не меняет
		if booking.Status.IsCanceled() {
			resp = &models.CancelResponse{OK: true, Action: models.ActionAlreadyCanceled, Message: "Booking already canceled."}
			return nil
		}

		// 3. Удаление или перевод в Canceled
		if booking.Status.IsFreelyDeletable() {
			if err := s.bookingRepo.Delete(ctx, bookingID, booking.Status); err != nil {
				return err
			}
			resp = &models.CancelResponse{OK: true, Action: models.ActionDeleted, Message: "Booking deleted."}
		} else {
			change := domain.StatusChange{Status: booking.Status, ChangedAt: s.timeProvider.Now()}
			if err := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusCanceled, change); err != nil {
				return err
			}
			if reason := strings.TrimSpace(req.CancellationReason); reason != "" {
				if err := s.bookingRepo.SetCancellationReason(ctx, bookingID, reason); err != nil {
					return err
				}
			}
			resp = &models.CancelResponse{OK: true, Action: models.ActionCanceled, Message: "Booking canceled."}
		}

		// 4. Освобождаем место в слоте
		return s.releaseSlot(ctx, booking.SlotKey, "Cancel")
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Warn("Cancel: booking id=%d not found for account=%d", bookingID, req.AccountID)
			return nil, ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrStatusChanged):
			s.logger.Warn("Cancel: booking id=%d changed concurrently", bookingID)
			return nil, ErrConcurrentUpdate
		default:
			s.logger.Error("Cancel: failed to cancel booking id=%d: %v", bookingID, err)
			return nil, fmt.Errorf("%w: Cancel: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Cancel: booking id=%d %s", bookingID, resp.Action)
	return resp, nil
}

// UpdateStatus смена статуса администратором.
// Переход в Canceled освобождает место, возврат из Canceled в живой статус занимает его заново через атомарный гейт.
// Оба изменения счетчика идут в транзакции смены статуса
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s", bookingID, req.Status)

	// 1. Валидация статуса
	newStatus, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%q for booking id=%d", req.Status, bookingID)
		return nil, ErrInvalidStatus
	}

	var (
		before  *domain.Booking
		updated *domain.Booking
	)

	// 2. Смена статуса в транзакции (строка читается FOR UPDATE)
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		before = booking

		if strings.EqualFold(string(booking.Status), string(newStatus)) {
			updated = booking
			return nil
		}

		// Возврат из отмены: заново занимаем место в слоте
		if booking.Status.IsCanceled() && newStatus.IsLive() {
			cfg, err := s.calendar.GetFresh(ctx)
			if err != nil {
				return err
			}
			if _, err := s.counterRepo.Increment(ctx, booking.SlotKey, cfg.Capacity()); err != nil {
				return err
			}
		}

		change := domain.StatusChange{Status: booking.Status, ChangedAt: s.timeProvider.Now()}
		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus, change); err != nil {
			return err
		}
		if reason := strings.TrimSpace(req.CancellationReason); reason != "" && newStatus.IsCanceled() {
			if err := s.bookingRepo.SetCancellationReason(ctx, bookingID, reason); err != nil {
				return err
			}
		}

		// Переход в Canceled освобождает место
		if newStatus.IsCanceled() && !booking.Status.IsCanceled() {
			if err := s.releaseSlot(ctx, booking.SlotKey, "UpdateStatus"); err != nil {
				return err
			}
		}

		updated, err = s.bookingRepo.GetByID(ctx, bookingID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Warn("UpdateStatus: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrStatusChanged):
			s.logger.Warn("UpdateStatus: booking id=%d changed concurrently", bookingID)
			return nil, ErrConcurrentUpdate
		case errors.Is(err, slotcounterRepo.ErrSlotFull):
			s.logger.Warn("UpdateStatus: no capacity to restore booking id=%d", bookingID)
			return nil, ErrSlotFull
		default:
			s.logger.Error("UpdateStatus: failed to update booking id=%d: %v", bookingID, err)
			return nil, fmt.Errorf("%w: UpdateStatus: %v", ErrInternal, err)
		}
	}

	if strings.EqualFold(string(before.Status), string(newStatus)) {
		s.logger.Info("UpdateStatus: booking id=%d already has status=%s", bookingID, newStatus)
		return models.FromDomainBooking(updated), nil
	}

	// 3. Уведомление клиента
	s.notifyStatusChange(ctx, updated)

	s.logger.Info("UpdateStatus: booking id=%d changed %s -> %s", bookingID, before.Status, newStatus)
	return models.FromDomainBooking(updated), nil
}

// releaseSlot уменьшает счетчик слота в текущей транзакции.
// Уход ниже нуля означает ошибку учёта: логируем, считаем в метрике и не прерываем транзакцию
func (s *Service) releaseSlot(ctx context.Context, key domain.SlotKey, method string) error {
	if _, err := s.counterRepo.Decrement(ctx, key); err != nil {
		if errors.Is(err, slotcounterRepo.ErrCounterUnderflow) {
			s.logger.Error("%s: counter underflow for slot %s, counter left at zero", method, key)
			s.metrics.IncCounterUnderflow()
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) notifyStatusChange(ctx context.Context, booking *domain.Booking) {
	var template string
	switch {
	case strings.EqualFold(string(booking.Status), string(domain.StatusConfirmed)):
		template = domain.TemplateBookingConfirmed
	case strings.EqualFold(string(booking.Status), string(domain.StatusCompleted)):
		template = domain.TemplateBookingCompleted
	case booking.Status.IsCanceled():
		template = domain.TemplateBookingCanceled
	default:
		return
	}

	cfg, err := s.calendar.GetFresh(ctx)
	if err != nil {
		s.logger.Warn("UpdateStatus: skip notification for booking id=%d: %v", booking.ID, err)
		return
	}

	if err := s.notifier.Notify(ctx, template, booking.Email, models.NotificationVars(booking, cfg.Location())); err != nil {
		s.logger.Warn("UpdateStatus: notification %s for booking id=%d failed: %v", template, booking.ID, err)
	}
}
