package create_booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/infra/assets"
	bookingRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/booking"
	slotcounterRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slotcounter"
	accountClient "github.com/m04kA/SMC-SlotBooking/internal/integrations/accountservice"
	"github.com/m04kA/SMC-SlotBooking/internal/service/availability"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo      BookingRepository
	counterRepo      SlotCounterRepository
	calendar         CalendarService
	accountClient    AccountServiceClient
	imageStore       ImageStore
	txManager        TransactionManager
	notifier         Notifier
	metrics          Metrics
	adminEmail       string
	timeProvider     TimeProvider
	newBookingNumber func() string
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	counterRepo SlotCounterRepository,
	calendar CalendarService,
	accountClient AccountServiceClient,
	imageStore ImageStore,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	adminEmail string,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		counterRepo:      counterRepo,
		calendar:         calendar,
		accountClient:    accountClient,
		imageStore:       imageStore,
		txManager:        txManager,
		notifier:         notifier,
		metrics:          metrics,
		adminEmail:       strings.TrimSpace(adminEmail),
		timeProvider:     &RealTimeProvider{},
		newBookingNumber: generateBookingNumber,
		logger:           logger,
	}
}

// Execute выполняет use case создания бронирования.
// Место в слоте занимается атомарным условным инкрементом в одной транзакции со вставкой бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: account=%d, address=%d, date=%s, images=%d",
		req.AccountID, req.AddressID, req.Date, len(req.Images))

	resp, err := uc.execute(ctx, req)
	switch {
	case err == nil:
		uc.metrics.ObserveReservation(resultCreated)
	case errors.Is(err, ErrSlotFull):
		uc.metrics.ObserveReservation(resultSlotFull)
	case errors.Is(err, ErrInternal), errors.Is(err, ErrServiceUnavailable):
		uc.metrics.ObserveReservation(resultError)
	default:
		uc.metrics.ObserveReservation(resultRejected)
	}
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	now := uc.timeProvider.Now()

	// 1. Аккаунт не заблокирован
	blacklisted, err := uc.accountClient.IsBlacklisted(ctx, req.AccountID)
	if err != nil {
		return nil, uc.accountError("IsBlacklisted", req.AccountID, err)
	}
	if blacklisted {
		uc.logger.Warn("CreateBooking: account=%d is blacklisted", req.AccountID)
		return nil, ErrBlacklisted
	}

	// 2. Обязательные поля и принадлежность адреса
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	account, err := uc.accountClient.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, uc.accountError("GetAccount", req.AccountID, err)
	}
	address, ok := account.FindAddress(req.AddressID)
	if !ok {
		uc.logger.Warn("CreateBooking: address id=%d does not belong to account=%d", req.AddressID, req.AccountID)
		return nil, ErrAddressNotFound
	}

	// 3. Актуальная конфигурация (в обход кэша) и разбор даты в зоне календаря
	cfg, err := uc.calendar.GetFresh(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to load calendar config: %v", err)
		return nil, fmt.Errorf("%w: failed to load calendar config: %v", ErrInternal, err)
	}

	instant, err := parseSlotDate(req.Date, cfg.Location())
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}
	key := cfg.SlotKeyOf(instant)
	slotAt, err := cfg.SlotAt(key.YMD, key.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	// 4. На адрес нет другого будущего живого бронирования
	if err := uc.ensureNoUpcoming(ctx, req, now); err != nil {
		return nil, err
	}

	// 5. Право на бронирование
	subs, err := uc.accountClient.ListSubscriptions(ctx, req.AccountID)
	if err != nil {
		return nil, uc.accountError("ListSubscriptions", req.AccountID, err)
	}
	plan, ok := resolvePlan(account, subs, req.AddressID, now)
	if !ok {
		uc.logger.Warn("CreateBooking: account=%d has no entitlement for address id=%d", req.AccountID, req.AddressID)
		return nil, ErrNotEntitled
	}

	// 6. Календарь предлагает этот слот (часы, срок упреждения, не в прошлом)
	if !slotAt.Equal(instant) {
		uc.logger.Warn("CreateBooking: %s is not on a slot boundary", instant.Format("2006-01-02T15:04:05Z07:00"))
		return nil, ErrTimeNotBookable
	}
	if err := availability.CheckBookable(cfg, key.YMD, key.Time, now); err != nil {
		uc.logger.Warn("CreateBooking: slot %s is not offered: %v", key, err)
		return nil, ErrTimeNotBookable
	}

	// 7. Изображения сохраняются до гейта: ошибка отклоняет запрос до захвата места
	images, err := uc.storeImages(ctx, req.Images)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		AccountID:    req.AccountID,
		AddressID:    req.AddressID,
		SlotAt:       slotAt,
		SlotKey:      key,
		Service:      strings.TrimSpace(req.Service),
		Note:         strings.TrimSpace(req.Note),
		Images:       images,
		CustomerName: account.Name,
		Email:        account.Email,
		Phone:        account.Phone,
		Address: domain.AddressSnapshot{
			Line1:  address.Line1,
			City:   address.City,
			State:  address.State,
			Zip:    address.Zip,
			County: address.County,
		},
		Plan:          plan,
		Status:        domain.StatusPending,
		StatusHistory: []domain.StatusChange{},
	}

	// 8. Гейт и вставка в одной транзакции
	var created *domain.Booking
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 8.1. Сериализуем бронирования одного аккаунта на один адрес
		if err := uc.bookingRepo.LockAccountAddress(txCtx, req.AccountID, req.AddressID); err != nil {
			return fmt.Errorf("%w: failed to lock account address: %v", ErrInternal, err)
		}

		// 8.2. Повторная проверка под блокировкой
		if err := uc.ensureNoUpcoming(txCtx, req, now); err != nil {
			return err
		}

		// 8.3. При переносе освобождаем место старого бронирования
		if req.RescheduleBookingID != nil {
			if err := uc.cancelRescheduled(txCtx, req, now); err != nil {
				return err
			}
		}

		// 8.4. Атомарный гейт вместимости
		count, err := uc.counterRepo.Increment(txCtx, key, cfg.Capacity())
		if err != nil {
			if errors.Is(err, slotcounterRepo.ErrSlotFull) {
				uc.logger.Warn("CreateBooking: slot %s is full (capacity=%d)", key, cfg.Capacity())
				return ErrSlotFull
			}
			return fmt.Errorf("%w: failed to take slot: %v", ErrInternal, err)
		}
		uc.logger.Info("CreateBooking: slot %s taken, %d/%d", key, count, cfg.Capacity())

		// 8.5. Вставка бронирования с уникальным номером
		created, err = uc.createWithNumber(txCtx, booking)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrSlotFull) && !errors.Is(err, ErrActiveBookingExists) && !errors.Is(err, ErrRescheduleNotFound) {
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d number=%s", created.ID, created.BookingNumber)

	// 9. Уведомления (ошибки только логируются)
	uc.notifyCreated(ctx, created, cfg)

	return models.FromDomainBooking(created), nil
}

// ensureNoUpcoming проверяет, что на адрес нет живого будущего бронирования (переносимое не учитывается)
func (uc *UseCase) ensureNoUpcoming(ctx context.Context, req *Request, now time.Time) error {
	existing, err := uc.bookingRepo.FindUpcomingForAddress(ctx, req.AccountID, req.AddressID, now, req.RescheduleBookingID)
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil
	}
	if err != nil {
		uc.logger.Error("CreateBooking: failed to check upcoming bookings: %v", err)
		return fmt.Errorf("%w: failed to check upcoming bookings: %v", ErrInternal, err)
	}

	uc.logger.Warn("CreateBooking: account=%d already has booking id=%d for address id=%d",
		req.AccountID, existing.ID, req.AddressID)
	return ErrActiveBookingExists
}

// cancelRescheduled отменяет переносимое бронирование и уменьшает его счетчик в текущей транзакции
func (uc *UseCase) cancelRescheduled(ctx context.Context, req *Request, now time.Time) error {
	prior, err := uc.bookingRepo.GetByIDAndAccount(ctx, *req.RescheduleBookingID, req.AccountID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("CreateBooking: booking to reschedule id=%d not found", *req.RescheduleBookingID)
			return ErrRescheduleNotFound
		}
		return fmt.Errorf("%w: failed to get booking to reschedule: %v", ErrInternal, err)
	}

	// Место держат только живые бронирования
	if !prior.IsLive() {
		return nil
	}

	change := domain.StatusChange{Status: prior.Status, ChangedAt: now}
	if err := uc.bookingRepo.UpdateStatus(ctx, prior.ID, domain.StatusCanceled, change); err != nil {
		return fmt.Errorf("%w: failed to cancel rescheduled booking: %v", ErrInternal, err)
	}

	if _, err := uc.counterRepo.Decrement(ctx, prior.SlotKey); err != nil {
		if !errors.Is(err, slotcounterRepo.ErrCounterUnderflow) {
			return fmt.Errorf("%w: failed to release rescheduled slot: %v", ErrInternal, err)
		}
		uc.logger.Error("CreateBooking: counter underflow for slot %s, counter left at zero", prior.SlotKey)
		uc.metrics.IncCounterUnderflow()
	}

	uc.logger.Info("CreateBooking: booking id=%d canceled for reschedule", prior.ID)
	return nil
}

// createWithNumber вставляет бронирование, генерируя номер заново при коллизии
func (uc *UseCase) createWithNumber(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	for attempt := 1; attempt <= domain.MaxBookingNumberRetries; attempt++ {
		booking.BookingNumber = uc.newBookingNumber()

		created, err := uc.bookingRepo.Create(ctx, booking)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, bookingRepo.ErrDuplicateBookingNumber) {
			return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}
		uc.logger.Warn("CreateBooking: booking number %s collision, attempt %d", booking.BookingNumber, attempt)
	}

	return nil, fmt.Errorf("%w: failed to allocate booking number after %d attempts", ErrInternal, domain.MaxBookingNumberRetries)
}

func (uc *UseCase) storeImages(ctx context.Context, uploads []assets.Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		url, err := uc.imageStore.StoreImage(ctx, upload)
		if err != nil {
			if errors.Is(err, assets.ErrDecodeImage) || errors.Is(err, assets.ErrEmptyUpload) {
				uc.logger.Warn("CreateBooking: rejected image %q: %v", upload.Filename, err)
				return nil, fmt.Errorf("%w: %s", ErrInvalidImage, upload.Filename)
			}
			uc.logger.Error("CreateBooking: failed to store image %q: %v", upload.Filename, err)
			return nil, fmt.Errorf("%w: failed to store image: %v", ErrInternal, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (uc *UseCase) notifyCreated(ctx context.Context, booking *domain.Booking, cfg *domain.CalendarConfig) {
	vars := models.NotificationVars(booking, cfg.Location())

	if err := uc.notifier.Notify(ctx, domain.TemplateBookingCreated, booking.Email, vars); err != nil {
		uc.logger.Error("CreateBooking: failed to notify customer for booking id=%d: %v", booking.ID, err)
	}

	if uc.adminEmail == "" {
		return
	}
	if err := uc.notifier.Notify(ctx, domain.TemplateAdminBookingCreated, uc.adminEmail, vars); err != nil {
		uc.logger.Error("CreateBooking: failed to notify admin for booking id=%d: %v", booking.ID, err)
	}
}

// accountError приводит ошибки AccountService к ошибкам use case
func (uc *UseCase) accountError(method string, accountID int64, err error) error {
	switch {
	case errors.Is(err, accountClient.ErrAccountNotFound):
		uc.logger.Warn("CreateBooking: %s - account=%d not found", method, accountID)
		return ErrAccountNotFound
	case errors.Is(err, accountClient.ErrServiceUnavailable):
		uc.logger.Error("CreateBooking: %s - account service unavailable: %v", method, err)
		return fmt.Errorf("%w: %s: %v", ErrServiceUnavailable, method, err)
	default:
		uc.logger.Error("CreateBooking: %s failed for account=%d: %v", method, accountID, err)
		return fmt.Errorf("%w: %s: %v", ErrInternal, method, err)
	}
}

// generateBookingNumber возвращает случайный восьмизначный номер без ведущего нуля
func generateBookingNumber() string {
	return fmt.Sprintf("%d", 10000000+rand.IntN(90000000))
}
