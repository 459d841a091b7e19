package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/api"
	"github.com/kurochkindm/repetitor_bot/internal/cache"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// Паттерны доменных ошибок, означающих "уже в целевом состоянии".
// Конкурирующий клиент успел выполнить тот же переход — это не сбой
const (
	patternNotActive     = "not active"
	patternAlreadyBooked = "already booked"
)

// Пауза между оптимистичным обновлением и сетевым вызовом. Даёт интерфейсу
// время показать промежуточное состояние; на корректность не влияет
const mutationDelay = 150 * time.Millisecond

// BookingAPI запросы к бэкенду, нужные координатору записей
type BookingAPI interface {
	GetMyBookings(ctx context.Context) ([]model.BookingRecord, error)
	GetLessons(ctx context.Context, from, to time.Time) ([]model.LessonRecord, error)
	GetMyLessons(ctx context.Context) ([]model.LessonRecord, error)
	CreateBooking(ctx context.Context, lessonID int64) (*model.BookingRecord, error)
	CancelBooking(ctx context.Context, bookingID int64) error
}

// MutationOutcome итог мутации для интерфейса
type MutationOutcome struct {
	// Idempotent: переход уже выполнил кто-то другой. Показывается
	// информационное сообщение, не ошибка
	Idempotent bool
}

// BookingService координатор мутаций записей: оптимистичное обновление
// кэша, откат по снимку при сбое и переклассификация известных безобидных
// ошибок в успех. Мутации одного ресурса сериализуются пер-ключевой
// блокировкой кэша.
type BookingService struct {
	client BookingAPI
	store  *cache.Store
	logger *zap.Logger
}

func NewBookingService(client BookingAPI, store *cache.Store, logger *zap.Logger) *BookingService {
	return &BookingService{
		client: client,
		store:  store,
		logger: logger,
	}
}

// GetMyBookings возвращает записи пользователя (кэш → сеть)
func (s *BookingService) GetMyBookings(ctx context.Context) ([]model.BookingRecord, error) {
	if cached, ok := s.store.Get(cache.KeyMyBookings); ok {
		if bookings, ok := cached.([]model.BookingRecord); ok {
			return bookings, nil
		}
	}

	bookings, err := s.client.GetMyBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get my bookings: %w", err)
	}
	s.store.Set(cache.KeyMyBookings, bookings)
	return bookings, nil
}

// GetLessons возвращает занятия интервала (кэш → сеть)
func (s *BookingService) GetLessons(ctx context.Context, from, to time.Time) ([]model.LessonRecord, error) {
	if cached, ok := s.store.Get(cache.KeyLessons); ok {
		if lessons, ok := cached.([]model.LessonRecord); ok {
			return lessons, nil
		}
	}

	lessons, err := s.client.GetLessons(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("get lessons: %w", err)
	}
	s.store.Set(cache.KeyLessons, lessons)
	return lessons, nil
}

// GetMyLessons возвращает занятия пользователя (кэш → сеть)
func (s *BookingService) GetMyLessons(ctx context.Context) ([]model.LessonRecord, error) {
	if cached, ok := s.store.Get(cache.KeyMyLessons); ok {
		if lessons, ok := cached.([]model.LessonRecord); ok {
			return lessons, nil
		}
	}

	lessons, err := s.client.GetMyLessons(ctx)
	if err != nil {
		return nil, fmt.Errorf("get my lessons: %w", err)
	}
	s.store.Set(cache.KeyMyLessons, lessons)
	return lessons, nil
}

// CancelBooking отменяет запись по оптимистичному протоколу:
//  1. снимок кэша записей и занятий;
//  2. оптимистично убираем запись и уменьшаем занятость занятия (не ниже 0);
//  3. короткая пауза, затем сетевой вызов;
//  4. успех — оптимистичное состояние остаётся, кэши занятий и кредитов
//     помечаются устаревшими;
//  5. ошибка "not active" — успех без отката: второй клиент уже отменил,
//     откат здесь создал бы двойной возврат кредита;
//  6. любая другая ошибка — откат к снимку.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64) (*MutationOutcome, error) {
	unlock := s.store.LockKey(fmt.Sprintf("booking:%d", bookingID))
	defer unlock()

	snap := s.store.TakeSnapshot(cache.KeyMyBookings, cache.KeyLessons, cache.KeyMyLessons)

	lessonID := s.applyOptimisticCancel(bookingID)

	if err := sleepCtx(ctx, mutationDelay); err != nil {
		s.store.Restore(snap)
		return nil, err
	}

	err := s.client.CancelBooking(ctx, bookingID)
	switch {
	case err == nil:
		s.store.Invalidate(cache.KeyLessons, cache.KeyMyLessons, cache.KeyCredits)
		s.logger.Info("Booking cancelled",
			zap.Int64("booking_id", bookingID),
			zap.Int64("lesson_id", lessonID))
		return &MutationOutcome{}, nil

	case api.IsBenignOutcome(err, patternNotActive):
		s.store.Invalidate(cache.KeyLessons, cache.KeyMyLessons, cache.KeyCredits)
		s.logger.Info("Booking already cancelled elsewhere",
			zap.Int64("booking_id", bookingID))
		return &MutationOutcome{Idempotent: true}, nil

	default:
		s.store.Restore(snap)
		if !api.IsCancellation(err) {
			s.logger.Error("Cancel booking failed, rolled back",
				zap.Int64("booking_id", bookingID),
				zap.Error(err))
		}
		return nil, fmt.Errorf("cancel booking %d: %w", bookingID, err)
	}
}

// BookLesson записывает пользователя на занятие по тому же протоколу:
// оптимистично добавляем запись, увеличиваем занятость (не выше max)
// и уменьшаем баланс кредитов; "already booked" — идемпотентный успех.
func (s *BookingService) BookLesson(ctx context.Context, lessonID int64) (*MutationOutcome, error) {
	unlock := s.store.LockKey(fmt.Sprintf("lesson:%d", lessonID))
	defer unlock()

	snap := s.store.TakeSnapshot(cache.KeyMyBookings, cache.KeyLessons, cache.KeyMyLessons, cache.KeyCredits)

	s.applyOptimisticBook(lessonID)

	if err := sleepCtx(ctx, mutationDelay); err != nil {
		s.store.Restore(snap)
		return nil, err
	}

	booking, err := s.client.CreateBooking(ctx, lessonID)
	switch {
	case err == nil:
		s.store.Invalidate(cache.KeyLessons, cache.KeyMyLessons, cache.KeyMyBookings, cache.KeyCredits)
		s.logger.Info("Lesson booked",
			zap.Int64("booking_id", booking.ID),
			zap.Int64("lesson_id", lessonID))
		return &MutationOutcome{}, nil

	case api.IsBenignOutcome(err, patternAlreadyBooked):
		s.store.Invalidate(cache.KeyLessons, cache.KeyMyLessons, cache.KeyMyBookings, cache.KeyCredits)
		s.logger.Info("Lesson already booked elsewhere", zap.Int64("lesson_id", lessonID))
		return &MutationOutcome{Idempotent: true}, nil

	default:
		s.store.Restore(snap)
		if !api.IsCancellation(err) {
			s.logger.Error("Book lesson failed, rolled back",
				zap.Int64("lesson_id", lessonID),
				zap.Error(err))
		}
		return nil, fmt.Errorf("book lesson %d: %w", lessonID, err)
	}
}

// applyOptimisticCancel убирает запись из кэша и освобождает место.
// Возвращает lesson_id отменённой записи (0 если записи в кэше нет)
func (s *BookingService) applyOptimisticCancel(bookingID int64) int64 {
	var lessonID int64

	if cached, ok := s.store.Get(cache.KeyMyBookings); ok {
		if bookings, ok := cached.([]model.BookingRecord); ok {
			remaining, removed := removeBooking(bookings, bookingID)
			s.store.Set(cache.KeyMyBookings, remaining)
			if removed != nil {
				lessonID = removed.LessonID
			}
		}
	}

	if lessonID != 0 {
		s.adjustCachedSeats(lessonID, -1)
	}
	return lessonID
}

// applyOptimisticBook добавляет предварительную запись и занимает место
func (s *BookingService) applyOptimisticBook(lessonID int64) {
	if cached, ok := s.store.Get(cache.KeyMyBookings); ok {
		if bookings, ok := cached.([]model.BookingRecord); ok {
			provisional := model.BookingRecord{
				LessonID:  lessonID,
				Status:    model.BookingStatusActive,
				StartTime: time.Now(),
			}
			s.store.Set(cache.KeyMyBookings, append(bookings, provisional))
		}
	}

	s.adjustCachedSeats(lessonID, +1)

	if cached, ok := s.store.Get(cache.KeyCredits); ok {
		if balance, ok := cached.(model.CreditBalance); ok {
			if balance.Balance > 0 {
				balance.Balance--
			}
			s.store.Set(cache.KeyCredits, balance)
		}
	}
}

// adjustCachedSeats меняет занятость занятия в обоих кэшах занятий
func (s *BookingService) adjustCachedSeats(lessonID int64, delta int) {
	for _, key := range []string{cache.KeyLessons, cache.KeyMyLessons} {
		cached, ok := s.store.Get(key)
		if !ok {
			continue
		}
		lessons, ok := cached.([]model.LessonRecord)
		if !ok {
			continue
		}
		s.store.Set(key, adjustLessonSeats(lessons, lessonID, delta))
	}
}

// removeBooking возвращает список без записи и саму убранную запись
func removeBooking(bookings []model.BookingRecord, bookingID int64) ([]model.BookingRecord, *model.BookingRecord) {
	remaining := make([]model.BookingRecord, 0, len(bookings))
	var removed *model.BookingRecord
	for _, b := range bookings {
		if b.ID == bookingID {
			removed = &b
			continue
		}
		remaining = append(remaining, b)
	}
	return remaining, removed
}

// adjustLessonSeats меняет current_students занятия, зажимая в [0, max].
// Инвариант 0 <= current <= max здесь только поддерживается — источник
// истины остаётся за сервером
func adjustLessonSeats(lessons []model.LessonRecord, lessonID int64, delta int) []model.LessonRecord {
	out := make([]model.LessonRecord, len(lessons))
	copy(out, lessons)
	for i := range out {
		if out[i].ID != lessonID {
			continue
		}
		next := out[i].CurrentStudents + delta
		if next < 0 {
			next = 0
		}
		if next > out[i].MaxStudents {
			next = out[i].MaxStudents
		}
		out[i].CurrentStudents = next
	}
	return out
}

// sleepCtx ждёт d или отмены контекста
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
