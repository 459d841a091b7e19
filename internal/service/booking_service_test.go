package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/api"
	"github.com/kurochkindm/repetitor_bot/internal/cache"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// fakeBookingAPI управляемый фейк бэкенда
type fakeBookingAPI struct {
	mu          sync.Mutex
	cancelErr   error
	createErr   error
	cancelCalls int
	createCalls int
}

func (f *fakeBookingAPI) GetMyBookings(context.Context) ([]model.BookingRecord, error) {
	return nil, nil
}
func (f *fakeBookingAPI) GetLessons(context.Context, time.Time, time.Time) ([]model.LessonRecord, error) {
	return nil, nil
}
func (f *fakeBookingAPI) GetMyLessons(context.Context) ([]model.LessonRecord, error) {
	return nil, nil
}
func (f *fakeBookingAPI) CreateBooking(_ context.Context, lessonID int64) (*model.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.BookingRecord{ID: 100, LessonID: lessonID, Status: model.BookingStatusActive}, nil
}
func (f *fakeBookingAPI) CancelBooking(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	return f.cancelErr
}

func seededStore(t *testing.T) *cache.Store {
	t.Helper()
	store := cache.NewStore(time.Minute, zap.NewNop())
	store.Set(cache.KeyMyBookings, []model.BookingRecord{
		{ID: 7, LessonID: 3, Status: model.BookingStatusActive},
		{ID: 8, LessonID: 4, Status: model.BookingStatusActive},
	})
	store.Set(cache.KeyLessons, []model.LessonRecord{
		{ID: 3, Subject: "Математика", CurrentStudents: 2, MaxStudents: 5},
		{ID: 4, Subject: "Физика", CurrentStudents: 1, MaxStudents: 3},
	})
	return store
}

func cachedBookings(t *testing.T, store *cache.Store) []model.BookingRecord {
	t.Helper()
	cached, ok := store.Get(cache.KeyMyBookings)
	require.True(t, ok)
	return cached.([]model.BookingRecord)
}

func TestCancelBooking_SuccessKeepsOptimisticStateAndInvalidates(t *testing.T) {
	store := seededStore(t)
	client := &fakeBookingAPI{}
	svc := NewBookingService(client, store, zap.NewNop())

	outcome, err := svc.CancelBooking(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, outcome.Idempotent)

	bookings := cachedBookings(t, store)
	require.Len(t, bookings, 1)
	assert.Equal(t, int64(8), bookings[0].ID)

	// Кэши занятий и кредитов помечены устаревшими
	_, ok := store.Get(cache.KeyLessons)
	assert.False(t, ok)
	_, ok = store.Get(cache.KeyCredits)
	assert.False(t, ok)
}

func TestCancelBooking_HardFailureRollsBack(t *testing.T) {
	store := seededStore(t)
	client := &fakeBookingAPI{cancelErr: errors.New("lesson already started")}
	svc := NewBookingService(client, store, zap.NewNop())

	_, err := svc.CancelBooking(context.Background(), 7)
	require.Error(t, err)

	bookings := cachedBookings(t, store)
	assert.Len(t, bookings, 2, "откат должен вернуть запись")

	cached, ok := store.Get(cache.KeyLessons)
	require.True(t, ok)
	lessons := cached.([]model.LessonRecord)
	assert.Equal(t, 2, lessons[0].CurrentStudents, "занятость должна вернуться к снимку")
}

func TestCancelBooking_NotActiveIsIdempotentSuccess(t *testing.T) {
	store := seededStore(t)
	client := &fakeBookingAPI{cancelErr: &api.Error{
		Kind: api.KindBusinessLogic, StatusCode: 409, Message: "Booking is NOT ACTIVE",
	}}
	svc := NewBookingService(client, store, zap.NewNop())

	outcome, err := svc.CancelBooking(context.Background(), 7)
	require.NoError(t, err, "\"not active\" — не ошибка, переход уже выполнен")
	assert.True(t, outcome.Idempotent)

	bookings := cachedBookings(t, store)
	assert.Len(t, bookings, 1, "оптимистичное удаление должно остаться без отката")
}

func TestCancelBooking_ConcurrentSecondCancelDoesNotRollback(t *testing.T) {
	store := seededStore(t)
	client := &fakeBookingAPI{}
	svc := NewBookingService(client, store, zap.NewNop())

	// Первая отмена успешна
	_, err := svc.CancelBooking(context.Background(), 7)
	require.NoError(t, err)

	// Второй клиент успел раньше: сервер отвечает "not active"
	client.mu.Lock()
	client.cancelErr = &api.Error{Kind: api.KindBusinessLogic, StatusCode: 409, Message: "booking is not active"}
	client.mu.Unlock()

	outcome, err := svc.CancelBooking(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, outcome.Idempotent)

	// Запись не вернулась в кэш — двойного возврата не будет
	bookings := cachedBookings(t, store)
	for _, b := range bookings {
		assert.NotEqual(t, int64(7), b.ID)
	}
	assert.Equal(t, 2, client.cancelCalls)
}

func TestCancelBooking_SeatDecrementFlooredAtZero(t *testing.T) {
	store := cache.NewStore(time.Minute, zap.NewNop())
	store.Set(cache.KeyMyBookings, []model.BookingRecord{{ID: 7, LessonID: 3}})
	store.Set(cache.KeyLessons, []model.LessonRecord{{ID: 3, CurrentStudents: 0, MaxStudents: 5}})

	client := &fakeBookingAPI{cancelErr: errors.New("boom")}
	svc := NewBookingService(client, store, zap.NewNop())

	// До сетевого вызова занятость оптимистично уменьшилась бы ниже нуля —
	// проверяем зажим через прямой хелпер
	lessons := adjustLessonSeats([]model.LessonRecord{{ID: 3, CurrentStudents: 0, MaxStudents: 5}}, 3, -1)
	assert.Equal(t, 0, lessons[0].CurrentStudents)

	// И откат после сбоя возвращает исходное состояние
	_, err := svc.CancelBooking(context.Background(), 7)
	require.Error(t, err)
	cached, _ := store.Get(cache.KeyLessons)
	assert.Equal(t, 0, cached.([]model.LessonRecord)[0].CurrentStudents)
}

func TestBookLesson_OptimisticSeatCappedAtMax(t *testing.T) {
	lessons := adjustLessonSeats([]model.LessonRecord{{ID: 3, CurrentStudents: 5, MaxStudents: 5}}, 3, +1)
	assert.Equal(t, 5, lessons[0].CurrentStudents)
}

func TestBookLesson_FailureRestoresCreditBalance(t *testing.T) {
	store := seededStore(t)
	store.Set(cache.KeyCredits, model.CreditBalance{UserID: "me", Balance: 4})

	client := &fakeBookingAPI{createErr: errors.New("no credits left")}
	svc := NewBookingService(client, store, zap.NewNop())

	_, err := svc.BookLesson(context.Background(), 3)
	require.Error(t, err)

	cached, ok := store.Get(cache.KeyCredits)
	require.True(t, ok)
	assert.Equal(t, 4, cached.(model.CreditBalance).Balance, "баланс должен откатиться")
}

func TestBookLesson_AlreadyBookedIsIdempotent(t *testing.T) {
	store := seededStore(t)
	client := &fakeBookingAPI{createErr: &api.Error{
		Kind: api.KindBusinessLogic, StatusCode: 409, Message: "student already booked for this lesson",
	}}
	svc := NewBookingService(client, store, zap.NewNop())

	outcome, err := svc.BookLesson(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, outcome.Idempotent)
	assert.Equal(t, 1, client.createCalls)
}

func TestCancelBooking_MutationsSerializedPerKey(t *testing.T) {
	store := seededStore(t)
	client := &fakeBookingAPI{}
	svc := NewBookingService(client, store, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.CancelBooking(context.Background(), 7) //nolint:errcheck
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, client.cancelCalls, "обе мутации должны дойти до сети по очереди")
}
