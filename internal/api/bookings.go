package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// GetMyBookings возвращает записи текущего пользователя
func (c *Client) GetMyBookings(ctx context.Context) ([]model.BookingRecord, error) {
	raw, err := c.Get(ctx, "/bookings/my", nil)
	if err != nil {
		return nil, fmt.Errorf("get my bookings: %w", err)
	}

	bookings, _, err := DecodeCollection[model.BookingRecord](c.logger, "bookings/my", raw)
	if err != nil {
		return nil, fmt.Errorf("normalize my bookings: %w", err)
	}
	return bookings, nil
}

type createBookingRequest struct {
	LessonID int64 `json:"lesson_id"`
}

// CreateBooking записывает текущего пользователя на занятие.
// Ключ идемпотентности проставляется транспортом: повтор запроса после
// сетевого сбоя не создаст дубликат записи.
func (c *Client) CreateBooking(ctx context.Context, lessonID int64) (*model.BookingRecord, error) {
	raw, err := c.Post(ctx, "/bookings", createBookingRequest{LessonID: lessonID})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	var booking model.BookingRecord
	if err := json.Unmarshal(raw, &booking); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}
	return &booking, nil
}

// CancelBooking отменяет запись. Повторная отмена уже отменённой записи
// возвращает от сервера ошибку "booking is not active" — вызывающая сторона
// распознаёт её как идемпотентный исход.
func (c *Client) CancelBooking(ctx context.Context, bookingID int64) error {
	if _, err := c.Post(ctx, fmt.Sprintf("/bookings/%d/cancel", bookingID), nil); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	return nil
}
