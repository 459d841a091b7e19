package model

import "time"

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"    // Активная запись
	BookingStatusCancelled BookingStatus = "cancelled" // Отменена
)

type BookingRecord struct {
	ID        int64         `json:"id"`
	LessonID  int64         `json:"lesson_id"`
	StudentID int64         `json:"student_id"`
	Status    BookingStatus `json:"status"`
	StartTime time.Time     `json:"start_time"`

	// Дополнительные поля для отображения (сервер заполняет не всегда)
	Lesson *LessonRecord `json:"lesson,omitempty"`
}

// IsActive проверяет что запись ещё действует
func (b *BookingRecord) IsActive() bool {
	return b.Status == BookingStatusActive
}
