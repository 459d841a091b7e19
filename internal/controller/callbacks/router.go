package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common"
)

// ========================
// Callback Data Patterns
// ========================

// Календарь и занятия
const (
	CalendarPage = "calendar:" // calendar:2026:3
	ViewDay      = "day:"      // day:2026-03-05
	BookLesson   = "book_lesson:"
)

// Записи студента
const (
	CancelBooking  = "cancel_booking:" // cancel_booking:123
	ConfirmCancel  = "confirm_cancel:" // confirm_cancel:123
	MyBookingsPage = "bookings_page:"  // bookings_page:0
)

// Кредиты
const (
	CreditsHistory = "credits_history"
)

// Рассылки (админ)
const (
	BroadcastNew    = "broadcast_new:"    // broadcast_new:list_id
	BroadcastCancel = "broadcast_cancel:" // broadcast_cancel:123
	BroadcastsView  = "broadcasts_view"
)

// HandleCallbackQuery главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery
	data := callback.Data

	h.Logger.Info("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID))

	switch {
	case data == "noop":
		common.AnswerCallback(ctx, b, callback.ID, "")

	// ===== Календарь =====
	case strings.HasPrefix(data, CalendarPage):
		h.HandleCalendarPage(ctx, b, callback)
	case strings.HasPrefix(data, ViewDay):
		h.HandleViewDay(ctx, b, callback)
	case strings.HasPrefix(data, BookLesson):
		h.HandleBookLesson(ctx, b, callback)

	// ===== Записи =====
	case strings.HasPrefix(data, CancelBooking):
		h.HandleCancelBooking(ctx, b, callback)
	case strings.HasPrefix(data, ConfirmCancel):
		h.HandleConfirmCancel(ctx, b, callback)
	case strings.HasPrefix(data, MyBookingsPage):
		h.HandleMyBookingsPage(ctx, b, callback)

	// ===== Кредиты =====
	case data == CreditsHistory:
		h.HandleCreditsHistory(ctx, b, callback)

	// ===== Рассылки =====
	case data == BroadcastsView:
		h.HandleBroadcastsView(ctx, b, callback)
	case strings.HasPrefix(data, BroadcastNew):
		h.HandleBroadcastNew(ctx, b, callback)
	case strings.HasPrefix(data, BroadcastCancel):
		h.HandleBroadcastCancel(ctx, b, callback)

	default:
		h.Logger.Warn("Unknown callback", zap.String("data", data))
		common.AnswerCallback(ctx, b, callback.ID, "")
	}
}
