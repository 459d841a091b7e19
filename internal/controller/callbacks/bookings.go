package callbacks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/formatting"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/keyboard"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

const bookingsPerPage = 5

// HandleBookLesson записывает пользователя на занятие
func (h *Handler) HandleBookLesson(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	lessonID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	outcome, err := h.BookingService.BookLesson(ctx, lessonID)
	if err != nil {
		h.Logger.Error("Book lesson failed",
			zap.Int64("lesson_id", lessonID),
			zap.Int64("user_id", callback.From.ID),
			zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	if outcome.Idempotent {
		// Инфо, не ошибка: запись уже есть
		common.AnswerCallback(ctx, b, callback.ID, "ℹ️ Вы уже записаны на это занятие")
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "✅ Вы записаны! Кредит списан")
}

// HandleCancelBooking показывает подтверждение отмены записи
func (h *Handler) HandleCancelBooking(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	bookingID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		common.AnswerCallback(ctx, b, callback.ID, common.ErrorMessage(common.ErrNoMessage))
		return
	}

	kb := keyboard.NewBuilder().
		Row(keyboard.Button("🔴 Да, отменить", fmt.Sprintf("%s%d", ConfirmCancel, bookingID))).
		Row(keyboard.Button("⬅️ Назад", fmt.Sprintf("%s0", MyBookingsPage)))

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        "❓ Отменить запись? Кредит вернётся на баланс.",
		ReplyMarkup: kb.Build(),
	})
	common.AnswerCallback(ctx, b, callback.ID, "")
}

// HandleConfirmCancel отменяет запись после подтверждения
func (h *Handler) HandleConfirmCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	bookingID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	outcome, err := h.BookingService.CancelBooking(ctx, bookingID)
	if err != nil {
		h.Logger.Error("Cancel booking failed",
			zap.Int64("booking_id", bookingID),
			zap.Int64("user_id", callback.From.ID),
			zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	if outcome.Idempotent {
		common.AnswerCallback(ctx, b, callback.ID, "ℹ️ Запись уже была отменена")
	} else {
		common.AnswerCallback(ctx, b, callback.ID, "✅ Запись отменена")
	}

	msg := common.GetMessageFromCallback(callback)
	if msg != nil {
		h.showMyBookings(ctx, b, msg.Chat.ID, &msg.ID, 0)
	}
}

// HandleMyBookingsPage листает записи пользователя
func (h *Handler) HandleMyBookingsPage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	pageStr := strings.TrimPrefix(callback.Data, MyBookingsPage)
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		common.AnswerCallback(ctx, b, callback.ID, common.ErrorMessage(common.ErrNoMessage))
		return
	}

	h.showMyBookings(ctx, b, msg.Chat.ID, &msg.ID, page)
	common.AnswerCallback(ctx, b, callback.ID, "")
}

// ShowMyBookings отправляет список записей новым сообщением
func (h *Handler) ShowMyBookings(ctx context.Context, b *bot.Bot, chatID int64) {
	h.showMyBookings(ctx, b, chatID, nil, 0)
}

func (h *Handler) showMyBookings(ctx context.Context, b *bot.Bot, chatID int64, messageID *int, page int) {
	bookings, err := h.BookingService.GetMyBookings(ctx)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return
	}

	active := make([]model.BookingRecord, 0, len(bookings))
	for _, booking := range bookings {
		if booking.IsActive() {
			active = append(active, booking)
		}
	}

	totalPages := (len(active) + bookingsPerPage - 1) / bookingsPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	text := fmt.Sprintf("📋 <b>Мои записи</b>\n\nВсего: %d %s\n\n",
		len(active), formatting.PluralizeBookings(len(active)))
	kb := keyboard.NewBuilder()

	if len(active) == 0 {
		text += "📭 Активных записей нет.\nОткройте /calendar чтобы записаться"
	} else {
		start := page * bookingsPerPage
		end := min(start+bookingsPerPage, len(active))
		for _, booking := range active[start:end] {
			label := formatting.FormatDateTime(booking.StartTime.In(h.Location))
			if booking.Lesson != nil {
				label = fmt.Sprintf("%s • %s", label, booking.Lesson.Subject)
			}
			text += fmt.Sprintf("• %s\n", label)
			kb.Row(keyboard.Button("❌ "+label, fmt.Sprintf("%s%d", CancelBooking, booking.ID)))
		}
	}

	kb.AddPagination(MyBookingsPage, page, totalPages)

	if messageID != nil {
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   *messageID,
			Text:        text,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: kb.Build(),
		})
		return
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb.Build(),
	})
}
