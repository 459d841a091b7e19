package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/api"
	"github.com/kurochkindm/repetitor_bot/internal/calendar"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/formatting"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/keyboard"
)

// HandleCalendarPage показывает сетку месяца с занятиями
func (h *Handler) HandleCalendarPage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	year, month, err := common.ParseYearMonthFromCallback(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse calendar page", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		common.AnswerCallback(ctx, b, callback.ID, common.ErrorMessage(common.ErrNoMessage))
		return
	}

	h.ShowCalendar(ctx, b, msg.Chat.ID, &msg.ID, year, time.Month(month))
	common.AnswerCallback(ctx, b, callback.ID, "")
}

// ShowCalendar отправляет (или заменяет) сообщение с календарём месяца.
// messageID != nil — заменяем существующее сообщение
func (h *Handler) ShowCalendar(ctx context.Context, b *bot.Bot, chatID int64, messageID *int, year int, month time.Month) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, h.Location).AddDate(0, 0, -7)
	to := time.Date(year, month, 1, 0, 0, 0, 0, h.Location).AddDate(0, 1, 7)

	lessons, err := h.BookingService.GetLessons(ctx, from, to)
	if err != nil {
		if !api.IsCancellation(err) {
			h.Logger.Error("Failed to get lessons for calendar", zap.Error(err))
		}
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   common.ErrorMessage(err),
		})
		return
	}

	grid := calendar.MonthGrid(year, month)
	buckets := calendar.BucketLessons(grid, lessons, h.Location)

	// Кнопки дней с занятиями (до 10 ближайших)
	kb := keyboard.NewBuilder()
	today := calendar.DateOf(time.Now(), h.Location)
	shown := 0
	for _, day := range grid {
		dayLessons := buckets[day]
		if len(dayLessons) == 0 || day.Before(today) || shown >= 10 {
			continue
		}
		label := fmt.Sprintf("%s %s — %d %s",
			formatting.GetWeekdayShort(int(day.Weekday())),
			formatting.FormatDate(day.Time(h.Location)),
			len(dayLessons),
			formatting.PluralizeLessons(len(dayLessons)))
		kb.Row(keyboard.Button(label, fmt.Sprintf("%s%s", ViewDay, day)))
		shown++
	}
	kb.Row(keyboard.MonthPagination(CalendarPage, year, int(month))...)

	caption := fmt.Sprintf("📅 <b>%s %d</b>\n\nВыберите день для записи:", formatting.GetMonthName(month), year)

	imageData, err := common.GenerateMonthImage(year, month, lessons, h.Location)
	if err == nil {
		b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:      chatID,
			Photo:       &models.InputFileUpload{Filename: "month.png", Data: bytes.NewReader(imageData)},
			Caption:     caption,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: kb.Build(),
		})
		if messageID != nil {
			b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: *messageID})
		}
		return
	}

	h.Logger.Warn("Month image generation failed, falling back to text", zap.Error(err))
	if messageID != nil {
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   *messageID,
			Text:        caption,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: kb.Build(),
		})
		return
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        caption,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb.Build(),
	})
}

// HandleViewDay показывает занятия выбранного дня
func (h *Handler) HandleViewDay(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	// Формат: day:2026-03-05
	parts := strings.SplitN(callback.Data, ":", 2)
	if len(parts) != 2 {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	targetDate, err := time.ParseInLocation("2006-01-02", parts[1], h.Location)
	if err != nil {
		h.Logger.Error("Failed to parse day", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		common.AnswerCallback(ctx, b, callback.ID, common.ErrorMessage(common.ErrNoMessage))
		return
	}

	day := calendar.DateOf(targetDate, h.Location)
	grid := calendar.MonthGrid(day.Year, day.Month)

	from := targetDate.AddDate(0, 0, -1)
	to := targetDate.AddDate(0, 0, 2)
	lessons, err := h.BookingService.GetLessons(ctx, from, to)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	dayLessons := calendar.BucketLessons(grid, lessons, h.Location)[day]

	text := fmt.Sprintf("📅 <b>Занятия на %s</b>\n\n", formatting.FormatDate(targetDate))
	kb := keyboard.NewBuilder()

	if len(dayLessons) == 0 {
		text += "📭 На этот день занятий нет"
	} else {
		for _, lesson := range dayLessons {
			seats := fmt.Sprintf("%d/%d", lesson.CurrentStudents, lesson.MaxStudents)
			text += fmt.Sprintf("• %s <b>%s</b> (%s) — мест занято: %s\n",
				formatting.FormatTimeRange(lesson.StartTime.In(h.Location), lesson.EndTime.In(h.Location)),
				lesson.Subject,
				lesson.TeacherName,
				seats)

			if lesson.HasFreeSeats() {
				kb.Row(keyboard.Button(
					fmt.Sprintf("✅ %s %s", formatting.FormatTime(lesson.StartTime.In(h.Location)), lesson.Subject),
					fmt.Sprintf("%s%d", BookLesson, lesson.ID)))
			}
		}
		text += "\nВыберите занятие для записи:"
	}

	kb.Row(keyboard.Button("⬅️ Назад к календарю", fmt.Sprintf("%s%d:%d", CalendarPage, day.Year, int(day.Month))))

	b.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Caption:     text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb.Build(),
	})
	common.AnswerCallback(ctx, b, callback.ID, "")
}
