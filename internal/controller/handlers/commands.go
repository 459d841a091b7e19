package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/formatting"
	"github.com/kurochkindm/repetitor_bot/internal/controller/state"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// HandleStart обрабатывает команду /start.
// Deep-link вида /start <токен> подтверждает привязку аккаунта
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	// /start <токен> — пришли по ссылке привязки
	parts := strings.Fields(update.Message.Text)
	if len(parts) == 2 {
		h.confirmLinkToken(ctx, b, chatID, telegramID, parts[1])
		return
	}

	user, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to look up user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   common.ErrorMessage(err),
		})
		return
	}

	if user == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: "👋 Привет!\n\n" +
				"Это бот для записи на занятия.\n\n" +
				"Ваш Telegram ещё не привязан к аккаунту на платформе. " +
				"Откройте личный кабинет на сайте и перейдите по ссылке привязки, " +
				"либо отправьте команду /link и введите токен вручную.",
		})
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Доступные команды:\n"+
			"/calendar - Календарь занятий\n"+
			"/mylessons - Мои занятия\n"+
			"/mybookings - Мои записи\n"+
			"/credits - Баланс кредитов\n"+
			"/teachers - Преподаватели\n"+
			"/help - Справка",
		user.FirstName,
	)
	if user.CanManageBroadcasts() {
		welcomeText += "\n\nДля администраторов:\n/broadcasts - Рассылки"
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   welcomeText,
	})
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"/start - Начать работу с ботом\n" +
		"/calendar - Календарь занятий на месяц\n" +
		"/mylessons - Занятия, на которые вы записаны\n" +
		"/mybookings - Управление записями\n" +
		"/credits - Баланс и история кредитов\n" +
		"/teachers - Список преподавателей\n" +
		"/link - Привязать аккаунт по токену\n" +
		"/unlink - Отвязать Telegram от аккаунта\n" +
		"/cancel - Отменить текущую операцию\n\n" +
		"Для администраторов:\n" +
		"/broadcasts - Рассылки\n" +
		"/newlist - Создать список получателей"

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   helpText,
	})
}

// HandleCalendar обрабатывает команду /calendar - календарь текущего месяца
func (h *Handlers) HandleCalendar(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	now := time.Now().In(h.location)
	h.screens.ShowCalendar(ctx, b, update.Message.Chat.ID, nil, now.Year(), now.Month())
}

// HandleMyLessons обрабатывает команду /mylessons
func (h *Handlers) HandleMyLessons(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	lessons, err := h.bookingService.GetMyLessons(ctx)
	if err != nil {
		h.logger.Error("Failed to get my lessons",
			zap.Int64("telegram_id", update.Message.From.ID),
			zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return
	}

	if len(lessons) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📭 У вас пока нет занятий.\nОткройте /calendar чтобы записаться",
		})
		return
	}

	sort.Slice(lessons, func(i, j int) bool {
		return lessons[i].StartTime.Before(lessons[j].StartTime)
	})

	text := fmt.Sprintf("📅 <b>Мои занятия</b>\n\nВсего: %d %s\n\n",
		len(lessons), formatting.PluralizeLessons(len(lessons)))
	for _, lesson := range lessons {
		start := lesson.StartTime.In(h.location)
		end := lesson.EndTime.In(h.location)
		text += fmt.Sprintf("• <b>%s</b>\n  %s, %s\n  👨‍🏫 %s\n\n",
			lesson.Subject,
			formatting.FormatDate(start),
			formatting.FormatTimeRange(start, end),
			lesson.TeacherName)
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
}

// HandleMyBookings обрабатывает команду /mybookings
func (h *Handlers) HandleMyBookings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.screens.ShowMyBookings(ctx, b, update.Message.Chat.ID)
}

// HandleCredits обрабатывает команду /credits
func (h *Handlers) HandleCredits(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.screens.ShowMyCredits(ctx, b, update.Message.Chat.ID)
}

// HandleTeachers обрабатывает команду /teachers
func (h *Handlers) HandleTeachers(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	teachers, err := h.userService.GetAssignableTeachers(ctx)
	if err != nil {
		h.logger.Error("Failed to get teachers", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return
	}

	if len(teachers) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📭 Преподавателей пока нет",
		})
		return
	}

	text := "👨‍🏫 <b>Преподаватели</b>\n\n"
	for _, teacher := range teachers {
		text += fmt.Sprintf("• %s\n", teacher.FullName())
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
}

// HandleBroadcasts обрабатывает команду /broadcasts (админ)
func (h *Handlers) HandleBroadcasts(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	user, err := h.requireAdmin(ctx, b, chatID, update.Message.From.ID)
	if err != nil {
		return
	}

	broadcasts, err := h.broadcastService.GetBroadcasts(ctx)
	if err != nil {
		h.logger.Error("Failed to get broadcasts", zap.Int64("user_id", user.ID), zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return
	}

	text := fmt.Sprintf("📣 <b>Рассылки</b>\n\nВсего: %d\n\nОткройте список для управления:", len(broadcasts))
	kb := &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: "📋 Показать рассылки", CallbackData: callbacks.BroadcastsView}},
		{{Text: "➕ Новая рассылка", CallbackData: callbacks.BroadcastNew + "0"}},
	}}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb,
	})
}

// HandleNewList начинает диалог создания списка получателей (админ)
func (h *Handlers) HandleNewList(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	if _, err := h.requireAdmin(ctx, b, chatID, telegramID); err != nil {
		return
	}

	h.stateManager.SetState(telegramID, state.StateListName)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "📝 Создание списка получателей\n\n" +
			"Как назвать список?\n\n" +
			"В список попадут все студенты. Для отмены — /cancel",
	})
}

// HandleLink обрабатывает команду /link - привязка аккаунта по токену
func (h *Handlers) HandleLink(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	telegramID := update.Message.From.ID

	h.stateManager.SetState(telegramID, state.StateEnteringLinkToken)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: "🔗 Привязка аккаунта\n\n" +
			"Отправьте токен привязки из личного кабинета.\n\n" +
			"Для отмены — /cancel",
	})
}

// HandleUnlink обрабатывает команду /unlink
func (h *Handlers) HandleUnlink(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	if err := h.userService.Unlink(ctx, telegramID); err != nil {
		h.logger.Error("Failed to unlink account", zap.Int64("telegram_id", telegramID), zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ Telegram отвязан от аккаунта.\nПривязать снова можно командой /link",
	})
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	if currentState == state.StateNone {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Нет активных операций для отмены.",
		})
		return
	}

	h.stateManager.ClearState(telegramID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.",
	})
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Команды обрабатываются другими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	if currentState == state.StateNone {
		return
	}

	h.logger.Info("Handling dialog step",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateEnteringLinkToken:
		h.handleLinkTokenStep(ctx, b, update)
	case state.StateBroadcastMessage:
		h.handleBroadcastMessageStep(ctx, b, update)
	case state.StateBroadcastConfirm:
		h.handleBroadcastConfirmStep(ctx, b, update)
	case state.StateListName:
		h.handleListNameStep(ctx, b, update)
	default:
		h.logger.Warn("Unknown state",
			zap.Int64("telegram_id", telegramID),
			zap.String("state", string(currentState)))
		h.stateManager.ClearState(telegramID)
	}
}

// requireAdmin проверяет привязку и права, при отказе сам отвечает пользователю
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, chatID, telegramID int64) (*model.User, error) {
	user, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return nil, err
	}
	if user == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(common.ErrUserNotLinked)})
		return nil, common.ErrUserNotLinked
	}
	if !user.CanManageBroadcasts() {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(common.ErrNotAnAdmin)})
		return nil, common.ErrNotAnAdmin
	}
	return user, nil
}
