package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/formatting"
	"github.com/kurochkindm/repetitor_bot/internal/controller/state"
)

const (
	listNameMinLength = 3
	listNameMaxLength = 64

	broadcastMessageMaxLength = 4000
)

// confirmLinkToken подтверждает привязку аккаунта по токену из deep-link или /link
func (h *Handlers) confirmLinkToken(ctx context.Context, b *bot.Bot, chatID, telegramID int64, token string) {
	user, err := h.userService.ConfirmLink(ctx, token, telegramID)
	if err != nil {
		h.logger.Error("Failed to confirm link",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Не удалось привязать аккаунт. Токен неверен или истёк.\nЗапросите новую ссылку в личном кабинете.",
		})
		return
	}

	h.stateManager.ClearState(telegramID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("✅ Аккаунт привязан!\n\nДобро пожаловать, %s.\nОткройте /calendar чтобы записаться на занятие.",
			user.FullName()),
	})
}

// handleLinkTokenStep обрабатывает токен, введённый вручную после /link
func (h *Handlers) handleLinkTokenStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	token := strings.TrimSpace(update.Message.Text)

	if token == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Токен пустой. Отправьте токен из личного кабинета или /cancel",
		})
		return
	}

	h.confirmLinkToken(ctx, b, update.Message.Chat.ID, telegramID, token)
}

// handleBroadcastMessageStep сохраняет текст рассылки и просит подтверждение
func (h *Handlers) handleBroadcastMessageStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	message := strings.TrimSpace(update.Message.Text)

	if message == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Сообщение пустое. Отправьте текст рассылки или /cancel",
		})
		return
	}
	if len([]rune(message)) > broadcastMessageMaxLength {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Сообщение слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", broadcastMessageMaxLength),
		})
		return
	}

	h.stateManager.SetData(telegramID, "broadcast_message", message)
	h.stateManager.SetState(telegramID, state.StateBroadcastConfirm)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: "📣 Текст рассылки:\n\n" + message + "\n\n" +
			"Отправить? Напишите «да» для подтверждения или /cancel для отмены.",
	})
}

// handleBroadcastConfirmStep отправляет рассылку после подтверждения
func (h *Handlers) handleBroadcastConfirmStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	answer := strings.ToLower(strings.TrimSpace(update.Message.Text))
	if answer != "да" && answer != "yes" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❓ Напишите «да» для отправки или /cancel для отмены.",
		})
		return
	}

	listIDRaw, ok := h.stateManager.GetData(telegramID, "broadcast_list_id")
	messageRaw, ok2 := h.stateManager.GetData(telegramID, "broadcast_message")
	if !ok || !ok2 {
		h.logger.Warn("Broadcast dialog data lost", zap.Int64("telegram_id", telegramID))
		h.stateManager.ClearState(telegramID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Данные диалога потеряны. Начните заново: /broadcasts",
		})
		return
	}

	listID, _ := listIDRaw.(int64)
	message, _ := messageRaw.(string)

	broadcast, err := h.broadcastService.Send(ctx, listID, message)
	if err != nil {
		h.logger.Error("Failed to send broadcast",
			zap.Int64("list_id", listID),
			zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return
	}

	h.stateManager.ClearState(telegramID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Рассылка #%d поставлена в очередь отправки.", broadcast.ID),
	})
}

// handleListNameStep создаёт список получателей из всех студентов
func (h *Handlers) handleListNameStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	name := strings.TrimSpace(update.Message.Text)

	if len([]rune(name)) < listNameMinLength {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Название слишком короткое. Минимум %d символа.\n\nПопробуйте ещё раз:", listNameMinLength),
		})
		return
	}
	if len([]rune(name)) > listNameMaxLength {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", listNameMaxLength),
		})
		return
	}

	students, err := h.userService.GetStudents(ctx)
	if err != nil {
		h.logger.Error("Failed to get students", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return
	}

	userIDs := make([]int64, 0, len(students))
	for _, student := range students {
		userIDs = append(userIDs, student.ID)
	}

	list, err := h.broadcastService.CreateList(ctx, name, userIDs)
	if err != nil {
		h.logger.Error("Failed to create broadcast list",
			zap.String("name", name),
			zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return
	}

	h.stateManager.ClearState(telegramID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("✅ Список «%s» создан: %d %s.\n\nТеперь можно отправить рассылку: /broadcasts",
			list.Name, len(list.UserIDs), formatting.PluralizeRecipients(len(list.UserIDs))),
	})
}
