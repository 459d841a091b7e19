package callbacks

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/formatting"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

const historyEntriesShown = 15

// HandleCreditsHistory показывает историю операций по кредитам
func (h *Handler) HandleCreditsHistory(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		common.AnswerCallback(ctx, b, callback.ID, common.ErrorMessage(common.ErrNoMessage))
		return
	}

	user, err := h.UserService.GetByTelegramID(ctx, callback.From.ID)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}
	if user == nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrUserNotLinked))
		return
	}

	history, err := h.CreditService.GetHistory(ctx, fmt.Sprintf("%d", user.ID))
	if err != nil {
		h.Logger.Error("Get credit history failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	text := "💰 <b>История кредитов</b>\n\n"
	if len(history) == 0 {
		text += "📭 Операций пока не было"
	} else {
		// История приходит в хронологическом порядке, показываем последние
		start := 0
		if len(history) > historyEntriesShown {
			start = len(history) - historyEntriesShown
		}
		for i := len(history) - 1; i >= start; i-- {
			entry := history[i]
			text += fmt.Sprintf("%s <b>%+d</b> — %s (%s)\n",
				creditOperationEmoji(entry.Operation),
				entry.Amount,
				creditOperationLabel(entry.Operation),
				formatting.FormatDate(entry.CreatedAt.In(h.Location)))
		}
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	common.AnswerCallback(ctx, b, callback.ID, "")
}

// ShowMyCredits отправляет баланс кредитов новым сообщением
func (h *Handler) ShowMyCredits(ctx context.Context, b *bot.Bot, chatID int64) {
	balance, err := h.CreditService.GetMyBalance(ctx)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: common.ErrorMessage(err)})
		return
	}

	text := fmt.Sprintf("💰 <b>Баланс</b>\n\nУ вас %d %s",
		balance.Balance, formatting.PluralizeCredits(balance.Balance))

	kb := [][]models.InlineKeyboardButton{
		{{Text: "📜 История операций", CallbackData: CreditsHistory}},
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: kb},
	})
}

func creditOperationEmoji(op model.CreditOperation) string {
	switch op {
	case model.CreditOperationPurchase:
		return "🟢"
	case model.CreditOperationBooking:
		return "🔵"
	case model.CreditOperationRefund:
		return "🟡"
	default:
		return "⚪"
	}
}

func creditOperationLabel(op model.CreditOperation) string {
	switch op {
	case model.CreditOperationPurchase:
		return "пополнение"
	case model.CreditOperationBooking:
		return "запись на занятие"
	case model.CreditOperationRefund:
		return "возврат за отмену"
	default:
		return string(op)
	}
}
