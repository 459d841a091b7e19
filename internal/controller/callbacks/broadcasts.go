package callbacks

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/formatting"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/keyboard"
	"github.com/kurochkindm/repetitor_bot/internal/controller/state"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// requireBroadcastAdmin проверяет, что пользователь привязан и имеет доступ к рассылкам
func (h *Handler) requireBroadcastAdmin(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := h.UserService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotLinked
	}
	if !user.CanManageBroadcasts() {
		return nil, common.ErrNotAnAdmin
	}
	return user, nil
}

// HandleBroadcastsView показывает рассылки и их статусы
func (h *Handler) HandleBroadcastsView(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		common.AnswerCallback(ctx, b, callback.ID, common.ErrorMessage(common.ErrNoMessage))
		return
	}

	if _, err := h.requireBroadcastAdmin(ctx, callback.From.ID); err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	broadcasts, err := h.BroadcastService.GetBroadcasts(ctx)
	if err != nil {
		h.Logger.Error("Get broadcasts failed", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	text := "📣 <b>Рассылки</b>\n\n"
	kb := keyboard.NewBuilder()
	if len(broadcasts) == 0 {
		text += "📭 Рассылок пока не было"
	} else {
		for _, bc := range broadcasts {
			text += fmt.Sprintf("%s #%d — %s (%s)\n",
				broadcastStatusEmoji(bc.Status),
				bc.ID,
				truncateMessage(bc.Message, 40),
				formatting.FormatDate(bc.CreatedAt.In(h.Location)))
			if !bc.IsFinished() {
				kb.Row(keyboard.Button(
					fmt.Sprintf("🛑 Остановить #%d", bc.ID),
					fmt.Sprintf("%s%d", BroadcastCancel, bc.ID)))
			}
		}
	}
	kb.Row(keyboard.Button("➕ Новая рассылка", BroadcastNew+"0"))

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: kb.Build(),
	})
	common.AnswerCallback(ctx, b, callback.ID, "")
}

// HandleBroadcastNew начинает диалог создания рассылки.
// "broadcast_new:0" — выбор списка, "broadcast_new:<id>" — список выбран
func (h *Handler) HandleBroadcastNew(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		common.AnswerCallback(ctx, b, callback.ID, common.ErrorMessage(common.ErrNoMessage))
		return
	}

	if _, err := h.requireBroadcastAdmin(ctx, callback.From.ID); err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	listID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	if listID == 0 {
		h.showListChoice(ctx, b, msg, callback.From.ID)
		common.AnswerCallback(ctx, b, callback.ID, "")
		return
	}

	h.StateManager.SetData(callback.From.ID, "broadcast_list_id", listID)
	h.StateManager.SetState(callback.From.ID, state.StateBroadcastMessage)

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      "✍️ Отправьте текст рассылки одним сообщением.\n\nДля отмены — /cancel",
	})
	common.AnswerCallback(ctx, b, callback.ID, "")
}

func (h *Handler) showListChoice(ctx context.Context, b *bot.Bot, msg *models.Message, telegramID int64) {
	lists, err := h.BroadcastService.GetLists(ctx)
	if err != nil {
		h.Logger.Error("Get broadcast lists failed", zap.Error(err))
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Text:      common.ErrorMessage(err),
		})
		return
	}

	if len(lists) == 0 {
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Text:      "📭 Нет ни одного списка получателей.\nСоздайте список командой /newlist",
		})
		return
	}

	h.StateManager.SetState(telegramID, state.StateBroadcastChooseList)

	kb := keyboard.NewBuilder()
	for _, list := range lists {
		kb.Row(keyboard.Button(
			fmt.Sprintf("%s (%d %s)", list.Name, len(list.UserIDs), formatting.PluralizeRecipients(len(list.UserIDs))),
			fmt.Sprintf("%s%d", BroadcastNew, list.ID)))
	}
	kb.Row(keyboard.Button("⬅️ Назад", BroadcastsView))

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        "👥 Выберите список получателей:",
		ReplyMarkup: kb.Build(),
	})
}

// HandleBroadcastCancel останавливает рассылку
func (h *Handler) HandleBroadcastCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	if _, err := h.requireBroadcastAdmin(ctx, callback.From.ID); err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	broadcastID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	outcome, err := h.BroadcastService.Cancel(ctx, broadcastID)
	if err != nil {
		h.Logger.Error("Cancel broadcast failed",
			zap.Int64("broadcast_id", broadcastID),
			zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	if outcome.Idempotent {
		common.AnswerCallback(ctx, b, callback.ID, "ℹ️ Рассылка уже завершена")
	} else {
		common.AnswerCallback(ctx, b, callback.ID, "✅ Рассылка остановлена")
	}
}

func broadcastStatusEmoji(status model.BroadcastStatus) string {
	switch status {
	case model.BroadcastStatusPending:
		return "⏳"
	case model.BroadcastStatusInProgress:
		return "📤"
	case model.BroadcastStatusCompleted:
		return "✅"
	case model.BroadcastStatusCancelled:
		return "🛑"
	default:
		return "❔"
	}
}

func truncateMessage(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
