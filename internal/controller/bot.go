package controller

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks"
	"github.com/kurochkindm/repetitor_bot/internal/controller/handlers"
	"github.com/kurochkindm/repetitor_bot/internal/controller/state"
	"github.com/kurochkindm/repetitor_bot/internal/service"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	bookingService *service.BookingService,
	creditService *service.CreditService,
	broadcastService *service.BroadcastService,
	location *time.Location,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		userService,
		bookingService,
		creditService,
		broadcastService,
		stateManager,
		location,
		logger,
	)

	// Создаём обработчики команд; общие экраны берём у callback handler
	cmdHandlers := handlers.NewHandlers(
		userService,
		bookingService,
		creditService,
		broadcastService,
		stateManager,
		callbackHandler,
		location,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// /start матчим по префиксу: deep-link приходит как "/start <токен>"
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/calendar", bot.MatchTypeExact, c.handlers.HandleCalendar)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mylessons", bot.MatchTypeExact, c.handlers.HandleMyLessons)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mybookings", bot.MatchTypeExact, c.handlers.HandleMyBookings)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/credits", bot.MatchTypeExact, c.handlers.HandleCredits)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/teachers", bot.MatchTypeExact, c.handlers.HandleTeachers)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/link", bot.MatchTypeExact, c.handlers.HandleLink)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unlink", bot.MatchTypeExact, c.handlers.HandleUnlink)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Команды для администраторов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/broadcasts", bot.MatchTypeExact, c.handlers.HandleBroadcasts)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/newlist", bot.MatchTypeExact, c.handlers.HandleNewList)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "calendar", Description: "📅 Календарь занятий"},
		{Command: "mylessons", Description: "📚 Мои занятия"},
		{Command: "mybookings", Description: "📋 Мои записи"},
		{Command: "credits", Description: "💰 Баланс кредитов"},
		{Command: "teachers", Description: "👨‍🏫 Преподаватели"},
		{Command: "link", Description: "🔗 Привязать аккаунт"},
		{Command: "cancel", Description: "🛑 Отменить операцию"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
