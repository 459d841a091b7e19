package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/api"
	"github.com/kurochkindm/repetitor_bot/internal/app"
	"github.com/kurochkindm/repetitor_bot/internal/cache"
	"github.com/kurochkindm/repetitor_bot/internal/config"
	"github.com/kurochkindm/repetitor_bot/internal/controller"
	"github.com/kurochkindm/repetitor_bot/internal/events"
	"github.com/kurochkindm/repetitor_bot/internal/service"
)

const cacheRefreshInterval = 10 * time.Minute

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)

	defer logger.Sync()

	logger.Sugar().Infow("Starting repetitor bot",
		"environment", cfg.Environment,
		"api_base_url", cfg.APIBaseURL,
		"token_length", len(cfg.TelegramToken))

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("Invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Шина событий: сюда клиент публикует потерю авторизации
	bus := events.NewBus()
	bus.SubscribeUnauthorized(func(ev events.Unauthorized) {
		logger.Error("❌ API session expired, refresh the service account cookie",
			zap.Int("status", ev.Status),
			zap.String("method", ev.Method),
			zap.String("url", ev.URL))
	})

	client, err := api.NewClient(cfg.APIBaseURL, logger, bus, api.WithTimeout(cfg.HTTPTimeout))
	if err != nil {
		logger.Fatal("Failed to create API client", zap.Error(err))
	}
	if cfg.SessionCookie != "" {
		if err := client.SetSessionCookie("session", cfg.SessionCookie); err != nil {
			logger.Fatal("Failed to set session cookie", zap.Error(err))
		}
	}

	store := cache.NewStore(cfg.CacheTTL, logger)

	// Сервисы
	userService := service.NewUserService(client, cfg.BotUsername, logger)
	bookingService := service.NewBookingService(client, store, logger)
	creditService := service.NewCreditService(client, store, logger)
	broadcastService := service.NewBroadcastService(client, store, logger)

	// Фоновое обновление кэша
	refresher := app.NewRefresher(bookingService, store, cacheRefreshInterval, logger)
	refresher.Start(ctx)
	defer refresher.Stop()

	// Telegram bot
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(
		b,
		userService,
		bookingService,
		creditService,
		broadcastService,
		location,
		logger,
	)

	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	logger.Info("✅ Bot is running")
	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot shut down")
}
