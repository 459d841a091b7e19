package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string        // Токен бота
	BotUsername   string        // Username бота для deep link привязки
	APIBaseURL    string        // Адрес REST API платформы
	SessionCookie string        // Сессионная кука сервисного аккаунта
	Environment   string        // production / development
	Timezone      string        // Зона для календаря и форматирования времени
	HTTPTimeout   time.Duration // Таймаут одного запроса к API
	CacheTTL      time.Duration // TTL записей query-кэша
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		BotUsername:   os.Getenv("BOT_USERNAME"),
		APIBaseURL:    os.Getenv("API_BASE_URL"),
		SessionCookie: os.Getenv("API_SESSION_COOKIE"),
		Environment:   os.Getenv("ENV"),
		Timezone:      os.Getenv("TIMEZONE"),
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Moscow"
	}
	cfg.HTTPTimeout = durationEnv("HTTP_TIMEOUT", 15*time.Second)
	cfg.CacheTTL = durationEnv("CACHE_TTL", 5*time.Minute)

	// Обязательные поля
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.BotUsername == "" {
		return nil, fmt.Errorf("BOT_USERNAME is required but not set")
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required but not set")
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

// durationEnv читает длительность из окружения с дефолтом
func durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %s", key, raw, def)
		return def
	}
	return d
}
