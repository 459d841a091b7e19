package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/api"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// UserAPI запросы к бэкенду, нужные сервису пользователей
type UserAPI interface {
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetStudentsAll(ctx context.Context) ([]model.User, error)
	GetAssignableTeachers(ctx context.Context) ([]model.User, error)
	RequestLinkToken(ctx context.Context, userID int64) (*model.TelegramLinkToken, error)
	ConfirmLink(ctx context.Context, token string, telegramID int64) (*model.User, error)
	UnlinkTelegram(ctx context.Context, telegramID int64) error
}

// UserService пользователи платформы и привязка Telegram-аккаунтов
type UserService struct {
	client      UserAPI
	botUsername string
	logger      *zap.Logger
}

func NewUserService(client UserAPI, botUsername string, logger *zap.Logger) *UserService {
	return &UserService{
		client:      client,
		botUsername: botUsername,
		logger:      logger,
	}
}

// GetByTelegramID возвращает пользователя платформы (nil если не привязан)
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.client.GetUserByTelegramID(ctx, telegramID)
}

// GetStudents возвращает всех студентов
func (s *UserService) GetStudents(ctx context.Context) ([]model.User, error) {
	return s.client.GetStudentsAll(ctx)
}

// GetAssignableTeachers возвращает объединённый список преподавателей
func (s *UserService) GetAssignableTeachers(ctx context.Context) ([]model.User, error) {
	return s.client.GetAssignableTeachers(ctx)
}

// BuildLinkDeepLink запрашивает токен привязки и строит ссылку t.me
func (s *UserService) BuildLinkDeepLink(ctx context.Context, userID int64) (string, error) {
	token, err := s.client.RequestLinkToken(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("request link token: %w", err)
	}

	link := api.DeepLink(s.botUsername, token.Token)
	s.logger.Info("Link token issued",
		zap.Int64("user_id", userID),
		zap.Time("expires_at", token.ExpiresAt))
	return link, nil
}

// ConfirmLink подтверждает привязку по токену из /start
func (s *UserService) ConfirmLink(ctx context.Context, token string, telegramID int64) (*model.User, error) {
	user, err := s.client.ConfirmLink(ctx, token, telegramID)
	if err != nil {
		return nil, fmt.Errorf("confirm link: %w", err)
	}

	s.logger.Info("Telegram account linked",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID))
	return user, nil
}

// Unlink отвязывает Telegram-аккаунт
func (s *UserService) Unlink(ctx context.Context, telegramID int64) error {
	if err := s.client.UnlinkTelegram(ctx, telegramID); err != nil {
		return fmt.Errorf("unlink telegram: %w", err)
	}
	s.logger.Info("Telegram account unlinked", zap.Int64("telegram_id", telegramID))
	return nil
}
