package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/cache"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// CreditAPI запросы к бэкенду, нужные сервису кредитов
type CreditAPI interface {
	GetAllCredits(ctx context.Context) ([]model.CreditBalance, error)
	GetMyBalance(ctx context.Context) (*model.CreditBalance, error)
	GetCreditHistory(ctx context.Context, userID string) ([]model.CreditHistoryEntry, error)
}

// CreditService баланс и история кредитов. Оптимистичные изменения баланса
// делает координатор записей; здесь только чтение и сверка с сервером
type CreditService struct {
	client CreditAPI
	store  *cache.Store
	logger *zap.Logger
}

func NewCreditService(client CreditAPI, store *cache.Store, logger *zap.Logger) *CreditService {
	return &CreditService{
		client: client,
		store:  store,
		logger: logger,
	}
}

// GetMyBalance возвращает баланс пользователя (кэш → сеть).
// После инвалидации кэша оптимистичное значение заменяется серверным
func (s *CreditService) GetMyBalance(ctx context.Context) (*model.CreditBalance, error) {
	if cached, ok := s.store.Get(cache.KeyCredits); ok {
		if balance, ok := cached.(model.CreditBalance); ok {
			return &balance, nil
		}
	}

	balance, err := s.client.GetMyBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("get my balance: %w", err)
	}
	s.store.Set(cache.KeyCredits, *balance)
	return balance, nil
}

// GetAllBalances возвращает балансы всех пользователей (админский экран)
func (s *CreditService) GetAllBalances(ctx context.Context) ([]model.CreditBalance, error) {
	balances, err := s.client.GetAllCredits(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all balances: %w", err)
	}
	return balances, nil
}

// GetHistory возвращает историю операций пользователя целиком
func (s *CreditService) GetHistory(ctx context.Context, userID string) ([]model.CreditHistoryEntry, error) {
	history, err := s.client.GetCreditHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get credit history: %w", err)
	}
	return history, nil
}
