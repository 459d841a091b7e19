package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/api"
	"github.com/kurochkindm/repetitor_bot/internal/cache"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// BroadcastAPI запросы к бэкенду, нужные сервису рассылок
type BroadcastAPI interface {
	GetBroadcastLists(ctx context.Context) ([]model.BroadcastList, error)
	CreateBroadcastList(ctx context.Context, name string, userIDs []int64) (*model.BroadcastList, error)
	UpdateBroadcastList(ctx context.Context, id int64, name string, userIDs []int64) error
	DeleteBroadcastList(ctx context.Context, id int64) error
	GetBroadcasts(ctx context.Context) ([]model.Broadcast, error)
	CreateBroadcast(ctx context.Context, listID int64, message string) (*model.Broadcast, error)
	CancelBroadcast(ctx context.Context, id int64) error
}

// BroadcastService рассылки и списки получателей (админская функция)
type BroadcastService struct {
	client BroadcastAPI
	store  *cache.Store
	logger *zap.Logger
}

func NewBroadcastService(client BroadcastAPI, store *cache.Store, logger *zap.Logger) *BroadcastService {
	return &BroadcastService{
		client: client,
		store:  store,
		logger: logger,
	}
}

// GetLists возвращает все списки получателей
func (s *BroadcastService) GetLists(ctx context.Context) ([]model.BroadcastList, error) {
	return s.client.GetBroadcastLists(ctx)
}

// CreateList создаёт список получателей
func (s *BroadcastService) CreateList(ctx context.Context, name string, userIDs []int64) (*model.BroadcastList, error) {
	list, err := s.client.CreateBroadcastList(ctx, name, userIDs)
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	s.logger.Info("Broadcast list created",
		zap.Int64("list_id", list.ID),
		zap.String("name", name),
		zap.Int("recipients", len(userIDs)))
	return list, nil
}

// UpdateList обновляет имя и состав списка
func (s *BroadcastService) UpdateList(ctx context.Context, id int64, name string, userIDs []int64) error {
	return s.client.UpdateBroadcastList(ctx, id, name, userIDs)
}

// DeleteList удаляет список получателей
func (s *BroadcastService) DeleteList(ctx context.Context, id int64) error {
	if err := s.client.DeleteBroadcastList(ctx, id); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	s.logger.Info("Broadcast list deleted", zap.Int64("list_id", id))
	return nil
}

// GetBroadcasts возвращает рассылки (кэш → сеть)
func (s *BroadcastService) GetBroadcasts(ctx context.Context) ([]model.Broadcast, error) {
	if cached, ok := s.store.Get(cache.KeyBroadcasts); ok {
		if broadcasts, ok := cached.([]model.Broadcast); ok {
			return broadcasts, nil
		}
	}

	broadcasts, err := s.client.GetBroadcasts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get broadcasts: %w", err)
	}
	s.store.Set(cache.KeyBroadcasts, broadcasts)
	return broadcasts, nil
}

// Send ставит рассылку в очередь отправки
func (s *BroadcastService) Send(ctx context.Context, listID int64, message string) (*model.Broadcast, error) {
	broadcast, err := s.client.CreateBroadcast(ctx, listID, message)
	if err != nil {
		return nil, fmt.Errorf("create broadcast: %w", err)
	}

	s.store.Invalidate(cache.KeyBroadcasts)
	s.logger.Info("Broadcast queued",
		zap.Int64("broadcast_id", broadcast.ID),
		zap.Int64("list_id", listID),
		zap.String("status", string(broadcast.Status)))
	return broadcast, nil
}

// Cancel отменяет рассылку. "not active" от сервера означает, что рассылка
// уже завершилась или отменена — идемпотентный исход, не ошибка
func (s *BroadcastService) Cancel(ctx context.Context, id int64) (*MutationOutcome, error) {
	unlock := s.store.LockKey(fmt.Sprintf("broadcast:%d", id))
	defer unlock()

	err := s.client.CancelBroadcast(ctx, id)
	switch {
	case err == nil:
		s.store.Invalidate(cache.KeyBroadcasts)
		s.logger.Info("Broadcast cancelled", zap.Int64("broadcast_id", id))
		return &MutationOutcome{}, nil

	case api.IsBenignOutcome(err, patternNotActive):
		s.store.Invalidate(cache.KeyBroadcasts)
		return &MutationOutcome{Idempotent: true}, nil

	default:
		return nil, fmt.Errorf("cancel broadcast %d: %w", id, err)
	}
}
