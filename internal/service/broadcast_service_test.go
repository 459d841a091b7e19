package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/api"
	"github.com/kurochkindm/repetitor_bot/internal/cache"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// fakeBroadcastAPI управляемый фейк бэкенда рассылок
type fakeBroadcastAPI struct {
	cancelErr   error
	cancelCalls int
}

func (f *fakeBroadcastAPI) GetBroadcastLists(context.Context) ([]model.BroadcastList, error) {
	return nil, nil
}
func (f *fakeBroadcastAPI) CreateBroadcastList(_ context.Context, name string, userIDs []int64) (*model.BroadcastList, error) {
	return &model.BroadcastList{ID: 1, Name: name}, nil
}
func (f *fakeBroadcastAPI) UpdateBroadcastList(context.Context, int64, string, []int64) error {
	return nil
}
func (f *fakeBroadcastAPI) DeleteBroadcastList(context.Context, int64) error {
	return nil
}
func (f *fakeBroadcastAPI) GetBroadcasts(context.Context) ([]model.Broadcast, error) {
	return nil, nil
}
func (f *fakeBroadcastAPI) CreateBroadcast(_ context.Context, listID int64, message string) (*model.Broadcast, error) {
	return &model.Broadcast{ID: 42, ListID: listID, Message: message, Status: model.BroadcastStatusPending}, nil
}
func (f *fakeBroadcastAPI) CancelBroadcast(context.Context, int64) error {
	f.cancelCalls++
	return f.cancelErr
}

func seededBroadcastStore(t *testing.T) *cache.Store {
	t.Helper()
	store := cache.NewStore(time.Minute, zap.NewNop())
	store.Set(cache.KeyBroadcasts, []model.Broadcast{
		{ID: 42, Status: model.BroadcastStatusInProgress},
	})
	return store
}

func TestBroadcastCancel_SuccessInvalidatesCache(t *testing.T) {
	store := seededBroadcastStore(t)
	svc := NewBroadcastService(&fakeBroadcastAPI{}, store, zap.NewNop())

	outcome, err := svc.Cancel(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, outcome.Idempotent)

	_, ok := store.Get(cache.KeyBroadcasts)
	assert.False(t, ok, "кэш рассылок должен стать устаревшим")
}

func TestBroadcastCancel_NotActiveIsIdempotentSuccess(t *testing.T) {
	store := seededBroadcastStore(t)
	client := &fakeBroadcastAPI{cancelErr: &api.Error{
		Kind: api.KindBusinessLogic, StatusCode: 409, Message: "Broadcast is NOT ACTIVE",
	}}
	svc := NewBroadcastService(client, store, zap.NewNop())

	outcome, err := svc.Cancel(context.Background(), 42)
	require.NoError(t, err, "\"not active\" — рассылка уже завершилась, это не ошибка")
	assert.True(t, outcome.Idempotent)
	assert.Equal(t, 1, client.cancelCalls)

	// Статус в кэше мог устареть — помечаем его к перечитыванию
	_, ok := store.Get(cache.KeyBroadcasts)
	assert.False(t, ok)
}

func TestBroadcastCancel_HardFailurePropagates(t *testing.T) {
	store := seededBroadcastStore(t)
	client := &fakeBroadcastAPI{cancelErr: errors.New("connection reset")}
	svc := NewBroadcastService(client, store, zap.NewNop())

	outcome, err := svc.Cancel(context.Background(), 42)
	require.Error(t, err)
	assert.Nil(t, outcome)

	// При жёстком сбое кэш не трогаем
	_, ok := store.Get(cache.KeyBroadcasts)
	assert.True(t, ok)
}
