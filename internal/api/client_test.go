package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/events"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *events.Bus, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	bus := events.NewBus()
	client, err := NewClient(srv.URL, zap.NewNop(), bus,
		WithMaxRetries(2),
		WithRetryBase(time.Millisecond))
	require.NoError(t, err)
	return client, bus, srv
}

func TestClient_UnauthorizedPublishesOnlyRequestFields(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		// Сервер пытается подсунуть цель навигации — она не должна
		// просочиться в событие
		w.Header().Set("Location", "https://evil.example/login")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"session expired","redirect_url":"https://evil.example","session_id":"xyz"}`))
	})

	client, bus, _ := newTestClient(t, handler)

	var received []events.Unauthorized
	bus.SubscribeUnauthorized(func(ev events.Unauthorized) { received = append(received, ev) })

	_, err := client.Get(context.Background(), "/bookings/my", nil)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindUnauthorized, apiErr.Kind)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "401 не должен повторяться")

	require.Len(t, received, 1)
	assert.Equal(t, events.Unauthorized{Status: 401, Method: "GET", URL: "/bookings/my"}, received[0],
		"в событии только статус, метод и путь нашего запроса")
}

func TestClient_ServerErrorRetriedUpToCap(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client, _, _ := newTestClient(t, handler)

	_, err := client.Get(context.Background(), "/lessons", nil)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServerError, apiErr.Kind)
	// WithMaxRetries(2): первая попытка + два повтора
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ForbiddenNotRetried(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	})

	client, _, _ := newTestClient(t, handler)

	_, err := client.Get(context.Background(), "/broadcasts", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_RecoversAfterTransientServerError(t *testing.T) {
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":[{"user_id":"a","balance":3}]}`))
	})

	client, _, _ := newTestClient(t, handler)

	balances, err := client.GetAllCredits(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "a", balances[0].UserID)
	assert.Equal(t, 3, balances[0].Balance)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_CSRFTokenCachedAndClearedOn401(t *testing.T) {
	var seenTokens []string
	step := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		step++
		switch step {
		case 1: // GET выдаёт токен
			w.Header().Set(csrfHeader, "tok-1")
			w.Write([]byte(`[]`))
		case 2: // POST должен прислать закэшированный токен, ответ 401
			seenTokens = append(seenTokens, r.Header.Get(csrfHeader))
			w.WriteHeader(http.StatusUnauthorized)
		case 3: // После 401 токен сброшен
			seenTokens = append(seenTokens, r.Header.Get(csrfHeader))
			w.Write([]byte(`{}`))
		}
	})

	client, _, _ := newTestClient(t, handler)
	ctx := context.Background()

	_, err := client.Get(ctx, "/lessons", nil)
	require.NoError(t, err)

	_, err = client.Post(ctx, "/bookings", map[string]int64{"lesson_id": 1})
	require.Error(t, err)

	_, err = client.Post(ctx, "/bookings", map[string]int64{"lesson_id": 1})
	require.NoError(t, err)

	require.Len(t, seenTokens, 2)
	assert.Equal(t, "tok-1", seenTokens[0])
	assert.Equal(t, "", seenTokens[1], "после 401 CSRF-токен должен быть сброшен")
}

func TestClient_IdempotencyKeyStableAcrossRetries(t *testing.T) {
	var keys []string
	var calls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get(idempotencyHeader))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id":10,"lesson_id":1,"student_id":2,"status":"active"}`))
	})

	client, _, _ := newTestClient(t, handler)

	booking, err := client.CreateBooking(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), booking.ID)

	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1], "повтор запроса должен идти с тем же ключом идемпотентности")
}

func TestClient_BusinessErrorCarriesServerMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"booking is not active"}`))
	})

	client, _, _ := newTestClient(t, handler)

	err := client.CancelBooking(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, IsBenignOutcome(err, "not active"))
}
