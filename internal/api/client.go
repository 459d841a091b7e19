package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/events"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxRetries  = 3
	defaultRetryBase   = 500 * time.Millisecond
	csrfHeader         = "X-CSRF-Token"
	requestIDHeader    = "X-Request-ID"
	idempotencyHeader  = "Idempotency-Key"
	maxResponseBodyLen = 10 << 20 // 10 МБ
)

// Client клиент REST API платформы.
// Сессия кука-based (аналог credentials: include): jar хранит сессионную
// куку, CSRF-токен кэшируется из заголовка ответа и сбрасывается на 401.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	bus        *events.Bus

	maxRetries uint64
	retryBase  time.Duration

	csrfMu    sync.Mutex
	csrfToken string
}

// Option настройка клиента
type Option func(*Client)

// WithTimeout задаёт таймаут одного HTTP-запроса
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxRetries задаёт число повторов для сетевых ошибок и 5xx
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryBase задаёт базовую задержку экспоненциального backoff
func WithRetryBase(d time.Duration) Option {
	return func(c *Client) { c.retryBase = d }
}

// NewClient создаёт клиента API
func NewClient(baseURL string, logger *zap.Logger, bus *events.Bus, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: defaultTimeout,
		},
		logger:     logger,
		bus:        bus,
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetSessionCookie кладёт сессионную куку сервисного аккаунта в jar
func (c *Client) SetSessionCookie(name, value string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	c.httpClient.Jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	return nil
}

// errorBody форма тела ошибки, которую отдаёт бэкенд
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Get выполняет GET и возвращает сырое тело для нормализатора
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

// Post выполняет POST с JSON-телом и ключом идемпотентности
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, uuid.NewString())
}

// Put выполняет PUT с JSON-телом
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, nil, body, "")
}

// Delete выполняет DELETE
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "")
}

// do выполняет запрос с повторами для сетевых ошибок и 5xx.
// 401/403 не повторяются: 401 дополнительно сбрасывает CSRF-токен и
// публикует событие на шину.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, idempotencyKey string) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var result json.RawMessage
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		raw, err := c.roundTrip(ctx, method, path, fullURL, payload, idempotencyKey)
		if err != nil {
			if IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// roundTrip одна попытка запроса
func (c *Client) roundTrip(ctx context.Context, method, path, fullURL string, payload []byte, idempotencyKey string) (json.RawMessage, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(idempotencyHeader, idempotencyKey)
	}
	if method != http.MethodGet {
		if token := c.currentCSRFToken(); token != "" {
			req.Header.Set(csrfHeader, token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if IsCancellation(err) {
			return nil, &Error{Kind: KindUnknown, Method: method, URL: path, Err: context.Canceled}
		}
		return nil, &Error{Kind: KindNetworkError, Method: method, URL: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyLen))
	if err != nil {
		return nil, &Error{Kind: KindNetworkError, Method: method, URL: path, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Сбрасываем CSRF и публикуем событие. В событие попадают только
		// статус, метод и путь нашего же запроса — ничего из ответа сервера,
		// чтобы скомпрометированный бэкенд не управлял навигацией клиента
		c.clearCSRFToken()
		c.bus.PublishUnauthorized(events.Unauthorized{
			Status: resp.StatusCode,
			Method: method,
			URL:    path,
		})
	}

	if resp.StatusCode >= 400 {
		return nil, c.errorFromResponse(method, path, resp.StatusCode, raw)
	}

	if token := resp.Header.Get(csrfHeader); token != "" {
		c.storeCSRFToken(token)
	}

	return json.RawMessage(raw), nil
}

// errorFromResponse строит классифицированную ошибку из ответа сервера
func (c *Client) errorFromResponse(method, path string, status int, raw []byte) error {
	apiErr := &Error{
		Kind:       kindForStatus(status),
		StatusCode: status,
		Method:     method,
		URL:        path,
	}

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Error != "" {
			apiErr.Message = eb.Error
		} else if eb.Message != "" {
			apiErr.Message = eb.Message
		}
	}

	if apiErr.Kind != KindUnauthorized {
		c.logger.Warn("Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("kind", string(apiErr.Kind)))
	}
	return apiErr
}

func (c *Client) currentCSRFToken() string {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()
	return c.csrfToken
}

func (c *Client) storeCSRFToken(token string) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()
	c.csrfToken = token
}

func (c *Client) clearCSRFToken() {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()
	c.csrfToken = ""
}
