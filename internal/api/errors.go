package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind классификация ошибок запросов к бэкенду
type ErrorKind string

const (
	KindUnauthorized  ErrorKind = "unauthorized"   // 401
	KindForbidden     ErrorKind = "forbidden"      // 403
	KindServerError   ErrorKind = "server_error"   // 5xx
	KindNetworkError  ErrorKind = "network_error"  // Таймауты, обрывы соединения
	KindClientError   ErrorKind = "client_error"   // Прочие 4xx
	KindBusinessLogic ErrorKind = "business_logic" // Доменные отказы (409/422)
	KindUnknown       ErrorKind = "unknown"
)

// Error ошибка запроса к бэкенду с классификацией
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Method     string
	URL        string
	Message    string // Сообщение из тела ответа (если было)
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s (%s)", e.Method, e.URL, e.Message, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v (%s)", e.Method, e.URL, e.Err, e.Kind)
	}
	return fmt.Sprintf("%s %s: status %d (%s)", e.Method, e.URL, e.StatusCode, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// kindForStatus переводит HTTP-статус в категорию ошибки
func kindForStatus(code int) ErrorKind {
	switch {
	case code == 401:
		return KindUnauthorized
	case code == 403:
		return KindForbidden
	case code >= 500:
		return KindServerError
	case code == 409 || code == 422:
		return KindBusinessLogic
	case code >= 400:
		return KindClientError
	default:
		return KindUnknown
	}
}

// Паттерны сетевых ошибок в текстах сообщений.
// Проверяются в первую очередь — до доменных паттернов вроде "not active".
var networkPatterns = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"unexpected eof",
}

// IsNetworkError проверяет что ошибка сетевая (подлежит повтору)
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindNetworkError {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range networkPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsRetryable проверяет что запрос имеет смысл повторить.
// 401 и 403 не повторяются никогда.
func IsRetryable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindNetworkError || apiErr.Kind == KindServerError
	}
	return IsNetworkError(err)
}

// IsBenignOutcome проверяет что ошибка означает "ресурс уже в целевом
// состоянии": конкурирующий клиент успел выполнить тот же переход раньше.
// Сопоставление по подстроке без учёта регистра — формулировка зависит от
// сервера, поэтому паттерн передаёт вызывающая сторона.
// TODO: заменить на структурный код ошибки, когда бэкенд начнёт его отдавать
func IsBenignOutcome(err error, pattern string) bool {
	if err == nil || pattern == "" {
		return false
	}
	// Сетевые ошибки проверяются раньше доменных: таймаут с совпавшим
	// текстом не должен считаться успехом
	if IsNetworkError(err) {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(pattern))
}

// IsCancellation проверяет что запрос отменён самим клиентом
// (размонтирование экрана, уход пользователя). Такие ошибки не логируются.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Kind возвращает категорию произвольной ошибки
func Kind(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	if IsNetworkError(err) {
		return KindNetworkError
	}
	return KindUnknown
}
