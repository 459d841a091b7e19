package api

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, KindUnauthorized},
		{403, KindForbidden},
		{404, KindClientError},
		{409, KindBusinessLogic},
		{422, KindBusinessLogic},
		{400, KindClientError},
		{500, KindServerError},
		{503, KindServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kindForStatus(tt.status), "status %d", tt.status)
	}
}

func TestIsRetryable_AuthErrorsNeverRetried(t *testing.T) {
	assert.False(t, IsRetryable(&Error{Kind: KindUnauthorized, StatusCode: 401}))
	assert.False(t, IsRetryable(&Error{Kind: KindForbidden, StatusCode: 403}))
	assert.False(t, IsRetryable(&Error{Kind: KindBusinessLogic, StatusCode: 409}))
	assert.False(t, IsRetryable(&Error{Kind: KindClientError, StatusCode: 404}))

	assert.True(t, IsRetryable(&Error{Kind: KindServerError, StatusCode: 503}))
	assert.True(t, IsRetryable(&Error{Kind: KindNetworkError, Err: errors.New("connection refused")}))
}

func TestIsBenignOutcome_CaseInsensitiveSubstring(t *testing.T) {
	notActive := &Error{Kind: KindBusinessLogic, StatusCode: 409, Message: "Booking is NOT ACTIVE"}
	assert.True(t, IsBenignOutcome(notActive, "not active"))

	other := &Error{Kind: KindBusinessLogic, StatusCode: 409, Message: "lesson is full"}
	assert.False(t, IsBenignOutcome(other, "not active"))

	assert.False(t, IsBenignOutcome(nil, "not active"))
	assert.False(t, IsBenignOutcome(notActive, ""))
}

func TestIsBenignOutcome_NetworkPatternWinsOverDomainPattern(t *testing.T) {
	// Порядок классификации: сетевые паттерны раньше доменных.
	// Таймаут, в тексте которого случайно встретился доменный паттерн,
	// не должен считаться идемпотентным успехом
	err := &Error{Kind: KindNetworkError, Err: errors.New("timeout waiting for not active check")}
	assert.False(t, IsBenignOutcome(err, "not active"))
	assert.True(t, IsRetryable(err))
}

func TestIsCancellation(t *testing.T) {
	assert.True(t, IsCancellation(context.Canceled))
	assert.True(t, IsCancellation(fmt.Errorf("do request: %w", context.Canceled)))
	assert.False(t, IsCancellation(errors.New("connection refused")))
	assert.False(t, IsCancellation(nil))
}

func TestErrorMessageIncludesKindAndPath(t *testing.T) {
	err := &Error{Kind: KindBusinessLogic, StatusCode: 409, Method: "POST", URL: "/bookings/7/cancel", Message: "booking is not active"}
	assert.Contains(t, err.Error(), "/bookings/7/cancel")
	assert.Contains(t, err.Error(), "booking is not active")
	assert.Contains(t, err.Error(), "business_logic")
}
