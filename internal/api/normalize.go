package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// PayloadFormat форма ответа бэкенда.
// Бэкенд отдаёт коллекции в нескольких вариантах обёртки, и форма может
// меняться между эндпоинтами и версиями. Вместо утиной типизации по месту —
// один классификатор с явным тегом формы.
type PayloadFormat string

const (
	FormatArray           PayloadFormat = "array"            // Массив верхнего уровня
	FormatPaginated       PayloadFormat = "paginated"        // {"data": [...]}
	FormatNestedPaginated PayloadFormat = "nested_paginated" // {"data": {"data": [...]}}
	FormatBalances        PayloadFormat = "balances"         // {"balances": [...]}
	FormatUnknown         PayloadFormat = "unknown"
)

// envelope зондирует обёртку ответа без декодирования записей
type envelope struct {
	Data     json.RawMessage `json:"data"`
	Balances json.RawMessage `json:"balances"`
}

// isJSONArray проверяет что сырое значение — массив
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// isJSONObject проверяет что сырое значение — объект
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// DetectFormat классифицирует форму ответа и возвращает сырой массив записей.
// Порядок проверок фиксирован: массив → data → data.data → balances → unknown.
// Пустое тело и null дают unknown с пустой коллекцией, без ошибки.
func DetectFormat(raw json.RawMessage) (PayloadFormat, json.RawMessage) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return FormatUnknown, nil
	}

	if isJSONArray(trimmed) {
		return FormatArray, trimmed
	}

	if !isJSONObject(trimmed) {
		return FormatUnknown, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return FormatUnknown, nil
	}

	if isJSONArray(env.Data) {
		return FormatPaginated, env.Data
	}

	if isJSONObject(env.Data) {
		var inner envelope
		if err := json.Unmarshal(env.Data, &inner); err == nil && isJSONArray(inner.Data) {
			return FormatNestedPaginated, inner.Data
		}
	}

	if isJSONArray(env.Balances) {
		return FormatBalances, env.Balances
	}

	return FormatUnknown, nil
}

// DecodeCollection нормализует ответ произвольной формы в плоский список
// записей. Записи декодируются целиком, без фильтрации полей.
func DecodeCollection[T any](logger *zap.Logger, resource string, raw json.RawMessage) ([]T, PayloadFormat, error) {
	format, records := DetectFormat(raw)
	if records == nil {
		logger.Debug("Normalized response",
			zap.String("resource", resource),
			zap.String("format", string(format)),
			zap.Int("count", 0))
		return []T{}, format, nil
	}

	var out []T
	if err := json.Unmarshal(records, &out); err != nil {
		return nil, format, fmt.Errorf("decode %s records: %w", resource, err)
	}
	if out == nil {
		out = []T{}
	}

	logger.Debug("Normalized response",
		zap.String("resource", resource),
		zap.String("format", string(format)),
		zap.Int("count", len(out)))

	return out, format, nil
}
