package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

func TestDetectFormat_PriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want PayloadFormat
	}{
		{"массив верхнего уровня", `[{"user_id":"a","balance":1}]`, FormatArray},
		{"обёртка data", `{"data":[{"user_id":"a","balance":1}]}`, FormatPaginated},
		{"двойная обёртка data.data", `{"data":{"data":[{"user_id":"a","balance":1}],"meta":{}}}`, FormatNestedPaginated},
		{"обёртка balances", `{"balances":[{"user_id":"a","balance":1}]}`, FormatBalances},
		{"пустой объект", `{}`, FormatUnknown},
		{"null", `null`, FormatUnknown},
		{"пустое тело", ``, FormatUnknown},
		{"скаляр", `42`, FormatUnknown},
		{"data-скаляр", `{"data":42}`, FormatUnknown},
		// data имеет приоритет над balances
		{"data и balances вместе", `{"data":[1],"balances":[2]}`, FormatPaginated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, _ := DetectFormat(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, format)
		})
	}
}

func TestDecodeCollection_AllShapesYieldSameRecords(t *testing.T) {
	logger := zap.NewNop()
	shapes := map[string]string{
		"array":            `[{"user_id":"a","balance":1},{"user_id":"b","balance":5}]`,
		"paginated":        `{"data":[{"user_id":"a","balance":1},{"user_id":"b","balance":5}]}`,
		"nested_paginated": `{"data":{"data":[{"user_id":"a","balance":1},{"user_id":"b","balance":5}],"meta":{"page":1}}}`,
		"balances":         `{"balances":[{"user_id":"a","balance":1},{"user_id":"b","balance":5}]}`,
	}

	for name, raw := range shapes {
		t.Run(name, func(t *testing.T) {
			got, format, err := DecodeCollection[model.CreditBalance](logger, "credits", json.RawMessage(raw))
			require.NoError(t, err)
			assert.Equal(t, PayloadFormat(name), format)
			require.Len(t, got, 2)
			assert.Equal(t, model.CreditBalance{UserID: "a", Balance: 1}, got[0])
			assert.Equal(t, model.CreditBalance{UserID: "b", Balance: 5}, got[1])
		})
	}
}

func TestDecodeCollection_UnknownShapesGiveEmptyList(t *testing.T) {
	logger := zap.NewNop()
	for _, raw := range []string{`{}`, `null`, ``, `{"something":"else"}`} {
		got, format, err := DecodeCollection[model.CreditBalance](logger, "credits", json.RawMessage(raw))
		require.NoError(t, err, "форма %q не должна давать ошибку", raw)
		assert.Equal(t, FormatUnknown, format)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestDecodeCollection_NestedPaginatedExample(t *testing.T) {
	// Пример из документации API: data.data с одной записью
	raw := `{"data":{"data":[{"user_id":"a","balance":1}],"meta":{}}}`

	got, format, err := DecodeCollection[model.CreditBalance](zap.NewNop(), "credits", json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, FormatNestedPaginated, format)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].UserID)
	assert.Equal(t, 1, got[0].Balance)
}

func TestDecodeCollection_MalformedRecordsPropagateError(t *testing.T) {
	raw := `{"data":[{"user_id":"a","balance":"не число"}]}`

	_, _, err := DecodeCollection[model.CreditBalance](zap.NewNop(), "credits", json.RawMessage(raw))
	assert.Error(t, err)
}
