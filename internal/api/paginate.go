package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// PageMeta метаданные страничного ответа
type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// Page одна страница списочного эндпоинта
type Page[T any] struct {
	Items []T
	Meta  PageMeta
}

// PageFunc загружает одну страницу
type PageFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// FetchAllPages выкачивает список целиком, страница за страницей.
// Страницы запрашиваются строго последовательно по возрастанию номера —
// порядок записей сохраняется, и бэкенд не получает залп параллельных
// запросов. Пустая страница не прерывает обход: остановка только по
// total_pages. Ошибка любой страницы отменяет всю операцию — частичный
// результат не возвращается.
func FetchAllPages[T any](ctx context.Context, logger *zap.Logger, resource string, fetch PageFunc[T]) ([]T, error) {
	all := []T{}
	page := 1

	for {
		p, err := fetch(ctx, page)
		if err != nil {
			// Отмена — штатное действие вызывающей стороны, не сбой
			if !IsCancellation(err) {
				logger.Warn("Page fetch failed",
					zap.String("resource", resource),
					zap.Int("page", page),
					zap.Error(err))
			}
			return nil, fmt.Errorf("fetch %s page %d: %w", resource, page, err)
		}

		all = append(all, p.Items...)

		if p.Meta.TotalPages <= 0 || page >= p.Meta.TotalPages {
			logger.Debug("Fetched all pages",
				zap.String("resource", resource),
				zap.Int("pages", page),
				zap.Int("items", len(all)))
			return all, nil
		}
		page++
	}
}
