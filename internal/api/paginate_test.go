package api

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePages строит PageFunc из готовых страниц и записывает порядок запросов
func fakePages(pages [][]int, requested *[]int) PageFunc[int] {
	total := len(pages)
	return func(_ context.Context, page int) (Page[int], error) {
		*requested = append(*requested, page)
		return Page[int]{
			Items: pages[page-1],
			Meta:  PageMeta{Page: page, TotalPages: total},
		}, nil
	}
}

func TestFetchAllPages_ConcatenatesInOrder(t *testing.T) {
	var requested []int
	pages := [][]int{{1, 2, 3}, {4, 5}, {6}}

	got, err := FetchAllPages(context.Background(), zap.NewNop(), "test", fakePages(pages, &requested))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, got)
	assert.Equal(t, []int{1, 2, 3}, requested, "страницы должны запрашиваться строго по порядку")
}

func TestFetchAllPages_EmptyMiddlePageDoesNotTerminate(t *testing.T) {
	var requested []int
	pages := [][]int{{1, 2}, {}, {3}}

	got, err := FetchAllPages(context.Background(), zap.NewNop(), "test", fakePages(pages, &requested))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Len(t, requested, 3, "пустая страница в середине не должна останавливать обход")
}

func TestFetchAllPages_SinglePage(t *testing.T) {
	var requested []int
	got, err := FetchAllPages(context.Background(), zap.NewNop(), "test", fakePages([][]int{{7}}, &requested))
	require.NoError(t, err)
	assert.Equal(t, []int{7}, got)
	assert.Equal(t, []int{1}, requested)
}

func TestFetchAllPages_ZeroTotalPagesStopsAfterFirst(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, page int) (Page[int], error) {
		calls++
		return Page[int]{Items: []int{}, Meta: PageMeta{Page: page, TotalPages: 0}}, nil
	}

	got, err := FetchAllPages(context.Background(), zap.NewNop(), "test", fetch)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, calls)
}

func TestFetchAllPages_ErrorAbortsWithoutPartialResult(t *testing.T) {
	boom := errors.New("server exploded")
	fetch := func(_ context.Context, page int) (Page[int], error) {
		if page == 2 {
			return Page[int]{}, boom
		}
		return Page[int]{Items: []int{1}, Meta: PageMeta{Page: page, TotalPages: 5}}, nil
	}

	got, err := FetchAllPages(context.Background(), zap.NewNop(), "test", fetch)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, got, "частичный результат не возвращается")
}

func TestFetchAllPages_CancellationNotLogged(t *testing.T) {
	core, logs := newObservedLogger()

	fetch := func(ctx context.Context, page int) (Page[int], error) {
		return Page[int]{}, context.Canceled
	}

	_, err := FetchAllPages(context.Background(), core, "test", fetch)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, logs.Len(), "отмена не должна попадать в логи")
}
