package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

func TestMonthGrid_AlwaysFortyTwoConsecutiveDays(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		grid := MonthGrid(2026, month)

		assert.Equal(t, time.Monday, grid[0].Weekday(),
			"грид %s должен начинаться с понедельника", month)

		for i := 1; i < GridSize; i++ {
			assert.Equal(t, grid[i-1].AddDays(1), grid[i],
				"дни должны идти подряд (%s, позиция %d)", month, i)
		}
	}
}

func TestMonthGrid_MonthStartingWednesday(t *testing.T) {
	// Июль 2026 начинается со среды
	grid := MonthGrid(2026, time.July)

	require.Equal(t, time.Wednesday, (Date{Year: 2026, Month: time.July, Day: 1}).Weekday())
	assert.Equal(t, Date{Year: 2026, Month: time.June, Day: 29}, grid[0])
	assert.Equal(t, Date{Year: 2026, Month: time.July, Day: 1}, grid[2],
		"первое число должно стоять третьим элементом")
}

func TestMonthGrid_SundayStartGivesOffsetSix(t *testing.T) {
	// Март 2026 начинается с воскресенья: смещение 6, а не 0
	grid := MonthGrid(2026, time.March)

	require.Equal(t, time.Sunday, (Date{Year: 2026, Month: time.March, Day: 1}).Weekday())
	assert.Equal(t, Date{Year: 2026, Month: time.February, Day: 23}, grid[0])
	assert.Equal(t, Date{Year: 2026, Month: time.March, Day: 1}, grid[6])
}

func TestMonthGrid_MondayStartHasNoLeadingDays(t *testing.T) {
	// Июнь 2026 начинается с понедельника
	grid := MonthGrid(2026, time.June)

	assert.Equal(t, Date{Year: 2026, Month: time.June, Day: 1}, grid[0])
	// Хвост следующего месяца присутствует всегда
	assert.Equal(t, time.July, grid[GridSize-1].Month)
}

func TestBucketLessons_MatchesLocalCalendarDate(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow") // UTC+3
	require.NoError(t, err)

	grid := MonthGrid(2026, time.March)

	// 23:30 UTC 4 марта = 02:30 5 марта по Москве: занятие должно попасть
	// в 5 марта, а не в 4-е
	lateLesson := model.LessonRecord{
		ID:        1,
		StartTime: time.Date(2026, time.March, 4, 23, 30, 0, 0, time.UTC),
	}
	buckets := BucketLessons(grid, []model.LessonRecord{lateLesson}, loc)

	march4 := Date{Year: 2026, Month: time.March, Day: 4}
	march5 := Date{Year: 2026, Month: time.March, Day: 5}
	assert.Empty(t, buckets[march4])
	require.Len(t, buckets[march5], 1)
	assert.Equal(t, int64(1), buckets[march5][0].ID)
}

func TestBucketLessons_SortedAscendingWithinDay(t *testing.T) {
	grid := MonthGrid(2026, time.March)
	day := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	lessons := []model.LessonRecord{
		{ID: 1, StartTime: day.Add(15 * time.Hour)},
		{ID: 2, StartTime: day.Add(9 * time.Hour)},
		{ID: 3, StartTime: day.Add(12 * time.Hour)},
	}
	buckets := BucketLessons(grid, lessons, time.UTC)

	bucket := buckets[Date{Year: 2026, Month: time.March, Day: 10}]
	require.Len(t, bucket, 3)
	assert.Equal(t, []int64{2, 3, 1}, []int64{bucket[0].ID, bucket[1].ID, bucket[2].ID})
}

func TestBucketLessons_LessonOutsideGridIgnored(t *testing.T) {
	grid := MonthGrid(2026, time.March)

	lessons := []model.LessonRecord{
		{ID: 1, StartTime: time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)},
	}
	buckets := BucketLessons(grid, lessons, time.UTC)
	assert.Empty(t, buckets)
}

func TestDateOf_TruncatesOnceInViewerZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)

	// 03:00 UTC 1 января = 22:00 31 декабря в UTC-5
	instant := time.Date(2026, time.January, 1, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, Date{Year: 2025, Month: time.December, Day: 31}, DateOf(instant, loc))
	assert.Equal(t, Date{Year: 2026, Month: time.January, Day: 1}, DateOf(instant, time.UTC))
}
