package calendar

import (
	"sort"
	"time"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// GridSize размер сетки месяца: 6 недель по 7 дней.
// Фиксированный размер покрывает любой месяц (максимум 31 день + 6 дней смещения).
const GridSize = 42

// MonthGrid строит сетку месяца из 42 последовательных дней.
// Сетка начинается с понедельника на/перед первым числом месяца и всегда
// захватывает хвост следующего месяца (и начало предыдущего, если месяц
// начался не с понедельника). Неделя начинается с понедельника:
// воскресенье даёт смещение 6, а не 0.
func MonthGrid(year int, month time.Month) [GridSize]Date {
	first := Date{Year: year, Month: month, Day: 1}

	offset := int(first.Weekday()) - 1
	if first.Weekday() == time.Sunday {
		offset = 6
	}

	var grid [GridSize]Date
	start := first.AddDays(-offset)
	for i := 0; i < GridSize; i++ {
		grid[i] = start.AddDays(i)
	}
	return grid
}

// BucketLessons раскладывает занятия по дням сетки.
// Занятие попадает в день D тогда и только тогда, когда его start_time,
// усечённый в зоне пользователя, равен D. Сравнение по UTC здесь было бы
// ошибкой: занятия около полуночи уезжали бы в соседний день для
// пользователей вне UTC. Внутри дня занятия отсортированы по времени начала.
func BucketLessons(grid [GridSize]Date, lessons []model.LessonRecord, loc *time.Location) map[Date][]model.LessonRecord {
	days := make(map[Date]bool, GridSize)
	for _, d := range grid {
		days[d] = true
	}

	buckets := make(map[Date][]model.LessonRecord)
	for _, lesson := range lessons {
		d := DateOf(lesson.StartTime, loc)
		if !days[d] {
			continue
		}
		buckets[d] = append(buckets[d], lesson)
	}

	for d := range buckets {
		bucket := buckets[d]
		sort.Slice(bucket, func(i, j int) bool {
			return bucket[i].StartTime.Before(bucket[j].StartTime)
		})
	}
	return buckets
}
