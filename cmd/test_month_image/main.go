package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

func main() {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		fmt.Printf("Ошибка загрузки зоны: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().In(loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	// Создаем тестовые занятия
	lessons := []model.LessonRecord{
		// Начало месяца
		{
			ID:              1,
			Subject:         "Математика",
			TeacherName:     "Анна Петрова",
			StartTime:       monthStart.AddDate(0, 0, 2).Add(9 * time.Hour),
			EndTime:         monthStart.AddDate(0, 0, 2).Add(10 * time.Hour),
			MaxStudents:     5,
			CurrentStudents: 2,
		},
		{
			ID:              2,
			Subject:         "Английский",
			TeacherName:     "Игорь Смирнов",
			StartTime:       monthStart.AddDate(0, 0, 2).Add(14 * time.Hour),
			EndTime:         monthStart.AddDate(0, 0, 2).Add(15 * time.Hour),
			MaxStudents:     3,
			CurrentStudents: 3, // мест нет
		},
		// Середина месяца, день с переполнением списка
		{
			ID:              3,
			Subject:         "Физика",
			TeacherName:     "Анна Петрова",
			StartTime:       monthStart.AddDate(0, 0, 14).Add(10 * time.Hour),
			EndTime:         monthStart.AddDate(0, 0, 14).Add(11 * time.Hour),
			MaxStudents:     5,
			CurrentStudents: 0,
		},
		{
			ID:              4,
			Subject:         "Химия",
			TeacherName:     "Игорь Смирнов",
			StartTime:       monthStart.AddDate(0, 0, 14).Add(12 * time.Hour),
			EndTime:         monthStart.AddDate(0, 0, 14).Add(13 * time.Hour),
			MaxStudents:     5,
			CurrentStudents: 1,
		},
		{
			ID:              5,
			Subject:         "Биология",
			TeacherName:     "Анна Петрова",
			StartTime:       monthStart.AddDate(0, 0, 14).Add(14 * time.Hour),
			EndTime:         monthStart.AddDate(0, 0, 14).Add(15 * time.Hour),
			MaxStudents:     5,
			CurrentStudents: 4,
		},
		{
			ID:              6,
			Subject:         "История",
			TeacherName:     "Игорь Смирнов",
			StartTime:       monthStart.AddDate(0, 0, 14).Add(16 * time.Hour),
			EndTime:         monthStart.AddDate(0, 0, 14).Add(17 * time.Hour),
			MaxStudents:     5,
			CurrentStudents: 5,
		},
		{
			ID:              7,
			Subject:         "География",
			TeacherName:     "Анна Петрова",
			StartTime:       monthStart.AddDate(0, 0, 14).Add(18 * time.Hour),
			EndTime:         monthStart.AddDate(0, 0, 14).Add(19 * time.Hour),
			MaxStudents:     5,
			CurrentStudents: 2,
		},
		// Конец месяца
		{
			ID:              8,
			Subject:         "Программирование",
			TeacherName:     "Игорь Смирнов",
			StartTime:       monthStart.AddDate(0, 1, -1).Add(11 * time.Hour),
			EndTime:         monthStart.AddDate(0, 1, -1).Add(12 * time.Hour),
			MaxStudents:     10,
			CurrentStudents: 7,
		},
	}

	// Генерируем изображение
	imageData, err := common.GenerateMonthImage(now.Year(), now.Month(), lessons, loc)
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	// Сохраняем в файл
	filename := "month.png"
	err = os.WriteFile(filename, imageData, 0644)
	if err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", filename)
	fmt.Printf("📅 Месяц: %02d.%d\n", int(now.Month()), now.Year())
	fmt.Printf("📊 Занятий: %d\n", len(lessons))
}
