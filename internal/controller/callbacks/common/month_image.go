package common

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/kurochkindm/repetitor_bot/internal/calendar"
	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks/common/formatting"
	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// Константы размеров и отступов
const (
	imageWidth      = 1120
	imageHeight     = 860
	headerHeight    = 80
	weekdayRowH     = 40
	cellPadding     = 6.0
	gridCols        = 7
	gridRows        = 6
	dayNumberOffset = 22.0
	lessonLineH     = 16.0
	maxLessonLines  = 4

	titleFontSize   = 30.0
	weekdayFontSize = 18.0
	cellFontSize    = 13.0
)

// Go Regular встроен в модуль и покрывает кириллицу —
// внешние .ttf-файлы картинке не нужны
var monthFont = mustParseFont(goregular.TTF)

func mustParseFont(data []byte) *truetype.Font {
	f, err := truetype.Parse(data)
	if err != nil {
		panic("failed to parse embedded font: " + err.Error())
	}
	return f
}

func monthFace(size float64) font.Face {
	return truetype.NewFace(monthFont, &truetype.Options{Size: size})
}

// Цветовая схема
var (
	monthBgColor      = color.RGBA{245, 246, 248, 255}
	monthTextColor    = color.RGBA{80, 85, 90, 255}
	weekdayTextColor  = color.RGBA{110, 115, 120, 255}
	cellBorderColor   = color.RGBA{210, 212, 215, 255}
	inMonthCellColor  = color.RGBA{255, 255, 255, 255}
	outMonthCellColor = color.RGBA{233, 234, 237, 255}
	todayCellColor    = color.RGBA{255, 228, 222, 255}
	lessonFreeColor   = color.RGBA{84, 130, 53, 255}
	lessonFullColor   = color.RGBA{160, 70, 80, 255}
	dayNumberColor    = color.RGBA{60, 64, 68, 255}
	outDayNumberColor = color.RGBA{150, 154, 158, 255}
	moreLessonsColor  = color.RGBA{120, 124, 128, 255}
)

// GenerateMonthImage рисует сетку месяца 6x7 с занятиями по дням.
// Дни соседних месяцев затенены, сегодняшний день подсвечен.
func GenerateMonthImage(year int, month time.Month, lessons []model.LessonRecord, loc *time.Location) ([]byte, error) {
	grid := calendar.MonthGrid(year, month)
	buckets := calendar.BucketLessons(grid, lessons, loc)
	today := calendar.DateOf(time.Now(), loc)

	dc := gg.NewContext(imageWidth, imageHeight)

	// Фон
	dc.SetColor(monthBgColor)
	dc.Clear()

	// Заголовок: месяц и год
	dc.SetFontFace(monthFace(titleFontSize))
	title := fmt.Sprintf("%s %d", formatting.GetMonthName(month), year)
	dc.SetColor(monthTextColor)
	dc.DrawStringAnchored(title, imageWidth/2, headerHeight/2, 0.5, 0.5)

	// Названия дней недели (неделя начинается с понедельника)
	dc.SetFontFace(monthFace(weekdayFontSize))
	cellW := float64(imageWidth) / gridCols
	for i := 0; i < gridCols; i++ {
		// Пн..Вс: индекс 0 -> понедельник
		weekday := (i + 1) % 7
		dc.SetColor(weekdayTextColor)
		dc.DrawStringAnchored(formatting.GetWeekdayShort(weekday),
			cellW*float64(i)+cellW/2, headerHeight+weekdayRowH/2, 0.5, 0.5)
	}

	gridTop := float64(headerHeight + weekdayRowH)
	cellH := (float64(imageHeight) - gridTop) / gridRows

	dc.SetFontFace(monthFace(cellFontSize))
	for i, day := range grid {
		col := i % gridCols
		row := i / gridCols
		x := cellW * float64(col)
		y := gridTop + cellH*float64(row)

		// Фон ячейки
		cellColor := inMonthCellColor
		numberColor := dayNumberColor
		if day.Month != month {
			cellColor = outMonthCellColor
			numberColor = outDayNumberColor
		}
		if day == today {
			cellColor = todayCellColor
		}
		dc.SetColor(cellColor)
		dc.DrawRectangle(x, y, cellW, cellH)
		dc.Fill()

		dc.SetColor(cellBorderColor)
		dc.DrawRectangle(x, y, cellW, cellH)
		dc.Stroke()

		// Номер дня
		dc.SetColor(numberColor)
		dc.DrawStringAnchored(fmt.Sprintf("%d", day.Day), x+cellPadding+8, y+dayNumberOffset/1.5, 0.5, 0.5)

		// Занятия дня (отсортированы по времени начала)
		dayLessons := buckets[day]
		for j, lesson := range dayLessons {
			if j == maxLessonLines {
				rest := len(dayLessons) - maxLessonLines
				dc.SetColor(moreLessonsColor)
				dc.DrawString(fmt.Sprintf("+%d ещё", rest), x+cellPadding, y+dayNumberOffset+lessonLineH*float64(j+1))
				break
			}

			lessonColor := lessonFreeColor
			if !lesson.HasFreeSeats() {
				lessonColor = lessonFullColor
			}
			label := fmt.Sprintf("%s %s", formatting.FormatTime(lesson.StartTime.In(loc)), truncate(lesson.Subject, 14))
			dc.SetColor(lessonColor)
			dc.DrawString(label, x+cellPadding, y+dayNumberOffset+lessonLineH*float64(j+1))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode month image: %w", err)
	}
	return buf.Bytes(), nil
}

// truncate обрезает строку до n рун
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
