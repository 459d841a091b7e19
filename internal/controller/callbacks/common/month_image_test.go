package common

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

func TestMonthFace_CoversCyrillic(t *testing.T) {
	// Заголовок, дни недели и "+N ещё" рисуются кириллицей —
	// шрифт обязан иметь эти глифы
	face := monthFace(cellFontSize)
	for _, r := range "Январь Пн Вс ещё" {
		_, ok := face.GlyphAdvance(r)
		assert.True(t, ok, "глиф %q отсутствует в шрифте", r)
	}
}

func TestGenerateMonthImage_ProducesValidPNG(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	lessons := []model.LessonRecord{
		{
			ID:              1,
			Subject:         "Математика",
			StartTime:       time.Date(2026, time.March, 5, 10, 0, 0, 0, loc),
			EndTime:         time.Date(2026, time.March, 5, 11, 0, 0, 0, loc),
			MaxStudents:     5,
			CurrentStudents: 2,
		},
	}

	data, err := GenerateMonthImage(2026, time.March, lessons, loc)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}
