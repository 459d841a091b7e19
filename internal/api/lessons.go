package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kurochkindm/repetitor_bot/internal/model"
)

// GetLessons возвращает занятия в интервале [from, to)
func (c *Client) GetLessons(ctx context.Context, from, to time.Time) ([]model.LessonRecord, error) {
	query := url.Values{
		"from": {from.UTC().Format(time.RFC3339)},
		"to":   {to.UTC().Format(time.RFC3339)},
	}
	raw, err := c.Get(ctx, "/lessons", query)
	if err != nil {
		return nil, fmt.Errorf("get lessons: %w", err)
	}

	lessons, _, err := DecodeCollection[model.LessonRecord](c.logger, "lessons", raw)
	if err != nil {
		return nil, fmt.Errorf("normalize lessons: %w", err)
	}
	return lessons, nil
}

// GetMyLessons возвращает занятия, на которые записан текущий пользователь
func (c *Client) GetMyLessons(ctx context.Context) ([]model.LessonRecord, error) {
	raw, err := c.Get(ctx, "/lessons/my", nil)
	if err != nil {
		return nil, fmt.Errorf("get my lessons: %w", err)
	}

	lessons, _, err := DecodeCollection[model.LessonRecord](c.logger, "lessons/my", raw)
	if err != nil {
		return nil, fmt.Errorf("normalize my lessons: %w", err)
	}
	return lessons, nil
}

// GetTeacherSchedule возвращает расписание учителя в интервале [from, to)
func (c *Client) GetTeacherSchedule(ctx context.Context, teacherID int64, from, to time.Time) ([]model.LessonRecord, error) {
	query := url.Values{
		"teacher_id": {strconv.FormatInt(teacherID, 10)},
		"from":       {from.UTC().Format(time.RFC3339)},
		"to":         {to.UTC().Format(time.RFC3339)},
	}
	raw, err := c.Get(ctx, "/teacher/schedule", query)
	if err != nil {
		return nil, fmt.Errorf("get teacher schedule: %w", err)
	}

	lessons, _, err := DecodeCollection[model.LessonRecord](c.logger, "teacher/schedule", raw)
	if err != nil {
		return nil, fmt.Errorf("normalize teacher schedule: %w", err)
	}
	return lessons, nil
}
