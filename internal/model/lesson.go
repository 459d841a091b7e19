package model

import "time"

type LessonRecord struct {
	ID              int64     `json:"id"`
	Subject         string    `json:"subject"`
	TeacherID       int64     `json:"teacher_id"`
	TeacherName     string    `json:"teacher_name"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	MaxStudents     int       `json:"max_students"`
	CurrentStudents int       `json:"current_students"`
	Color           string    `json:"color"`
}

// HasFreeSeats проверяет есть ли свободные места на занятии
func (l *LessonRecord) HasFreeSeats() bool {
	return l.CurrentStudents < l.MaxStudents
}
