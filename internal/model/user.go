package model

import "time"

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleTeacher   UserRole = "teacher"
	RoleModerator UserRole = "moderator" // Может вести занятия и управлять списками
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Role       UserRole  `json:"role"`
	TelegramID *int64    `json:"telegram_id"` // nil пока аккаунт не привязан
	CreatedAt  time.Time `json:"created_at"`
}

// FullName возвращает имя и фамилию одной строкой
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CanManageBroadcasts проверяет доступ к рассылкам
func (u *User) CanManageBroadcasts() bool {
	return u.Role == RoleAdmin
}
