package common

import (
	"errors"

	"github.com/kurochkindm/repetitor_bot/internal/api"
)

// Общие ошибки для обработчиков
var (
	ErrUserNotLinked   = errors.New("telegram account not linked")
	ErrNotAnAdmin      = errors.New("user is not an admin")
	ErrNoMessage       = errors.New("no message in callback")
	ErrInvalidFormat   = errors.New("invalid callback format")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrListNotFound    = errors.New("broadcast list not found")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotLinked):
		return "❌ Аккаунт не привязан. Откройте ссылку привязки из личного кабинета"
	case errors.Is(err, ErrNotAnAdmin):
		return "❌ Эта функция доступна только администраторам"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	case errors.Is(err, ErrLessonNotFound):
		return "❌ Занятие не найдено"
	case errors.Is(err, ErrBookingNotFound):
		return "❌ Запись не найдена"
	case errors.Is(err, ErrListNotFound):
		return "❌ Список получателей не найден"
	}

	switch api.Kind(err) {
	case api.KindUnauthorized:
		return "❌ Сессия истекла. Попробуйте позже"
	case api.KindForbidden:
		return "❌ Недостаточно прав для этого действия"
	case api.KindNetworkError, api.KindServerError:
		return "❌ Сервер недоступен. Попробуйте ещё раз"
	case api.KindBusinessLogic:
		// Доменный отказ — показываем текст сервера как есть
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "❌ " + apiErr.Message
		}
		return "❌ Действие сейчас недоступно"
	default:
		return "❌ Произошла ошибка"
	}
}
