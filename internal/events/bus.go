package events

import (
	"sync"
)

// Unauthorized событие ответа 401 от бэкенда.
// Поля берутся только из запроса, который отправил сам клиент. Ничего из тела
// или заголовков ответа (Location, redirect_url и т.п.) сюда попадать не должно:
// подписчики реагируют только на жёстко заданные назначения.
type Unauthorized struct {
	Status int
	Method string
	URL    string
}

// UnauthorizedHandler обработчик события Unauthorized
type UnauthorizedHandler func(Unauthorized)

// Bus типизированная шина событий авторизации.
// Заменяет глобальный браузерный CustomEvent явным интерфейсом подписки.
type Bus struct {
	mu       sync.RWMutex
	handlers []UnauthorizedHandler
}

func NewBus() *Bus {
	return &Bus{}
}

// SubscribeUnauthorized регистрирует обработчик событий 401
func (b *Bus) SubscribeUnauthorized(h UnauthorizedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// PublishUnauthorized доставляет событие всем подписчикам синхронно,
// в порядке подписки
func (b *Bus) PublishUnauthorized(ev Unauthorized) {
	b.mu.RLock()
	handlers := make([]UnauthorizedHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
