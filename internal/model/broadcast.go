package model

import "time"

type BroadcastStatus string

const (
	BroadcastStatusPending    BroadcastStatus = "pending"     // Ожидает отправки
	BroadcastStatusInProgress BroadcastStatus = "in_progress" // Отправляется
	BroadcastStatusCompleted  BroadcastStatus = "completed"   // Завершена
	BroadcastStatusCancelled  BroadcastStatus = "cancelled"   // Отменена
)

// BroadcastList именованный список получателей рассылки
type BroadcastList struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	UserIDs []int64 `json:"user_ids"`
}

// Broadcast одна рассылка по списку получателей
type Broadcast struct {
	ID        int64           `json:"id"`
	ListID    int64           `json:"list_id"`
	Message   string          `json:"message"`
	Status    BroadcastStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsFinished проверяет что рассылка в терминальном статусе
func (b *Broadcast) IsFinished() bool {
	return b.Status == BroadcastStatusCompleted || b.Status == BroadcastStatusCancelled
}
