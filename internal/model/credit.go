package model

import "time"

// CreditBalance баланс кредитов пользователя (один скаляр на пользователя)
type CreditBalance struct {
	UserID  string `json:"user_id"`
	Balance int    `json:"balance"`
}

type CreditOperation string

const (
	CreditOperationPurchase CreditOperation = "purchase" // Пополнение
	CreditOperationBooking  CreditOperation = "booking"  // Списание за запись
	CreditOperationRefund   CreditOperation = "refund"   // Возврат за отмену
)

// CreditHistoryEntry одна операция по кредитам
type CreditHistoryEntry struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	Amount    int             `json:"amount"`
	Operation CreditOperation `json:"operation"`
	Comment   string          `json:"comment"`
	CreatedAt time.Time       `json:"created_at"`
}
