package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Состояния для создания рассылки
	StateBroadcastChooseList UserState = "broadcast_choose_list"
	StateBroadcastMessage    UserState = "broadcast_message"
	StateBroadcastConfirm    UserState = "broadcast_confirm"

	// Состояния для создания списка получателей
	StateListName UserState = "list_name"

	// Состояние ожидания токена привязки аккаунта
	StateEnteringLinkToken UserState = "entering_link_token"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога
}
