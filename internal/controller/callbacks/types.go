package callbacks

import (
	"time"

	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/controller/state"
	"github.com/kurochkindm/repetitor_bot/internal/service"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService      *service.UserService
	BookingService   *service.BookingService
	CreditService    *service.CreditService
	BroadcastService *service.BroadcastService
	StateManager     *state.Manager
	Logger           *zap.Logger

	// Зона пользователя для календарной арифметики
	Location *time.Location
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	bookingService *service.BookingService,
	creditService *service.CreditService,
	broadcastService *service.BroadcastService,
	stateManager *state.Manager,
	location *time.Location,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		UserService:      userService,
		BookingService:   bookingService,
		CreditService:    creditService,
		BroadcastService: broadcastService,
		StateManager:     stateManager,
		Location:         location,
		Logger:           logger,
	}
}
