package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/kurochkindm/repetitor_bot/internal/controller/callbacks"
	"github.com/kurochkindm/repetitor_bot/internal/controller/state"
	"github.com/kurochkindm/repetitor_bot/internal/service"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService      *service.UserService
	bookingService   *service.BookingService
	creditService    *service.CreditService
	broadcastService *service.BroadcastService
	stateManager     *state.Manager
	screens          *callbacks.Handler
	location         *time.Location
	logger           *zap.Logger
}

// NewHandlers создаёт новый обработчик команд.
// screens переиспользуется для экранов, общих с callback-навигацией
func NewHandlers(
	userService *service.UserService,
	bookingService *service.BookingService,
	creditService *service.CreditService,
	broadcastService *service.BroadcastService,
	stateManager *state.Manager,
	screens *callbacks.Handler,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:      userService,
		bookingService:   bookingService,
		creditService:    creditService,
		broadcastService: broadcastService,
		stateManager:     stateManager,
		screens:          screens,
		location:         location,
		logger:           logger,
	}
}
