package state

import (
	"sync"
	"time"

	"trainsys/client/internal/config"
)

// View идентифицирует раздел интерфейса.
type View string

const (
	ViewLogin            View = "login"
	ViewRegister         View = "register"
	ViewQueryRemaining   View = "query-remaining"
	ViewBuyTicket        View = "buy-ticket"
	ViewRefundTicket     View = "refund-ticket"
	ViewMyOrders         View = "my-orders"
	ViewRouteQuery       View = "route-query"
	ViewAddTrain         View = "add-train"
	ViewQueryTrain       View = "query-train"
	ViewTicketManagement View = "ticket-management"
	ViewUserManagement   View = "user-management"
)

// Views перечисляет все разделы в порядке навигационного меню.
var Views = []View{
	ViewLogin,
	ViewRegister,
	ViewQueryRemaining,
	ViewBuyTicket,
	ViewRefundTicket,
	ViewMyOrders,
	ViewRouteQuery,
	ViewAddTrain,
	ViewQueryTrain,
	ViewTicketManagement,
	ViewUserManagement,
}

var adminViews = map[View]struct{}{
	ViewAddTrain:         {},
	ViewQueryTrain:       {},
	ViewTicketManagement: {},
	ViewUserManagement:   {},
}

// Known сообщает, существует ли такой раздел.
func (v View) Known() bool {
	for _, known := range Views {
		if known == v {
			return true
		}
	}
	return false
}

// AdminOnly сообщает, показывается ли пункт меню только администраторам.
// Доступ к разделу проверяется только по наличию сессии.
func (v View) AdminOnly() bool {
	_, ok := adminViews[v]
	return ok
}

// ErrorInfo описывает последнюю неудачную операцию для UI и логов.
type ErrorInfo struct {
	Operation        string
	Kind             string
	UserMessage      string
	TechnicalMessage string
	OccurredAt       time.Time
}

// AppContext содержит изменяемое состояние приложения: текущий раздел
// и последнюю ошибку. Сессия хранится отдельно в session.Store.
type AppContext struct {
	Config *config.Config

	mu        sync.RWMutex
	view      View
	lastError *ErrorInfo
	state     State
}

// NewAppContext создаёт контекст в начальном разделе login.
func NewAppContext(cfg *config.Config) *AppContext {
	return &AppContext{
		Config: cfg,
		view:   ViewLogin,
		state:  StateAppStarting,
	}
}

// View возвращает текущий раздел.
func (ctx *AppContext) View() View {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.view
}

// SetView фиксирует переход в раздел.
func (ctx *AppContext) SetView(v View) {
	ctx.mu.Lock()
	ctx.view = v
	ctx.mu.Unlock()
}

// LastError возвращает копию последней ошибки.
func (ctx *AppContext) LastError() *ErrorInfo {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	if ctx.lastError == nil {
		return nil
	}
	info := *ctx.lastError
	return &info
}

// SetLastError запоминает ошибку; nil сбрасывает её.
func (ctx *AppContext) SetLastError(info *ErrorInfo) {
	ctx.mu.Lock()
	ctx.lastError = info
	ctx.mu.Unlock()
}

// State возвращает состояние жизненного цикла приложения.
func (ctx *AppContext) State() State {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.state
}

func (ctx *AppContext) setState(s State) {
	ctx.mu.Lock()
	ctx.state = s
	ctx.mu.Unlock()
}

// AdminPrivilege возвращает порог прав администратора.
func (ctx *AppContext) AdminPrivilege() int {
	if ctx.Config == nil || ctx.Config.AdminPrivilege <= 0 {
		return config.DefaultAdminPrivilege
	}
	return ctx.Config.AdminPrivilege
}
