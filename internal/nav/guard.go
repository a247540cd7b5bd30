// Package nav проверяет каждый переход между разделами по состоянию сессии.
package nav

import (
	"errors"
	"fmt"

	"trainsys/client/internal/logging"
	"trainsys/client/internal/state"
)

// ErrUnknownView возвращается при переходе в несуществующий раздел.
var ErrUnknownView = errors.New("nav: unknown view")

// Sessions сообщает, есть ли активная сессия.
type Sessions interface {
	IsAuthenticated() bool
}

// Surface показывает выбранный раздел.
type Surface interface {
	ShowView(v state.View)
}

var publicViews = map[state.View]struct{}{
	state.ViewLogin:    {},
	state.ViewRegister: {},
}

// IsPublic сообщает, доступен ли раздел без входа.
func IsPublic(v state.View) bool {
	_, ok := publicViews[v]
	return ok
}

// Guard выполняет переходы, перенаправляя неаутентифицированные попытки на login.
type Guard struct {
	app      *state.AppContext
	sessions Sessions
	surface  Surface
	logger   *logging.Logger
}

// NewGuard создаёт навигатор.
func NewGuard(app *state.AppContext, sessions Sessions, surface Surface, logger *logging.Logger) *Guard {
	return &Guard{app: app, sessions: sessions, surface: surface, logger: logger}
}

// Resolve возвращает раздел, в который фактически приведёт переход к target.
func (g *Guard) Resolve(target state.View) state.View {
	if IsPublic(target) {
		return target
	}
	if g.sessions != nil && g.sessions.IsAuthenticated() {
		return target
	}
	return state.ViewLogin
}

// Navigate выполняет переход и возвращает итоговый раздел.
// Переход в закрытый раздел без сессии завершается в login.
func (g *Guard) Navigate(target state.View) (state.View, error) {
	if !target.Known() {
		return g.app.View(), fmt.Errorf("%w: %q", ErrUnknownView, target)
	}
	resolved := g.Resolve(target)
	if resolved != target {
		g.logger.Infof("navigation to %s redirected to %s: no session", target, resolved)
	}
	g.app.SetView(resolved)
	if g.surface != nil {
		g.surface.ShowView(resolved)
	}
	return resolved, nil
}
