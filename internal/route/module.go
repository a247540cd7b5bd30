// Package route реализует запросы маршрутов между станциями.
package route

import (
	"context"
	"net/http"

	"trainsys/client/internal/api"
	"trainsys/client/internal/form"
	"trainsys/client/internal/state"
	"trainsys/client/internal/view"
	"trainsys/client/internal/workflow"
)

const (
	OpDisplay       = "displayRoute"
	OpBestPath      = "findBestPath"
	OpAccessibility = "checkAccessibility"
)

// Предпочтения поиска лучшего маршрута.
const (
	PreferenceTime  = "time"
	PreferencePrice = "price"
)

// Module выполняет запросы маршрутов.
type Module struct {
	runner *workflow.Runner
}

// New создаёт модуль маршрутов.
func New(runner *workflow.Runner) *Module {
	return &Module{runner: runner}
}

// Operations возвращает операции модуля для state machine.
func (m *Module) Operations() map[string]state.Operation {
	return map[string]state.Operation{
		OpDisplay:       m.Display,
		OpBestPath:      m.BestPath,
		OpAccessibility: m.Accessibility,
	}
}

func stations(in form.Input) map[string]string {
	return map[string]string{
		"startStation": in.Value("startStation"),
		"endStation":   in.Value("endStation"),
	}
}

// Display показывает маршруты между станциями.
func (m *Module) Display(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "startStation", "endStation"); err != nil {
		return err
	}
	return m.runner.Query(ctx, view.TargetRoute, api.Request{
		Endpoint: "/route/display",
		Method:   http.MethodGet,
		Query:    stations(in),
	}, &view.RouteDisplay{})
}

// BestPath ищет лучший маршрут. Пустое предпочтение не передаётся,
// выбор по умолчанию остаётся за сервером.
func (m *Module) BestPath(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "startStation", "endStation"); err != nil {
		return err
	}
	query := stations(in)
	if preference := in.Value("preference"); preference != "" {
		query["preference"] = preference
	}
	return m.runner.Query(ctx, view.TargetBestPath, api.Request{
		Endpoint: "/route/best",
		Method:   http.MethodGet,
		Query:    query,
	}, &view.RoutePath{})
}

// Accessibility проверяет, достижима ли конечная станция.
func (m *Module) Accessibility(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "startStation", "endStation"); err != nil {
		return err
	}
	return m.runner.Query(ctx, view.TargetAccessibility, api.Request{
		Endpoint: "/route/accessibility",
		Method:   http.MethodGet,
		Query:    stations(in),
	}, &view.Accessibility{})
}
