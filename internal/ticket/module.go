// Package ticket реализует выпуск, продажу и возврат билетов.
package ticket

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
	OpRelease        = "releaseTicket"
	OpExpire         = "expireTicket"
	OpQueryRemaining = "queryRemaining"
	OpBuy            = "buyTicket"
	OpRefund         = "refundTicket"
	OpQueryOrders    = "queryOrders"
)

// Module выполняет операции с билетами.
type Module struct {
	runner *workflow.Runner
}

// New создаёт модуль билетов.
func New(runner *workflow.Runner) *Module {
	return &Module{runner: runner}
}

// Operations возвращает операции модуля для state machine.
func (m *Module) Operations() map[string]state.Operation {
	return map[string]state.Operation{
		OpRelease:        m.Release,
		OpExpire:         m.Expire,
		OpQueryRemaining: m.QueryRemaining,
		OpBuy:            m.Buy,
		OpRefund:         m.Refund,
		OpQueryOrders:    m.QueryOrders,
	}
}

type scheduleRequest struct {
	TrainID string `json:"trainId"`
	Date    string `json:"date"`
}

type seatRequest struct {
	TrainID          string `json:"trainId"`
	Date             string `json:"date"`
	DepartureStation string `json:"departureStation"`
}

var seatFields = []string{"trainId", "date", "departureStation"}

func newSeatRequest(in form.Input) seatRequest {
	return seatRequest{
		TrainID:          in.Value("trainId"),
		Date:             in.Value("date"),
		DepartureStation: in.Value("departureStation"),
	}
}

// Release выпускает билеты на поезд и дату.
func (m *Module) Release(ctx context.Context, in form.Input) error {
	return m.schedule(ctx, in, "/ticket/release", "Билеты выпущены")
}

// Expire снимает билеты на поезд и дату с продажи.
func (m *Module) Expire(ctx context.Context, in form.Input) error {
	return m.schedule(ctx, in, "/ticket/expire", "Билеты сняты с продажи")
}

func (m *Module) schedule(ctx context.Context, in form.Input, endpoint, success string) error {
	if err := m.runner.Validate(in, "trainId", "date"); err != nil {
		return err
	}
	return m.runner.Mutate(ctx, api.Request{
		Endpoint: endpoint,
		Method:   http.MethodPost,
		Body:     scheduleRequest{TrainID: in.Value("trainId"), Date: in.Value("date")},
	}, success)
}

// QueryRemaining показывает число свободных мест.
func (m *Module) QueryRemaining(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, seatFields...); err != nil {
		return err
	}
	return m.runner.Query(ctx, view.TargetRemaining, api.Request{
		Endpoint: "/ticket/remaining",
		Method:   http.MethodGet,
		Query: map[string]string{
			"trainId":          in.Value("trainId"),
			"date":             in.Value("date"),
			"departureStation": in.Value("departureStation"),
		},
	}, &view.RemainingSeats{})
}

// Buy покупает билет.
func (m *Module) Buy(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, seatFields...); err != nil {
		return err
	}
	return m.runner.Mutate(ctx, api.Request{
		Endpoint: "/ticket/buy",
		Method:   http.MethodPost,
		Body:     newSeatRequest(in),
	}, "Билет куплен")
}

// Refund возвращает билет.
func (m *Module) Refund(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, seatFields...); err != nil {
		return err
	}
	return m.runner.Mutate(ctx, api.Request{
		Endpoint: "/ticket/refund",
		Method:   http.MethodPost,
		Body:     newSeatRequest(in),
	}, "Билет возвращён")
}

// QueryOrders показывает заказы текущего пользователя.
func (m *Module) QueryOrders(ctx context.Context, _ form.Input) error {
	return m.runner.Query(ctx, view.TargetOrders, api.Request{
		Endpoint: "/ticket/orders",
		Method:   http.MethodGet,
	}, &view.Orders{})
}
