// Package train реализует добавление и просмотр поездов.
package train

import (
	"context"
	"net/http"
	"net/url"

	"trainsys/client/internal/api"
	"trainsys/client/internal/form"
	"trainsys/client/internal/state"
	"trainsys/client/internal/view"
	"trainsys/client/internal/workflow"
)

const (
	OpAddTrain   = "addTrain"
	OpQueryTrain = "queryTrain"

	// FormAddTrain называет форму, очищаемую после добавления поезда.
	FormAddTrain = "add-train"
)

// FormResetter очищает поля формы.
type FormResetter interface {
	ResetForm(name string)
}

// Module выполняет операции над поездами.
type Module struct {
	runner *workflow.Runner
	forms  FormResetter
}

// New создаёт модуль поездов; forms может быть nil.
func New(runner *workflow.Runner, forms FormResetter) *Module {
	return &Module{runner: runner, forms: forms}
}

// Operations возвращает операции модуля для state machine.
func (m *Module) Operations() map[string]state.Operation {
	return map[string]state.Operation{
		OpAddTrain:   m.AddTrain,
		OpQueryTrain: m.QueryTrain,
	}
}

// AddTrainRequest описывает тело POST /train.
type AddTrainRequest struct {
	TrainID      string     `json:"trainId"`
	SeatNum      form.Int   `json:"seatNum"`
	StationCount form.Int   `json:"stationCount"`
	Stations     []string   `json:"stations"`
	Durations    []form.Int `json:"durations"`
	Prices       []form.Int `json:"prices"`
}

// AddTrain добавляет поезд. Станции делятся по "/", длительности и цены
// ещё и разбираются как числа; проверку согласованности делает сервер.
func (m *Module) AddTrain(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "trainId", "seatNum", "stationCount", "stations", "durations", "prices"); err != nil {
		return err
	}
	err := m.runner.Mutate(ctx, api.Request{
		Endpoint: "/train",
		Method:   http.MethodPost,
		Body: AddTrainRequest{
			TrainID:      in.Value("trainId"),
			SeatNum:      in.Int("seatNum"),
			StationCount: in.Int("stationCount"),
			Stations:     in.List("stations"),
			Durations:    in.IntList("durations"),
			Prices:       in.IntList("prices"),
		},
	}, "Поезд добавлен")
	if err != nil {
		return err
	}
	if m.forms != nil {
		m.forms.ResetForm(FormAddTrain)
	}
	return nil
}

// QueryTrain показывает сведения о поезде.
func (m *Module) QueryTrain(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "trainId"); err != nil {
		return err
	}
	return m.runner.Query(ctx, view.TargetTrain, api.Request{
		Endpoint: "/train/" + url.PathEscape(in.Value("trainId")),
		Method:   http.MethodGet,
	}, &view.TrainInfo{})
}
