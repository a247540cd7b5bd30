package train

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainsys/client/internal/api"
	"trainsys/client/internal/form"
	"trainsys/client/internal/notify"
	"trainsys/client/internal/view"
	"trainsys/client/internal/workflow"
	"trainsys/client/internal/workflow/workflowtest"
)

type fakeForms struct{ reset []string }

func (f *fakeForms) ResetForm(name string) { f.reset = append(f.reset, name) }

func newModule() (*Module, *workflowtest.Caller, *workflowtest.Notifier, *workflowtest.Painter, *fakeForms) {
	notifier := &workflowtest.Notifier{}
	caller := workflowtest.NewCaller(notifier)
	painter := &workflowtest.Painter{}
	forms := &fakeForms{}
	return New(workflow.New(caller, notifier, painter, nil), forms), caller, notifier, painter, forms
}

func addTrainInput() form.Input {
	return form.Input{
		"trainId":      "G1",
		"seatNum":      "100",
		"stationCount": "3",
		"stations":     "A/B/C",
		"durations":    "10/20",
		"prices":       "5/8",
	}
}

func TestAddTrainPayload(t *testing.T) {
	m, caller, notifier, _, forms := newModule()

	require.NoError(t, m.AddTrain(context.Background(), addTrainInput()))

	requests := caller.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/train", requests[0].Endpoint)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	data, err := json.Marshal(requests[0].Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"trainId": "G1",
		"seatNum": 100,
		"stationCount": 3,
		"stations": ["A","B","C"],
		"durations": [10,20],
		"prices": [5,8]
	}`, string(data))
	assert.Equal(t, 1, notifier.Count(notify.SeveritySuccess))
	assert.Equal(t, []string{FormAddTrain}, forms.reset)
}

func TestAddTrainSendsMalformedNumbersAsNull(t *testing.T) {
	m, caller, _, _, _ := newModule()
	in := addTrainInput()
	in["seatNum"] = "many"
	in["prices"] = "5/x"

	require.NoError(t, m.AddTrain(context.Background(), in))

	data, err := json.Marshal(caller.Requests()[0].Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Nil(t, body["seatNum"])
	assert.Equal(t, []any{float64(5), nil}, body["prices"])
}

func TestAddTrainFailureKeepsForm(t *testing.T) {
	m, caller, notifier, painter, forms := newModule()
	caller.Fail("/train", &api.Error{Kind: api.KindServer, Status: http.StatusConflict, Message: "train exists"})

	err := m.AddTrain(context.Background(), addTrainInput())

	assert.Equal(t, api.KindServer, api.KindOf(err))
	assert.Empty(t, forms.reset)
	assert.Equal(t, 1, notifier.Count(notify.SeverityError))
	assert.Empty(t, painter.Cards())
}

func TestAddTrainValidation(t *testing.T) {
	m, caller, notifier, _, _ := newModule()
	in := addTrainInput()
	delete(in, "durations")

	err := m.AddTrain(context.Background(), in)

	assert.Equal(t, api.KindValidation, api.KindOf(err))
	assert.Empty(t, caller.Requests())
	assert.Contains(t, notifier.Notices()[0].Text, "durations")
}

func TestQueryTrain(t *testing.T) {
	m, caller, _, painter, _ := newModule()
	caller.Reply("/train/G1", `{"trainId":"G1","seatNum":100,"stationCount":3,"stations":["A","B","C"]}`)

	require.NoError(t, m.QueryTrain(context.Background(), form.Input{"trainId": " G1 "}))

	card, ok := painter.Last(view.TargetTrain)
	require.True(t, ok)
	assert.Equal(t, "A → B → C", card.Fields[3].Value)
}
