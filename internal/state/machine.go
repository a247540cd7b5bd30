package state

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"trainsys/client/internal/api"
	"trainsys/client/internal/form"
	"trainsys/client/internal/logging"
)

// State описывает жизненный цикл приложения.
type State string

const (
	StateAppStarting State = "AppStarting"
	StateRunning     State = "Running"
	StateExiting     State = "Exiting"
)

// EventType представляет собой тип события из очереди state machine.
type EventType string

const (
	EventUILaunch        EventType = "UI_LAUNCH"
	EventUINavigate      EventType = "UI_NAVIGATE"
	EventUISubmit        EventType = "UI_SUBMIT"
	EventUILogout        EventType = "UI_LOGOUT"
	EventUIDismissNotice EventType = "UI_DISMISS_NOTICE"
	EventUIExit          EventType = "UI_EXIT"
)

// Event инкапсулирует событие очереди и произвольную полезную нагрузку.
type Event struct {
	Type    EventType
	Payload any
	TS      time.Time
}

// NavigatePayload запрашивает переход в раздел.
type NavigatePayload struct {
	View View
}

// SubmitPayload передаёт значения формы именованной операции.
type SubmitPayload struct {
	Operation string
	Input     form.Input
}

// Operation выполняет одну пользовательскую операцию доменного модуля.
type Operation func(ctx context.Context, input form.Input) error

// Callbacks содержит функции, вызываемые state machine для побочных эффектов.
type Callbacks struct {
	Launch         func(ctx *AppContext)
	Navigate       func(ctx *AppContext, target View)
	Logout         func(ctx *AppContext)
	DismissNotice  func(ctx *AppContext)
	CleanupAndExit func(ctx *AppContext)
}

// Machine инкапсулирует event-loop и текущее состояние приложения.
// Навигация и выход выполняются в петле последовательно, операции форм
// запускаются в отдельных горутинах и не блокируют петлю.
type Machine struct {
	ctx        *AppContext
	callbacks  Callbacks
	operations map[string]Operation
	logger     *logging.Logger
	events     chan Event
	priority   chan Event
	done       chan struct{}
	stopped    atomic.Bool
	loopOnce   sync.Once
	stopOnce   sync.Once
	wg         sync.WaitGroup
	baseCtx    context.Context
	cancel     context.CancelFunc
}

// ErrMachineStopped возвращается при попытке отправить событие после остановки петли.
var ErrMachineStopped = errors.New("state machine stopped")

// NewMachine создаёт новый state machine в состоянии AppStarting.
func NewMachine(ctx *AppContext, logger *logging.Logger, callbacks Callbacks, operations map[string]Operation) *Machine {
	baseCtx, cancel := context.WithCancel(logging.WithContext(context.Background(), logger))
	ops := make(map[string]Operation, len(operations))
	for name, op := range operations {
		ops[name] = op
	}
	return &Machine{
		ctx:        ctx,
		callbacks:  callbacks,
		operations: ops,
		logger:     logger,
		events:     make(chan Event, 64),
		priority:   make(chan Event, 8),
		done:       make(chan struct{}),
		baseCtx:    baseCtx,
		cancel:     cancel,
	}
}

// Start запускает event-loop в отдельной горутине.
func (m *Machine) Start() {
	m.loopOnce.Do(func() {
		go m.loopSafely()
	})
}

// Stop завершает event-loop и отменяет контекст незавершённых операций.
func (m *Machine) Stop() {
	m.stopOnce.Do(func() {
		m.stopped.Store(true)
		m.cancel()
		close(m.done)
		close(m.priority)
		close(m.events)
	})
}

// WaitAsync ждёт завершения фоновых задач, запущенных state machine.
func (m *Machine) WaitAsync(timeout time.Duration) bool {
	if m == nil {
		return true
	}
	if timeout <= 0 {
		m.wg.Wait()
		return true
	}
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Dispatch отправляет событие в очередь state machine.
func (m *Machine) Dispatch(evt Event) error {
	if m.stopped.Load() {
		return ErrMachineStopped
	}
	m.logger.Debugf("event queued: %s", evt.Type)
	ch := m.events
	if evt.Type == EventUIExit {
		ch = m.priority
	}
	if m.safeSend(ch, evt) {
		return nil
	}
	return ErrMachineStopped
}

// Navigate ставит в очередь переход в раздел.
func (m *Machine) Navigate(target View) error {
	return m.Dispatch(Event{Type: EventUINavigate, Payload: NavigatePayload{View: target}})
}

// Submit ставит в очередь отправку формы.
func (m *Machine) Submit(operation string, input form.Input) error {
	return m.Dispatch(Event{Type: EventUISubmit, Payload: SubmitPayload{Operation: operation, Input: input}})
}

// Logout ставит в очередь выход из сессии.
func (m *Machine) Logout() error {
	return m.Dispatch(Event{Type: EventUILogout})
}

func (m *Machine) loop() {
	for {
		if m.stopped.Load() {
			return
		}

		select {
		case evt, ok := <-m.priority:
			if !ok {
				return
			}
			m.handleEvent(evt)
			continue
		default:
		}

		select {
		case evt, ok := <-m.priority:
			if !ok {
				return
			}
			m.handleEvent(evt)
		case evt, ok := <-m.events:
			if !ok {
				return
			}
			m.handleEvent(evt)
		}
	}
}

func (m *Machine) loopSafely() {
	defer m.logPanic("state loop")
	m.loop()
}

func (m *Machine) handleEvent(evt Event) {
	if evt.TS.IsZero() {
		evt.TS = time.Now()
	}
	state := m.ctx.State()
	m.logger.Debugf("event handle: %s state=%s", evt.Type, state)
	if evt.Type == EventUIExit {
		m.ctx.setState(StateExiting)
		m.invokeCleanup()
		return
	}

	switch state {
	case StateAppStarting:
		m.handleAppStarting(evt)
	case StateRunning:
		m.handleRunning(evt)
	default:
		m.logger.Debugf("event %s ignored in state %s", evt.Type, state)
	}
}

func (m *Machine) handleAppStarting(evt Event) {
	if evt.Type != EventUILaunch {
		m.logger.Debugf("event %s ignored before launch", evt.Type)
		return
	}
	m.ctx.setState(StateRunning)
	if m.callbacks.Launch != nil {
		m.callbacks.Launch(m.ctx)
	}
}

func (m *Machine) handleRunning(evt Event) {
	switch evt.Type {
	case EventUINavigate:
		payload, ok := evt.Payload.(NavigatePayload)
		if !ok {
			m.logger.Errorf("navigate event without payload")
			return
		}
		if m.callbacks.Navigate != nil {
			m.callbacks.Navigate(m.ctx, payload.View)
		}
	case EventUILogout:
		if m.callbacks.Logout != nil {
			m.callbacks.Logout(m.ctx)
		}
	case EventUIDismissNotice:
		if m.callbacks.DismissNotice != nil {
			m.callbacks.DismissNotice(m.ctx)
		}
	case EventUISubmit:
		payload, ok := evt.Payload.(SubmitPayload)
		if !ok {
			m.logger.Errorf("submit event without payload")
			return
		}
		m.invokeOperation(payload)
	default:
		m.logger.Debugf("event %s ignored in state %s", evt.Type, StateRunning)
	}
}

func (m *Machine) invokeOperation(payload SubmitPayload) {
	op, ok := m.operations[payload.Operation]
	if !ok {
		m.logger.Errorf("unknown operation %q", payload.Operation)
		return
	}
	input := make(form.Input, len(payload.Input))
	for k, v := range payload.Input {
		input[k] = v
	}
	m.runAsync(func() {
		err := op(m.baseCtx, input)
		if err == nil {
			m.ctx.SetLastError(nil)
			return
		}
		m.logger.Infof("operation %s failed: %v", payload.Operation, err)
		m.ctx.SetLastError(&ErrorInfo{
			Operation:        payload.Operation,
			Kind:             string(api.KindOf(err)),
			UserMessage:      api.UserMessage(err),
			TechnicalMessage: err.Error(),
			OccurredAt:       time.Now(),
		})
	})
}

func (m *Machine) runAsync(fn func()) {
	if fn == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.logPanic("async task")
		fn()
	}()
}

func (m *Machine) logPanic(scope string) {
	if r := recover(); r != nil {
		m.logger.Errorf("panic in %s: %v\n%s", scope, r, debug.Stack())
		panic(r)
	}
}

func (m *Machine) invokeCleanup() {
	if m.callbacks.CleanupAndExit != nil {
		m.callbacks.CleanupAndExit(m.ctx)
		return
	}
	if !m.stopped.Load() {
		m.Stop()
	}
}

// safeSend блокируется до отправки или остановки машины. Stop может
// закрыть ch в любой момент, паника отправки гасится.
func (m *Machine) safeSend(ch chan Event, evt Event) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case <-m.done:
		return false
	case ch <- evt:
		return true
	}
}
