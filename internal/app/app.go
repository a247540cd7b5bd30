package app

import (
	"fmt"
	"sync"
	"time"

	"trainsys/client/internal/config"
	"trainsys/client/internal/logging"
	"trainsys/client/internal/state"
	"trainsys/client/internal/storage"
	"trainsys/client/internal/ui"
)

// Application связывает окно Fyne, state machine и хранилище сессии.
type Application struct {
	cfg       *config.Config
	logger    *logging.Logger
	storage   storage.Backend
	services  *Services
	ui        *ui.Manager
	shutdown  chan struct{}
	stopOnce  sync.Once
	closeOnce sync.Once
}

// New создаёт Application и настраивает state machine callbacks.
func New(cfg *config.Config, logger *logging.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	backend, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open session storage: %w", err)
	}
	app := &Application{
		cfg:      cfg,
		logger:   logger,
		storage:  backend,
		shutdown: make(chan struct{}),
	}
	app.ui = ui.NewManager(ui.Options{
		AppID:    "trainsys.client",
		AppName:  "Железнодорожная касса",
		Logger:   logger,
		Dispatch: app.dispatch,
	})
	services, err := NewServices(Deps{
		Config:  cfg,
		Logger:  logger,
		Storage: backend,
		Surface: app.ui,
		OnExit:  app.cleanupAndExit,
	})
	if err != nil {
		app.closeStorage()
		return nil, err
	}
	app.services = services
	return app, nil
}

// Run запускает state machine и инициирует сценарий старта.
func (a *Application) Run() error {
	if a.services == nil || a.services.Machine == nil {
		return fmt.Errorf("machine is not initialized")
	}
	a.ui.Start()
	a.services.Machine.Start()
	return a.dispatch(state.Event{Type: state.EventUILaunch, TS: time.Now()})
}

// RunUILoop запускает главный цикл Fyne и блокирует вызывающую горутину до выхода.
func (a *Application) RunUILoop() {
	if a.ui == nil {
		return
	}
	a.ui.RunMainLoop()
}

// Stop останавливает UI, state machine и закрывает хранилище.
func (a *Application) Stop() {
	a.stopOnce.Do(func() {
		if a.ui != nil {
			a.ui.Shutdown()
			if !a.ui.WaitAsync(uiStopTimeout) {
				a.logger.Errorf("ui background tasks did not finish before timeout")
			}
		}
		if a.services != nil {
			a.services.Notices.Dismiss()
			a.services.Machine.Stop()
			if !a.services.Machine.WaitAsync(machineStopTimeout) {
				a.logger.Errorf("state machine background tasks did not finish before timeout")
			}
		}
		a.closeStorage()
		close(a.shutdown)
	})
}

// Done возвращает канал, закрывающийся после полной остановки приложения.
func (a *Application) Done() <-chan struct{} {
	return a.shutdown
}

func (a *Application) dispatch(evt state.Event) error {
	if a.services == nil {
		return state.ErrMachineStopped
	}
	if err := a.services.Machine.Dispatch(evt); err != nil {
		a.logger.Errorf("dispatch %s failed: %v", evt.Type, err)
		return err
	}
	return nil
}

func (a *Application) cleanupAndExit() {
	a.logger.Infof("state machine requested shutdown")
	go a.Stop()
}

func (a *Application) closeStorage() {
	a.closeOnce.Do(func() {
		if a.storage == nil {
			return
		}
		if err := a.storage.Close(); err != nil {
			a.logger.Errorf("close session storage: %v", err)
		}
	})
}
