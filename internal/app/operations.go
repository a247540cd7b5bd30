package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"trainsys/client/internal/api"
	"trainsys/client/internal/config"
	"trainsys/client/internal/logging"
	"trainsys/client/internal/nav"
	"trainsys/client/internal/notify"
	"trainsys/client/internal/route"
	"trainsys/client/internal/session"
	"trainsys/client/internal/state"
	"trainsys/client/internal/ticket"
	"trainsys/client/internal/train"
	"trainsys/client/internal/user"
	"trainsys/client/internal/view"
	"trainsys/client/internal/workflow"
)

const (
	uiStopTimeout      = 3 * time.Second
	machineStopTimeout = 3 * time.Second
)

// Surface объединяет всё, что доменные модули ожидают от окна.
type Surface interface {
	nav.Surface
	view.Painter
	notify.Surface
	user.Presenter
	train.FormResetter
}

// Services содержит доменную часть клиента, не зависящую от Fyne.
type Services struct {
	Sessions *session.Store
	Notices  *notify.Channel
	Client   *api.Client
	Guard    *nav.Guard
	Users    *user.Module
	Trains   *train.Module
	Tickets  *ticket.Module
	Routes   *route.Module
	Context  *state.AppContext
	Machine  *state.Machine

	logger *logging.Logger
}

// Deps задаёт внешние зависимости Services.
type Deps struct {
	Config     *config.Config
	Logger     *logging.Logger
	Storage    session.Storage
	Surface    Surface
	HTTPClient *http.Client
	// OnExit вызывается state machine при выходе из приложения.
	OnExit func()
}

// NewServices собирает модули и регистрирует их операции в state machine.
func NewServices(deps Deps) (*Services, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("storage is nil")
	}
	if deps.Surface == nil {
		return nil, fmt.Errorf("surface is nil")
	}
	cfg := deps.Config
	logger := deps.Logger

	sessions := session.NewStore(deps.Storage, logger)
	notices := notify.NewChannel(deps.Surface, notify.Options{Duration: cfg.NoticeDuration, Logger: logger})
	client, err := api.New(cfg.APIBaseURL, api.Options{
		HTTPClient: deps.HTTPClient,
		Logger:     logger,
		Notifier:   notices,
		Tokens:     sessions,
		Timeout:    cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	appCtx := state.NewAppContext(cfg)
	guard := nav.NewGuard(appCtx, sessions, deps.Surface, logger)
	runner := workflow.New(client, notices, deps.Surface, logger)

	svc := &Services{
		Sessions: sessions,
		Notices:  notices,
		Client:   client,
		Guard:    guard,
		Users: user.New(runner, sessions, guard, user.Options{
			AdminPrivilege: cfg.AdminPrivilege,
			Presenter:      deps.Surface,
			Notices:        notices,
			NewToken:       uuid.NewString,
		}),
		Trains:  train.New(runner, deps.Surface),
		Tickets: ticket.New(runner),
		Routes:  route.New(runner),
		Context: appCtx,
		logger:  logger,
	}
	ops, err := svc.Operations()
	if err != nil {
		return nil, err
	}
	callbacks := state.Callbacks{
		Launch:        svc.launch,
		Navigate:      svc.navigate,
		Logout:        func(*state.AppContext) { svc.Users.Logout() },
		DismissNotice: func(*state.AppContext) { svc.Notices.Dismiss() },
		CleanupAndExit: func(*state.AppContext) {
			if deps.OnExit != nil {
				deps.OnExit()
			}
		},
	}
	svc.Machine = state.NewMachine(appCtx, logger, callbacks, ops)
	return svc, nil
}

// Operations объединяет операции всех модулей в один реестр.
func (s *Services) Operations() (map[string]state.Operation, error) {
	ops := make(map[string]state.Operation)
	sources := []map[string]state.Operation{
		s.Users.Operations(),
		s.Trains.Operations(),
		s.Tickets.Operations(),
		s.Routes.Operations(),
	}
	for _, source := range sources {
		for name, op := range source {
			if _, dup := ops[name]; dup {
				return nil, fmt.Errorf("operation %q registered twice", name)
			}
			ops[name] = op
		}
	}
	return ops, nil
}

func (s *Services) launch(ctx *state.AppContext) {
	s.Users.Restore()
	s.navigate(ctx, ctx.View())
}

func (s *Services) navigate(_ *state.AppContext, target state.View) {
	if _, err := s.Guard.Navigate(target); err != nil {
		s.logger.Errorf("navigate to %s: %v", target, err)
	}
}
