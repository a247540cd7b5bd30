// Package user реализует вход, регистрацию и управление пользователями.
package user

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"trainsys/client/internal/api"
	"trainsys/client/internal/form"
	"trainsys/client/internal/notify"
	"trainsys/client/internal/session"
	"trainsys/client/internal/state"
	"trainsys/client/internal/view"
	"trainsys/client/internal/workflow"
)

// Имена операций для реестра state machine.
const (
	OpLogin           = "login"
	OpRegister        = "register"
	OpQueryUser       = "queryUser"
	OpModifyPrivilege = "modifyPrivilege"
	OpModifyPassword  = "modifyPassword"
)

// Разделы, в которые попадает пользователь после входа.
const (
	AdminLanding = state.ViewAddTrain
	UserLanding  = state.ViewQueryRemaining
)

// Sessions описывает часть session.Store, нужную модулю.
type Sessions interface {
	Set(token string, identity session.Identity)
	Get() session.Session
	Clear()
}

// Navigator выполняет переходы через навигационный guard.
type Navigator interface {
	Navigate(target state.View) (state.View, error)
}

// Presenter обновляет шапку с текущим пользователем.
type Presenter interface {
	ShowIdentity(identity *session.Identity, admin bool)
}

// Dismisser скрывает текущее уведомление.
type Dismisser interface {
	Dismiss()
}

// Options задаёт необязательные зависимости модуля.
type Options struct {
	AdminPrivilege int
	Presenter      Presenter
	Notices        Dismisser
	NewToken       func() string
}

// Module выполняет операции над пользователями.
type Module struct {
	runner         *workflow.Runner
	sessions       Sessions
	nav            Navigator
	presenter      Presenter
	notices        Dismisser
	adminPrivilege int
	newToken       func() string
}

// New создаёт модуль пользователей.
func New(runner *workflow.Runner, sessions Sessions, nav Navigator, opts Options) *Module {
	m := &Module{
		runner:         runner,
		sessions:       sessions,
		nav:            nav,
		presenter:      opts.Presenter,
		notices:        opts.Notices,
		adminPrivilege: opts.AdminPrivilege,
		newToken:       opts.NewToken,
	}
	if m.adminPrivilege <= 0 {
		m.adminPrivilege = 2
	}
	if m.newToken == nil {
		m.newToken = uuid.NewString
	}
	return m
}

// Operations возвращает операции модуля для state machine.
func (m *Module) Operations() map[string]state.Operation {
	return map[string]state.Operation{
		OpLogin:           m.Login,
		OpRegister:        m.Register,
		OpQueryUser:       m.QueryUser,
		OpModifyPrivilege: m.ModifyPrivilege,
		OpModifyPassword:  m.ModifyPassword,
	}
}

type loginRequest struct {
	UserID   form.Int `json:"userId"`
	Password string   `json:"password"`
}

type loginResponse struct {
	SessionID string            `json:"sessionId"`
	Token     string            `json:"token"`
	User      *session.Identity `json:"user"`
}

// IsAdmin сообщает, достигает ли уровень прав порога администратора.
func (m *Module) IsAdmin(identity *session.Identity) bool {
	return identity != nil && identity.Privilege >= m.adminPrivilege
}

// Login выполняет вход, сохраняет сессию и переводит в раздел по уровню прав.
func (m *Module) Login(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "userId", "password"); err != nil {
		return err
	}
	var resp loginResponse
	err := m.runner.Call(ctx, api.Request{
		Endpoint: "/login",
		Method:   http.MethodPost,
		Body:     loginRequest{UserID: in.Int("userId"), Password: in["password"]},
	}, &resp)
	if err != nil {
		return err
	}
	if resp.User == nil {
		m.runner.Notify(api.MessageBadResponse, notify.SeverityError)
		return &api.Error{Op: "/login", Kind: api.KindParse, Status: http.StatusOK, Message: api.MessageBadResponse, Err: errors.New("login response without user")}
	}
	token := resp.SessionID
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		token = m.newToken()
		m.runner.Logger().Infof("login response has no session token, using local token")
	}

	identity := *resp.User
	m.sessions.Set(token, identity)
	admin := m.IsAdmin(&identity)
	if m.presenter != nil {
		m.presenter.ShowIdentity(&identity, admin)
	}
	m.runner.Logger().Infof("user %d logged in, privilege=%d", identity.UserID, identity.Privilege)
	m.runner.Notify("Вход выполнен", notify.SeveritySuccess)

	landing := UserLanding
	if admin {
		landing = AdminLanding
	}
	_, err = m.nav.Navigate(landing)
	return err
}

type registerRequest struct {
	UserID   form.Int `json:"userId"`
	Username string   `json:"username"`
	Password string   `json:"password"`
}

// Register регистрирует пользователя и возвращает к форме входа.
func (m *Module) Register(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "userId", "username", "password"); err != nil {
		return err
	}
	err := m.runner.Mutate(ctx, api.Request{
		Endpoint: "/register",
		Method:   http.MethodPost,
		Body: registerRequest{
			UserID:   in.Int("userId"),
			Username: in.Value("username"),
			Password: in["password"],
		},
	}, "Регистрация выполнена")
	if err != nil {
		return err
	}
	_, err = m.nav.Navigate(state.ViewLogin)
	return err
}

// QueryUser показывает сведения о пользователе.
func (m *Module) QueryUser(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "userId"); err != nil {
		return err
	}
	return m.runner.Query(ctx, view.TargetUser, api.Request{
		Endpoint: userPath(in.Value("userId")),
		Method:   http.MethodGet,
	}, &view.UserInfo{})
}

type privilegeRequest struct {
	Privilege form.Int `json:"privilege"`
}

// ModifyPrivilege меняет уровень прав пользователя.
func (m *Module) ModifyPrivilege(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "userId", "privilege"); err != nil {
		return err
	}
	return m.runner.Mutate(ctx, api.Request{
		Endpoint: userPath(in.Value("userId")) + "/privilege",
		Method:   http.MethodPut,
		Body:     privilegeRequest{Privilege: in.Int("privilege")},
	}, "Права изменены")
}

type passwordRequest struct {
	Password string `json:"password"`
}

// ModifyPassword меняет пароль пользователя.
func (m *Module) ModifyPassword(ctx context.Context, in form.Input) error {
	if err := m.runner.Validate(in, "userId", "password"); err != nil {
		return err
	}
	return m.runner.Mutate(ctx, api.Request{
		Endpoint: userPath(in.Value("userId")) + "/password",
		Method:   http.MethodPut,
		Body:     passwordRequest{Password: in["password"]},
	}, "Пароль изменён")
}

// Logout завершает сессию локально, без обращения к серверу.
func (m *Module) Logout() {
	m.sessions.Clear()
	if m.notices != nil {
		m.notices.Dismiss()
	}
	if m.presenter != nil {
		m.presenter.ShowIdentity(nil, false)
	}
	m.runner.Logger().Infof("user logged out")
	if _, err := m.nav.Navigate(state.ViewLogin); err != nil {
		m.runner.Logger().Errorf("navigate after logout: %v", err)
	}
}

// Restore обновляет шапку по восстановленной при запуске сессии.
func (m *Module) Restore() {
	current := m.sessions.Get()
	if m.presenter != nil {
		m.presenter.ShowIdentity(current.Identity, m.IsAdmin(current.Identity))
	}
}

func userPath(userID string) string {
	return "/user/" + url.PathEscape(userID)
}
