// Package workflow реализует общий шаблон операций доменных модулей:
// проверка формы, вызов API, отрисовка результата или уведомление.
package workflow

import (
	"context"
	"errors"

	"trainsys/client/internal/api"
	"trainsys/client/internal/form"
	"trainsys/client/internal/logging"
	"trainsys/client/internal/notify"
	"trainsys/client/internal/view"
)

// Caller выполняет запрос через конвейер API.
type Caller interface {
	Call(ctx context.Context, req api.Request, out any) error
}

// Notifier показывает кратковременные уведомления.
type Notifier interface {
	Show(text string, severity notify.Severity)
}

// Renderer превращает успешный ответ в карточку.
type Renderer interface {
	Card() view.Card
}

// Runner связывает конвейер, уведомления и отрисовку.
type Runner struct {
	caller   Caller
	notifier Notifier
	painter  view.Painter
	logger   *logging.Logger
}

// New создаёт Runner.
func New(caller Caller, notifier Notifier, painter view.Painter, logger *logging.Logger) *Runner {
	return &Runner{caller: caller, notifier: notifier, painter: painter, logger: logger}
}

// Logger возвращает логгер модулей.
func (r *Runner) Logger() *logging.Logger {
	return r.logger
}

// Notify показывает уведомление.
func (r *Runner) Notify(text string, severity notify.Severity) {
	if r.notifier != nil {
		r.notifier.Show(text, severity)
	}
}

// Validate проверяет обязательные поля. При первом пустом поле показывает
// предупреждение с его именем и возвращает ошибку вида validation;
// запрос в этом случае не отправляется.
func (r *Runner) Validate(input form.Input, fields ...string) error {
	err := input.Require(fields...)
	if err == nil {
		return nil
	}
	var missing *form.MissingFieldError
	message := err.Error()
	if errors.As(err, &missing) {
		message = missing.UserMessage()
	}
	r.Notify(message, notify.SeverityWarning)
	return &api.Error{Op: "validate", Kind: api.KindValidation, Message: message, Err: err}
}

// Call выполняет запрос; уведомление об ошибке уже показано конвейером.
func (r *Runner) Call(ctx context.Context, req api.Request, out any) error {
	return r.caller.Call(ctx, req, out)
}

// Query выполняет запрос на чтение. Успех отрисовывается в target,
// ошибка дополнительно выводится там же встроенным сообщением.
func (r *Runner) Query(ctx context.Context, target view.Target, req api.Request, out Renderer) error {
	if err := r.caller.Call(ctx, req, out); err != nil {
		r.paint(target, view.ErrorCard(api.UserMessage(err)))
		return err
	}
	r.paint(target, out.Card())
	return nil
}

// Mutate выполняет изменяющий запрос и при успехе показывает success.
// При ошибке остаётся только уведомление конвейера.
func (r *Runner) Mutate(ctx context.Context, req api.Request, success string) error {
	if err := r.caller.Call(ctx, req, nil); err != nil {
		return err
	}
	r.Notify(success, notify.SeveritySuccess)
	return nil
}

func (r *Runner) paint(target view.Target, card view.Card) {
	if r.painter != nil {
		r.painter.Paint(target, card)
	}
}
