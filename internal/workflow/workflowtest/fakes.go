// Package workflowtest содержит подделки портов workflow для тестов модулей.
package workflowtest

import (
	"context"
	"encoding/json"
	"sync"

	"trainsys/client/internal/api"
	"trainsys/client/internal/notify"
	"trainsys/client/internal/view"
)

// Reply задаёт заготовленный ответ на запрос.
type Reply struct {
	Body string
	Err  error
}

// Caller записывает запросы и отвечает заготовками по endpoint.
// Ошибки пересылаются в Notifier, как это делает настоящий конвейер.
type Caller struct {
	mu       sync.Mutex
	Replies  map[string]Reply
	Notifier *Notifier
	requests []api.Request
}

// NewCaller создаёт Caller, уведомляющий notifier.
func NewCaller(notifier *Notifier) *Caller {
	return &Caller{Replies: map[string]Reply{}, Notifier: notifier}
}

// Reply задаёт ответ на endpoint.
func (c *Caller) Reply(endpoint string, body string) {
	c.mu.Lock()
	c.Replies[endpoint] = Reply{Body: body}
	c.mu.Unlock()
}

// Fail задаёт ошибку на endpoint.
func (c *Caller) Fail(endpoint string, err *api.Error) {
	c.mu.Lock()
	c.Replies[endpoint] = Reply{Err: err}
	c.mu.Unlock()
}

func (c *Caller) Call(ctx context.Context, req api.Request, out any) error {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	reply, ok := c.Replies[req.Endpoint]
	c.mu.Unlock()
	if !ok {
		reply = Reply{Body: "{}"}
	}
	if reply.Err != nil {
		if c.Notifier != nil {
			c.Notifier.Show(api.UserMessage(reply.Err), notify.SeverityError)
		}
		return reply.Err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(reply.Body), out)
}

// Requests возвращает копию отправленных запросов.
func (c *Caller) Requests() []api.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Request(nil), c.requests...)
}

// Notice хранит записанное уведомление.
type Notice struct {
	Text     string
	Severity notify.Severity
}

// Notifier записывает уведомления.
type Notifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *Notifier) Show(text string, severity notify.Severity) {
	n.mu.Lock()
	n.notices = append(n.notices, Notice{Text: text, Severity: severity})
	n.mu.Unlock()
}

// Notices возвращает копию уведомлений.
func (n *Notifier) Notices() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}

// Count считает уведомления заданного уровня.
func (n *Notifier) Count(severity notify.Severity) int {
	count := 0
	for _, notice := range n.Notices() {
		if notice.Severity == severity {
			count++
		}
	}
	return count
}

// Painted хранит записанную отрисовку.
type Painted struct {
	Target view.Target
	Card   view.Card
}

// Painter записывает отрисованные карточки.
type Painter struct {
	mu    sync.Mutex
	cards []Painted
}

func (p *Painter) Paint(target view.Target, card view.Card) {
	p.mu.Lock()
	p.cards = append(p.cards, Painted{Target: target, Card: card})
	p.mu.Unlock()
}

// Cards возвращает копию отрисовок.
func (p *Painter) Cards() []Painted {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Painted(nil), p.cards...)
}

// Last возвращает последнюю карточку для target.
func (p *Painter) Last(target view.Target) (view.Card, bool) {
	cards := p.Cards()
	for i := len(cards) - 1; i >= 0; i-- {
		if cards[i].Target == target {
			return cards[i].Card, true
		}
	}
	return view.Card{}, false
}
