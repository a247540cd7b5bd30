// Package notify реализует одноместный канал кратковременных уведомлений.
package notify

import (
	"strings"
	"sync"
	"time"

	"trainsys/client/internal/logging"
)

// Severity задаёт важность уведомления.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DefaultDuration задаёт время показа уведомления до автоскрытия.
const DefaultDuration = 3 * time.Second

// Message описывает видимое уведомление.
type Message struct {
	ID        uint64
	Text      string
	Severity  Severity
	ExpiresAt time.Time
}

// Surface отрисовывает уведомление; реализуется UI. Методы вызываются
// под блокировкой канала и не должны обращаться к нему обратно.
type Surface interface {
	ShowNotice(msg Message)
	HideNotice()
}

// Timer представляет отменяемый отложенный вызов.
type Timer interface {
	Stop() bool
}

// Options позволяет переопределить зависимости канала.
type Options struct {
	Duration  time.Duration
	Logger    *logging.Logger
	Now       func() time.Time
	AfterFunc func(d time.Duration, fn func()) Timer
}

// Channel показывает не более одного уведомления; новое вытесняет старое.
type Channel struct {
	mu        sync.Mutex
	surface   Surface
	logger    *logging.Logger
	duration  time.Duration
	now       func() time.Time
	afterFunc func(d time.Duration, fn func()) Timer
	seq       uint64
	current   *Message
	timer     Timer
}

// NewChannel создаёт канал уведомлений поверх surface.
func NewChannel(surface Surface, opts Options) *Channel {
	c := &Channel{
		surface:   surface,
		logger:    opts.Logger,
		duration:  opts.Duration,
		now:       opts.Now,
		afterFunc: opts.AfterFunc,
	}
	if c.duration <= 0 {
		c.duration = DefaultDuration
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.afterFunc == nil {
		c.afterFunc = func(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }
	}
	return c
}

// Show заменяет текущее уведомление и запускает его таймер скрытия.
func (c *Channel) Show(text string, severity Severity) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.mu.Lock()
	c.seq++
	id := c.seq
	msg := Message{ID: id, Text: text, Severity: severity, ExpiresAt: c.now().Add(c.duration)}
	c.current = &msg
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.afterFunc(c.duration, func() { c.expire(id) })
	c.logger.Debugf("notice [%s] %s", severity, text)
	// surface вызывается под c.mu: порядок показов и скрытий совпадает с seq.
	if c.surface != nil {
		c.surface.ShowNotice(msg)
	}
	c.mu.Unlock()
}

// expire скрывает уведомление id, если оно всё ещё текущее.
func (c *Channel) expire(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.ID != id {
		return
	}
	c.current = nil
	c.timer = nil
	if c.surface != nil {
		c.surface.HideNotice()
	}
}

// Dismiss немедленно скрывает текущее уведомление.
func (c *Channel) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	had := c.current != nil
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if had && c.surface != nil {
		c.surface.HideNotice()
	}
}

// Current возвращает видимое уведомление.
func (c *Channel) Current() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Message{}, false
	}
	return *c.current, true
}
