package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSurface struct {
	mu    sync.Mutex
	shown []Message
	hides int
}

func (s *recordingSurface) ShowNotice(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, msg)
}

func (s *recordingSurface) HideNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hides++
}

// fakeClock запускает таймеры вручную. Если ignoreStop, остановленные
// таймеры всё равно срабатывают, как при гонке с time.AfterFunc.
type fakeClock struct {
	now        time.Time
	timers     []*fakeTimer
	ignoreStop bool
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	for _, t := range c.timers {
		if t.fired || t.at.After(c.now) {
			continue
		}
		if t.stopped && !c.ignoreStop {
			continue
		}
		t.fired = true
		t.fn()
	}
}

func newTestChannel(clock *fakeClock, surface Surface) *Channel {
	return NewChannel(surface, Options{Duration: 3 * time.Second, Now: clock.Now, AfterFunc: clock.AfterFunc})
}

func TestShowThenExpire(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	surface := &recordingSurface{}
	ch := newTestChannel(clock, surface)

	ch.Show("Билет куплен", SeveritySuccess)

	msg, ok := ch.Current()
	require.True(t, ok)
	assert.Equal(t, "Билет куплен", msg.Text)
	assert.Equal(t, SeveritySuccess, msg.Severity)
	assert.Equal(t, clock.now.Add(3*time.Second), msg.ExpiresAt)
	require.Len(t, surface.shown, 1)

	clock.Advance(2999 * time.Millisecond)
	_, ok = ch.Current()
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = ch.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, surface.hides)
}

func TestSupersededTimerIsNoop(t *testing.T) {
	for _, ignoreStop := range []bool{false, true} {
		clock := &fakeClock{now: time.Unix(0, 0), ignoreStop: ignoreStop}
		surface := &recordingSurface{}
		ch := newTestChannel(clock, surface)

		ch.Show("first", SeverityInfo)
		clock.Advance(500 * time.Millisecond)
		ch.Show("second", SeverityError)

		clock.Advance(2500 * time.Millisecond)
		msg, ok := ch.Current()
		require.True(t, ok, "ignoreStop=%v", ignoreStop)
		assert.Equal(t, "second", msg.Text)
		assert.Equal(t, 0, surface.hides)

		clock.Advance(500 * time.Millisecond)
		_, ok = ch.Current()
		assert.False(t, ok)
		assert.Equal(t, 1, surface.hides)
	}
}

func TestDismiss(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	surface := &recordingSurface{}
	ch := newTestChannel(clock, surface)

	ch.Dismiss()
	assert.Equal(t, 0, surface.hides)

	ch.Show("msg", SeverityWarning)
	ch.Dismiss()
	_, ok := ch.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, surface.hides)

	clock.Advance(5 * time.Second)
	assert.Equal(t, 1, surface.hides)
}

func TestShowIgnoresBlankText(t *testing.T) {
	surface := &recordingSurface{}
	ch := NewChannel(surface, Options{})

	ch.Show("   ", SeverityError)

	_, ok := ch.Current()
	assert.False(t, ok)
	assert.Empty(t, surface.shown)
}

func TestRealTimerExpires(t *testing.T) {
	surface := &recordingSurface{}
	ch := NewChannel(surface, Options{Duration: 20 * time.Millisecond})

	ch.Show("quick", SeverityInfo)

	assert.Eventually(t, func() bool {
		_, ok := ch.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

// gatedSurface задерживает HideNotice до закрытия release.
type gatedSurface struct {
	mu          sync.Mutex
	visible     bool
	text        string
	hideEntered chan struct{}
	release     chan struct{}
}

func (s *gatedSurface) ShowNotice(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
	s.text = msg.Text
}

func (s *gatedSurface) HideNotice() {
	close(s.hideEntered)
	<-s.release
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
}

func (s *gatedSurface) state() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible, s.text
}

func TestSlowHideDoesNotSwallowNewerNotice(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	surface := &gatedSurface{hideEntered: make(chan struct{}), release: make(chan struct{})}
	ch := newTestChannel(clock, surface)

	ch.Show("first", SeverityInfo)
	require.Len(t, clock.timers, 1)
	go clock.timers[0].fn()
	<-surface.hideEntered

	shown := make(chan struct{})
	go func() {
		ch.Show("second", SeverityInfo)
		close(shown)
	}()
	select {
	case <-shown:
	case <-time.After(50 * time.Millisecond):
	}
	close(surface.release)

	assert.Eventually(t, func() bool {
		visible, text := surface.state()
		return visible && text == "second"
	}, time.Second, 5*time.Millisecond)
	<-shown
	visible, text := surface.state()
	assert.True(t, visible)
	assert.Equal(t, "second", text)
	msg, ok := ch.Current()
	require.True(t, ok)
	assert.Equal(t, "second", msg.Text)
}
