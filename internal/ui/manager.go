package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"trainsys/client/internal/form"
	"trainsys/client/internal/logging"
	"trainsys/client/internal/notify"
	"trainsys/client/internal/session"
	"trainsys/client/internal/state"
	"trainsys/client/internal/view"
)

// Options описывает параметры инициализации UI Manager.
type Options struct {
	AppID    string
	AppName  string
	Logger   *logging.Logger
	Dispatch func(state.Event) error
	// App подменяет Fyne-приложение, например fyne.io/fyne/v2/test.
	App fyne.App
}

// Manager управляет главным окном Fyne и связывает его со state machine.
type Manager struct {
	app          fyne.App
	appName      string
	logger       *logging.Logger
	dispatch     func(state.Event) error
	win          fyne.Window
	identity     *widget.Label
	logoutBtn    *widget.Button
	dismissBtn   *widget.Button
	noticeBox    *fyne.Container
	noticeStripe *canvas.Rectangle
	noticeLabel  *widget.Label
	current      state.View
	sections     map[state.View]fyne.CanvasObject
	navButtons   map[state.View]*widget.Button
	forms        map[string]*formWidgets
	results      map[view.Target]*fyne.Container
	admin        bool
	signedIn     bool
	updateCh     chan noticeSnapshot
	stopCh       chan struct{}
	runOnce      sync.Once
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// noticeSnapshot переносит состояние уведомления в goroutine UI.
type noticeSnapshot struct {
	Visible bool
	Message notify.Message
}

// formWidgets хранит поля ввода одной формы.
type formWidgets struct {
	spec    formSpec
	entries map[string]*widget.Entry
	button  *widget.Button
}

// NewManager создаёт новый UI Manager.
func NewManager(opts Options) *Manager {
	appID := strings.TrimSpace(opts.AppID)
	if appID == "" {
		appID = "trainsys.client"
	}
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = "Железнодорожная касса"
	}
	fyneApp := opts.App
	if fyneApp == nil {
		fyneApp = fyneapp.NewWithID(appID)
	}
	fyneApp.Settings().SetTheme(newStationTheme())
	m := &Manager{
		app:        fyneApp,
		appName:    name,
		logger:     opts.Logger,
		dispatch:   opts.Dispatch,
		current:    state.ViewLogin,
		sections:   make(map[state.View]fyne.CanvasObject),
		navButtons: make(map[state.View]*widget.Button),
		forms:      make(map[string]*formWidgets),
		results:    make(map[view.Target]*fyne.Container),
		updateCh:   make(chan noticeSnapshot, 16),
		stopCh:     make(chan struct{}),
	}
	m.buildMainWindow()
	return m
}

// Start запускает фоновые goroutine UI.
func (m *Manager) Start() {
	m.runOnce.Do(func() {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.processUpdates()
		}()
	})
}

// RunMainLoop блокирует текущую горутину до завершения цикла Fyne.
func (m *Manager) RunMainLoop() {
	if m.app == nil {
		return
	}
	if m.win != nil {
		m.win.Show()
	}
	m.app.Run()
}

// Shutdown останавливает обновления и закрывает Fyne-приложение.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.stopCh)
		m.callOnUI(func() {
			if m.win != nil {
				m.win.Close()
			}
			if m.app != nil {
				m.app.Quit()
			}
		})
	})
}

// WaitAsync ждёт завершения фоновых UI goroutine.
func (m *Manager) WaitAsync(timeout time.Duration) bool {
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

// ShowView показывает раздел и подсвечивает его пункт меню.
func (m *Manager) ShowView(v state.View) {
	m.callOnUI(func() {
		m.current = v
		for key, obj := range m.sections {
			if key == v {
				obj.Show()
			} else {
				obj.Hide()
			}
		}
		for key, btn := range m.navButtons {
			if key == v {
				btn.Importance = widget.HighImportance
			} else {
				btn.Importance = widget.MediumImportance
			}
			btn.Refresh()
		}
		if m.win != nil {
			m.win.SetTitle(fmt.Sprintf("%s: %s", m.appName, sectionTitle(v)))
		}
	})
}

// Paint выводит карточку результата в область target.
func (m *Manager) Paint(target view.Target, card view.Card) {
	m.callOnUI(func() {
		box, ok := m.results[target]
		if !ok {
			if m.logger != nil {
				m.logger.Errorf("ui paint: unknown target %s", target)
			}
			return
		}
		box.Objects = renderCard(card)
		box.Refresh()
	})
}

// ShowNotice показывает уведомление в нижней полосе окна.
func (m *Manager) ShowNotice(msg notify.Message) {
	m.pushNotice(noticeSnapshot{Visible: true, Message: msg})
}

// HideNotice скрывает полосу уведомления.
func (m *Manager) HideNotice() {
	m.pushNotice(noticeSnapshot{})
}

// ShowIdentity обновляет шапку и набор доступных разделов.
func (m *Manager) ShowIdentity(identity *session.Identity, admin bool) {
	m.callOnUI(func() {
		m.signedIn = identity != nil
		m.admin = identity != nil && admin
		if m.identity != nil {
			m.identity.SetText(identityText(identity, m.admin))
		}
		if m.logoutBtn != nil {
			if m.signedIn {
				m.logoutBtn.Show()
			} else {
				m.logoutBtn.Hide()
			}
		}
		for v, btn := range m.navButtons {
			if m.navVisible(v) {
				btn.Show()
			} else {
				btn.Hide()
			}
		}
	})
}

// ResetForm очищает поля формы name.
func (m *Manager) ResetForm(name string) {
	m.callOnUI(func() {
		fw, ok := m.forms[name]
		if !ok {
			return
		}
		for _, entry := range fw.entries {
			entry.SetText("")
		}
	})
}

func (m *Manager) navVisible(v state.View) bool {
	switch {
	case v == state.ViewLogin || v == state.ViewRegister:
		return !m.signedIn
	case v.AdminOnly():
		return m.admin
	default:
		return m.signedIn
	}
}

func (m *Manager) pushNotice(snap noticeSnapshot) {
	select {
	case <-m.stopCh:
		return
	case m.updateCh <- snap:
	default:
		select {
		case <-m.updateCh:
		default:
		}
		m.updateCh <- snap
	}
}

func (m *Manager) processUpdates() {
	for {
		select {
		case <-m.stopCh:
			return
		case snap := <-m.updateCh:
			m.applyNotice(snap)
		}
	}
}

func (m *Manager) applyNotice(snap noticeSnapshot) {
	m.callOnUI(func() {
		if m.noticeBox == nil {
			return
		}
		if !snap.Visible {
			m.noticeBox.Hide()
			return
		}
		m.noticeStripe.FillColor = noticeColor(snap.Message.Severity)
		m.noticeStripe.Refresh()
		m.noticeLabel.SetText(snap.Message.Text)
		m.noticeBox.Show()
	})
}

func (m *Manager) buildMainWindow() {
	if m.app == nil {
		return
	}
	win := m.app.NewWindow(m.appName)
	win.Resize(fyne.NewSize(980, 640))
	win.CenterOnScreen()

	m.identity = widget.NewLabelWithStyle(identityText(nil, false), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	m.logoutBtn = widget.NewButton("Выйти из аккаунта", func() { m.sendSimpleEvent(state.EventUILogout) })
	m.logoutBtn.Hide()
	exitBtn := widget.NewButton("Закрыть", func() { m.sendSimpleEvent(state.EventUIExit) })
	header := container.NewHBox(m.identity, layout.NewSpacer(), m.logoutBtn, exitBtn)

	menu := container.NewVBox()
	stack := container.NewStack()
	for _, section := range sections {
		target := section.View
		btn := widget.NewButton(section.Title, func() { m.handleNavigate(target) })
		m.navButtons[target] = btn
		menu.Add(btn)

		obj := m.buildSection(section)
		if target != m.current {
			obj.Hide()
		}
		m.sections[target] = obj
		stack.Add(obj)
	}
	for v, btn := range m.navButtons {
		if !m.navVisible(v) {
			btn.Hide()
		}
	}
	m.navButtons[m.current].Importance = widget.HighImportance

	m.noticeStripe = canvas.NewRectangle(noticeColor(notify.SeverityInfo))
	m.noticeStripe.SetMinSize(fyne.NewSize(6, 0))
	m.noticeLabel = widget.NewLabel("")
	m.noticeLabel.Wrapping = fyne.TextWrapWord
	m.dismissBtn = widget.NewButton("×", func() { m.sendSimpleEvent(state.EventUIDismissNotice) })
	m.noticeBox = container.NewBorder(nil, nil, m.noticeStripe, m.dismissBtn, m.noticeLabel)
	m.noticeBox.Hide()

	top := container.NewVBox(header, widget.NewSeparator())
	bottom := container.NewVBox(widget.NewSeparator(), m.noticeBox)
	left := container.NewVScroll(menu)
	left.SetMinSize(fyne.NewSize(200, 0))
	content := container.NewBorder(top, bottom, left, nil, container.NewVScroll(stack))
	win.SetContent(container.NewPadded(content))
	win.SetCloseIntercept(func() {
		m.sendSimpleEvent(state.EventUIExit)
	})
	m.win = win
}

func (m *Manager) buildSection(section sectionSpec) fyne.CanvasObject {
	title := widget.NewLabelWithStyle(section.Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	box := container.NewVBox(title)
	for _, spec := range section.Forms {
		box.Add(m.buildForm(spec))
	}
	return box
}

func (m *Manager) buildForm(spec formSpec) fyne.CanvasObject {
	fw := &formWidgets{spec: spec, entries: make(map[string]*widget.Entry, len(spec.Fields))}
	items := container.NewVBox()
	for _, field := range spec.Fields {
		var entry *widget.Entry
		if field.Password {
			entry = widget.NewPasswordEntry()
		} else {
			entry = widget.NewEntry()
		}
		entry.SetPlaceHolder(field.Placeholder)
		entry.OnSubmitted = func(string) { m.handleSubmit(fw) }
		fw.entries[field.Name] = entry
		items.Add(widget.NewLabel(field.Label))
		items.Add(entry)
	}
	fw.button = widget.NewButton(spec.Button, func() { m.handleSubmit(fw) })
	fw.button.Importance = widget.HighImportance
	items.Add(fw.button)
	if spec.Target != "" {
		result := container.NewVBox()
		m.results[spec.Target] = result
		items.Add(result)
	}
	m.forms[spec.Name] = fw
	return widget.NewCard(spec.Title, "", items)
}

func (m *Manager) handleSubmit(fw *formWidgets) {
	input := make(form.Input, len(fw.entries))
	for name, entry := range fw.entries {
		input[name] = entry.Text
	}
	payload := state.SubmitPayload{Operation: fw.spec.Operation, Input: input}
	m.dispatchEvent(state.Event{Type: state.EventUISubmit, Payload: payload, TS: time.Now()})
}

func (m *Manager) handleNavigate(target state.View) {
	payload := state.NavigatePayload{View: target}
	m.dispatchEvent(state.Event{Type: state.EventUINavigate, Payload: payload, TS: time.Now()})
}

func (m *Manager) sendSimpleEvent(t state.EventType) {
	m.dispatchEvent(state.Event{Type: t, TS: time.Now()})
}

func (m *Manager) dispatchEvent(evt state.Event) {
	if m.dispatch == nil {
		return
	}
	if err := m.dispatch(evt); err != nil && m.logger != nil {
		m.logger.Errorf("ui dispatch %s failed: %v", evt.Type, err)
	}
}

func (m *Manager) callOnUI(fn func()) {
	if m.app == nil || fn == nil {
		return
	}
	if drv := m.app.Driver(); drv != nil {
		drv.DoFromGoroutine(fn, true)
		return
	}
	fn()
}

func renderCard(card view.Card) []fyne.CanvasObject {
	var objs []fyne.CanvasObject
	if card.Error != "" {
		label := widget.NewLabel(card.Error)
		label.Importance = widget.DangerImportance
		label.Wrapping = fyne.TextWrapWord
		return append(objs, label)
	}
	if card.Title != "" {
		objs = append(objs, widget.NewLabelWithStyle(card.Title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	}
	for _, field := range card.Fields {
		label := widget.NewLabel(fmt.Sprintf("%s: %s", field.Label, field.Value))
		label.Importance = statusImportance(field.Status)
		objs = append(objs, label)
	}
	if card.Table != nil && len(card.Table.Header) > 0 {
		grid := container.NewGridWithColumns(len(card.Table.Header))
		for _, h := range card.Table.Header {
			grid.Add(widget.NewLabelWithStyle(h, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
		}
		for _, row := range card.Table.Rows {
			for i := range card.Table.Header {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				grid.Add(widget.NewLabel(cell))
			}
		}
		objs = append(objs, grid)
	}
	if card.Note != "" {
		note := widget.NewLabel(card.Note)
		note.Wrapping = fyne.TextWrapWord
		objs = append(objs, note)
	}
	return objs
}

func statusImportance(status view.Status) widget.Importance {
	switch status {
	case view.StatusSuccess:
		return widget.SuccessImportance
	case view.StatusError:
		return widget.DangerImportance
	default:
		return widget.MediumImportance
	}
}

func identityText(identity *session.Identity, admin bool) string {
	if identity == nil {
		return "Вход не выполнен"
	}
	name := identity.Username
	if name == "" {
		name = fmt.Sprintf("#%d", identity.UserID)
	}
	if admin {
		return fmt.Sprintf("%s (администратор)", name)
	}
	return name
}

func sectionTitle(v state.View) string {
	for _, section := range sections {
		if section.View == v {
			return section.Title
		}
	}
	return string(v)
}
