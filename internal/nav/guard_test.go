package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainsys/client/internal/logging"
	"trainsys/client/internal/state"
)

type fakeSessions bool

func (f fakeSessions) IsAuthenticated() bool { return bool(f) }

type fakeSurface struct {
	shown []state.View
}

func (f *fakeSurface) ShowView(v state.View) { f.shown = append(f.shown, v) }

func TestProtectedViewsRedirectWithoutSession(t *testing.T) {
	for _, target := range state.Views {
		if IsPublic(target) {
			continue
		}
		t.Run(string(target), func(t *testing.T) {
			app := state.NewAppContext(nil)
			surface := &fakeSurface{}
			guard := NewGuard(app, fakeSessions(false), surface, logging.Discard())

			got, err := guard.Navigate(target)

			require.NoError(t, err)
			assert.Equal(t, state.ViewLogin, got)
			assert.Equal(t, state.ViewLogin, app.View())
			assert.Equal(t, []state.View{state.ViewLogin}, surface.shown)
		})
	}
}

func TestPublicViewsAlwaysAllowed(t *testing.T) {
	for _, authenticated := range []bool{false, true} {
		for _, target := range []state.View{state.ViewLogin, state.ViewRegister} {
			guard := NewGuard(state.NewAppContext(nil), fakeSessions(authenticated), nil, nil)
			got, err := guard.Navigate(target)
			require.NoError(t, err)
			assert.Equal(t, target, got)
		}
	}
}

func TestProtectedViewAllowedWithSession(t *testing.T) {
	app := state.NewAppContext(nil)
	surface := &fakeSurface{}
	guard := NewGuard(app, fakeSessions(true), surface, nil)

	got, err := guard.Navigate(state.ViewUserManagement)

	require.NoError(t, err)
	assert.Equal(t, state.ViewUserManagement, got)
	assert.Equal(t, state.ViewUserManagement, app.View())
	assert.Equal(t, []state.View{state.ViewUserManagement}, surface.shown)
}

func TestUnknownViewKeepsCurrent(t *testing.T) {
	app := state.NewAppContext(nil)
	surface := &fakeSurface{}
	guard := NewGuard(app, fakeSessions(true), surface, nil)

	got, err := guard.Navigate("settings")

	assert.ErrorIs(t, err, ErrUnknownView)
	assert.Equal(t, state.ViewLogin, got)
	assert.Empty(t, surface.shown)
}
