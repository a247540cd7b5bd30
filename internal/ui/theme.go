package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"trainsys/client/internal/notify"
)

// stationTheme задает светлую палитру клиента кассы.
type stationTheme struct {
	base fyne.Theme
}

func newStationTheme() fyne.Theme {
	return &stationTheme{base: theme.LightTheme()}
}

func (t *stationTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 245, G: 246, B: 248, A: 255}
	case theme.ColorNameButton, theme.ColorNamePrimary:
		return color.NRGBA{R: 0, G: 102, B: 153, A: 255}
	case theme.ColorNameForeground:
		return color.NRGBA{R: 24, G: 28, B: 34, A: 255}
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	case theme.ColorNameSuccess:
		return color.NRGBA{R: 22, G: 128, B: 61, A: 255}
	case theme.ColorNameError:
		return color.NRGBA{R: 190, G: 30, B: 45, A: 255}
	case theme.ColorNameWarning:
		return color.NRGBA{R: 196, G: 120, B: 0, A: 255}
	case theme.ColorNameDisabled:
		return color.NRGBA{R: 180, G: 184, B: 193, A: 255}
	default:
		return t.base.Color(name, variant)
	}
}

func (t *stationTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *stationTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *stationTheme) Size(name fyne.ThemeSizeName) float32 {
	return t.base.Size(name)
}

// noticeColor возвращает цвет полосы уведомления по важности.
func noticeColor(severity notify.Severity) color.Color {
	t := newStationTheme()
	switch severity {
	case notify.SeveritySuccess:
		return t.Color(theme.ColorNameSuccess, theme.VariantLight)
	case notify.SeverityWarning:
		return t.Color(theme.ColorNameWarning, theme.VariantLight)
	case notify.SeverityError:
		return t.Color(theme.ColorNameError, theme.VariantLight)
	default:
		return t.Color(theme.ColorNamePrimary, theme.VariantLight)
	}
}
