package presenter

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/charmbracelet/lipgloss"
	pkgerrors "github.com/pkg/errors"
)

// ErrStyleNotFound is returned by LoadTheme when the style file is missing.
var ErrStyleNotFound = errors.New("style file not found")

var (
	colorRed    = lipgloss.Color("#FF5555")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorWhite  = lipgloss.Color("#F8F8F2")
	colorGray   = lipgloss.Color("#6272A4")
	colorPanel  = lipgloss.Color("#44475A")
)

// Theme is the look of the terminal alert window.
type Theme struct {
	Window         lipgloss.Style
	Header         lipgloss.Style
	Info           lipgloss.Style
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	Idle           lipgloss.Style
}

// RawTheme is the style file format. Colors are anything lipgloss.Color
// accepts ("#FF5555", "9", ...); empty fields keep the default.
type RawTheme struct {
	Border          string `json:"border,omitempty"`
	Background      string `json:"background,omitempty"`
	Header          string `json:"header,omitempty"`
	Info            string `json:"info,omitempty"`
	Button          string `json:"button,omitempty"`
	ButtonFocused   string `json:"buttonFocused,omitempty"`
	ButtonFocusedBg string `json:"buttonFocusedBackground,omitempty"`
	ButtonDisabled  string `json:"buttonDisabled,omitempty"`
	Width           int    `json:"width,omitempty"`
}

var defaultRawTheme = RawTheme{
	Border:          string(colorRed),
	Header:          string(colorRed),
	Info:            string(colorWhite),
	Button:          string(colorWhite),
	ButtonFocused:   string(colorYellow),
	ButtonFocusedBg: string(colorPanel),
	ButtonDisabled:  string(colorGray),
	Width:           56,
}

func DefaultTheme() Theme {
	return defaultRawTheme.build()
}

// LoadTheme reads a style file on top of the default theme. An empty path
// yields the default theme. A missing file yields the default theme and an
// error wrapping ErrStyleNotFound.
func LoadTheme(path string) (Theme, error) {
	if path == "" {
		return DefaultTheme(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTheme(), pkgerrors.Wrapf(ErrStyleNotFound, "%s", path)
		}
		return DefaultTheme(), pkgerrors.Wrapf(err, "failed to read style file %s", path)
	}

	raw := defaultRawTheme
	if err := json.Unmarshal(b, &raw); err != nil {
		return DefaultTheme(), pkgerrors.Wrapf(err, "failed to parse style file %s", path)
	}

	return raw.build(), nil
}

func (r RawTheme) build() Theme {
	window := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(r.Border)).
		Padding(1, 2).
		Width(r.Width)
	if r.Background != "" {
		window = window.Background(lipgloss.Color(r.Background))
	}

	button := lipgloss.NewStyle().Padding(0, 2)

	return Theme{
		Window:         window,
		Header:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(r.Header)),
		Info:           lipgloss.NewStyle().Foreground(lipgloss.Color(r.Info)),
		Button:         button.Foreground(lipgloss.Color(r.Button)),
		ButtonFocused:  button.Bold(true).Foreground(lipgloss.Color(r.ButtonFocused)).Background(lipgloss.Color(r.ButtonFocusedBg)),
		ButtonDisabled: button.Faint(true).Foreground(lipgloss.Color(r.ButtonDisabled)),
		Idle:           lipgloss.NewStyle().Foreground(colorGray),
	}
}
