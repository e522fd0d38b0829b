package presenter

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

const (
	focusSecondary = iota
	focusDismiss
)

type decisionMsg alert.Decision

// TUI draws the alert window in the terminal.
type TUI struct {
	buttonText string
	styleFile  string

	last lastDecision

	mu      sync.Mutex
	program *tea.Program
}

func NewTUI(buttonText, styleFile string) *TUI {
	return &TUI{buttonText: buttonText, styleFile: styleFile}
}

func (t *TUI) Name() string {
	return "tui"
}

// Apply forwards changed decisions to the running program. Decisions that
// arrive before Run are picked up when it starts.
func (t *TUI) Apply(d alert.Decision) {
	if _, changed := t.last.update(d); !changed {
		return
	}

	t.mu.Lock()
	p := t.program
	t.mu.Unlock()

	if p != nil {
		p.Send(decisionMsg(d))
	}
}

func (t *TUI) Run(ctx context.Context, actions Actions) error {
	m := newTUIModel(t.buttonText, t.styleFile, actions)
	m.gate = &t.last
	m = m.apply(alert.Decision(t.last.get()))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	t.mu.Lock()
	t.program = p
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.program = nil
		t.mu.Unlock()
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type tuiModel struct {
	buttonText string
	styleFile  string
	actions    Actions
	gate       *lastDecision

	theme    Theme
	decision alert.Decision
	text     string
	focus    int
	width    int
}

func newTUIModel(buttonText, styleFile string, actions Actions) tuiModel {
	m := tuiModel{
		buttonText: buttonText,
		styleFile:  styleFile,
		actions:    actions,
		focus:      focusDismiss,
	}
	m.theme = m.loadTheme()
	return m
}

func (m tuiModel) loadTheme() Theme {
	theme, err := LoadTheme(m.styleFile)
	if err != nil {
		logrus.WithError(err).Warn("using default style")
	}
	return theme
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) apply(d alert.Decision) tuiModel {
	if d.ReloadStyle {
		m.theme = m.loadTheme()
	}
	if d.PresentNow {
		m.focus = focusDismiss
	}
	if d.StatusText != "" {
		m.text = d.StatusText
	}
	if !d.SecondaryActionEnabled && m.focus == focusSecondary {
		m.focus = focusDismiss
	}
	m.decision = d
	return m
}

func (m tuiModel) secondaryAllowed() bool {
	if !m.decision.Visible || !m.decision.SecondaryActionEnabled {
		return false
	}
	return m.gate == nil || m.gate.secondaryAllowed()
}

func (m tuiModel) dismiss() tea.Cmd {
	return func() tea.Msg {
		m.actions.Dismiss()
		return nil
	}
}

func (m tuiModel) secondary() tea.Cmd {
	return func() tea.Msg {
		m.actions.SecondaryAction()
		return nil
	}
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case decisionMsg:
		return m.apply(alert.Decision(msg)), nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.decision.Visible {
			return m, nil
		}
		switch msg.String() {
		case "esc", "q":
			m.decision.Visible = false
			return m, m.dismiss()
		case "tab", "shift+tab", "left", "right", "h", "l":
			if m.secondaryAllowed() {
				m.focus = 1 - m.focus
			}
		case "enter", " ":
			if m.focus == focusSecondary && m.secondaryAllowed() {
				return m, m.secondary()
			}
			m.decision.Visible = false
			return m, m.dismiss()
		}
	}
	return m, nil
}

func (m tuiModel) View() string {
	if !m.decision.Visible {
		return m.theme.Idle.Render("lowbatt is watching your battery (ctrl+c to quit)")
	}

	secondary := m.theme.ButtonDisabled
	if m.secondaryAllowed() {
		secondary = m.theme.Button
		if m.focus == focusSecondary {
			secondary = m.theme.ButtonFocused
		}
	}
	dismiss := m.theme.Button
	if m.focus == focusDismiss {
		dismiss = m.theme.ButtonFocused
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		secondary.Render(m.buttonText),
		"  ",
		dismiss.Render("Got it!"),
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Header.Render("Battery is running low"),
		m.theme.Info.Render(m.text),
		"",
		buttons,
	)

	window := m.theme.Window.Render(body)
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, window)
	}
	return window
}
