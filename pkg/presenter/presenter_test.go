package presenter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallxyz/lowbatt/pkg/alert"
	"github.com/gallxyz/lowbatt/pkg/config"
)

type fakeActions struct {
	dismissed atomic.Int32
	secondary atomic.Int32
}

func (f *fakeActions) Dismiss() {
	f.dismissed.Add(1)
}

func (f *fakeActions) SecondaryAction() {
	f.secondary.Add(1)
}

type fakePresenter struct {
	name string

	mu      sync.Mutex
	applied []alert.Decision

	runErr  error
	stopped atomic.Bool
	block   bool
}

func (f *fakePresenter) Name() string {
	return f.name
}

func (f *fakePresenter) Apply(d alert.Decision) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, d)
}

func (f *fakePresenter) Run(ctx context.Context, _ Actions) error {
	if f.block {
		<-ctx.Done()
	}
	f.stopped.Store(true)
	return f.runErr
}

func shown(pct int, secondary bool) alert.Decision {
	return alert.Decision{
		Visible:                true,
		SecondaryActionEnabled: secondary,
		StatusText:             fmt.Sprintf("You may want to charge it soon. Current battery level: %d%%", pct),
	}
}

func mqttTestConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker:   "tcp://127.0.0.1:1883",
		Topic:    "home/laptop",
		ClientID: "lowbatt-test",
	}
}

func TestLastDecisionDropsRepeats(t *testing.T) {
	var l lastDecision

	_, changed := l.update(alert.Decision{})
	assert.False(t, changed)

	d, changed := l.update(shown(12, false))
	assert.True(t, changed)
	assert.True(t, d.Visible)

	_, changed = l.update(shown(12, false))
	assert.False(t, changed)

	// Keep-quiet decisions carry no text.
	d, changed = l.update(alert.Decision{Visible: true})
	assert.False(t, changed)
	assert.Equal(t, shown(12, false).StatusText, d.StatusText)

	_, changed = l.update(shown(11, false))
	assert.True(t, changed)

	_, changed = l.update(alert.Decision{Visible: true, SecondaryActionEnabled: true})
	assert.True(t, changed)
	assert.True(t, l.secondaryAllowed())

	_, changed = l.update(alert.Decision{})
	assert.True(t, changed)
	assert.False(t, l.secondaryAllowed())
}

func TestLastDecisionEdgeFlagsAreOneShot(t *testing.T) {
	var l lastDecision

	d := shown(10, false)
	d.PresentNow = true
	d.ReloadStyle = true
	_, changed := l.update(d)
	assert.True(t, changed)
	assert.False(t, l.get().PresentNow)
	assert.False(t, l.get().ReloadStyle)

	// A second present request for the same content is still a change.
	_, changed = l.update(d)
	assert.True(t, changed)
}

func TestLogPresenter(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	p := NewLog()
	p.Apply(alert.Decision{})
	assert.Empty(t, hook.AllEntries())

	p.Apply(shown(9, false))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "9%")

	hook.Reset()
	p.Apply(alert.Decision{Visible: true})
	assert.Empty(t, hook.AllEntries())

	p.Apply(alert.Decision{})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, p.Run(ctx, &fakeActions{}))
}

func TestMultiFansOut(t *testing.T) {
	primary := &fakePresenter{name: "tui"}
	other := &fakePresenter{name: "mqtt", block: true}
	m := NewMulti(primary, other)

	assert.Equal(t, "tui+mqtt", m.Name())

	m.Apply(shown(14, false))
	assert.Len(t, primary.applied, 1)
	assert.Len(t, other.applied, 1)

	// The primary returns at once; the others must be stopped with it.
	primary.runErr = errors.New("quit")
	err := m.Run(context.Background(), &fakeActions{})
	require.EqualError(t, err, "quit")
	assert.True(t, other.stopped.Load())
}

func TestLoadTheme(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTheme("")
	assert.NoError(t, err)

	_, err = LoadTheme(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrStyleNotFound)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = LoadTheme(bad)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrStyleNotFound)

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"width": 30, "header": "#00FF00"}`), 0644))
	theme, err := LoadTheme(good)
	require.NoError(t, err)
	assert.Equal(t, 30, theme.Window.GetWidth())
}

func newTestModel(actions Actions) tuiModel {
	return newTUIModel("Hibernate", "", actions)
}

func update(t *testing.T, m tuiModel, msg tea.Msg) (tuiModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	nm, ok := next.(tuiModel)
	require.True(t, ok)
	return nm, cmd
}

func runCmd(cmd tea.Cmd) {
	if cmd != nil {
		cmd()
	}
}

func TestTUIIdleView(t *testing.T) {
	m := newTestModel(&fakeActions{})
	assert.Contains(t, m.View(), "watching your battery")
	assert.NotContains(t, m.View(), "Got it!")
}

func TestTUIShowsAlert(t *testing.T) {
	m := newTestModel(&fakeActions{})

	d := shown(13, false)
	d.PresentNow = true
	m, _ = update(t, m, decisionMsg(d))

	view := m.View()
	assert.Contains(t, view, "Battery is running low")
	assert.Contains(t, view, "13%")
	assert.Contains(t, view, "Got it!")
	assert.Contains(t, view, "Hibernate")
	assert.Equal(t, focusDismiss, m.focus)
}

func TestTUIDismissGestures(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyEnter},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
	} {
		t.Run(key.String(), func(t *testing.T) {
			actions := &fakeActions{}
			m := newTestModel(actions)
			m, _ = update(t, m, decisionMsg(shown(12, false)))

			m, cmd := update(t, m, key)
			runCmd(cmd)
			assert.Equal(t, int32(1), actions.dismissed.Load())
			assert.Zero(t, actions.secondary.Load())
			assert.False(t, m.decision.Visible)
		})
	}
}

func TestTUISecondaryAction(t *testing.T) {
	actions := &fakeActions{}
	m := newTestModel(actions)
	m, _ = update(t, m, decisionMsg(shown(4, true)))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusSecondary, m.focus)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(cmd)
	assert.Equal(t, int32(1), actions.secondary.Load())
	assert.Zero(t, actions.dismissed.Load())
}

func TestTUISecondaryDisabledKeepsFocus(t *testing.T) {
	actions := &fakeActions{}
	m := newTestModel(actions)
	m, _ = update(t, m, decisionMsg(shown(12, false)))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusDismiss, m.focus)

	// Losing the risk band moves focus off the secondary button.
	m, _ = update(t, m, decisionMsg(shown(4, true)))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusSecondary, m.focus)
	m, _ = update(t, m, decisionMsg(alert.Decision{Visible: true}))
	assert.Equal(t, focusDismiss, m.focus)
}

func TestTUIIgnoresKeysWhileHidden(t *testing.T) {
	actions := &fakeActions{}
	m := newTestModel(actions)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTUIKeepsTextOnKeepQuiet(t *testing.T) {
	m := newTestModel(&fakeActions{})
	m, _ = update(t, m, decisionMsg(shown(14, false)))
	m, _ = update(t, m, decisionMsg(alert.Decision{Visible: true}))
	assert.Contains(t, m.View(), "14%")
}

func TestMQTTStatePayload(t *testing.T) {
	now := time.Unix(1700000000, 0)

	p := newStatePayload(shown(8, true), now)
	assert.True(t, p.Visible)
	assert.True(t, p.SecondaryActionEnabled)
	assert.Contains(t, p.StatusText, "8%")
	assert.Equal(t, int64(1700000000), p.Ts)

	p = newStatePayload(alert.Decision{SecondaryActionEnabled: true, StatusText: "stale"}, now)
	assert.False(t, p.Visible)
	assert.False(t, p.SecondaryActionEnabled)
	assert.Empty(t, p.StatusText)
}

func TestMQTTHandleCommand(t *testing.T) {
	actions := &fakeActions{}
	m := NewMQTT(mqttTestConfig())

	assert.False(t, m.handleCommand([]byte("reboot"), actions))

	// Secondary is gated on the last decision.
	assert.False(t, m.handleCommand([]byte("secondary"), actions))
	assert.Zero(t, actions.secondary.Load())

	m.Apply(shown(3, true))
	assert.True(t, m.handleCommand([]byte(" Secondary\n"), actions))
	assert.Equal(t, int32(1), actions.secondary.Load())

	assert.True(t, m.handleCommand([]byte("dismiss"), actions))
	assert.Equal(t, int32(1), actions.dismissed.Load())
}

func TestMQTTTopics(t *testing.T) {
	m := NewMQTT(mqttTestConfig())
	assert.Equal(t, "home/laptop/state", m.stateTopic())
	assert.Equal(t, "home/laptop/command", m.commandTopic())
}
