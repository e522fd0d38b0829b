package presenter

import (
	"context"
	"sync"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

const (
	trayIdleTitle  = "🔋"
	trayAlertTitle = "🪫 Low battery"
)

// Tray shows the alert as a system tray menu. Run must be called from the
// main goroutine with the OS thread locked.
type Tray struct {
	buttonText string

	last lastDecision

	mu        sync.Mutex
	ready     bool
	mStatus   *systray.MenuItem
	mAction   *systray.MenuItem
	mDismiss  *systray.MenuItem
	mQuit     *systray.MenuItem
	runSystem func(onReady, onExit func())
	quit      func()
}

func NewTray(buttonText string) *Tray {
	return &Tray{
		buttonText: buttonText,
		runSystem:  systray.Run,
		quit:       systray.Quit,
	}
}

func (t *Tray) Name() string {
	return "tray"
}

func (t *Tray) Apply(d alert.Decision) {
	merged, changed := t.last.update(d)
	if !changed {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ready {
		t.render(merged)
	}
}

func (t *Tray) Run(ctx context.Context, actions Actions) error {
	done := make(chan struct{})
	defer close(done)

	onReady := func() {
		systray.SetTitle(trayIdleTitle)
		systray.SetTooltip("lowbatt - low battery alert")

		t.mu.Lock()
		t.mStatus = systray.AddMenuItem("Battery level is fine", "Current alert")
		t.mStatus.Disable()
		systray.AddSeparator()
		t.mAction = systray.AddMenuItem(t.buttonText, "Run the configured command")
		t.mDismiss = systray.AddMenuItem("Got it!", "Dismiss the alert")
		systray.AddSeparator()
		t.mQuit = systray.AddMenuItem("Quit", "Quit lowbatt")
		t.ready = true
		t.render(t.last.get())
		t.mu.Unlock()

		go t.loop(ctx, done, actions)
	}
	onExit := func() {
		logrus.Info("tray exiting")
	}

	go func() {
		select {
		case <-ctx.Done():
			t.quit()
		case <-done:
		}
	}()

	t.runSystem(onReady, onExit)
	return nil
}

func (t *Tray) loop(ctx context.Context, done <-chan struct{}, actions Actions) {
	for {
		select {
		case <-t.mDismiss.ClickedCh:
			actions.Dismiss()
		case <-t.mAction.ClickedCh:
			if t.last.secondaryAllowed() {
				actions.SecondaryAction()
			}
		case <-t.mQuit.ClickedCh:
			t.quit()
			return
		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}

// render must be called with t.mu held.
func (t *Tray) render(d alert.Decision) {
	if !d.Visible {
		systray.SetTitle(trayIdleTitle)
		t.mStatus.SetTitle("Battery level is fine")
		t.mDismiss.Hide()
		t.mAction.Hide()
		return
	}

	systray.SetTitle(trayAlertTitle)
	t.mStatus.SetTitle(d.StatusText)
	t.mDismiss.Show()
	t.mAction.Show()
	if d.SecondaryActionEnabled {
		t.mAction.Enable()
	} else {
		t.mAction.Disable()
	}
}
