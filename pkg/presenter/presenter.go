package presenter

import (
	"context"
	"sync"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

// Actions receives user gestures. Every dismiss gesture (acknowledge
// button, cancel key, close request) maps to Dismiss.
type Actions interface {
	Dismiss()
	SecondaryAction()
}

// Presenter shows decisions to the user. Apply must be idempotent and must
// not block for long; Run blocks until ctx is done or the user quits.
type Presenter interface {
	Name() string
	Apply(d alert.Decision)
	Run(ctx context.Context, actions Actions) error
}

// lastDecision remembers what a presenter shows so that repeated decisions
// are dropped and the secondary gesture can be gated.
type lastDecision struct {
	mu sync.Mutex
	d  alert.Decision
}

// update merges d into the stored decision and reports whether anything
// observable changed. An empty status text keeps the previous one.
func (l *lastDecision) update(d alert.Decision) (alert.Decision, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d.StatusText == "" && d.Visible {
		d.StatusText = l.d.StatusText
	}
	changed := d.PresentNow || d.ReloadStyle ||
		d.Visible != l.d.Visible ||
		d.SecondaryActionEnabled != l.d.SecondaryActionEnabled ||
		d.StatusText != l.d.StatusText

	// Edge flags are one-shot and never stored.
	d.PresentNow = false
	d.ReloadStyle = false
	l.d = d

	return d, changed
}

func (l *lastDecision) get() alert.Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.d
}

// secondaryAllowed reports whether the last decision enabled the secondary
// action.
func (l *lastDecision) secondaryAllowed() bool {
	d := l.get()
	return d.Visible && d.SecondaryActionEnabled
}
