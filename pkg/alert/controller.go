package alert

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Controller owns the alert state and the most recent sample. All methods
// are safe for concurrent use; they are applied in lock order, so a user
// action that wins the lock is seen by the next tick.
type Controller struct {
	mu sync.Mutex

	policy  Policy
	command string
	runner  Runner

	sample   Sample
	state    State
	decision Decision
}

// NewController returns a controller in the hidden, unsuppressed state.
func NewController(policy Policy, command string, runner Runner) *Controller {
	return &Controller{
		policy:  policy,
		command: command,
		runner:  runner,
		sample:  UnknownSample(),
	}
}

// Observe stores a new sample. It does not change the decision; that
// happens on the next Tick.
func (c *Controller) Observe(sample Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sample = sample
}

// Tick recomputes the decision from the last observed sample.
func (c *Controller) Tick() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	c.decision, c.state = Tick(c.state, c.sample, c.policy)

	if prev != c.state {
		logrus.WithFields(logrus.Fields{
			"percentage":  c.sample.Percentage,
			"charging":    c.sample.Charging,
			"visible":     c.state.Visible,
			"secondary":   c.state.SecondaryActionEnabled,
			"suppression": c.state.Suppression,
		}).Debug("alert state changed")
	}

	return c.decision
}

// Dismiss handles the acknowledge button, the cancel key and window close
// requests alike.
func (c *Controller) Dismiss() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dismiss()
}

func (c *Controller) dismiss() Decision {
	c.decision, c.state = Dismiss(c.state, c.sample.Percentage, c.policy)

	logrus.WithFields(logrus.Fields{
		"percentage":  c.sample.Percentage,
		"suppression": c.state.Suppression,
	}).Info("alert dismissed")

	return c.decision
}

// DismissVisible dismisses the alert only while it is shown and reports
// whether it did. Gestures delivered asynchronously may arrive after a tick
// already hid the alert; those must not escalate suppression.
func (c *Controller) DismissVisible() (Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Visible {
		return c.decision, false
	}
	return c.dismiss(), true
}

// SecondaryAction launches the configured command. The session is suppressed
// even when the launch fails, in which case the alert stays on screen and the
// returned error wraps ErrActionLaunch.
func (c *Controller) SecondaryAction() (Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, inv, err := RequestSecondaryAction(c.state, c.command)
	if err != nil {
		return c.decision, err
	}
	c.state = state

	launchErr := c.runner.Launch(inv)
	c.decision, c.state = CompleteSecondaryAction(c.state, launchErr == nil)
	if launchErr != nil {
		logrus.WithError(launchErr).WithField("command", inv.Command).Error("secondary action failed to launch")
		return c.decision, fmt.Errorf("%w: %w", ErrActionLaunch, launchErr)
	}

	logrus.WithField("command", inv.Command).Info("secondary action launched")
	return c.decision, nil
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		Policy:   c.policy,
		Sample:   c.sample,
		State:    c.state,
		Decision: c.decision,
	}
}

// Policy returns the thresholds the controller was built with.
func (c *Controller) Policy() Policy {
	return c.policy
}
