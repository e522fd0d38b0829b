package presenter

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

// Log is a headless presenter. Gestures come from the CLI through the
// daemon API.
type Log struct {
	last lastDecision
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Name() string {
	return "log"
}

func (l *Log) Apply(d alert.Decision) {
	prev := l.last.get()
	cur, changed := l.last.update(d)
	if !changed {
		return
	}

	fields := logrus.Fields{
		"visible":   cur.Visible,
		"secondary": cur.SecondaryActionEnabled,
	}
	switch {
	case cur.Visible && !prev.Visible:
		logrus.WithFields(fields).Warn("battery is running low: " + cur.StatusText)
	case !cur.Visible && prev.Visible:
		logrus.WithFields(fields).Info("low battery alert hidden")
	case cur.Visible:
		logrus.WithFields(fields).Info(cur.StatusText)
	}
}

func (l *Log) Run(ctx context.Context, _ Actions) error {
	<-ctx.Done()
	return nil
}
