package sampler

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

var (
	// ErrNoBattery is returned by Detect when the host has no battery.
	ErrNoBattery = errors.New("no battery found")

	// ErrOutOfRange is returned when the OS reports a level outside 0..100.
	ErrOutOfRange = errors.New("battery level out of range")
)

// Sampler reads the battery once per call.
type Sampler interface {
	Sample(ctx context.Context) (alert.Sample, error)
	Name() string
}

// Detect prefers the sysfs power supply class and falls back to the
// platform battery API.
func Detect(root string) (Sampler, error) {
	s, err := NewSysfs(root)
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"capacity": s.capacityPath,
			"status":   s.statusPath,
		}).Info("using sysfs battery")
		return s, nil
	}
	logrus.WithError(err).Debug("sysfs battery not available")

	g := NewGeneric(0)
	if _, err := g.Sample(context.Background()); err != nil {
		logrus.WithError(err).Debug("platform battery not available")
		return nil, ErrNoBattery
	}
	logrus.Info("using platform battery API")
	return g, nil
}

// SampleOrUnknown maps read errors to an unknown sample, which the
// controller never alerts on. The error is returned for reporting only.
func SampleOrUnknown(ctx context.Context, s Sampler) (alert.Sample, error) {
	smp, err := s.Sample(ctx)
	if err != nil {
		return alert.UnknownSample(), pkgerrors.Wrapf(err, "%s sampler", s.Name())
	}
	return smp, nil
}
