package sampler

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

// getBattery is a test seam.
var getBattery = battery.Get

// Generic reads the battery through the platform API, for hosts without
// the sysfs power supply class.
type Generic struct {
	index int
}

func NewGeneric(index int) *Generic {
	return &Generic{index: index}
}

func (g *Generic) Name() string {
	return "generic"
}

// Info returns the raw battery description, tolerating partial reads.
func (g *Generic) Info(_ context.Context) (*battery.Battery, error) {
	bat, err := getBattery(g.index)
	if err != nil {
		var partial battery.ErrPartial
		if !errors.As(err, &partial) || bat == nil {
			return nil, pkgerrors.Wrapf(err, "failed to get battery %d", g.index)
		}
		if partial.Current != nil || partial.Full != nil || partial.State != nil {
			return nil, pkgerrors.Wrapf(err, "incomplete reading for battery %d", g.index)
		}
	}
	if bat.State == battery.Discharging {
		bat.ChargeRate = -bat.ChargeRate
	}
	return bat, nil
}

func (g *Generic) Sample(ctx context.Context) (alert.Sample, error) {
	bat, err := g.Info(ctx)
	if err != nil {
		return alert.Sample{}, err
	}
	if bat.Full <= 0 {
		return alert.Sample{}, pkgerrors.Wrapf(ErrOutOfRange, "battery %d reports full capacity %v", g.index, bat.Full)
	}

	pct := int(math.Round(bat.Current / bat.Full * 100))
	if pct > 100 {
		// Worn batteries can report a current charge above the last full charge.
		pct = 100
	}
	if pct < 0 {
		return alert.Sample{}, pkgerrors.Wrapf(ErrOutOfRange, "battery %d reported %d%%", g.index, pct)
	}

	return alert.Sample{
		Percentage: pct,
		Charging:   bat.State == battery.Charging,
		At:         time.Now(),
	}, nil
}
