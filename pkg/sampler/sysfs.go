package sampler

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

// DefaultSysfsRoot is the Linux power supply class directory.
const DefaultSysfsRoot = "/sys/class/power_supply"

const maxBatteries = 10

// Sysfs reads BATn/capacity and BATn/status.
type Sysfs struct {
	capacityPath string
	statusPath   string
}

// NewSysfs probes BAT0 to BAT9 under root for each file independently.
func NewSysfs(root string) (*Sysfs, error) {
	if root == "" {
		root = DefaultSysfsRoot
	}

	capacity := findBatteryFile(root, "capacity")
	status := findBatteryFile(root, "status")
	if capacity == "" || status == "" {
		return nil, pkgerrors.Wrapf(ErrNoBattery, "no battery file found in %s", root)
	}

	return &Sysfs{capacityPath: capacity, statusPath: status}, nil
}

func findBatteryFile(root, name string) string {
	for i := 0; i < maxBatteries; i++ {
		p := filepath.Join(root, "BAT"+strconv.Itoa(i), name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (s *Sysfs) Name() string {
	return "sysfs"
}

func (s *Sysfs) Sample(_ context.Context) (alert.Sample, error) {
	b, err := os.ReadFile(s.capacityPath)
	if err != nil {
		return alert.Sample{}, pkgerrors.Wrapf(err, "failed to read %s", s.capacityPath)
	}
	pct, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return alert.Sample{}, pkgerrors.Wrapf(err, "failed to parse %s", s.capacityPath)
	}
	if pct < 0 || pct > 100 {
		return alert.Sample{}, pkgerrors.Wrapf(ErrOutOfRange, "%s reported %d", s.capacityPath, pct)
	}

	b, err = os.ReadFile(s.statusPath)
	if err != nil {
		return alert.Sample{}, pkgerrors.Wrapf(err, "failed to read %s", s.statusPath)
	}

	return alert.Sample{
		Percentage: pct,
		Charging:   strings.HasPrefix(strings.TrimSpace(string(b)), "Charging"),
		At:         time.Now(),
	}, nil
}
