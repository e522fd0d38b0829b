package sampler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/distatus/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

func writeBattery(t *testing.T, root, name, capacity, status string) {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if capacity != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "capacity"), []byte(capacity), 0644))
	}
	if status != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0644))
	}
}

func TestSysfsSample(t *testing.T) {
	tests := []struct {
		name     string
		capacity string
		status   string
		want     alert.Sample
		wantErr  bool
	}{
		{name: "discharging", capacity: "42\n", status: "Discharging\n", want: alert.Sample{Percentage: 42}},
		{name: "charging", capacity: "7\n", status: "Charging\n", want: alert.Sample{Percentage: 7, Charging: true}},
		{name: "full", capacity: "100\n", status: "Full\n", want: alert.Sample{Percentage: 100}},
		{name: "not charging", capacity: "80\n", status: "Not charging\n", want: alert.Sample{Percentage: 80}},
		{name: "garbage capacity", capacity: "abc\n", status: "Discharging\n", wantErr: true},
		{name: "out of range", capacity: "140\n", status: "Discharging\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeBattery(t, root, "BAT0", tt.capacity, tt.status)

			s, err := NewSysfs(root)
			require.NoError(t, err)

			got, err := s.Sample(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Percentage, got.Percentage)
			assert.Equal(t, tt.want.Charging, got.Charging)
			assert.False(t, got.At.IsZero())
		})
	}
}

func TestSysfsProbesBatteries(t *testing.T) {
	root := t.TempDir()
	writeBattery(t, root, "BAT1", "", "Discharging")
	writeBattery(t, root, "BAT2", "55", "")

	s, err := NewSysfs(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "BAT2", "capacity"), s.capacityPath)
	assert.Equal(t, filepath.Join(root, "BAT1", "status"), s.statusPath)
}

func TestSysfsNoBattery(t *testing.T) {
	root := t.TempDir()
	writeBattery(t, root, "AC", "", "")

	_, err := NewSysfs(root)
	require.ErrorIs(t, err, ErrNoBattery)
}

func TestSysfsVanishedFileIsUnknown(t *testing.T) {
	root := t.TempDir()
	writeBattery(t, root, "BAT0", "30", "Discharging")

	s, err := NewSysfs(root)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "BAT0", "capacity")))

	got, err := SampleOrUnknown(context.Background(), s)
	assert.Error(t, err)
	assert.False(t, got.Known())
}

func TestGenericSample(t *testing.T) {
	orig := getBattery
	defer func() { getBattery = orig }()

	tests := []struct {
		name    string
		bat     *battery.Battery
		err     error
		want    alert.Sample
		wantErr bool
	}{
		{
			name: "discharging",
			bat:  &battery.Battery{State: battery.Discharging, Current: 12000, Full: 48000},
			want: alert.Sample{Percentage: 25},
		},
		{
			name: "charging",
			bat:  &battery.Battery{State: battery.Charging, Current: 4800, Full: 48000},
			want: alert.Sample{Percentage: 10, Charging: true},
		},
		{
			name: "above full is clamped",
			bat:  &battery.Battery{State: battery.Full, Current: 50000, Full: 48000},
			want: alert.Sample{Percentage: 100},
		},
		{
			name: "partial read without the fields we need",
			bat:  &battery.Battery{State: battery.Discharging, Current: 24000, Full: 48000},
			err:  battery.ErrPartial{Design: errors.New("no design")},
			want: alert.Sample{Percentage: 50},
		},
		{
			name:    "partial read missing current",
			bat:     &battery.Battery{State: battery.Discharging, Full: 48000},
			err:     battery.ErrPartial{Current: errors.New("no current")},
			wantErr: true,
		},
		{
			name:    "zero full",
			bat:     &battery.Battery{State: battery.Discharging, Current: 10},
			wantErr: true,
		},
		{
			name:    "fatal",
			err:     errors.New("no such device"),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getBattery = func(int) (*battery.Battery, error) { return tt.bat, tt.err }

			got, err := NewGeneric(0).Sample(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Percentage, got.Percentage)
			assert.Equal(t, tt.want.Charging, got.Charging)
		})
	}
}

func TestDetectPrefersSysfs(t *testing.T) {
	root := t.TempDir()
	writeBattery(t, root, "BAT0", "64", "Discharging")

	s, err := Detect(root)
	require.NoError(t, err)
	assert.Equal(t, "sysfs", s.Name())
}

func TestDetectFallsBackToGeneric(t *testing.T) {
	orig := getBattery
	defer func() { getBattery = orig }()

	getBattery = func(int) (*battery.Battery, error) {
		return &battery.Battery{State: battery.Discharging, Current: 1, Full: 2}, nil
	}
	s, err := Detect(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "generic", s.Name())

	getBattery = func(int) (*battery.Battery, error) { return nil, errors.New("none") }
	_, err = Detect(t.TempDir())
	require.ErrorIs(t, err, ErrNoBattery)
}
