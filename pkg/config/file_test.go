package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

func TestNewFileMissingUsesDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, 15, f.LowLevel())
	assert.Equal(t, 5, f.RiskLevel())
	assert.Equal(t, "Hibernate", f.ButtonText())
	assert.Equal(t, "systemctl hibernate", f.ButtonCommand())
	assert.Equal(t, PresenterTUI, f.Presenter())
	assert.Equal(t, time.Second, f.SampleInterval())
	assert.Equal(t, time.Second, f.TickInterval())
	assert.False(t, f.MQTT().Enabled())
	assert.Equal(t, "lowbatt", f.MQTT().Topic)
	require.NoError(t, f.Validate())
}

func TestNewFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))

	f, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 15, f.LowLevel())
}

func TestNewFileInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := NewFile(path)
	require.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	f := NewFileFromConfig(nil, path)
	f.SetLowLevel(30)
	f.SetRiskLevel(12)
	f.SetButtonText("Suspend")
	f.SetButtonCommand("systemctl suspend")
	f.SetPresenter(PresenterLog)
	f.SetAllowNonRootAccess(true)
	require.NoError(t, f.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	g, err := NewFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, g.LowLevel())
	assert.Equal(t, 12, g.RiskLevel())
	assert.Equal(t, "Suspend", g.ButtonText())
	assert.Equal(t, "systemctl suspend", g.ButtonCommand())
	assert.Equal(t, PresenterLog, g.Presenter())
	assert.True(t, g.AllowNonRootAccess())

	p, err := g.Policy()
	require.NoError(t, err)
	assert.Equal(t, alert.Policy{LowLevel: 30, RiskLevel: 12}, p)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "ok", raw: `{"lowLevel": 20, "riskLevel": 10, "sampleInterval": "500ms"}`},
		{name: "misordered", raw: `{"lowLevel": 10, "riskLevel": 20}`, wantErr: alert.ErrInvalidPolicy},
		{name: "equal", raw: `{"lowLevel": 10, "riskLevel": 10}`, wantErr: alert.ErrInvalidPolicy},
		{name: "out of range", raw: `{"lowLevel": 120}`, wantErr: alert.ErrInvalidPolicy},
		{name: "bad interval", raw: `{"tickInterval": "soon"}`, wantErr: ErrInvalidConfig},
		{name: "negative interval", raw: `{"sampleInterval": "-1s"}`, wantErr: ErrInvalidConfig},
		{name: "unknown presenter", raw: `{"presenter": "gtk"}`, wantErr: ErrInvalidConfig},
		{name: "empty command", raw: `{"buttonCommand": "  "}`, wantErr: ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.raw), 0644))

			f, err := NewFile(path)
			require.NoError(t, err)

			err = f.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRawFileConfigHidesPassword(t *testing.T) {
	f := NewFileFromConfig(&RawFileConfig{
		MQTT: &MQTTConfig{Broker: "tcp://localhost:1883", Password: "secret"},
	}, "")

	assert.Equal(t, "secret", f.MQTT().Password)
	assert.Equal(t, "lowbatt", f.MQTT().Topic)

	raw, err := NewRawFileConfigFromConfig(f)
	require.NoError(t, err)
	assert.Empty(t, raw.MQTT.Password)
	assert.Equal(t, "tcp://localhost:1883", raw.MQTT.Broker)
	assert.Equal(t, "1s", *raw.SampleInterval)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester/.config/lowbatt/style.json", ExpandHome("~/.config/lowbatt/style.json"))
	assert.Equal(t, "/home/tester", ExpandHome("~"))
	assert.Equal(t, "/etc/style.json", ExpandHome("/etc/style.json"))
	assert.Equal(t, "~other/style.json", ExpandHome("~other/style.json"))
}
