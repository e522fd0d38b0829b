package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSystemctl(t *testing.T) *[]string {
	t.Helper()

	var calls []string
	orig := systemctl
	systemctl = func(args ...string) error {
		calls = append(calls, strings.Join(args, " "))
		return nil
	}
	t.Cleanup(func() { systemctl = orig })
	return &calls
}

func TestRenderUnit(t *testing.T) {
	unit := RenderUnit("/usr/local/bin/lowbatt", "tray")
	assert.Contains(t, unit, "ExecStart=/usr/local/bin/lowbatt daemon --presenter tray")
	assert.NotContains(t, unit, "/path/to/lowbatt")
	assert.Contains(t, unit, "[Install]")
}

func TestInstallAndUninstall(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	calls := fakeSystemctl(t)

	require.NoError(t, Install("log"))

	unitPath, err := UnitPath()
	require.NoError(t, err)
	b, err := os.ReadFile(unitPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "--presenter log")
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "systemd", "user", "lowbatt.service"), unitPath)
	assert.Equal(t, []string{"daemon-reload", "enable --now lowbatt.service"}, *calls)

	*calls = nil
	require.NoError(t, Uninstall())
	_, err = os.Stat(unitPath)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, []string{"disable --now lowbatt.service", "daemon-reload"}, *calls)

	// Uninstalling twice is fine.
	*calls = nil
	require.NoError(t, Uninstall())
	assert.Empty(t, *calls)
}
