package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

func TestShellLaunch(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")

	err := NewShell().Launch(alert.Invocation{Command: "touch " + marker})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestShellLaunchDoesNotWait(t *testing.T) {
	start := time.Now()
	require.NoError(t, NewShell().Launch(alert.Invocation{Command: "sleep 3"}))
	assert.Less(t, time.Since(start), time.Second)
}

func TestShellLaunchFailure(t *testing.T) {
	s := &Shell{Path: filepath.Join(t.TempDir(), "no-such-shell")}
	require.Error(t, s.Launch(alert.Invocation{Command: "true"}))

	require.Error(t, NewShell().Launch(alert.Invocation{}))
}
