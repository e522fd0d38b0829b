package runner

import (
	"os/exec"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

// DefaultShell runs the secondary action command line.
const DefaultShell = "/bin/sh"

var _ alert.Runner = &Shell{}

// Shell runs commands with `sh -c` and does not wait for them.
type Shell struct {
	Path string
}

func NewShell() *Shell {
	return &Shell{Path: DefaultShell}
}

// Launch starts the command in its own session with stdio detached. The
// child is reaped in the background; its exit status is only logged.
func (s *Shell) Launch(inv alert.Invocation) error {
	if inv.Command == "" {
		return pkgerrors.New("empty command")
	}

	path := s.Path
	if path == "" {
		path = DefaultShell
	}

	cmd := exec.Command(path, "-c", inv.Command)
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return pkgerrors.Wrapf(err, "failed to start %q", inv.Command)
	}

	pid := cmd.Process.Pid
	logrus.WithFields(logrus.Fields{
		"command": inv.Command,
		"pid":     pid,
	}).Info("command launched")

	go func() {
		err := cmd.Wait()
		entry := logrus.WithFields(logrus.Fields{
			"command": inv.Command,
			"pid":     pid,
		})
		if err != nil {
			entry.WithError(err).Warn("command exited with error")
			return
		}
		entry.Debug("command exited")
	}()

	return nil
}
