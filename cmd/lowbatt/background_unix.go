//go:build unix

package main

import (
	"os"
	"os/exec"
	"syscall"
)

// startBackground starts this binary again in a new session with the same
// arguments, minus --background.
func startBackground(args []string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, err
	}

	c := exec.Command(exe, withoutBackground(args)...)
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := c.Start(); err != nil {
		return 0, err
	}
	pid := c.Process.Pid
	return pid, c.Process.Release()
}
