package types

import "github.com/gallxyz/lowbatt/pkg/alert"

// DaemonStatus is the alert controller snapshot plus what the daemon is
// running with. This struct is shared between the daemon and client packages.
type DaemonStatus struct {
	alert.Status

	Presenter       string `json:"presenter"`
	Sampler         string `json:"sampler"`
	LastSampleError string `json:"lastSampleError,omitempty"`
	MissedTicks     int    `json:"missedTicks"`
}
