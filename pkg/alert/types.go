package alert

import (
	"fmt"
	"time"
)

// Unknown is the percentage reported when the battery level could not be read.
const Unknown = -1

// Sample is one battery reading.
type Sample struct {
	Percentage int       `json:"percentage"`
	Charging   bool      `json:"charging"`
	At         time.Time `json:"at"`
}

// UnknownSample returns a sample that never raises an alert.
func UnknownSample() Sample {
	return Sample{Percentage: Unknown, At: time.Now()}
}

// Known reports whether the percentage is a real reading.
func (s Sample) Known() bool {
	return s.Percentage >= 0 && s.Percentage <= 100
}

// Suppression is how much the user has silenced the alert.
type Suppression int

const (
	// SuppressionNone means the alert shows whenever the battery is low.
	SuppressionNone Suppression = iota
	// SuppressionOnce means the alert was dismissed in the low band. It stays
	// quiet until the battery reaches the risk band.
	SuppressionOnce
	// SuppressionSession means the alert stays quiet until the battery
	// recovers above the low level or starts charging.
	SuppressionSession
)

func (s Suppression) String() string {
	switch s {
	case SuppressionNone:
		return "none"
	case SuppressionOnce:
		return "once"
	case SuppressionSession:
		return "session"
	default:
		return "unknown"
	}
}

func (s Suppression) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Suppression) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none":
		*s = SuppressionNone
	case "once":
		*s = SuppressionOnce
	case "session":
		*s = SuppressionSession
	default:
		return fmt.Errorf("unknown suppression %q", string(b))
	}
	return nil
}

// State is everything the controller remembers between ticks.
type State struct {
	Visible                bool        `json:"visible"`
	SecondaryActionEnabled bool        `json:"secondaryActionEnabled"`
	Suppression            Suppression `json:"suppression"`
}

// Decision tells a presenter what to show.
//
// StatusText is empty when the label should be left as is. PresentNow and
// ReloadStyle are edge-triggered: they are only set on the tick the alert
// goes from hidden to visible.
type Decision struct {
	Visible                bool   `json:"visible"`
	SecondaryActionEnabled bool   `json:"secondaryActionEnabled"`
	StatusText             string `json:"statusText,omitempty"`
	PresentNow             bool   `json:"presentNow,omitempty"`
	ReloadStyle            bool   `json:"reloadStyle,omitempty"`
}

// Invocation is a request to run the secondary action.
type Invocation struct {
	Command string `json:"command"`
}

// Runner launches an invocation without waiting for it to finish.
type Runner interface {
	Launch(inv Invocation) error
}

// Status is a point-in-time view of a Controller.
type Status struct {
	Policy   Policy   `json:"policy"`
	Sample   Sample   `json:"sample"`
	State    State    `json:"state"`
	Decision Decision `json:"decision"`
}

func statusText(percentage int) string {
	return fmt.Sprintf("You may want to charge it soon. Current battery level: %d%%", percentage)
}
