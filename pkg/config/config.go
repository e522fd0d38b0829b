package config

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

// Presenter names accepted by the daemon.
const (
	PresenterTUI  = "tui"
	PresenterTray = "tray"
	PresenterLog  = "log"
)

type Config interface {
	LowLevel() int
	RiskLevel() int
	ButtonText() string
	ButtonCommand() string
	StyleFile() string
	Presenter() string
	SampleInterval() time.Duration
	TickInterval() time.Duration
	AllowNonRootAccess() bool
	MQTT() MQTTConfig

	SetLowLevel(int)
	SetRiskLevel(int)
	SetButtonText(string)
	SetButtonCommand(string)
	SetStyleFile(string)
	SetPresenter(string)
	SetAllowNonRootAccess(bool)

	// Policy returns the alert thresholds, or an error wrapping
	// alert.ErrInvalidPolicy.
	Policy() (alert.Policy, error)
	// Validate checks the whole configuration.
	Validate() error
	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}

// MQTTConfig configures the MQTT mirror. An empty Broker disables it.
type MQTTConfig struct {
	Broker   string `json:"broker,omitempty"`
	Topic    string `json:"topic,omitempty"`
	ClientID string `json:"clientID,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}
