package presenter

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
	"github.com/gallxyz/lowbatt/pkg/config"
)

// Commands accepted on <topic>/command.
const (
	CommandDismiss   = "dismiss"
	CommandSecondary = "secondary"
)

// StatePayload is published, retained, on <topic>/state.
type StatePayload struct {
	Visible                bool   `json:"visible"`
	SecondaryActionEnabled bool   `json:"secondaryActionEnabled"`
	StatusText             string `json:"statusText,omitempty"`
	Ts                     int64  `json:"ts"`
}

// MQTT mirrors the alert to a broker and takes dismiss and secondary
// commands from it.
type MQTT struct {
	cfg  config.MQTTConfig
	last lastDecision

	mu     sync.Mutex
	client mqtt.Client
}

func NewMQTT(cfg config.MQTTConfig) *MQTT {
	return &MQTT{cfg: cfg}
}

func (m *MQTT) Name() string {
	return "mqtt"
}

func (m *MQTT) stateTopic() string {
	return m.cfg.Topic + "/state"
}

func (m *MQTT) commandTopic() string {
	return m.cfg.Topic + "/command"
}

func (m *MQTT) Apply(d alert.Decision) {
	merged, changed := m.last.update(d)
	if !changed {
		return
	}
	m.publish(merged)
}

func (m *MQTT) publish(d alert.Decision) {
	m.mu.Lock()
	c := m.client
	m.mu.Unlock()

	if c == nil || !c.IsConnected() {
		return
	}

	payload, err := json.Marshal(newStatePayload(d, time.Now()))
	if err != nil {
		logrus.WithError(err).Error("failed to marshal mqtt state")
		return
	}

	// Publishing must not block the tick loop.
	token := c.Publish(m.stateTopic(), 1, true, payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			logrus.WithError(token.Error()).WithField("topic", m.stateTopic()).Warn("failed to publish mqtt state")
		}
	}()
}

func newStatePayload(d alert.Decision, now time.Time) StatePayload {
	p := StatePayload{
		Visible:                d.Visible,
		SecondaryActionEnabled: d.Visible && d.SecondaryActionEnabled,
		Ts:                     now.Unix(),
	}
	if d.Visible {
		p.StatusText = d.StatusText
	}
	return p
}

// handleCommand maps a command payload to an action. Unknown commands and
// secondary commands while the action is disabled are ignored.
func (m *MQTT) handleCommand(payload []byte, actions Actions) bool {
	cmd := strings.ToLower(strings.TrimSpace(string(payload)))
	l := logrus.WithField("command", cmd)

	switch cmd {
	case CommandDismiss:
		l.Info("dismiss requested over mqtt")
		actions.Dismiss()
		return true
	case CommandSecondary:
		if !m.last.secondaryAllowed() {
			l.Warn("secondary action is not available, ignoring mqtt command")
			return false
		}
		l.Info("secondary action requested over mqtt")
		actions.SecondaryAction()
		return true
	default:
		l.Warn("unknown mqtt command")
		return false
	}
}

func (m *MQTT) Run(ctx context.Context, actions Actions) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(m.cfg.Broker)
	opts.SetClientID(m.cfg.ClientID)
	if m.cfg.Username != "" {
		opts.SetUsername(m.cfg.Username)
	}
	if m.cfg.Password != "" {
		opts.SetPassword(m.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetCleanSession(true)
	// Commands can wait on an in-flight decision; do not stall the router.
	opts.SetOrderMatters(false)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logrus.WithError(err).Warn("mqtt connection lost")
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logrus.WithField("broker", m.cfg.Broker).Info("connected to mqtt broker")
		token := c.Subscribe(m.commandTopic(), 1, func(_ mqtt.Client, msg mqtt.Message) {
			m.handleCommand(msg.Payload(), actions)
		})
		go func() {
			if token.Wait() && token.Error() != nil {
				logrus.WithError(token.Error()).WithField("topic", m.commandTopic()).Error("failed to subscribe")
			}
		}()
		m.publish(m.last.get())
	})

	c := mqtt.NewClient(opts)
	m.mu.Lock()
	m.client = c
	m.mu.Unlock()

	// With connect retry on, the token completes only once connected.
	c.Connect()

	<-ctx.Done()

	m.mu.Lock()
	m.client = nil
	m.mu.Unlock()
	c.Disconnect(250)

	return nil
}
