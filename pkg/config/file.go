package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
	"github.com/gallxyz/lowbatt/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		LowLevel:           ptr.To(15),
		RiskLevel:          ptr.To(5),
		ButtonText:         ptr.To("Hibernate"),
		ButtonCommand:      ptr.To("systemctl hibernate"),
		StyleFile:          ptr.To(""),
		Presenter:          ptr.To(PresenterTUI),
		SampleInterval:     ptr.To("1s"),
		TickInterval:       ptr.To("1s"),
		AllowNonRootAccess: ptr.To(false),
		MQTT: &MQTTConfig{
			Topic:    "lowbatt",
			ClientID: "lowbatt",
		},
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	LowLevel           *int        `json:"lowLevel,omitempty"`
	RiskLevel          *int        `json:"riskLevel,omitempty"`
	ButtonText         *string     `json:"buttonText,omitempty"`
	ButtonCommand      *string     `json:"buttonCommand,omitempty"`
	StyleFile          *string     `json:"styleFile,omitempty"`
	Presenter          *string     `json:"presenter,omitempty"`
	SampleInterval     *string     `json:"sampleInterval,omitempty"`
	TickInterval       *string     `json:"tickInterval,omitempty"`
	AllowNonRootAccess *bool       `json:"allowNonRootAccess,omitempty"`
	MQTT               *MQTTConfig `json:"mqtt,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	mqtt := c.MQTT()
	// Never hand the broker password out over the API.
	mqtt.Password = ""

	rawConfig := &RawFileConfig{
		LowLevel:           ptr.To(c.LowLevel()),
		RiskLevel:          ptr.To(c.RiskLevel()),
		ButtonText:         ptr.To(c.ButtonText()),
		ButtonCommand:      ptr.To(c.ButtonCommand()),
		StyleFile:          ptr.To(c.StyleFile()),
		Presenter:          ptr.To(c.Presenter()),
		SampleInterval:     ptr.To(c.SampleInterval().String()),
		TickInterval:       ptr.To(c.TickInterval().String()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		MQTT:               &mqtt,
	}

	return rawConfig, nil
}

// value returns *v, or *def when v is nil.
func value[T any](v, def *T) T {
	if v != nil {
		return *v
	}
	return *def
}

func (f *File) LowLevel() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return value(f.c.LowLevel, defaultFileConfig.LowLevel)
}

func (f *File) RiskLevel() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return value(f.c.RiskLevel, defaultFileConfig.RiskLevel)
}

func (f *File) ButtonText() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return value(f.c.ButtonText, defaultFileConfig.ButtonText)
}

func (f *File) ButtonCommand() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return value(f.c.ButtonCommand, defaultFileConfig.ButtonCommand)
}

// StyleFile returns the theme path with a leading ~ expanded.
func (f *File) StyleFile() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return ExpandHome(value(f.c.StyleFile, defaultFileConfig.StyleFile))
}

func (f *File) Presenter() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return value(f.c.Presenter, defaultFileConfig.Presenter)
}

func (f *File) SampleInterval() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return parseInterval(f.c.SampleInterval, defaultFileConfig.SampleInterval)
}

func (f *File) TickInterval() time.Duration {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return parseInterval(f.c.TickInterval, defaultFileConfig.TickInterval)
}

// parseInterval falls back to the default on a bad value. Validate reports
// bad values before the daemon starts.
func parseInterval(v, def *string) time.Duration {
	d, err := time.ParseDuration(value(v, def))
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(*def)
	}
	return d
}

func (f *File) AllowNonRootAccess() bool {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return value(f.c.AllowNonRootAccess, defaultFileConfig.AllowNonRootAccess)
}

func (f *File) MQTT() MQTTConfig {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	m := *defaultFileConfig.MQTT
	if f.c.MQTT == nil {
		return m
	}
	m.Broker = f.c.MQTT.Broker
	m.Username = f.c.MQTT.Username
	m.Password = f.c.MQTT.Password
	if f.c.MQTT.Topic != "" {
		m.Topic = f.c.MQTT.Topic
	}
	if f.c.MQTT.ClientID != "" {
		m.ClientID = f.c.MQTT.ClientID
	}
	return m
}

func (f *File) SetLowLevel(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.LowLevel = &i
}

func (f *File) SetRiskLevel(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.RiskLevel = &i
}

func (f *File) SetButtonText(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ButtonText = &s
}

func (f *File) SetButtonCommand(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.ButtonCommand = &s
}

func (f *File) SetStyleFile(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.StyleFile = &s
}

func (f *File) SetPresenter(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Presenter = &s
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &b
}

func (f *File) Policy() (alert.Policy, error) {
	return alert.NewPolicy(f.LowLevel(), f.RiskLevel())
}

func (f *File) Validate() error {
	if _, err := f.Policy(); err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for name, v := range map[string]*string{
		"sampleInterval": f.c.SampleInterval,
		"tickInterval":   f.c.TickInterval,
	} {
		if v == nil {
			continue
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return pkgerrors.Wrapf(ErrInvalidConfig, "%s: %v", name, err)
		}
		if d <= 0 {
			return pkgerrors.Wrapf(ErrInvalidConfig, "%s must be positive, got %s", name, d)
		}
	}

	switch p := value(f.c.Presenter, defaultFileConfig.Presenter); p {
	case PresenterTUI, PresenterTray, PresenterLog:
	default:
		return pkgerrors.Wrapf(ErrInvalidConfig, "unknown presenter %q", p)
	}

	if strings.TrimSpace(value(f.c.ButtonCommand, defaultFileConfig.ButtonCommand)) == "" {
		return pkgerrors.Wrap(ErrInvalidConfig, "button command must not be empty")
	}

	return nil
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	err := os.MkdirAll(filepath.Dir(f.filepath), 0755)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create directory for %s", f.filepath)
	}

	// The file may hold MQTT credentials.
	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"lowLevel":           f.LowLevel(),
		"riskLevel":          f.RiskLevel(),
		"buttonText":         f.ButtonText(),
		"buttonCommand":      f.ButtonCommand(),
		"styleFile":          f.StyleFile(),
		"presenter":          f.Presenter(),
		"sampleInterval":     f.SampleInterval().String(),
		"tickInterval":       f.TickInterval().String(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"mqttBroker":         f.MQTT().Broker,
	}
}
