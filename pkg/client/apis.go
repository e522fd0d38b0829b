package client

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"

	"github.com/gallxyz/lowbatt/pkg/config"
	"github.com/gallxyz/lowbatt/pkg/types"
)

func (c *Client) GetStatus() (*types.DaemonStatus, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get status")
	}
	return decodeStatus(ret)
}

// Dismiss acknowledges the alert, like the "Got it!" button. It fails with
// ErrConflict when the alert is not shown.
func (c *Client) Dismiss() (*types.DaemonStatus, error) {
	ret, err := c.Post("/dismiss", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to dismiss alert")
	}
	return decodeStatus(ret)
}

// SecondaryAction runs the configured command. It fails with ErrConflict
// while the battery is not in the risk band.
func (c *Client) SecondaryAction() (*types.DaemonStatus, error) {
	ret, err := c.Post("/secondary-action", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to run secondary action")
	}
	return decodeStatus(ret)
}

func decodeStatus(ret string) (*types.DaemonStatus, error) {
	var st types.DaemonStatus
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal status")
	}
	return &st, nil
}

func (c *Client) GetBatteryInfo() (*types.BatteryInfo, error) {
	ret, err := c.Get("/battery-info")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery info")
	}

	var bat types.BatteryInfo
	if err := json.Unmarshal([]byte(ret), &bat); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal battery info")
	}

	return &bat, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}
