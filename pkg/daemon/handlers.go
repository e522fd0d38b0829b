package daemon

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/distatus/battery"
	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
	"github.com/gallxyz/lowbatt/pkg/config"
	"github.com/gallxyz/lowbatt/pkg/sampler"
	"github.com/gallxyz/lowbatt/pkg/types"
	"github.com/gallxyz/lowbatt/pkg/version"
)

func platformBatteryInfo(ctx context.Context) (*battery.Battery, error) {
	return sampler.NewGeneric(0).Info(ctx)
}

func (d *Daemon) status() types.DaemonStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := types.DaemonStatus{
		Status:      d.ctrl.Status(),
		Presenter:   d.presenter.Name(),
		Sampler:     d.sampler.Name(),
		MissedTicks: d.missed,
	}
	if d.lastSampleErr != nil {
		st.LastSampleError = d.lastSampleErr.Error()
	}
	return st
}

func (d *Daemon) getStatus(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.status())
}

func (d *Daemon) postDismiss(c *gin.Context) {
	if _, ok := d.dismiss(); !ok {
		err := errors.New("the alert is not shown")
		c.IndentedJSON(http.StatusConflict, err.Error())
		_ = c.AbortWithError(http.StatusConflict, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, d.status())
}

func (d *Daemon) postSecondaryAction(c *gin.Context) {
	_, err := d.secondaryAction()
	switch {
	case errors.Is(err, alert.ErrSecondaryActionUnavailable):
		c.IndentedJSON(http.StatusConflict, err.Error())
		_ = c.AbortWithError(http.StatusConflict, err)
		return
	case err != nil:
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusCreated, d.status())
}

func (d *Daemon) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(d.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (d *Daemon) getBatteryInfo(c *gin.Context) {
	bat, err := d.batteryInfo(c.Request.Context())
	if err != nil {
		logrus.Errorf("getBatteryInfo failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, newBatteryInfo(bat, d.ctrl.Status().Sample))
}

func newBatteryInfo(bat *battery.Battery, last alert.Sample) types.BatteryInfo {
	info := types.BatteryInfo{
		State:      batteryState(bat.State),
		Percentage: last.Percentage,
		Current:    bat.Current,
		Full:       bat.Full,
		Design:     bat.Design,
		ChargeRate: bat.ChargeRate,
		Voltage:    bat.Voltage,
	}
	if bat.Design > 0 {
		info.Health = math.Round(bat.Full/bat.Design*1000) / 10
	}
	return info
}

func batteryState(s battery.State) string {
	switch s {
	case battery.Charging:
		return "Charging"
	case battery.Discharging:
		return "Discharging"
	case battery.Full:
		return "Full"
	}
	return "Not charging"
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

// getEvents streams hub events as server-sent events until the client goes
// away or the daemon stops.
func (d *Daemon) getEvents(c *gin.Context) {
	ch := d.hub.Subscribe()
	defer d.hub.Unsubscribe(ch)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Content-Type", "text/event-stream")

	// Send headers now so clients do not wait for the first event.
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-d.done:
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{
				Id:    ev.ID,
				Event: ev.Name,
				Data:  string(ev.Data),
			})
			return true
		}
	})
}
