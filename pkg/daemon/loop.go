package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
	"github.com/gallxyz/lowbatt/pkg/events"
	"github.com/gallxyz/lowbatt/pkg/sampler"
)

// TimeSeriesRecorder records the last N decision tick times.
type TimeSeriesRecorder struct {
	MaxRecordCount int
	LastTickTimes  []time.Time
	// Interval is the expected distance between two records.
	Interval time.Duration
	mu       *sync.Mutex
}

// NewTimeSeriesRecorder returns a new TimeSeriesRecorder.
func NewTimeSeriesRecorder(maxRecordCount int, interval time.Duration) *TimeSeriesRecorder {
	return &TimeSeriesRecorder{
		MaxRecordCount: maxRecordCount,
		LastTickTimes:  make([]time.Time, 0),
		Interval:       interval,
		mu:             &sync.Mutex{},
	}
}

// AddRecordNow adds a new record with the current time.
func (r *TimeSeriesRecorder) AddRecordNow() {
	r.AddRecord(time.Now())
}

// AddRecord adds a new record.
func (r *TimeSeriesRecorder) AddRecord(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Round to strip monotonic clock reading.
	// This will prevent time.Since from returning values that are not accurate (especially when the system is in sleep mode).
	t = t.Round(0)

	if len(r.LastTickTimes) >= r.MaxRecordCount {
		r.LastTickTimes = r.LastTickTimes[1:]
	}
	r.LastTickTimes = append(r.LastTickTimes, t)
}

// GetRecordsIn returns the number of continuous records in the last duration.
func (r *TimeSeriesRecorder) GetRecordsIn(last time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	gap := r.Interval + time.Second

	// The last record must be within the last duration.
	if len(r.LastTickTimes) > 0 && time.Since(r.LastTickTimes[len(r.LastTickTimes)-1]) >= gap {
		return 0
	}

	// Find continuous records from the end of the list.
	// Continuous records are defined as the time difference between
	// two adjacent records is less than Interval+1 second.
	count := 0
	for i := len(r.LastTickTimes) - 1; i >= 0; i-- {
		record := r.LastTickTimes[i]
		if time.Since(record) > last {
			break
		}

		theRecordAfter := record
		if i+1 < len(r.LastTickTimes) {
			theRecordAfter = r.LastTickTimes[i+1]
		}

		if theRecordAfter.Sub(record) >= gap {
			break
		}
		count++
	}

	return count
}

// GetLastRecord returns the last record.
func (r *TimeSeriesRecorder) GetLastRecord() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.LastTickTimes) == 0 {
		return time.Time{}
	}

	return r.LastTickTimes[len(r.LastTickTimes)-1]
}

// missedTicks reports whether the decision loop stalled, which is what a
// suspend and resume looks like from here.
func (d *Daemon) missedTicks() bool {
	last := d.recorder.GetLastRecord()
	if last.IsZero() {
		return false
	}

	// GetRecordsIn returns 0 when the newest record is older than one interval.
	if d.recorder.GetRecordsIn(d.recorder.Interval*2) > 0 {
		return false
	}

	logrus.WithFields(logrus.Fields{
		"lastTick": last.Format(time.RFC3339),
		"since":    time.Since(last).String(),
	}).Info("possibly missed decision ticks, resampling before deciding")
	return true
}

// sample reads the battery once and hands the reading to the controller.
func (d *Daemon) sample(ctx context.Context) {
	s, err := sampler.SampleOrUnknown(ctx, d.sampler)

	d.mu.Lock()
	prevErr := d.lastSampleErr
	d.lastSampleErr = err
	d.mu.Unlock()

	switch {
	case err != nil && prevErr == nil:
		logrus.WithError(err).Warn("failed to read battery, treating level as unknown")
	case err != nil:
		logrus.WithError(err).Trace("failed to read battery")
	case prevErr != nil:
		logrus.WithField("percentage", s.Percentage).Info("battery readable again")
	}

	d.ctrl.Observe(s)
}

// tick recomputes the decision and forwards it to the presenter.
func (d *Daemon) tick(ctx context.Context) {
	if d.missedTicks() {
		d.mu.Lock()
		d.missed++
		d.mu.Unlock()
		d.sample(ctx)
	}
	d.recorder.AddRecordNow()

	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()
	d.apply(d.ctrl.Tick(), "")
}

// apply forwards a decision to the presenter and publishes visibility
// changes. cause overrides the default event name for a hide. Callers hold
// d.deliverMu.
func (d *Daemon) apply(dec alert.Decision, cause string) {
	d.mu.Lock()
	wasVisible := d.visible
	d.visible = dec.Visible
	d.mu.Unlock()

	d.presenter.Apply(dec)

	switch {
	case dec.Visible && !wasVisible:
		d.publishAlert(events.AlertShown)
	case !dec.Visible && wasVisible && cause != "":
		d.publishAlert(cause)
	case !dec.Visible && wasVisible:
		d.publishAlert(events.AlertHidden)
	}
}

func (d *Daemon) publishAlert(name string) {
	st := d.ctrl.Status()
	d.hub.Publish(name, events.AlertEvent{
		Percentage:  st.Sample.Percentage,
		Charging:    st.Sample.Charging,
		Suppression: st.State.Suppression.String(),
		Secondary:   st.State.SecondaryActionEnabled,
		Ts:          time.Now().Unix(),
	})
}

func (d *Daemon) sampleLoop(ctx context.Context) {
	ticker := time.NewTicker(d.conf.SampleInterval())
	defer ticker.Stop()

	logrus.WithField("interval", d.conf.SampleInterval().String()).Debug("sample loop starts")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sample(ctx)
		}
	}
}

func (d *Daemon) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(d.conf.TickInterval())
	defer ticker.Stop()

	logrus.WithField("interval", d.conf.TickInterval().String()).Debug("decision loop starts")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}
