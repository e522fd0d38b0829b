package daemon

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gallxyz/lowbatt/pkg/alert"
)

func TestTickRecorder_GetRecordsIn(t *testing.T) {
	type fields struct {
		MaxRecordCount int
		LastTickTimes  []time.Time
		mu             *sync.Mutex
	}
	type args struct {
		last time.Duration
	}
	tests := []struct {
		name   string
		fields fields
		args   args
		want   int
	}{
		{
			name: "test noncontinuous records",
			fields: fields{
				MaxRecordCount: 10,
				LastTickTimes: []time.Time{
					time.Now().Add(-time.Second * 31).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 20).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 10).Add(-10 * time.Millisecond),
				},
				mu: &sync.Mutex{},
			},
			args: args{
				last: time.Second * 40,
			},
			want: 2,
		},
		{
			name: "test continuous records",
			fields: fields{
				MaxRecordCount: 10,
				LastTickTimes: []time.Time{
					time.Now().Add(-time.Second * 70).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 60).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 40).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 30).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 20).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 10).Add(-10 * time.Millisecond),
				},
				mu: &sync.Mutex{},
			},
			args: args{
				last: time.Second * 50,
			},
			want: 4,
		},
		{
			name: "test stalled records",
			fields: fields{
				MaxRecordCount: 10,
				LastTickTimes: []time.Time{
					time.Now().Add(-time.Second * 70).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 60).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 40).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 30).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 20).Add(-10 * time.Millisecond),
					time.Now().Add(-time.Second * 15).Add(-10 * time.Millisecond),
				},
				mu: &sync.Mutex{},
			},
			args: args{
				last: time.Second * 50,
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &TimeSeriesRecorder{
				MaxRecordCount: tt.fields.MaxRecordCount,
				LastTickTimes:  tt.fields.LastTickTimes,
				Interval:       time.Second * 10,
				mu:             tt.fields.mu,
			}
			if got := r.GetRecordsIn(tt.args.last); got != tt.want {
				t.Errorf("GetRecordsIn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTickRecorderDropsOldest(t *testing.T) {
	r := NewTimeSeriesRecorder(3, time.Second)
	for i := 0; i < 5; i++ {
		r.AddRecord(time.Now().Add(time.Duration(i-5) * time.Second))
	}
	assert.Len(t, r.LastTickTimes, 3)
	assert.WithinDuration(t, time.Now().Add(-time.Second), r.GetLastRecord(), 100*time.Millisecond)
}

func TestTickResamplesAfterStall(t *testing.T) {
	d, s, p, _ := newTestDaemon(t, nil)

	// The reading taken before suspend is stale.
	s.set(alert.Sample{Percentage: 80}, nil)
	d.sample(context.Background())
	d.recorder.AddRecord(time.Now().Add(-time.Minute))

	s.set(alert.Sample{Percentage: 12}, nil)
	d.tick(context.Background())

	assert.Equal(t, 1, d.status().MissedTicks)
	assert.True(t, p.last().Visible)

	// Regular ticks do not resample.
	s.set(alert.Sample{Percentage: 90}, nil)
	d.tick(context.Background())
	assert.Equal(t, 1, d.status().MissedTicks)
	assert.True(t, p.last().Visible)
}

func TestSampleErrorIsUnknown(t *testing.T) {
	d, s, p, _ := newTestDaemon(t, nil)

	s.set(alert.Sample{Percentage: 12}, nil)
	d.sample(context.Background())
	d.tick(context.Background())
	assert.True(t, p.last().Visible)

	s.set(alert.Sample{}, assert.AnError)
	d.sample(context.Background())
	d.tick(context.Background())
	assert.False(t, p.last().Visible)

	st := d.status()
	assert.Equal(t, alert.Unknown, st.Sample.Percentage)
	assert.Contains(t, st.LastSampleError, assert.AnError.Error())

	s.set(alert.Sample{Percentage: 12}, nil)
	d.sample(context.Background())
	assert.Empty(t, d.status().LastSampleError)
}
