package runner

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const maxRecordableMicros = 60_000_000

// Timing summarizes how long the executed scenarios took
type Timing struct {
	Count int64
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
	Mean  time.Duration
}

type timingRecorder struct {
	histogram *hdrhistogram.Histogram
}

func newTimingRecorder() *timingRecorder {
	// Scenario durations in microseconds, up to one minute
	return &timingRecorder{histogram: hdrhistogram.New(1, maxRecordableMicros, 3)}
}

func (t *timingRecorder) record(d time.Duration) {
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > maxRecordableMicros {
		us = maxRecordableMicros
	}
	_ = t.histogram.RecordValue(us)
}

func (t *timingRecorder) summary() Timing {
	if t.histogram.TotalCount() == 0 {
		return Timing{}
	}
	return Timing{
		Count: t.histogram.TotalCount(),
		P50:   time.Duration(t.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(t.histogram.ValueAtQuantile(95)) * time.Microsecond,
		Max:   time.Duration(t.histogram.Max()) * time.Microsecond,
		Mean:  time.Duration(t.histogram.Mean()) * time.Microsecond,
	}
}
