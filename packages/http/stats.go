package http

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats aggregates transfer counts and latencies for a Client.
type Stats struct {
	mu sync.Mutex

	total    atomic.Int64
	failures atomic.Int64

	// microseconds, 1us to 10m, 3 significant digits
	histogram *hdrhistogram.Histogram
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Transfers int64
	Failures  int64
	Min       time.Duration
	Max       time.Duration
	Mean      time.Duration
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
}

func newStats() *Stats {
	return &Stats{
		histogram: hdrhistogram.New(1, int64(10*time.Minute/time.Microsecond), 3),
	}
}

func (s *Stats) record(d time.Duration, failed bool) {
	s.total.Add(1)
	if failed {
		s.failures.Add(1)
		return
	}

	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	s.mu.Lock()
	_ = s.histogram.RecordValue(us)
	s.mu.Unlock()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return StatsSnapshot{
		Transfers: s.total.Load(),
		Failures:  s.failures.Load(),
		Min:       us(s.histogram.Min()),
		Max:       us(s.histogram.Max()),
		Mean:      time.Duration(s.histogram.Mean() * float64(time.Microsecond)),
		P50:       us(s.histogram.ValueAtQuantile(50)),
		P95:       us(s.histogram.ValueAtQuantile(95)),
		P99:       us(s.histogram.ValueAtQuantile(99)),
	}
}
