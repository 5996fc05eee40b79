package chainbench

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/gridtokenx/chainbench/log"
)

// Monitor reports live progress while a run is executing. Workers push
// latencies into a buffered channel, a collector goroutine owns the
// histogram and logs throughput with running percentiles every interval.
// A full channel drops the sample instead of delaying the worker.
type Monitor struct {
	interval time.Duration
	ch       chan time.Duration
	done     chan struct{}
}

// NewMonitor creates a monitor logging every interval.
func NewMonitor(interval time.Duration, buffer int) *Monitor {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Monitor{
		interval: interval,
		ch:       make(chan time.Duration, buffer),
		done:     make(chan struct{}),
	}
}

// Start launches the collector goroutine.
func (m *Monitor) Start() {
	go m.collect()
}

// Record offers one latency sample, never blocking the caller.
func (m *Monitor) Record(l time.Duration) {
	select {
	case m.ch <- l:
	default:
	}
}

// Stop ends the collector and waits for its final line.
func (m *Monitor) Stop() {
	close(m.ch)
	<-m.done
}

func (m *Monitor) collect() {
	// one nanosecond up to ten seconds at three significant figures
	hist := hdrhistogram.New(1, 10000000000, 3)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	count := 0
	last := 0
	for {
		select {
		case l, ok := <-m.ch:
			if !ok {
				log.Infof("progress: %d ops total, p50 = %.2fms, p99 = %.2fms",
					count, histMS(hist, 50), histMS(hist, 99))
				close(m.done)
				return
			}
			hist.RecordValue(l.Nanoseconds())
			count++
		case <-ticker.C:
			log.Infof("progress: %d ops, %.1f op/s, p50 = %.2fms, p99 = %.2fms",
				count, float64(count-last)/m.interval.Seconds(), histMS(hist, 50), histMS(hist, 99))
			last = count
		}
	}
}

func histMS(h *hdrhistogram.Histogram, q float64) float64 {
	return float64(h.ValueAtQuantile(q)) / 1000000.0
}
