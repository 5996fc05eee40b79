package chainbench

import (
	"encoding/json"
	"math"
	"os"
	"sort"
	"time"
)

// Report is the reduced view of one run. Latencies are reported in
// microseconds, throughput in operations per second.
type Report struct {
	RunID        string  `json:"run_id"`
	Workload     string  `json:"workload"`
	Distribution string  `json:"distribution"`
	Concurrency  int     `json:"concurrency"`
	ElapsedSec   float64 `json:"elapsed_sec"`

	Operations  int     `json:"operations"` // completed operations after warmup discard
	Discarded   int     `json:"discarded"`  // measurements dropped by the warmup discard
	Failures    int     `json:"failures"`
	SampleSize  int     `json:"sample_size"` // latency samples left after outlier filtering
	Outliers    int     `json:"outliers"`
	SuccessRate float64 `json:"success_rate"`

	MeanUS   float64 `json:"mean_us"`
	StdDevUS float64 `json:"stddev_us"`
	MinUS    float64 `json:"min_us"`
	MaxUS    float64 `json:"max_us"`
	P50US    float64 `json:"p50_us"`
	P75US    float64 `json:"p75_us"`
	P90US    float64 `json:"p90_us"`
	P95US    float64 `json:"p95_us"`
	P99US    float64 `json:"p99_us"`
	P999US   float64 `json:"p999_us"`

	CILowUS    float64 `json:"ci_low_us"`
	CIHighUS   float64 `json:"ci_high_us"`
	Confidence int     `json:"confidence"`

	TPS     float64   `json:"tps"`
	PeakTPS float64   `json:"peak_tps"`
	MinTPS  float64   `json:"min_tps"`
	AvgTPS  float64   `json:"avg_tps"`
	Windows []float64 `json:"windows,omitempty"`

	PrimaryKind string  `json:"primary_kind,omitempty"`
	TPMC        float64 `json:"tpmc,omitempty"` // per-minute rate of the primary kind

	Mix             map[string]int `json:"mix,omitempty"`
	FailureMix      map[string]int `json:"failure_mix,omitempty"`
	AvgComputeUnits float64        `json:"avg_compute_units"`

	Incomplete bool `json:"incomplete,omitempty"`
}

// zValue maps a confidence level to its normal quantile, unknown levels
// fall back to 95%
func zValue(confidence int) float64 {
	switch confidence {
	case 90:
		return 1.645
	case 95:
		return 1.96
	case 99:
		return 2.576
	}
	return 1.96
}

// filterOutliers drops latencies deviating from the mean by more than
// sigma standard deviations. Zero sigma means 3, negative disables the
// filter. The input is never mutated.
func filterOutliers(latencies []time.Duration, sigma float64) []time.Duration {
	if sigma < 0 || len(latencies) == 0 {
		return latencies
	}
	if sigma == 0 {
		sigma = 3
	}
	sum := 0.0
	for _, l := range latencies {
		sum += float64(l)
	}
	mean := sum / float64(len(latencies))
	sq := 0.0
	for _, l := range latencies {
		d := float64(l) - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(latencies)))

	bound := sigma * stddev
	out := make([]time.Duration, 0, len(latencies))
	for _, l := range latencies {
		if math.Abs(float64(l)-mean) <= bound {
			out = append(out, l)
		}
	}
	return out
}

// ComputeReport reduces the measurements of a run into a report. The
// reduction is read-only, running it twice on the same store yields an
// identical report.
//
// The steps run in this order: warmup discard over the measurements in
// sequence order, success and failure partition, outlier filtering of the
// successful latencies, percentile and mean statistics over the filtered
// set, confidence interval for the mean, throughput windowing over the
// unfiltered successful set, and the per-minute rate of the primary kind.
// Outlier filtering never touches the failure, throughput, or success
// rate counts.
func ComputeReport(store *MeasurementStore, b *BenchmarkConfig) *Report {
	all := store.Measurements()
	ms := make([]Measurement, len(all))
	copy(ms, all)
	sort.Slice(ms, func(i, j int) bool { return ms[i].Seq < ms[j].Seq })

	wp := b.WarmupPercent
	if wp < 0 {
		wp = 0
	}
	discard := int(float64(len(ms)) * wp / 100.0)
	if discard > len(ms) {
		discard = len(ms)
	}
	kept := ms[discard:]

	conf := b.Confidence
	if conf == 0 {
		conf = 95
	}
	r := &Report{
		RunID:        store.RunID,
		Workload:     b.Workload,
		Distribution: b.Distribution,
		Concurrency:  b.Concurrency,
		Discarded:    discard,
		Operations:   len(kept),
		Confidence:   conf,
		PrimaryKind:  b.PrimaryKind,
		Mix:          make(map[string]int),
	}

	latencies := make([]time.Duration, 0, len(kept))
	primary := 0
	var units uint64
	for _, m := range kept {
		r.Mix[m.Kind]++
		units += m.ComputeUnits
		if m.Success {
			latencies = append(latencies, m.Latency)
			if m.Kind == r.PrimaryKind {
				primary++
			}
		} else {
			r.Failures++
			if r.FailureMix == nil {
				r.FailureMix = make(map[string]int)
			}
			ek := m.ErrKind
			if ek == "" {
				ek = "unknown"
			}
			r.FailureMix[ek]++
		}
	}
	if len(kept) > 0 {
		r.SuccessRate = float64(len(latencies)) / float64(len(kept))
		r.AvgComputeUnits = float64(units) / float64(len(kept))
	}

	filtered := filterOutliers(latencies, b.OutlierSigma)
	r.Outliers = len(latencies) - len(filtered)
	stat := Statistic(filtered)
	r.SampleSize = stat.Size
	r.MeanUS = stat.Mean * 1000
	r.StdDevUS = stat.StdDev * 1000
	r.MinUS = stat.Min * 1000
	r.MaxUS = stat.Max * 1000
	r.P50US = stat.Median * 1000
	r.P75US = stat.Percentile(0.75) * 1000
	r.P90US = stat.Percentile(0.90) * 1000
	r.P95US = stat.P95 * 1000
	r.P99US = stat.P99 * 1000
	r.P999US = stat.P999 * 1000

	if stat.Size > 0 {
		half := zValue(conf) * stat.StdDev / math.Sqrt(float64(stat.Size))
		r.CILowUS = (stat.Mean - half) * 1000
		r.CIHighUS = (stat.Mean + half) * 1000
	}

	windowMS := b.WindowMS
	if windowMS <= 0 {
		windowMS = 1000
	}
	window := time.Duration(windowMS) * time.Millisecond

	start := store.StartTime()
	if start.IsZero() {
		for _, m := range kept {
			if start.IsZero() || m.Start.Before(start) {
				start = m.Start
			}
		}
	}

	// windows count successful operations only, a partial trailing
	// window is divided by the full window size
	var buckets []int
	for _, m := range kept {
		if !m.Success {
			continue
		}
		off := m.Start.Sub(start)
		if off < 0 {
			off = 0
		}
		idx := int(off / window)
		for idx >= len(buckets) {
			buckets = append(buckets, 0)
		}
		buckets[idx]++
	}
	if len(buckets) > 0 {
		ws := window.Seconds()
		r.Windows = make([]float64, len(buckets))
		minTPS := math.MaxFloat64
		sumTPS := 0.0
		for i, c := range buckets {
			t := float64(c) / ws
			r.Windows[i] = t
			if t > r.PeakTPS {
				r.PeakTPS = t
			}
			if t < minTPS {
				minTPS = t
			}
			sumTPS += t
		}
		r.MinTPS = minTPS
		r.AvgTPS = sumTPS / float64(len(buckets))
	}

	elapsed := store.Duration().Seconds()
	r.ElapsedSec = elapsed
	if elapsed > 0 {
		r.TPS = float64(len(latencies)) / elapsed
		if r.PrimaryKind != "" {
			r.TPMC = float64(primary) * 60.0 / elapsed
		}
	}

	return r
}

// WriteJSONFile writes the report as indented json to file in path
func (r *Report) WriteJSONFile(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (r *Report) String() string {
	b, _ := json.Marshal(r)
	return string(b)
}
