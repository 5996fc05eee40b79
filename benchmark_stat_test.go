package chainbench

import (
	"math"
	"testing"
	"time"
)

func TestPercentileNearestRank(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	cases := []struct {
		p    float64
		want float64
	}{
		{0.25, 10},
		{0.5, 20},
		{0.75, 30},
		{0.95, 40},
		{1.0, 40},
	}
	for _, c := range cases {
		if got := percentile(sorted, c.p); got != c.want {
			t.Errorf("percentile(%f) = %f, suppose to be %f", c.p, got, c.want)
		}
	}

	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile of no data = %f, suppose to be 0", got)
	}
	if got := percentile([]float64{7}, 0.999); got != 7 {
		t.Errorf("percentile of one sample = %f, suppose to be 7", got)
	}
}

func TestStatisticKnownValues(t *testing.T) {
	latency := []time.Duration{
		4 * time.Millisecond,
		2 * time.Millisecond,
		6 * time.Millisecond,
		8 * time.Millisecond,
	}
	s := Statistic(latency)

	if s.Size != 4 {
		t.Errorf("size %d, suppose to be 4", s.Size)
	}
	if s.Mean != 5.0 {
		t.Errorf("mean %f, suppose to be 5", s.Mean)
	}
	if s.Min != 2.0 || s.Max != 8.0 {
		t.Errorf("min %f max %f, suppose to be 2 and 8", s.Min, s.Max)
	}
	if s.Median != 4.0 {
		t.Errorf("median %f, suppose to be 4", s.Median)
	}
	// population stddev of 2, 4, 6, 8 is sqrt(5)
	if math.Abs(s.StdDev-math.Sqrt(5)) > 1e-9 {
		t.Errorf("stddev %f, suppose to be %f", s.StdDev, math.Sqrt(5))
	}
}

func TestStatisticPercentileMonotonic(t *testing.T) {
	latency := make([]time.Duration, 0, 1000)
	for i := 1; i <= 1000; i++ {
		latency = append(latency, time.Duration(i)*time.Microsecond)
	}
	s := Statistic(latency)

	if s.Median > s.P95 || s.P95 > s.P99 || s.P99 > s.P999 || s.P999 > s.Max {
		t.Errorf("percentiles not monotonic: %f %f %f %f %f", s.Median, s.P95, s.P99, s.P999, s.Max)
	}
	if s.Median != 0.5 {
		t.Errorf("median of 1..1000us = %fms, suppose to be 0.5", s.Median)
	}
	if s.P95 != 0.95 {
		t.Errorf("p95 of 1..1000us = %fms, suppose to be 0.95", s.P95)
	}
	if s.P999 != 0.999 {
		t.Errorf("p999 of 1..1000us = %fms, suppose to be 0.999", s.P999)
	}
}

func TestStatisticEmpty(t *testing.T) {
	s := Statistic(nil)
	if s.Size != 0 || s.Mean != 0 || s.StdDev != 0 || s.Min != 0 || s.Max != 0 {
		t.Errorf("empty input must produce a zero stat, got %v", s)
	}
}
