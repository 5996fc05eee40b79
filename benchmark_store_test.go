package chainbench

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMeasurementStoreConcurrentMerge(t *testing.T) {
	s := NewMeasurementStore()

	var wg sync.WaitGroup
	for w := 0; w < 50; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			batch := make([]Measurement, 0, 100)
			for i := 0; i < 100; i++ {
				batch = append(batch, Measurement{
					Seq:     uint64(worker*100 + i + 1),
					Kind:    OpRead,
					Latency: time.Millisecond,
					Success: true,
				})
			}
			s.Merge(batch)
		}(w)
	}
	wg.Wait()

	if s.Count() != 5000 {
		t.Errorf("store holds %d measurements, suppose to be 5000", s.Count())
	}

	seen := make(map[uint64]bool)
	for _, m := range s.Measurements() {
		if seen[m.Seq] {
			t.Errorf("sequence %d merged twice", m.Seq)
		}
		seen[m.Seq] = true
	}
}

func TestMeasurementStoreDuration(t *testing.T) {
	s := NewMeasurementStore()
	if s.Duration() != 0 {
		t.Error("unstamped store must report zero duration")
	}

	begin := time.Now()
	s.Begin(begin)
	s.Finish(begin.Add(3 * time.Second))
	if s.Duration() != 3*time.Second {
		t.Errorf("duration %v, suppose to be 3s", s.Duration())
	}
}

func TestMeasurementStoreWriteCSV(t *testing.T) {
	s := NewMeasurementStore()
	s.Add(Measurement{Seq: 1, Kind: OpRead, Latency: 1500 * time.Microsecond, Success: true, ComputeUnits: 1})
	s.Add(Measurement{Seq: 2, Kind: OpUpdate, Latency: 2 * time.Millisecond, Success: false, ErrKind: ErrKindBackend, ComputeUnits: 2})

	path := filepath.Join(t.TempDir(), "measurements.csv")
	if err := s.WriteCSV(path); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv has %d lines, suppose to be 3", len(lines))
	}
	if lines[0] != "seq,kind,latency_us,success,compute_units" {
		t.Errorf("unexpected csv header %q", lines[0])
	}
	if lines[1] != "1,read,1500,true,1" {
		t.Errorf("unexpected csv line %q", lines[1])
	}
	if lines[2] != "2,update,2000,false,2" {
		t.Errorf("unexpected csv line %q", lines[2])
	}
}
