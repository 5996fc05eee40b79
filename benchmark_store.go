package chainbench

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Measurement records the outcome of one completed operation.
type Measurement struct {
	Seq          uint64
	Kind         string
	Start        time.Time
	Latency      time.Duration
	Success      bool
	ErrKind      string
	ComputeUnits uint64
}

// MeasurementStore collects the measurements of one run. Workers buffer
// their measurements locally and merge them in one batch when they
// drain, so the store lock is taken a handful of times per run.
type MeasurementStore struct {
	RunID string

	mu     sync.Mutex
	ms     []Measurement
	start  time.Time
	finish time.Time
}

// NewMeasurementStore creates an empty store with a fresh run identifier.
func NewMeasurementStore() *MeasurementStore {
	return &MeasurementStore{RunID: uuid.New().String()}
}

// Begin stamps the start of the measured phase.
func (s *MeasurementStore) Begin(t time.Time) {
	s.mu.Lock()
	s.start = t
	s.mu.Unlock()
}

// Finish stamps the end of the measured phase.
func (s *MeasurementStore) Finish(t time.Time) {
	s.mu.Lock()
	s.finish = t
	s.mu.Unlock()
}

// Add appends a single measurement.
func (s *MeasurementStore) Add(m Measurement) {
	s.mu.Lock()
	s.ms = append(s.ms, m)
	s.mu.Unlock()
}

// Merge appends a worker's buffered measurements in one batch.
func (s *MeasurementStore) Merge(batch []Measurement) {
	s.mu.Lock()
	s.ms = append(s.ms, batch...)
	s.mu.Unlock()
}

// Count returns the number of collected measurements.
func (s *MeasurementStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ms)
}

// Measurements returns the collected measurements. The slice is shared,
// callers must not mutate it.
func (s *MeasurementStore) Measurements() []Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ms
}

// StartTime returns the measured phase start.
func (s *MeasurementStore) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start
}

// Duration returns the length of the measured phase.
func (s *MeasurementStore) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.start.IsZero() || s.finish.IsZero() {
		return 0
	}
	return s.finish.Sub(s.start)
}

// WriteCSV writes one line per measurement to file in path
func (s *MeasurementStore) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintln(w, "seq,kind,latency_us,success,compute_units")
	s.mu.Lock()
	for _, m := range s.ms {
		fmt.Fprintf(w, "%d,%s,%d,%t,%d\n", m.Seq, m.Kind, m.Latency.Microseconds(), m.Success, m.ComputeUnits)
	}
	s.mu.Unlock()
	return w.Flush()
}
