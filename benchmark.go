package chainbench

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/gridtokenx/chainbench/log"
)

// states of a run
const (
	StateNotStarted int32 = iota
	StateWarming
	StateRunning
	StateDraining
	StateCompleted
)

// Benchmark is a benchmarking tool that generates a synthetic workload,
// drives it through executors under controlled concurrency, and reduces
// the collected measurements into a report.
type Benchmark struct {
	BenchmarkConfig

	creator ExecutorCreator
	store   *MeasurementStore
	seq     *InsertSequence
	consts  *TpccConstants
	monitor *Monitor

	state  int32
	issued uint64

	fatalMu  sync.Mutex
	fatalErr error

	stop     chan struct{}
	stopOnce sync.Once
	cancel   context.CancelFunc
	wait     sync.WaitGroup // waiting for all workers to drain
}

// NewBenchmark returns a Benchmark for the given config. The creator
// makes one executor per worker. Configuration errors surface here,
// before any worker starts.
func NewBenchmark(bconfig BenchmarkConfig, creator ExecutorCreator) (*Benchmark, error) {
	if creator == nil {
		return nil, errors.New("executor creator is nil")
	}
	b := &Benchmark{
		BenchmarkConfig: bconfig,
		creator:         creator,
	}
	if b.T == 0 && b.N == 0 {
		return nil, errors.New("either benchmark time T or number of operations N needs to be set")
	}
	if b.Concurrency <= 0 {
		b.Concurrency = 1
	}
	if b.PrimaryKind == "" && b.Workload == "tpcc" {
		b.PrimaryKind = OpNewOrder
	}

	b.seq = NewInsertSequence(uint64(b.K))
	if b.Workload == "tpcc" {
		b.consts = NewTpccConstants(rand.New(rand.NewSource(time.Now().UTC().UnixNano())))
	}

	// probe generator construction so a bad distribution or mix fails
	// here instead of inside a worker
	if _, err := NewOperationGenerator(&b.BenchmarkConfig, 1, b.seq, b.consts); err != nil {
		return nil, err
	}

	b.store = NewMeasurementStore()
	return b, nil
}

// Store returns the measurement store of the run.
func (b *Benchmark) Store() *MeasurementStore {
	return b.store
}

// State returns the current run state.
func (b *Benchmark) State() int32 {
	return atomic.LoadInt32(&b.state)
}

// Load fills the key space through one executor, writing every key once.
func (b *Benchmark) Load() error {
	exec, err := b.creator.Create()
	if err != nil {
		return err
	}
	if err = exec.Init(); err != nil {
		return err
	}

	r := rand.New(rand.NewSource(time.Now().UTC().UnixNano()))
	start := time.Now()
	for k := 0; k < b.K; k++ {
		payload := make([]byte, b.Size)
		r.Read(payload)
		op := &Operation{ID: uint64(k + 1), Kind: OpInsert, Key: k, Payload: payload}
		res, err := exec.Execute(op)
		if err != nil {
			exec.Stop()
			return err
		}
		if !res.Success {
			log.Warningf("load failed for key %d: %s", k, res.ErrKind)
		}
	}
	log.Infof("load done, %d keys in %v", b.K, time.Since(start))
	return exec.Stop()
}

// Run starts the main logic of benchmarking and blocks until the report
// is ready. The run stops when T seconds elapsed or N operations
// completed, whichever comes first. A fatal executor error drains the
// workers first, the partial report is returned alongside the error.
func (b *Benchmark) Run() (*Report, error) {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.stop = make(chan struct{})

	warm := uint64(b.WarmupOps)
	if warm > 0 {
		atomic.StoreInt32(&b.state, StateWarming)
	} else {
		atomic.StoreInt32(&b.state, StateRunning)
		b.store.Begin(time.Now())
	}

	if b.ProgressInterval > 0 {
		b.monitor = NewMonitor(time.Duration(b.ProgressInterval)*time.Second, b.BufferSize)
		b.monitor.Start()
	}

	// initialize all the generators and executors before the first
	// worker starts
	gens := make([]*OperationGenerator, b.Concurrency)
	seedBase := time.Now().UTC().UnixNano()
	for i := 0; i < b.Concurrency; i++ {
		g, err := NewOperationGenerator(&b.BenchmarkConfig, seedBase+int64(i)*2654435761, b.seq, b.consts)
		if err != nil {
			cancel()
			return nil, err
		}
		gens[i] = g
	}

	execs := make([]Executor, b.Concurrency)
	for i := 0; i < b.Concurrency; i++ {
		e, err := b.creator.Create()
		if err == nil {
			err = e.Init()
		}
		if err != nil {
			for _, p := range execs {
				if p != nil {
					p.Stop()
				}
			}
			if b.monitor != nil {
				b.monitor.Stop()
			}
			cancel()
			return nil, err
		}
		execs[i] = e
	}

	startTime := time.Now()
	b.wait.Add(b.Concurrency)
	for i := 0; i < b.Concurrency; i++ {
		go b.worker(ctx, execs[i], gens[i], warm)
	}

	// stop issuing new operations when the time is up
	if b.T > 0 {
		timer := time.NewTimer(time.Duration(b.T) * time.Second)
		go func() {
			select {
			case <-timer.C:
				b.shutdown()
			case <-b.stop:
				timer.Stop()
			}
		}()
	}

	b.wait.Wait()
	b.shutdown()
	end := time.Now()
	b.store.Finish(end)
	if b.monitor != nil {
		b.monitor.Stop()
	}
	cancel()
	atomic.StoreInt32(&b.state, StateCompleted)

	t := end.Sub(startTime)
	report := ComputeReport(b.store, &b.BenchmarkConfig)

	b.fatalMu.Lock()
	ferr := b.fatalErr
	b.fatalMu.Unlock()
	if ferr != nil {
		report.Incomplete = true
		log.Errorf("benchmark incomplete after %v: %v", t, ferr)
		return report, ferr
	}

	latency := make([]time.Duration, 0, len(b.store.Measurements()))
	for _, m := range b.store.Measurements() {
		if m.Success {
			latency = append(latency, m.Latency)
		}
	}
	stat := Statistic(latency)
	log.Infof("Concurrency = %d", b.Concurrency)
	log.Infof("Write Ratio = %f", b.W)
	log.Infof("Number of Keys = %d", b.K)
	log.Infof("Benchmark Time = %v\n", t)
	log.Infof("Throughput = %f\n", float64(stat.Size)/t.Seconds())
	log.Info(stat)

	return report, nil
}

// worker is the loop of one concurrent worker. Operation numbers are
// claimed from the shared counter before execution, so with an operation
// limit every number in [1, N] is executed by exactly one worker.
func (b *Benchmark) worker(ctx context.Context, exec Executor, gen *OperationGenerator, warm uint64) {
	defer b.wait.Done()

	var limiter *rate.Limiter
	if b.Throttle > 0 {
		limiter = rate.NewLimiter(rate.Limit(b.Throttle), 1)
	}

	bufSize := b.BufferSize
	if bufSize <= 0 {
		bufSize = 1024
	}
	buf := make([]Measurement, 0, bufSize)

	isFinished := false
	for !isFinished {
		// stop if the run is draining, non-blocking checking
		select {
		case <-b.stop:
			isFinished = true
			continue
		default:
		}

		n := atomic.AddUint64(&b.issued, 1)

		// warmup operations are executed but never recorded
		if n <= warm {
			op := gen.Next(n)
			if _, err := exec.Execute(op); err != nil {
				b.fail(err)
				isFinished = true
			}
			continue
		}

		if n == warm+1 && warm > 0 {
			if atomic.CompareAndSwapInt32(&b.state, StateWarming, StateRunning) {
				b.store.Begin(time.Now())
			}
		}

		m := n - warm
		if b.N > 0 && m > uint64(b.N) {
			isFinished = true
			continue
		}

		// wait before issuing the next request, if limiter is active
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				isFinished = true
				continue
			}
		}

		op := gen.Next(m)
		begin := time.Now()
		res, err := exec.Execute(op)
		elapsed := time.Since(begin)
		if err != nil {
			b.fail(err)
			isFinished = true
			continue
		}

		latency := res.Latency
		if latency == 0 {
			latency = elapsed
		}
		buf = append(buf, Measurement{
			Seq:          m,
			Kind:         op.Kind,
			Start:        begin,
			Latency:      latency,
			Success:      res.Success,
			ErrKind:      res.ErrKind,
			ComputeUnits: res.ComputeUnits,
		})
		if b.monitor != nil {
			b.monitor.Record(latency)
		}
	}

	b.store.Merge(buf)
	if err := exec.Stop(); err != nil {
		log.Errorf("failed to stop executor: %v", err)
	}
}

// fail records the first fatal executor error and starts the drain.
func (b *Benchmark) fail(err error) {
	b.fatalMu.Lock()
	if b.fatalErr == nil {
		b.fatalErr = err
	}
	b.fatalMu.Unlock()
	b.shutdown()
}

// shutdown signals workers to stop issuing new operations. In-flight
// operations always run to completion.
func (b *Benchmark) shutdown() {
	b.stopOnce.Do(func() {
		atomic.StoreInt32(&b.state, StateDraining)
		close(b.stop)
		if b.cancel != nil {
			b.cancel()
		}
	})
}
