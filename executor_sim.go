package chainbench

import (
	"math/rand"
	"time"
)

// SimExecutorCreator builds simulated executors that share one state
// store, so concurrent workers contend on the same backend state.
type SimExecutorCreator struct {
	Store       StateStore
	Latency     time.Duration            // base emulated execution time
	Jitter      float64                  // fraction of the base time added or removed per call
	FailureRate float64                  // probability of an injected failure
	KindLatency map[string]time.Duration // per kind base time override

	created int64
}

func (c *SimExecutorCreator) Create() (Executor, error) {
	if c.Store == nil {
		c.Store = NewStateStore()
	}
	c.created++
	return &SimExecutor{
		store:       c.Store,
		rand:        rand.New(rand.NewSource(time.Now().UTC().UnixNano() + c.created<<16)),
		latency:     c.Latency,
		jitter:      c.Jitter,
		failureRate: c.FailureRate,
		kindLatency: c.KindLatency,
	}, nil
}

// SimExecutor emulates a backend by applying operations to a local state
// store after a synthetic execution delay.
type SimExecutor struct {
	store       StateStore
	rand        *rand.Rand
	latency     time.Duration
	jitter      float64
	failureRate float64
	kindLatency map[string]time.Duration
}

func (e *SimExecutor) Init() error {
	return nil
}

func (e *SimExecutor) Execute(op *Operation) (*OpResult, error) {
	if d := e.delay(op.Kind); d > 0 {
		time.Sleep(d)
	}
	if e.failureRate > 0 && e.rand.Float64() < e.failureRate {
		return &OpResult{Success: false, ErrKind: ErrKindInjected}, nil
	}
	return e.store.Apply(op), nil
}

func (e *SimExecutor) Stop() error {
	return nil
}

// delay computes the emulated execution time of one call.
func (e *SimExecutor) delay(kind string) time.Duration {
	base := e.latency
	if d, ok := e.kindLatency[kind]; ok {
		base = d
	}
	if base <= 0 {
		return 0
	}
	if e.jitter > 0 {
		f := 1.0 + e.jitter*(2.0*e.rand.Float64()-1.0)
		return time.Duration(float64(base) * f)
	}
	return base
}
