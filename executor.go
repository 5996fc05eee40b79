package chainbench

// Executor performs one unit of work against the system under test.
// Per-operation failures are reported inside the OpResult and never stop
// a run. A non-nil error is fatal, the driver drains in-flight workers
// and propagates it.
//
// When an executor leaves OpResult.Latency zero the driver records the
// wall time it measured around Execute. Executors talking to a remote
// backend may fill in the latency the backend observed instead.
type Executor interface {
	Init() error
	Execute(op *Operation) (*OpResult, error)
	Stop() error
}

// ExecutorCreator creates one executor per worker before the run starts.
type ExecutorCreator interface {
	Create() (Executor, error)
}
