package chainbench

// BenchmarkConfig holds all benchmark configuration
type BenchmarkConfig struct {
	T            int        // total number of running time in seconds, using N if 0
	N            int        // total number of operations, using T if 0; with both set the run stops at whichever hits first
	K            int        // accessed key space [0,K)
	W            float64    // write ratio, used to derive a read/update mix when Mix is empty
	Size         int        // the size of the payload written in bytes, the key is always a 4 bytes integer
	Throttle     int        // requests per second throttle per worker, unused if 0
	Concurrency  int        // number of concurrent workers
	Distribution string     // key-access distribution: uniform, sequential, zipfian, latest, hotspot, exponential
	Workload     string     // workload profile: "core" for the generic kinds, "tpcc" for the transaction profile
	Mix          []MixEntry // operation mix in iteration order, weights should sum to 1.0
	BufferSize   int        // per-worker measurement buffer preallocation and channel sizes

	WarmupOps        int     // operations executed and discarded before recording starts
	WarmupPercent    float64 // leading percentage of recorded measurements discarded during reduction
	OutlierSigma     float64 // stddev multiplier for outlier filtering, 3 when 0, disabled when negative
	Confidence       int     // confidence level for the mean interval: 90, 95, or 99
	WindowMS         int     // throughput window size in milliseconds, 1000 when 0
	PrimaryKind      string  // operation kind reported as a per-minute rate, e.g. NEW_ORDER
	ProgressInterval int     // seconds between live progress reports, disabled if 0

	// zipfian and latest distributions
	Theta float64 // zipfian skew parameter

	// hotspot distribution
	HotspotFraction    float64 // fraction of the key space forming the hot set
	HotspotOpnFraction float64 // fraction of operations routed to the hot set

	// exponential distribution
	Lambda float64 // rate parameter

	// tpcc profile
	Warehouses int // scale factor, number of warehouses in the synthesized schema
}

// DefaultBConfig returns a default benchmark config
func DefaultBConfig() BenchmarkConfig {
	return BenchmarkConfig{
		T:                  60,
		N:                  0,
		K:                  1000,
		W:                  0.5,
		Size:               50,
		Throttle:           0,
		Concurrency:        1,
		Distribution:       "uniform",
		Workload:           "core",
		BufferSize:         1024,
		WarmupOps:          0,
		WarmupPercent:      0,
		OutlierSigma:       3,
		Confidence:         95,
		WindowMS:           1000,
		ProgressInterval:   0,
		Theta:              0.99,
		HotspotFraction:    0.2,
		HotspotOpnFraction: 0.8,
		Lambda:             0.01,
		Warehouses:         1,
	}
}
