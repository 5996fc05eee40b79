package chainbench

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
)

// InsertSequence tracks the number of keys present in the key space,
// counting the initially loaded records plus every claimed insert. It is
// shared by all workers of a run.
type InsertSequence struct {
	n uint64
}

// NewInsertSequence starts the sequence after the initially loaded records.
func NewInsertSequence(loaded uint64) *InsertSequence {
	return &InsertSequence{n: loaded}
}

// Next claims the next unused key.
func (s *InsertSequence) Next() uint64 {
	return atomic.AddUint64(&s.n, 1) - 1
}

// Count returns the current number of allocated keys.
func (s *InsertSequence) Count() uint64 {
	return atomic.LoadUint64(&s.n)
}

// zipfian draws ranks in [0, items) with skew theta, favoring low ranks.
// The zeta constant is extended incrementally when the item count grows,
// so the latest distribution can follow an expanding key space without
// recomputing the whole sum.
type zipfian struct {
	theta float64
	alpha float64
	zeta2 float64

	items uint64
	zetan float64
	eta   float64
}

func newZipfian(items uint64, theta float64) *zipfian {
	z := &zipfian{
		theta: theta,
		alpha: 1.0 / (1.0 - theta),
		zeta2: zetaRange(0, 2, theta),
	}
	z.grow(items)
	return z
}

// zetaRange sums 1/i^theta for i in (from, to].
func zetaRange(from, to uint64, theta float64) float64 {
	var sum float64
	for i := from + 1; i <= to; i++ {
		sum += 1.0 / math.Pow(float64(i), theta)
	}
	return sum
}

// grow extends the zeta constant to cover items entries.
func (z *zipfian) grow(items uint64) {
	if items <= z.items {
		return
	}
	z.zetan += zetaRange(z.items, items, z.theta)
	z.items = items
	z.eta = (1.0 - math.Pow(2.0/float64(items), 1.0-z.theta)) / (1.0 - z.zeta2/z.zetan)
}

func (z *zipfian) next(r *rand.Rand) uint64 {
	u := r.Float64()
	uz := u * z.zetan
	if uz < 1.0 {
		return 0
	}
	if uz < 1.0+math.Pow(0.5, z.theta) {
		return 1
	}
	return uint64(float64(z.items) * math.Pow(z.eta*u-z.eta+1.0, z.alpha))
}

// KeyGenerator generates keys in [0, K) in given distribution. Every
// worker owns one generator seeded independently, the latest distribution
// additionally follows the shared insert sequence.
type KeyGenerator struct {
	bconfig *BenchmarkConfig

	rand *rand.Rand
	zipf *zipfian
	seq  *InsertSequence

	hot     int
	hotOpn  float64
	counter int
}

// NewKeyGenerator creates a generator for one worker. The sequence may be
// nil unless the distribution is latest, where all workers must share one.
func NewKeyGenerator(b *BenchmarkConfig, seed int64, seq *InsertSequence) (*KeyGenerator, error) {
	if b.K <= 0 {
		return nil, fmt.Errorf("key space size must be positive, got %d", b.K)
	}
	theta := b.Theta
	if theta == 0 {
		theta = 0.99
	}
	if theta < 0 || theta >= 1 {
		return nil, fmt.Errorf("zipfian theta must be in (0, 1), got %f", theta)
	}
	k := &KeyGenerator{
		bconfig: b,
		rand:    rand.New(rand.NewSource(seed)),
		seq:     seq,
		counter: -1,
	}
	switch b.Distribution {
	case "uniform", "sequential", "exponential":
	case "zipfian":
		k.zipf = newZipfian(uint64(b.K), theta)
	case "latest":
		if k.seq == nil {
			k.seq = NewInsertSequence(uint64(b.K))
		}
		k.zipf = newZipfian(k.seq.Count(), theta)
	case "hotspot":
		f := b.HotspotFraction
		if f < 0 {
			f = 0
		} else if f > 1 {
			f = 1
		}
		k.hot = int(f * float64(b.K))
		k.hotOpn = b.HotspotOpnFraction
		if k.hotOpn < 0 {
			k.hotOpn = 0
		} else if k.hotOpn > 1 {
			k.hotOpn = 1
		}
	default:
		return nil, fmt.Errorf("unknown key distribution %s", b.Distribution)
	}
	return k, nil
}

// next generates the next key
func (k *KeyGenerator) next() int {
	var key int
	switch k.bconfig.Distribution {
	case "sequential":
		k.counter = (k.counter + 1) % k.bconfig.K
		key = k.counter

	case "uniform":
		key = k.rand.Intn(k.bconfig.K)

	case "zipfian":
		key = int(k.zipf.next(k.rand))

	case "latest":
		n := k.seq.Count()
		k.zipf.grow(n)
		key = int(n) - 1 - int(k.zipf.next(k.rand))
		if key < 0 {
			key = 0
		}

	case "hotspot":
		if k.hot > 0 && k.rand.Float64() < k.hotOpn {
			key = k.rand.Intn(k.hot)
		} else if k.hot < k.bconfig.K {
			key = k.hot + k.rand.Intn(k.bconfig.K-k.hot)
		} else {
			key = k.rand.Intn(k.hot)
		}

	case "exponential":
		key = int(k.rand.ExpFloat64()/k.bconfig.Lambda) % k.bconfig.K
	}
	return key
}
