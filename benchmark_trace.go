package chainbench

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gridtokenx/chainbench/log"
)

// traceOp is one line of a recorded operation stream:
// <delta_us> <kind> <key> [payload_size]
// where delta_us is the gap in microseconds since the previous operation.
type traceOp struct {
	delta time.Duration
	kind  string
	key   int
	size  int
}

// parseTrace loads a trace file, skipping malformed lines with a warning.
func parseTrace(path string) ([]traceOp, error) {
	tracefile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer tracefile.Close()

	ops := make([]traceOp, 0)
	sc := bufio.NewScanner(tracefile)
	for sc.Scan() {
		raw := sc.Text()
		fields := strings.Fields(raw)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < 3 {
			log.Warningf("wrong trace format: %s", raw)
			continue
		}

		delta, derr := strconv.Atoi(fields[0])
		if derr != nil {
			log.Warning(derr)
			continue
		}

		kind := fields[1]
		if KindCode(kind) == KindUnknown {
			log.Warningf("unknown operation kind in trace: %s", raw)
			continue
		}

		key, kerr := strconv.Atoi(fields[2])
		if kerr != nil {
			log.Warning(kerr)
			continue
		}

		size := 0
		if len(fields) > 3 {
			size, _ = strconv.Atoi(fields[3])
		}

		ops = append(ops, traceOp{
			delta: time.Duration(delta) * time.Microsecond,
			kind:  kind,
			key:   key,
			size:  size,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

// RunTrace replays a recorded operation stream through one executor,
// honoring the recorded inter-operation gaps. The replayed measurements
// go through the same reduction as a generated run.
func (b *Benchmark) RunTrace(path string) (*Report, error) {
	ops, err := parseTrace(path)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("trace %s holds no operations", path)
	}

	exec, err := b.creator.Create()
	if err != nil {
		return nil, err
	}
	if err = exec.Init(); err != nil {
		return nil, err
	}

	r := rand.New(rand.NewSource(time.Now().UTC().UnixNano()))
	start := time.Now()
	b.store.Begin(start)

	var prevIssue time.Time
	for i, t := range ops {
		// wait out the recorded gap, minus the time the previous
		// operation already took
		if i > 0 && t.delta > 0 {
			wait := t.delta - time.Since(prevIssue)
			if wait > 0 {
				time.Sleep(wait)
			}
		}

		op := &Operation{ID: uint64(i + 1), Kind: t.kind, Key: t.key}
		if t.size > 0 {
			op.Payload = make([]byte, t.size)
			r.Read(op.Payload)
		}

		begin := time.Now()
		prevIssue = begin
		res, rerr := exec.Execute(op)
		elapsed := time.Since(begin)
		if rerr != nil {
			exec.Stop()
			b.store.Finish(time.Now())
			report := ComputeReport(b.store, &b.BenchmarkConfig)
			report.Incomplete = true
			return report, rerr
		}

		latency := res.Latency
		if latency == 0 {
			latency = elapsed
		}
		b.store.Add(Measurement{
			Seq:          uint64(i + 1),
			Kind:         t.kind,
			Start:        begin,
			Latency:      latency,
			Success:      res.Success,
			ErrKind:      res.ErrKind,
			ComputeUnits: res.ComputeUnits,
		})
	}

	end := time.Now()
	b.store.Finish(end)
	if err = exec.Stop(); err != nil {
		log.Errorf("failed to stop executor: %v", err)
	}

	report := ComputeReport(b.store, &b.BenchmarkConfig)
	log.Infof("replayed %d operations from %s in %v", len(ops), path, end.Sub(start))
	log.Infof("Throughput = %f\n", report.TPS)
	return report, nil
}
