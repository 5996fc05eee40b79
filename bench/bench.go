package main

import (
	"flag"
	"time"

	"github.com/gridtokenx/chainbench"
	"github.com/gridtokenx/chainbench/log"
)

var id = flag.String("target", "1", "node id the executors connect to")
var executor = flag.String("executor", "sim", "executor type [sim, tcp, unix, http]")
var workload = flag.String("workload", "", "workload properties file")
var load = flag.Bool("load", false, "load K keys into the backend, then exit")
var trace = flag.String("trace", "", "replay the given trace file instead of generating operations")
var out = flag.String("out", "", "write the run report as json to this path")
var csvPath = flag.String("csv", "", "write the raw measurements as csv to this path")
var latency = flag.String("latency", "", "write the raw latency samples to this path")

var simLatency = flag.Duration("sim.latency", time.Millisecond, "base latency emulated by the sim executor")
var simJitter = flag.Float64("sim.jitter", 0.1, "relative latency jitter of the sim executor")
var simFailure = flag.Float64("sim.failure", 0, "fraction of operations the sim executor fails")

func main() {
	chainbench.Init()

	bconfig := chainbench.GetConfig().Benchmark
	if *workload != "" {
		if err := chainbench.LoadWorkloadFile(*workload, &bconfig); err != nil {
			log.Fatalf("failed to load workload file %s: %v", *workload, err)
		}
	}

	var creator chainbench.ExecutorCreator
	if *executor == "sim" {
		creator = &chainbench.SimExecutorCreator{
			Latency:     *simLatency,
			Jitter:      *simJitter,
			FailureRate: *simFailure,
		}
	} else if *executor == "tcp" {
		creator = &chainbench.TCPExecutorCreator{ID: chainbench.ID(*id)}
	} else if *executor == "unix" {
		creator = &chainbench.TCPExecutorCreator{ID: chainbench.ID(*id), Network: "unix"}
	} else if *executor == "http" {
		creator = &chainbench.HTTPExecutorCreator{ID: chainbench.ID(*id)}
	} else {
		log.Fatalf("unknown executor type: %s", *executor)
	}

	bench, err := chainbench.NewBenchmark(bconfig, creator)
	if err != nil {
		log.Fatal(err)
	}

	if *load {
		if err = bench.Load(); err != nil {
			log.Fatal(err)
		}
		return
	}

	var report *chainbench.Report
	if *trace != "" {
		report, err = bench.RunTrace(*trace)
	} else {
		report, err = bench.Run()
	}
	if err != nil {
		if report == nil {
			log.Fatal(err)
		}
		log.Errorf("benchmark did not finish cleanly: %v", err)
	}

	if *out != "" {
		if werr := report.WriteJSONFile(*out); werr != nil {
			log.Errorf("failed to write report file: %v", werr)
		}
	}
	if *csvPath != "" {
		if werr := bench.Store().WriteCSV(*csvPath); werr != nil {
			log.Errorf("failed to write measurement file: %v", werr)
		}
	}
	if *latency != "" {
		samples := make([]time.Duration, 0, bench.Store().Count())
		for _, m := range bench.Store().Measurements() {
			if m.Success {
				samples = append(samples, m.Latency)
			}
		}
		if werr := chainbench.Statistic(samples).WriteFile(*latency); werr != nil {
			log.Errorf("failed to write latency file: %v", werr)
		}
	}
}
