package chainbench

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTraceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseTrace(t *testing.T) {
	path := writeTraceFile(t, `# recorded on node 1
0 read 42
1000 update 7 128

bad line
2000 teleport 3
x read 5
500 NEW_ORDER 101
`)
	ops, err := parseTrace(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 3 {
		t.Fatalf("got %d trace operations, suppose to be 3", len(ops))
	}
	if ops[0].delta != 0 || ops[0].kind != OpRead || ops[0].key != 42 || ops[0].size != 0 {
		t.Errorf("got different first trace operation %+v", ops[0])
	}
	if ops[1].delta != time.Millisecond || ops[1].kind != OpUpdate || ops[1].key != 7 || ops[1].size != 128 {
		t.Errorf("got different second trace operation %+v", ops[1])
	}
	if ops[2].kind != OpNewOrder || ops[2].key != 101 {
		t.Errorf("got different third trace operation %+v", ops[2])
	}
}

func TestParseTraceMissing(t *testing.T) {
	if _, err := parseTrace(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expect an error for a missing trace file")
	}
}

func TestRunTrace(t *testing.T) {
	path := writeTraceFile(t, `0 insert 1 64
100 read 1
100 scan 0
`)
	bconfig := DefaultBConfig()
	bconfig.T = 0
	bconfig.N = 1
	b, err := NewBenchmark(bconfig, &SimExecutorCreator{})
	if err != nil {
		t.Fatal(err)
	}
	report, err := b.RunTrace(path)
	if err != nil {
		t.Fatal(err)
	}
	if report.Operations != 3 {
		t.Errorf("got %d replayed operations, suppose to be 3", report.Operations)
	}
	if report.SuccessRate != 1.0 {
		t.Errorf("got success rate %f, suppose to be 1", report.SuccessRate)
	}
	if b.Store().Count() != 3 {
		t.Errorf("got %d measurements, suppose to be 3", b.Store().Count())
	}
}

func TestRunTraceEmpty(t *testing.T) {
	path := writeTraceFile(t, "# nothing here\n")
	bconfig := DefaultBConfig()
	b, err := NewBenchmark(bconfig, &SimExecutorCreator{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = b.RunTrace(path); err == nil {
		t.Error("expect an error for an empty trace")
	}
}

func TestRunTraceFatalError(t *testing.T) {
	path := writeTraceFile(t, `0 read 1
0 read 2
0 read 3
`)
	bconfig := DefaultBConfig()
	bconfig.T = 0
	bconfig.N = 1
	b, err := NewBenchmark(bconfig, &faultyExecutorCreator{failAt: 2})
	if err != nil {
		t.Fatal(err)
	}
	report, err := b.RunTrace(path)
	if err == nil {
		t.Fatal("expect the fatal executor error to surface")
	}
	if report == nil {
		t.Fatal("expect a partial report alongside the error")
	}
	if !report.Incomplete {
		t.Error("partial report not marked incomplete")
	}
	if report.Operations != 1 {
		t.Errorf("got %d operations before the failure, suppose to be 1", report.Operations)
	}
}
