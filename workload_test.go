package chainbench

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWorkloadFile(t *testing.T) {
	content := `# update heavy test profile
recordcount=5000
operationcount=20000
maxexecutiontime=0
threadcount=8
requestdistribution=Zipfian
zipfianconstant=0.8
readproportion=0.7
updateproportion=0.3
warmuppercent=15
confidence=99
windowms=500
`
	path := filepath.Join(t.TempDir(), "test.properties")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	b := DefaultBConfig()
	if err := LoadWorkloadFile(path, &b); err != nil {
		t.Fatal(err)
	}

	if b.K != 5000 || b.N != 20000 || b.T != 0 || b.Concurrency != 8 {
		t.Errorf("scale keys not applied: K=%d N=%d T=%d threads=%d", b.K, b.N, b.T, b.Concurrency)
	}
	if b.Distribution != "zipfian" {
		t.Errorf("distribution %q, suppose to be lowercased zipfian", b.Distribution)
	}
	if b.Theta != 0.8 {
		t.Errorf("theta %f, suppose to be 0.8", b.Theta)
	}
	if len(b.Mix) != 2 {
		t.Fatalf("mix has %d entries, suppose to be 2", len(b.Mix))
	}
	if b.Mix[0].Kind != OpRead || b.Mix[0].Weight != 0.7 {
		t.Errorf("mix entry %v, suppose to be 0.7 read", b.Mix[0])
	}
	if b.Mix[1].Kind != OpUpdate || b.Mix[1].Weight != 0.3 {
		t.Errorf("mix entry %v, suppose to be 0.3 update", b.Mix[1])
	}
	if b.WarmupPercent != 15 || b.Confidence != 99 || b.WindowMS != 500 {
		t.Errorf("measurement keys not applied: warmup=%f confidence=%d window=%d",
			b.WarmupPercent, b.Confidence, b.WindowMS)
	}

	// keys the file does not name keep their defaults
	if b.Size != 50 || b.OutlierSigma != 3 || b.Workload != "core" {
		t.Errorf("untouched keys changed: size=%d sigma=%f workload=%q", b.Size, b.OutlierSigma, b.Workload)
	}
}

func TestLoadShippedWorkloads(t *testing.T) {
	ycsb := DefaultBConfig()
	if err := LoadWorkloadFile("workloads/ycsb-a.properties", &ycsb); err != nil {
		t.Fatal(err)
	}
	if ycsb.K != 100000 || ycsb.Distribution != "zipfian" || len(ycsb.Mix) != 2 {
		t.Errorf("ycsb-a profile parsed as K=%d %s mix=%v", ycsb.K, ycsb.Distribution, ycsb.Mix)
	}

	tpcc := DefaultBConfig()
	if err := LoadWorkloadFile("workloads/tpcc.properties", &tpcc); err != nil {
		t.Fatal(err)
	}
	if tpcc.Workload != "tpcc" || tpcc.Warehouses != 1 || tpcc.PrimaryKind != OpNewOrder {
		t.Errorf("tpcc profile parsed as %q warehouses=%d primary=%q", tpcc.Workload, tpcc.Warehouses, tpcc.PrimaryKind)
	}
	if tpcc.N != 50000 || tpcc.T != 0 {
		t.Errorf("tpcc profile parsed as N=%d T=%d", tpcc.N, tpcc.T)
	}

	micro := DefaultBConfig()
	if err := LoadWorkloadFile("workloads/micro.properties", &micro); err != nil {
		t.Fatal(err)
	}
	if len(micro.Mix) != 4 {
		t.Errorf("micro profile mix %v, suppose to name the four micro kinds", micro.Mix)
	}
	if micro.WarmupOps != 500 {
		t.Errorf("micro profile warmup %d, suppose to be 500", micro.WarmupOps)
	}
}

func TestLoadWorkloadFileMissing(t *testing.T) {
	b := DefaultBConfig()
	if err := LoadWorkloadFile(filepath.Join(t.TempDir(), "absent.properties"), &b); err == nil {
		t.Error("missing workload file must error")
	}
}
