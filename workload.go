package chainbench

import (
	"strings"

	"github.com/magiconair/properties"
)

// YCSB style property names understood by LoadWorkloadFile, plus the
// engine's own measurement keys.
const (
	propWorkload            = "workload"
	propRecordCount         = "recordcount"
	propOperationCount      = "operationcount"
	propThreadCount         = "threadcount"
	propTarget              = "target"
	propMaxExecutionTime    = "maxexecutiontime"
	propFieldLength         = "fieldlength"
	propRequestDistribution = "requestdistribution"
	propReadProportion      = "readproportion"
	propUpdateProportion    = "updateproportion"
	propInsertProportion    = "insertproportion"
	propScanProportion      = "scanproportion"
	propDeleteProportion    = "deleteproportion"
	propCPUHeavyProportion  = "cpuheavyproportion"
	propIOHeavyProportion   = "ioheavyproportion"
	propAnalyticsProportion = "analyticsproportion"
	propDoNothingProportion = "donothingproportion"
	propZipfianConstant     = "zipfianconstant"
	propHotspotDataFraction = "hotspotdatafraction"
	propHotspotOpnFraction  = "hotspotopnfraction"
	propLambda              = "lambda"
	propWriteRatio          = "writeratio"

	propWarmupOps        = "warmupops"
	propWarmupPercent    = "warmuppercent"
	propOutlierSigma     = "outliersigma"
	propConfidence       = "confidence"
	propWindowMS         = "windowms"
	propPrimaryKind      = "primarykind"
	propProgressInterval = "progressinterval"
	propWarehouses       = "warehouses"
)

// LoadWorkloadFile fills b from a YCSB style properties file. Keys that
// are absent leave the current value untouched, so a file only needs to
// name what it changes.
func LoadWorkloadFile(path string, b *BenchmarkConfig) error {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return err
	}

	b.Workload = p.GetString(propWorkload, b.Workload)
	b.K = p.GetInt(propRecordCount, b.K)
	b.N = p.GetInt(propOperationCount, b.N)
	b.T = p.GetInt(propMaxExecutionTime, b.T)
	b.Concurrency = p.GetInt(propThreadCount, b.Concurrency)
	b.Throttle = p.GetInt(propTarget, b.Throttle)
	b.Size = p.GetInt(propFieldLength, b.Size)
	b.W = p.GetFloat64(propWriteRatio, b.W)

	b.Distribution = strings.ToLower(p.GetString(propRequestDistribution, b.Distribution))
	b.Theta = p.GetFloat64(propZipfianConstant, b.Theta)
	b.HotspotFraction = p.GetFloat64(propHotspotDataFraction, b.HotspotFraction)
	b.HotspotOpnFraction = p.GetFloat64(propHotspotOpnFraction, b.HotspotOpnFraction)
	b.Lambda = p.GetFloat64(propLambda, b.Lambda)

	mix := make([]MixEntry, 0, 5)
	mix = appendProportion(mix, p, propReadProportion, OpRead)
	mix = appendProportion(mix, p, propUpdateProportion, OpUpdate)
	mix = appendProportion(mix, p, propInsertProportion, OpInsert)
	mix = appendProportion(mix, p, propScanProportion, OpScan)
	mix = appendProportion(mix, p, propDeleteProportion, OpDelete)
	mix = appendProportion(mix, p, propCPUHeavyProportion, OpCPUHeavy)
	mix = appendProportion(mix, p, propIOHeavyProportion, OpIOHeavy)
	mix = appendProportion(mix, p, propAnalyticsProportion, OpAnalytics)
	mix = appendProportion(mix, p, propDoNothingProportion, OpNothing)
	if len(mix) > 0 {
		b.Mix = mix
	}

	b.WarmupOps = p.GetInt(propWarmupOps, b.WarmupOps)
	b.WarmupPercent = p.GetFloat64(propWarmupPercent, b.WarmupPercent)
	b.OutlierSigma = p.GetFloat64(propOutlierSigma, b.OutlierSigma)
	b.Confidence = p.GetInt(propConfidence, b.Confidence)
	b.WindowMS = p.GetInt(propWindowMS, b.WindowMS)
	b.PrimaryKind = p.GetString(propPrimaryKind, b.PrimaryKind)
	b.ProgressInterval = p.GetInt(propProgressInterval, b.ProgressInterval)
	b.Warehouses = p.GetInt(propWarehouses, b.Warehouses)

	return nil
}

func appendProportion(mix []MixEntry, p *properties.Properties, key, kind string) []MixEntry {
	if w := p.GetFloat64(key, 0); w > 0 {
		mix = append(mix, MixEntry{Kind: kind, Weight: w})
	}
	return mix
}
