package chainbench

import (
	"math/rand"
)

// OperationGenerator produces the operation stream of one worker. Each
// worker owns one generator with an independently seeded random source,
// only the insert sequence is shared across workers.
type OperationGenerator struct {
	bconfig *BenchmarkConfig

	rand   *rand.Rand
	keygen *KeyGenerator
	mix    *MixSelector
	seq    *InsertSequence
	tpcc   *tpccGenerator
}

// mixFor resolves the operation mix of a config, the transaction profile
// has a fixed mix, otherwise an explicit Mix wins over the W shortcut.
func mixFor(b *BenchmarkConfig) []MixEntry {
	if b.Workload == "tpcc" {
		return TpccMix()
	}
	if len(b.Mix) > 0 {
		return b.Mix
	}
	return deriveMix(b.W)
}

// NewOperationGenerator creates a generator for one worker. The sequence
// may be nil for standalone use, workers of one run must share one. The
// constants must be shared by all workers when the workload is tpcc.
func NewOperationGenerator(b *BenchmarkConfig, seed int64, seq *InsertSequence, consts *TpccConstants) (*OperationGenerator, error) {
	if seq == nil {
		seq = NewInsertSequence(uint64(b.K))
	}
	keygen, err := NewKeyGenerator(b, seed+1, seq)
	if err != nil {
		return nil, err
	}
	mix, err := NewMixSelector(mixFor(b))
	if err != nil {
		return nil, err
	}
	g := &OperationGenerator{
		bconfig: b,
		rand:    rand.New(rand.NewSource(seed)),
		keygen:  keygen,
		mix:     mix,
		seq:     seq,
	}
	if b.Workload == "tpcc" {
		if consts == nil {
			consts = NewTpccConstants(rand.New(rand.NewSource(seed)))
		}
		g.tpcc = newTpccGenerator(b, g.rand, consts)
	}
	return g, nil
}

// Next generates the operation with the given sequence number.
func (g *OperationGenerator) Next(id uint64) *Operation {
	kind := g.mix.Pick(g.rand)
	if g.tpcc != nil {
		return g.tpcc.next(id, kind)
	}

	op := &Operation{ID: id, Kind: kind}
	switch kind {
	case OpInsert:
		op.Key = int(g.seq.Next())
		op.Payload = g.payloadBytes()
	case OpUpdate, OpCPUHeavy, OpIOHeavy:
		op.Key = g.keygen.next()
		op.Payload = g.payloadBytes()
	default:
		op.Key = g.keygen.next()
	}
	return op
}

func (g *OperationGenerator) payloadBytes() []byte {
	b := make([]byte, g.bconfig.Size)
	g.rand.Read(b)
	return b
}
