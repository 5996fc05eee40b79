package chainbench

import "math/rand"

// scale constants of the transaction profile schema
const (
	districtsPerWarehouse = 10
	customersPerDistrict  = 3000
	itemCount             = 100000
)

// TpccMix returns the fixed mix of the transaction profile.
func TpccMix() []MixEntry {
	return []MixEntry{
		{Kind: OpNewOrder, Weight: 0.45},
		{Kind: OpPayment, Weight: 0.43},
		{Kind: OpOrderStatus, Weight: 0.04},
		{Kind: OpDelivery, Weight: 0.04},
		{Kind: OpStockLevel, Weight: 0.04},
	}
}

// TpccConstants are the per-run NURand constants. They are drawn once
// per run and shared read-only by every worker, so two runs select
// different hot customers and items while one run stays self-consistent.
type TpccConstants struct {
	CLast int
	CID   int
	CItem int
}

// NewTpccConstants draws the constants for one run.
func NewTpccConstants(r *rand.Rand) *TpccConstants {
	return &TpccConstants{
		CLast: r.Intn(256),
		CID:   r.Intn(1024),
		CItem: r.Intn(8192),
	}
}

// tpccGenerator synthesizes transaction arguments for one worker.
type tpccGenerator struct {
	bconfig *BenchmarkConfig
	rand    *rand.Rand
	consts  *TpccConstants
}

func newTpccGenerator(b *BenchmarkConfig, r *rand.Rand, consts *TpccConstants) *tpccGenerator {
	return &tpccGenerator{bconfig: b, rand: r, consts: consts}
}

func (g *tpccGenerator) next(id uint64, kind string) *Operation {
	op := &Operation{ID: id, Kind: kind}
	tx := &TxArgs{
		Warehouse: g.warehouse(),
		District:  randInt(g.rand, 1, districtsPerWarehouse),
	}

	switch kind {
	case OpNewOrder:
		tx.Customer = NURand(g.rand, 1023, 1, customersPerDistrict, g.consts.CID)
		tx.Lines = make([]OrderLine, randInt(g.rand, 5, 15))
		for i := range tx.Lines {
			supply := tx.Warehouse
			// 1% of order lines are supplied by a remote warehouse
			if g.bconfig.Warehouses > 1 && g.rand.Intn(100) == 0 {
				supply = g.otherWarehouse(tx.Warehouse)
			}
			tx.Lines[i] = OrderLine{
				Item:     NURand(g.rand, 8191, 1, itemCount, g.consts.CItem),
				SupplyW:  supply,
				Quantity: randInt(g.rand, 1, 10),
			}
		}

	case OpPayment:
		tx.Amount = float64(randInt(g.rand, 100, 500000)) / 100.0
		// 15% of payments are made by a customer of a remote warehouse
		if g.bconfig.Warehouses > 1 && g.rand.Intn(100) < 15 {
			tx.RemoteWarehouse = g.otherWarehouse(tx.Warehouse)
		}
		g.customer(tx)

	case OpOrderStatus:
		g.customer(tx)

	case OpDelivery:
		tx.Carrier = randInt(g.rand, 1, 10)

	case OpStockLevel:
		tx.Threshold = randInt(g.rand, 10, 20)
	}

	op.Tx = tx
	op.Key = int(txKey(op))
	op.Payload = tx.Serialize()
	return op
}

// customer fills the customer selector, 60% of lookups go by last name.
func (g *tpccGenerator) customer(tx *TxArgs) {
	if g.rand.Intn(100) < 60 {
		tx.ByLastName = true
		tx.LastName = LastName(NURand(g.rand, 255, 0, 999, g.consts.CLast))
	} else {
		tx.Customer = NURand(g.rand, 1023, 1, customersPerDistrict, g.consts.CID)
	}
}

func (g *tpccGenerator) warehouse() int {
	if g.bconfig.Warehouses <= 1 {
		return 1
	}
	return randInt(g.rand, 1, g.bconfig.Warehouses)
}

// otherWarehouse picks a warehouse different from w.
func (g *tpccGenerator) otherWarehouse(w int) int {
	o := randInt(g.rand, 1, g.bconfig.Warehouses-1)
	if o >= w {
		o++
	}
	return o
}
