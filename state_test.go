package chainbench

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestStateStoreReadUpdateDelete(t *testing.T) {
	s := NewStateStore()

	res := s.Apply(&Operation{Kind: OpRead, Key: 5})
	if !res.Success || res.ComputeUnits != 1 {
		t.Errorf("read of a missing key got %v, suppose to succeed with 1 unit", res)
	}
	if res.Data != nil {
		t.Errorf("read of a missing key returned %v", res.Data)
	}

	payload := []byte("value-5")
	res = s.Apply(&Operation{Kind: OpUpdate, Key: 5, Payload: payload})
	if !res.Success || res.ComputeUnits != 2 {
		t.Errorf("update got %v, suppose to succeed with 2 units", res)
	}
	if !bytes.Equal(s.Get(5), payload) {
		t.Errorf("stored value %v, suppose to be %v", s.Get(5), payload)
	}
	if s.Version() != 1 {
		t.Errorf("version %d after one write, suppose to be 1", s.Version())
	}

	res = s.Apply(&Operation{Kind: OpDelete, Key: 5})
	if !res.Success || res.ComputeUnits != 2 {
		t.Errorf("delete got %v, suppose to succeed with 2 units", res)
	}
	if s.Get(5) != nil {
		t.Error("deleted key still readable")
	}
	if s.Version() != 2 {
		t.Errorf("version %d after delete, suppose to be 2", s.Version())
	}
}

func TestStateStoreScan(t *testing.T) {
	s := NewStateStore()
	for k := 10; k < 20; k++ {
		s.Put(Key(k), make([]byte, 4))
	}

	res := s.Apply(&Operation{Kind: OpScan, Key: 10})
	if !res.Success || res.ComputeUnits != 100 {
		t.Errorf("scan got %v, suppose to succeed with 100 units", res)
	}
	if total := binary.BigEndian.Uint64(res.Data); total != 40 {
		t.Errorf("scan visited %d bytes, suppose to be 40", total)
	}
}

func TestStateStoreCPUHeavy(t *testing.T) {
	s := NewStateStore()

	first := s.Apply(&Operation{Kind: OpCPUHeavy, Key: 1, Payload: []byte{9}})
	second := s.Apply(&Operation{Kind: OpCPUHeavy, Key: 1, Payload: []byte{9}})
	if !first.Success || first.ComputeUnits != 10 {
		t.Errorf("cpu heavy got %v, suppose to succeed with 10 units", first)
	}
	if len(first.Data) != 32 {
		t.Errorf("cpu heavy digest of %d bytes, suppose to be 32", len(first.Data))
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("cpu heavy digest not deterministic")
	}
}

func TestStateStoreIOHeavy(t *testing.T) {
	s := NewStateStore()

	res := s.Apply(&Operation{Kind: OpIOHeavy, Key: 100, Payload: []byte("blob")})
	if !res.Success || res.ComputeUnits != 20 {
		t.Errorf("io heavy got %v, suppose to succeed with 20 units", res)
	}
	for k := 100; k < 110; k++ {
		if s.Get(Key(k)) == nil {
			t.Errorf("io heavy did not write key %d", k)
		}
	}
}

func TestStateStoreAnalytics(t *testing.T) {
	s := NewStateStore()
	for k := 0; k < 3; k++ {
		s.Put(Key(k), make([]byte, 8))
	}

	res := s.Apply(&Operation{Kind: OpAnalytics})
	if !res.Success || res.ComputeUnits != 1 {
		t.Errorf("analytics got %v, suppose to succeed with 1 unit", res)
	}
	rows := binary.BigEndian.Uint64(res.Data[0:8])
	total := binary.BigEndian.Uint64(res.Data[8:16])
	if rows != 3 || total != 24 {
		t.Errorf("analytics saw %d rows and %d bytes, suppose to be 3 and 24", rows, total)
	}
}

func TestStateStoreTransactions(t *testing.T) {
	s := NewStateStore()

	order := &Operation{
		Kind:    OpNewOrder,
		Payload: []byte("order"),
		Tx: &TxArgs{
			Warehouse: 2,
			District:  3,
			Customer:  15,
			Lines:     make([]OrderLine, 7),
		},
	}
	res := s.Apply(order)
	if !res.Success || res.ComputeUnits != 24 {
		t.Errorf("new order got %v, suppose to succeed with 10+2*7 units", res)
	}

	status := &Operation{
		Kind: OpOrderStatus,
		Tx:   &TxArgs{Warehouse: 2, District: 3, Customer: 15},
	}
	res = s.Apply(status)
	if !res.Success || res.ComputeUnits != 3 {
		t.Errorf("order status got %v, suppose to succeed with 3 units", res)
	}
	if !bytes.Equal(res.Data, []byte("order")) {
		t.Errorf("order status read %v, suppose to see the order write", res.Data)
	}

	// a transaction without args falls back to the plain key
	fallback := &Operation{Kind: OpPayment, Key: 203, Payload: []byte("pay")}
	if res = s.Apply(fallback); !res.Success {
		t.Errorf("payment without args got %v", res)
	}
	if !bytes.Equal(s.Get(203), []byte("pay")) {
		t.Error("payment without args did not land on the plain key")
	}
}

func TestStateStoreUnsupported(t *testing.T) {
	s := NewStateStore()
	res := s.Apply(&Operation{Kind: "bogus", Key: 1})
	if res.Success {
		t.Error("unknown kind must fail")
	}
	if res.ErrKind != ErrKindUnsupported {
		t.Errorf("unknown kind failed with %q, suppose to be %q", res.ErrKind, ErrKindUnsupported)
	}
}

func TestStateStoreHistory(t *testing.T) {
	config.MultiVersion = true
	defer func() { config.MultiVersion = false }()

	s := NewStateStore()
	s.Put(1, []byte("a"))
	s.Put(1, []byte("b"))

	h := s.History(1)
	if len(h) != 2 {
		t.Fatalf("history holds %d versions, suppose to be 2", len(h))
	}
	if !bytes.Equal(h[0], []byte("a")) || !bytes.Equal(h[1], []byte("b")) {
		t.Errorf("history %v out of order", h)
	}
}
