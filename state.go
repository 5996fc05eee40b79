package chainbench

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"sync"
)

// Key type of the backend key space
type Key int32

func (k Key) ToBytes() []byte {
	buff := make([]byte, 4)
	binary.BigEndian.PutUint32(buff, uint32(k))
	return buff
}

// Value type of backend records
type Value []byte

// compute unit cost of each operation kind, scans and analytics add a
// per-row component
const (
	unitRead  = 1
	unitWrite = 2
	unitCPU   = 10
)

const (
	// scanSpan is the number of consecutive keys visited by a scan
	scanSpan = 100
	// cpuRounds is the number of hash rounds of a cpu_heavy operation
	cpuRounds = 1000
	// ioWrites is the number of records written by an io_heavy operation
	ioWrites = 10
)

// StateStore defines the backend state the executors and the mock node
// run operations against
type StateStore interface {
	Apply(*Operation) *OpResult
	Get(Key) Value
	Put(Key, Value)
	History(Key) []Value
	Version() int
}

// stateStore implements a multi-version key-value store emulating the
// ledger state of a running chain
type stateStore struct {
	sync.RWMutex
	data         map[Key]Value
	version      int
	multiversion bool
	history      map[Key][]Value
}

// NewStateStore returns an empty store that implements StateStore
func NewStateStore() StateStore {
	return &stateStore{
		data:         make(map[Key]Value),
		version:      0,
		multiversion: config.MultiVersion,
		history:      make(map[Key][]Value),
	}
}

// Apply executes one operation against the store and accounts the
// compute units it consumed
func (s *stateStore) Apply(op *Operation) *OpResult {
	res := &OpResult{Success: true}
	key := Key(op.Key)

	switch op.Kind {
	case OpRead:
		s.RLock()
		res.Data = s.data[key]
		s.RUnlock()
		res.ComputeUnits = unitRead

	case OpUpdate, OpInsert:
		s.Lock()
		s.put(key, op.Payload)
		s.Unlock()
		res.ComputeUnits = unitWrite

	case OpDelete:
		s.Lock()
		delete(s.data, key)
		s.version++
		s.Unlock()
		res.ComputeUnits = unitWrite

	case OpScan:
		var total uint64
		s.RLock()
		for i := 0; i < scanSpan; i++ {
			if v, ok := s.data[key+Key(i)]; ok {
				total += uint64(len(v))
			}
		}
		s.RUnlock()
		res.Data = make([]byte, 8)
		binary.BigEndian.PutUint64(res.Data, total)
		res.ComputeUnits = scanSpan * unitRead

	case OpCPUHeavy:
		sum := sha256.Sum256(append(key.ToBytes(), op.Payload...))
		for i := 1; i < cpuRounds; i++ {
			sum = sha256.Sum256(sum[:])
		}
		res.Data = sum[:]
		res.ComputeUnits = unitCPU

	case OpIOHeavy:
		s.Lock()
		for i := 0; i < ioWrites; i++ {
			s.put(key+Key(i), op.Payload)
		}
		s.Unlock()
		res.ComputeUnits = ioWrites * unitWrite

	case OpAnalytics:
		var rows, total uint64
		s.RLock()
		for _, v := range s.data {
			rows++
			total += uint64(len(v))
		}
		s.RUnlock()
		res.Data = make([]byte, 16)
		binary.BigEndian.PutUint64(res.Data[0:8], rows)
		binary.BigEndian.PutUint64(res.Data[8:16], total)
		res.ComputeUnits = 1 + rows/100

	case OpNothing:
		// measures the bare request path

	case OpNewOrder:
		s.Lock()
		s.put(txKey(op), op.Payload)
		s.Unlock()
		res.ComputeUnits = 10
		if op.Tx != nil {
			res.ComputeUnits += 2 * uint64(len(op.Tx.Lines))
		}

	case OpPayment:
		s.Lock()
		s.put(txKey(op), op.Payload)
		s.Unlock()
		res.ComputeUnits = 6

	case OpOrderStatus:
		s.RLock()
		res.Data = s.data[txKey(op)]
		s.RUnlock()
		res.ComputeUnits = 3

	case OpDelivery:
		base := txKey(op)
		s.Lock()
		for i := 0; i < 10; i++ {
			s.put(base+Key(i), op.Payload)
		}
		s.Unlock()
		res.ComputeUnits = 8

	case OpStockLevel:
		var rows uint64
		base := txKey(op)
		s.RLock()
		for i := 0; i < 20; i++ {
			if _, ok := s.data[base+Key(i)]; ok {
				rows++
			}
		}
		s.RUnlock()
		res.Data = make([]byte, 8)
		binary.BigEndian.PutUint64(res.Data, rows)
		res.ComputeUnits = 4

	default:
		res.Success = false
		res.ErrKind = ErrKindUnsupported
	}

	return res
}

// txKey folds the warehouse and district of a transaction into a state
// key, districts of one warehouse stay within a block of 100 keys
func txKey(op *Operation) Key {
	if op.Tx == nil {
		return Key(op.Key)
	}
	return Key(op.Tx.Warehouse*100 + op.Tx.District)
}

// Get gets the current value of given key
func (s *stateStore) Get(k Key) Value {
	s.RLock()
	defer s.RUnlock()
	return s.data[k]
}

func (s *stateStore) put(k Key, v Value) {
	if v != nil {
		s.data[k] = v
		s.version++
		if s.multiversion {
			if s.history[k] == nil {
				s.history[k] = make([]Value, 0)
			}
			s.history[k] = append(s.history[k], v)
		}
	}
}

// Put puts a new value of given key
func (s *stateStore) Put(k Key, v Value) {
	s.Lock()
	defer s.Unlock()
	s.put(k, v)
}

// Version returns the current store version
func (s *stateStore) Version() int {
	s.RLock()
	defer s.RUnlock()
	return s.version
}

// History returns entire value history of given key in order
func (s *stateStore) History(k Key) []Value {
	s.RLock()
	defer s.RUnlock()
	return s.history[k]
}

func (s *stateStore) String() string {
	s.RLock()
	defer s.RUnlock()
	b, _ := json.Marshal(s.data)
	return string(b)
}
