package chainbench

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// This file contains the operation types exchanged between the driver,
// the executors, and the tcp/unix based mock node. For the http framing
// check out executor_http.go and node_http.go.

// operation kinds of the core workload
const (
	OpRead      = "read"
	OpUpdate    = "update"
	OpInsert    = "insert"
	OpScan      = "scan"
	OpDelete    = "delete"
	OpCPUHeavy  = "cpu_heavy"
	OpIOHeavy   = "io_heavy"
	OpAnalytics = "analytics"
	OpNothing   = "do_nothing"
)

// operation kinds of the transaction profile workload
const (
	OpNewOrder    = "NEW_ORDER"
	OpPayment     = "PAYMENT"
	OpOrderStatus = "ORDER_STATUS"
	OpDelivery    = "DELIVERY"
	OpStockLevel  = "STOCK_LEVEL"
)

// single byte kind codes sent as part of the wire request
const (
	KindRead byte = iota
	KindUpdate
	KindInsert
	KindScan
	KindDelete
	KindCPUHeavy
	KindIOHeavy
	KindAnalytics
	KindNothing
	KindNewOrder
	KindPayment
	KindOrderStatus
	KindDelivery
	KindStockLevel

	KindUnknown byte = 0xff
)

// type of messages sent as the header in the tcp and unix stream
const (
	TypeOpRequest byte = iota
	TypeOpReply
)

// type of responses for an operation
const (
	ReplyOK byte = iota
	ReplyErr
)

// error kinds reported on failed operations
const (
	ErrKindTimeout     = "timeout"
	ErrKindBackend     = "backend"
	ErrKindInjected    = "injected"
	ErrKindUnsupported = "unsupported"
)

// KindCode maps an operation kind to its wire code.
func KindCode(kind string) byte {
	switch kind {
	case OpRead:
		return KindRead
	case OpUpdate:
		return KindUpdate
	case OpInsert:
		return KindInsert
	case OpScan:
		return KindScan
	case OpDelete:
		return KindDelete
	case OpCPUHeavy:
		return KindCPUHeavy
	case OpIOHeavy:
		return KindIOHeavy
	case OpAnalytics:
		return KindAnalytics
	case OpNothing:
		return KindNothing
	case OpNewOrder:
		return KindNewOrder
	case OpPayment:
		return KindPayment
	case OpOrderStatus:
		return KindOrderStatus
	case OpDelivery:
		return KindDelivery
	case OpStockLevel:
		return KindStockLevel
	}
	return KindUnknown
}

// KindName maps a wire code back to the operation kind.
func KindName(code byte) string {
	switch code {
	case KindRead:
		return OpRead
	case KindUpdate:
		return OpUpdate
	case KindInsert:
		return OpInsert
	case KindScan:
		return OpScan
	case KindDelete:
		return OpDelete
	case KindCPUHeavy:
		return OpCPUHeavy
	case KindIOHeavy:
		return OpIOHeavy
	case KindAnalytics:
		return OpAnalytics
	case KindNothing:
		return OpNothing
	case KindNewOrder:
		return OpNewOrder
	case KindPayment:
		return OpPayment
	case KindOrderStatus:
		return OpOrderStatus
	case KindDelivery:
		return OpDelivery
	case KindStockLevel:
		return OpStockLevel
	}
	return ""
}

// OrderLine is one line of a NEW_ORDER transaction.
type OrderLine struct {
	Item     int `msgpack:"i"`
	SupplyW  int `msgpack:"w"`
	Quantity int `msgpack:"q"`
}

// TxArgs carries the arguments of a transaction profile operation.
// RemoteWarehouse is set for PAYMENT when the paying customer belongs
// to another warehouse.
type TxArgs struct {
	Warehouse       int         `msgpack:"w"`
	District        int         `msgpack:"d"`
	Customer        int         `msgpack:"c"`
	ByLastName      bool        `msgpack:"b"`
	LastName        string      `msgpack:"n,omitempty"`
	RemoteWarehouse int         `msgpack:"r,omitempty"`
	Amount          float64     `msgpack:"a,omitempty"`
	Carrier         int         `msgpack:"cr,omitempty"`
	Threshold       int         `msgpack:"th,omitempty"`
	Lines           []OrderLine `msgpack:"l,omitempty"`
}

// Serialize encodes the arguments so they can travel as a request payload.
func (t *TxArgs) Serialize() []byte {
	buff, _ := msgpack.Marshal(t)
	return buff
}

// DeserializeTxArgs decodes transaction arguments from a request payload.
func DeserializeTxArgs(buff []byte) (*TxArgs, error) {
	t := &TxArgs{}
	err := msgpack.Unmarshal(buff, t)
	return t, err
}

// Operation is one unit of generated work handed to an executor.
type Operation struct {
	ID      uint64 // sequence number claimed from the run total
	Kind    string
	Key     int
	Payload []byte
	Tx      *TxArgs // set only by the transaction profile workload
}

func (o *Operation) String() string {
	if o.Tx != nil {
		return fmt.Sprintf("Operation{id=%d kind=%s w=%d d=%d}", o.ID, o.Kind, o.Tx.Warehouse, o.Tx.District)
	}
	return fmt.Sprintf("Operation{id=%d kind=%s key=%d len=%d}", o.ID, o.Kind, o.Key, len(o.Payload))
}

// OpResult reports the outcome of one executed operation. A zero Latency
// means the driver records the wall time it measured around the call,
// executors talking to a remote backend may fill in the backend reported
// latency instead.
type OpResult struct {
	Success      bool
	Latency      time.Duration
	ComputeUnits uint64
	ErrKind      string
	Data         []byte
}

// OpRequest is the wire form of an Operation, sent to a node over the
// tcp and unix transports.
type OpRequest struct {
	OpID    uint32
	SentAt  int64
	Kind    byte
	Key     uint32
	Payload []byte
}

// Serialize makes a bytes array: OpID (uint32: 4 bytes), SentAt (int64: 8 bytes),
// Kind (1 byte), Key (uint32: 4 bytes), PayloadLen (uint32: 4 bytes),
// Payload (PayloadLen bytes).
func (c *OpRequest) Serialize() []byte {
	payloadLen := uint32(len(c.Payload))
	b := make([]byte, 21+payloadLen)

	// writing OpID
	binary.BigEndian.PutUint32(b[0:4], c.OpID)

	// writing SentAt
	binary.BigEndian.PutUint64(b[4:12], uint64(c.SentAt))

	// writing Kind
	b[12] = c.Kind

	// writing Key
	binary.BigEndian.PutUint32(b[13:17], c.Key)

	// writing PayloadLen
	binary.BigEndian.PutUint32(b[17:21], payloadLen)

	// writing Payload
	if payloadLen > 0 {
		copy(b[21:21+payloadLen], c.Payload)
	}

	return b
}

// DeserializeOpRequest creates an OpRequest from buffer
func DeserializeOpRequest(buff []byte) (*OpRequest, error) {
	// len should be at least 21:
	// OpID (4 bytes), SentAt (8 bytes), Kind (1 byte), Key (4 bytes), PayloadLen (4 bytes)
	if len(buff) < 21 {
		return nil, fmt.Errorf("wrong op request buffer, len=%d should be at least 21", len(buff))
	}

	c := &OpRequest{}
	c.OpID = binary.BigEndian.Uint32(buff[0:4])
	c.SentAt = int64(binary.BigEndian.Uint64(buff[4:12]))
	c.Kind = buff[12]
	c.Key = binary.BigEndian.Uint32(buff[13:17])
	payloadLen := binary.BigEndian.Uint32(buff[17:21])
	if len(buff) != 21+int(payloadLen) {
		return nil, fmt.Errorf("wrong op request buffer, len=%d should be %d", len(buff), 21+int(payloadLen))
	}
	if payloadLen > 0 {
		c.Payload = buff[21 : 21+payloadLen]
	}

	return c, nil
}

// OpReply is the reply for an OpRequest. It carries the measurement
// metadata the driver folds into the run result.
type OpReply struct {
	OpID         uint32 `msgpack:"i"` // OpID is the ID of the request replied to
	SentAt       int64  `msgpack:"t"` // the time (in unixnano) when the client sent the request
	Code         byte   `msgpack:"c"` // Code is either ReplyOK or ReplyErr
	ComputeUnits uint64 `msgpack:"u"` // resource units consumed executing the operation
	ErrKind      string `msgpack:"e,omitempty"`
	Data         []byte `msgpack:"d,omitempty"`
}

func (m *OpReply) Serialize() []byte {
	b, _ := msgpack.Marshal(m)
	return b
}

func DeserializeOpReply(buff []byte) (*OpReply, error) {
	r := &OpReply{}
	err := msgpack.Unmarshal(buff, r)
	return r, err
}
