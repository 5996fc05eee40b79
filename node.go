package chainbench

import (
	"flag"
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"time"

	"github.com/gridtokenx/chainbench/log"
)

var isPprof = flag.Bool("pprof", false, "activate pprof server")
var serverType = flag.String("server", "tcp", "executor-node connection type: tcp, unix or http")

// Node is a local system-under-test endpoint. It keeps a versioned state
// store and answers operation requests from the tcp, unix or http
// executors.
type Node interface {
	ID() ID
	Run()
	Execute(*OpRequest) *OpReply
	GetConfig() *Config
}

// node implements Node interface
type node struct {
	id     ID
	store  StateStore
	delays map[string]time.Duration
}

// NewNode creates a new Node object from configuration
func NewNode(id ID) Node {
	n := &node{
		id:     id,
		store:  NewStateStore(),
		delays: make(map[string]time.Duration),
	}

	// set the emulated per-kind execution times
	for kind, ms := range GetConfig().Delays {
		// convert ms to ns
		n.delays[kind] = time.Duration(ms * float64(time.Millisecond))
	}

	return n
}

func (n *node) ID() ID {
	return n.id
}

func (n *node) GetConfig() *Config {
	return &config
}

// Execute runs one operation against the state store, waiting out the
// emulated execution time of its kind first.
func (n *node) Execute(req *OpRequest) *OpReply {
	kind := KindName(req.Kind)

	if d, ok := n.delays[kind]; ok && d > 0 {
		time.Sleep(d)
	}

	op := &Operation{
		ID:      uint64(req.OpID),
		Kind:    kind,
		Key:     int(req.Key),
		Payload: req.Payload,
	}
	switch kind {
	case OpNewOrder, OpPayment, OpOrderStatus, OpDelivery, OpStockLevel:
		tx, err := DeserializeTxArgs(req.Payload)
		if err != nil {
			log.Warningf("malformed transaction args in op %d: %v", req.OpID, err)
		} else {
			op.Tx = tx
		}
	}

	res := n.store.Apply(op)

	reply := &OpReply{
		OpID:         req.OpID,
		SentAt:       req.SentAt,
		Code:         ReplyOK,
		ComputeUnits: res.ComputeUnits,
		Data:         res.Data,
	}
	if !res.Success {
		reply.Code = ReplyErr
		reply.ErrKind = res.ErrKind
	}
	return reply
}

// Run start and run the node
func (n *node) Run() {
	log.Infof("node %v start running", n.id)

	if *isPprof {
		go func() {
			runtime.SetMutexProfileFraction(5)
			runtime.SetBlockProfileRate(1)
			log.Fatal(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}

	if *serverType == "http" {
		n.runHTTPServer()
	} else if *serverType == "unix" {
		n.runUnixServer()
	} else if *serverType == "tcp" {
		n.runTCPServer()
	} else {
		log.Fatalf("unknown executor-node connection type: %s", *serverType)
	}
}
