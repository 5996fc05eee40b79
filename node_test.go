package chainbench

import (
	"bufio"
	"bytes"
	"net"
	"testing"
	"time"
)

func TestNodeExecute(t *testing.T) {
	n := NewNode("1")

	tx := &TxArgs{Warehouse: 1, District: 4, Customer: 7, Lines: make([]OrderLine, 5)}
	reply := n.Execute(&OpRequest{OpID: 3, SentAt: 99, Kind: KindNewOrder, Key: 104, Payload: tx.Serialize()})
	if reply.Code != ReplyOK {
		t.Errorf("new order failed with %q", reply.ErrKind)
	}
	if reply.ComputeUnits != 20 {
		t.Errorf("new order consumed %d units, suppose to be 10+2*5", reply.ComputeUnits)
	}
	if reply.OpID != 3 || reply.SentAt != 99 {
		t.Errorf("reply %v does not echo the request metadata", reply)
	}

	read := n.Execute(&OpRequest{OpID: 4, Kind: KindRead, Key: 42})
	if read.Code != ReplyOK || read.ComputeUnits != 1 {
		t.Errorf("read got %v, suppose to succeed with 1 unit", read)
	}

	bad := n.Execute(&OpRequest{OpID: 5, Kind: 0x77, Key: 1})
	if bad.Code != ReplyErr {
		t.Error("unknown kind byte must fail")
	}
	if bad.ErrKind != ErrKindUnsupported {
		t.Errorf("unknown kind failed with %q, suppose to be %q", bad.ErrKind, ErrKindUnsupported)
	}
}

func TestNodeEmulatedDelay(t *testing.T) {
	config.Delays = map[string]float64{OpRead: 20}
	defer func() { config.Delays = nil }()

	n := NewNode("1")
	begin := time.Now()
	n.Execute(&OpRequest{OpID: 1, Kind: KindRead, Key: 1})
	if elapsed := time.Since(begin); elapsed < 20*time.Millisecond {
		t.Errorf("read returned after %v, the emulated execution time is 20ms", elapsed)
	}
}

func TestNodeFramedRoundTrip(t *testing.T) {
	nd := NewNode("1").(*node)

	client, server := net.Pipe()
	go nd.handleIncomingOps(server)

	e := &TCPExecutor{
		network:    "pipe",
		addr:       "pipe",
		connection: client,
		buffReader: bufio.NewReader(client),
		buffWriter: bufio.NewWriter(client),
	}

	res, err := e.Execute(&Operation{Kind: OpUpdate, Key: 7, Payload: []byte("v")})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.ComputeUnits != 2 {
		t.Errorf("update over the wire got %v, suppose to succeed with 2 units", res)
	}

	res, err = e.Execute(&Operation{Kind: OpRead, Key: 7})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Errorf("read over the wire failed with %q", res.ErrKind)
	}
	if !bytes.Equal(res.Data, []byte("v")) {
		t.Errorf("read %v over the wire, suppose to see the update", res.Data)
	}

	if err = e.Stop(); err != nil {
		t.Error(err)
	}
}
