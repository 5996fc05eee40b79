package chainbench

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// TCPExecutorCreator dials one connection per worker to a node, over tcp
// or over a unix domain socket when Network is "unix".
type TCPExecutorCreator struct {
	ID      ID
	Network string // "tcp" or "unix", "tcp" if empty
	Addr    string // target address, resolved from the config endpoints if empty
}

func (c *TCPExecutorCreator) Create() (Executor, error) {
	network := c.Network
	if network == "" {
		network = "tcp"
	}
	addr := c.Addr
	if addr == "" {
		if network == "unix" {
			addr = UnixSocketPath(c.ID)
		} else {
			addr = GetConfig().GetHostAddress(c.ID)
		}
	}
	if addr == "" {
		return nil, fmt.Errorf("unknown %s node address for executor-node communication", c.ID)
	}
	return &TCPExecutor{network: network, addr: addr}, nil
}

// TCPExecutor implements Executor over a plain stream connection. One
// request is in flight at a time per connection.
type TCPExecutor struct {
	network string
	addr    string

	connection net.Conn
	buffReader *bufio.Reader
	buffWriter *bufio.Writer

	curOpID uint32
}

func (e *TCPExecutor) Init() error {
	conn, err := net.Dial(e.network, e.addr)
	if err != nil {
		return err
	}
	e.connection = conn
	e.buffReader = bufio.NewReader(conn)
	e.buffWriter = bufio.NewWriter(conn)
	return nil
}

// Execute sends the operation and blocks until its reply arrives.
// WARNING: this assumes the replies are FIFO (ordered)
func (e *TCPExecutor) Execute(op *Operation) (*OpResult, error) {
	if e.connection == nil {
		return nil, errors.New("executor is not initialized")
	}

	e.curOpID++
	req := &OpRequest{
		OpID:    e.curOpID,
		SentAt:  time.Now().UnixNano(),
		Kind:    KindCode(op.Kind),
		Key:     uint32(op.Key),
		Payload: op.Payload,
	}

	reply, err := e.do(req)
	if err != nil {
		return nil, err
	}

	res := &OpResult{
		Success:      reply.Code == ReplyOK,
		ComputeUnits: reply.ComputeUnits,
		ErrKind:      reply.ErrKind,
		Data:         reply.Data,
	}
	if !res.Success && res.ErrKind == "" {
		res.ErrKind = ErrKindBackend
	}
	return res, nil
}

// do writes one framed request and reads back one framed reply
func (e *TCPExecutor) do(req *OpRequest) (*OpReply, error) {
	reqBytes := req.Serialize()
	buff := make([]byte, 5)
	buff[0] = TypeOpRequest
	binary.BigEndian.PutUint32(buff[1:], uint32(len(reqBytes)))
	buff = append(buff, reqBytes...)

	if _, err := e.buffWriter.Write(buff); err != nil {
		return nil, err
	}
	if err := e.buffWriter.Flush(); err != nil {
		return nil, err
	}

	firstByte, err := e.buffReader.ReadByte()
	if err != nil {
		return nil, err
	}
	if firstByte != TypeOpReply {
		return nil, fmt.Errorf("unknown reply type sent by the node: %d", firstByte)
	}

	var respLenByte [4]byte
	if _, err = io.ReadAtLeast(e.buffReader, respLenByte[:], 4); err != nil {
		return nil, err
	}
	respLen := binary.BigEndian.Uint32(respLenByte[:])
	msgBuff := make([]byte, respLen)
	if _, err = io.ReadAtLeast(e.buffReader, msgBuff, int(respLen)); err != nil {
		return nil, err
	}

	return DeserializeOpReply(msgBuff)
}

func (e *TCPExecutor) Stop() error {
	if e.connection == nil {
		return nil
	}
	return e.connection.Close()
}
