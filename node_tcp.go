package chainbench

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridtokenx/chainbench/log"
)

// UnixSocketPath returns the socket file shared between the executors
// and the given node on the local machine.
func UnixSocketPath(id ID) string {
	return fmt.Sprintf("/tmp/chainbench_%s.sock", id)
}

func (n *node) runTCPServer() {
	port := ":" + GetConfig().GetHostPort(n.id)

	listener, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to start tcp node server: %s", err)
	}
	defer listener.Close()

	log.Infof("listening on port %s for executor-node communication", port)

	// accept any incoming TCP connection request from an executor
	for {
		// Accept() blocks until it receives a new connection request
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			log.Errorf("failed to accept executor connection request %v", acceptErr)
			continue
		}
		log.Debugf("executor connection accepted")

		go n.handleIncomingOps(conn)
	}
}

func (n *node) runUnixServer() {
	socketAddress := UnixSocketPath(n.id)

	_ = os.Remove(socketAddress)

	// remove socket file when the node is killed
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		os.Remove(socketAddress)
		os.Exit(1)
	}()

	listener, err := net.Listen("unix", socketAddress)
	if err != nil {
		log.Fatalf("failed to start unix node server: %v", err)
	}
	defer listener.Close()

	log.Infof("listening on socket address %s for executor-node communication", socketAddress)

	// accept any incoming unix (uds) connection request from an executor
	for {
		// Accept() blocks until it receives a new connection request
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			log.Errorf("failed to accept executor connection request %v", acceptErr)
			continue
		}
		log.Debugf("executor connection accepted")

		go n.handleIncomingOps(conn)
	}
}

// handleIncomingOps serves one executor connection. Requests are
// executed in arrival order so the replies leave in FIFO order, which
// the executor side relies on.
func (n *node) handleIncomingOps(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	replyStream := make(chan *OpReply, GetConfig().ChanBufferSize)

	// running the sender for sending the replies back to the executor
	go n.runResponseSender(replyStream, writer)

	var err error
	var firstByte byte
	var reqLenBuff [4]byte
	var reqLen uint32

	for {
		// the reader blocks until bytes are available in the underlying
		// socket, thus it is fine to have this busy-loop.
		// read the request type, then the request itself.

		firstByte, err = reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				log.Debugf("executor is terminating the connection")
				break
			}
			log.Errorf("fail to read byte from executor, terminating the connection. %v", err)
			break
		}

		if firstByte != TypeOpRequest {
			log.Errorf("unsupported request type: %d", firstByte)
			break
		}

		_, err = io.ReadAtLeast(reader, reqLenBuff[0:4], 4)
		if err != nil {
			log.Errorf("fail to read request length %v", err)
			break
		}
		reqLen = binary.BigEndian.Uint32(reqLenBuff[0:4])
		reqBuff := make([]byte, reqLen)

		_, err = io.ReadAtLeast(reader, reqBuff[:reqLen], int(reqLen))
		if err != nil {
			log.Errorf("fail to read request data %v", err)
			break
		}

		req, derr := DeserializeOpRequest(reqBuff)
		if derr != nil {
			log.Errorf("malformed op request: %v", derr)
			break
		}

		replyStream <- n.Execute(req)
	}

	close(replyStream)
}

func (n *node) runResponseSender(replyStream chan *OpReply, writer *bufio.Writer) {
	for rep := range replyStream {
		repBuff := rep.Serialize()
		repLenBuff := make([]byte, 4)
		repLen := len(repBuff)

		if err := writer.WriteByte(TypeOpReply); err != nil {
			log.Error(err)
			continue
		}
		binary.BigEndian.PutUint32(repLenBuff, uint32(repLen))
		nn, err := writer.Write(repLenBuff)
		if err != nil {
			log.Error(err)
			continue
		}
		if nn != len(repLenBuff) {
			log.Errorf("short write: %d, expected %d", nn, len(repLenBuff))
			continue
		}

		nn, err = writer.Write(repBuff)
		if err != nil {
			log.Error(err)
			continue
		}
		if nn != len(repBuff) {
			log.Errorf("short write: %d, expected %d", nn, len(repBuff))
			continue
		}
		if ferr := writer.Flush(); ferr != nil {
			log.Error(ferr)
			continue
		}
	}
}
