package autoscaler

import (
	"io"
	"net"
	"net/rpc"
	"reflect"
	"strings"

	hcodec "github.com/hashicorp/go-msgpack/codec"
	msgpackrpc "github.com/hashicorp/net-rpc-msgpackrpc"

	"github.com/elsevier-core-engineering/emrscale/logging"
)

// HashiMsgpackHandle is the msgpack codec handle shared by every RPC
// connection.
var HashiMsgpackHandle = func() *hcodec.MsgpackHandle {
	h := &hcodec.MsgpackHandle{RawToString: true}
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return h
}()

// NewServerCodec returns a new rpc.ServerCodec used by Server to process
// RPC requests over msgpack.
func NewServerCodec(conn io.ReadWriteCloser) rpc.ServerCodec {
	return msgpackrpc.NewCodecFromHandle(true, true, conn, HashiMsgpackHandle)
}

func (s *Server) listen() {
	for {
		conn, err := s.rpcListener.Accept()
		if err != nil {
			if s.shutdown {
				return
			}
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	rpcCodec := NewServerCodec(conn)
	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		if err := s.rpcServer.ServeRequest(rpcCodec); err != nil {
			if err != io.EOF && !strings.Contains(err.Error(), "closed") {
				logging.Error("autoscaler/rpc: error serving RPC request: %v", err)
			}
			return
		}
	}
}
