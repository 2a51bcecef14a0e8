package autoscaler

import (
	"fmt"
	"net"
	"net/rpc"

	"github.com/elsevier-core-engineering/emrscale/client/store"
	"github.com/elsevier-core-engineering/emrscale/logging"
)

// DefaultRPCAddr is the default bind address and port for the status
// RPC listener.
var DefaultRPCAddr = &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1314}

// Server hosts the status RPC endpoint alongside the Scheduler. It
// carries no scaling authority of its own — observability only.
type Server struct {
	store *store.Store

	endpoints endpoints

	rpcListener net.Listener
	rpcServer   *rpc.Server

	shutdown     bool
	shutdownChan chan struct{}
}

type endpoints struct {
	Status *Status
}

// NewServer starts the status RPC listener at bindAddr.
func NewServer(s *store.Store, bindAddr *net.TCPAddr) (*Server, error) {
	if bindAddr == nil {
		bindAddr = DefaultRPCAddr
	}

	srv := &Server{
		store:        s,
		rpcServer:    rpc.NewServer(),
		shutdownChan: make(chan struct{}),
	}

	srv.endpoints.Status = &Status{srv}
	srv.rpcServer.Register(srv.endpoints.Status)

	listener, err := net.ListenTCP("tcp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("autoscaler/server: failed to start RPC layer: %w", err)
	}
	srv.rpcListener = listener

	go srv.listen()
	logging.Info("autoscaler/server: status RPC server listening at %v", bindAddr)

	return srv, nil
}

// Shutdown halts the RPC listener.
func (s *Server) Shutdown() {
	s.shutdown = true
	if s.rpcListener != nil {
		logging.Info("autoscaler/server: shutting down status RPC server at %v", s.rpcListener.Addr())
		s.rpcListener.Close()
	}
	close(s.shutdownChan)
}
