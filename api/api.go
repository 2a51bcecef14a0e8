// Package api provides a thin Go client for the emrscale agent's
// status RPC endpoint.
package api

import (
	"net"
	"net/rpc"
	"time"

	msgpackrpc "github.com/hashicorp/net-rpc-msgpackrpc"

	"github.com/elsevier-core-engineering/emrscale/autoscaler"
)

// Config is the configuration used to construct a Client.
type Config struct {
	// Address is the host:port of the agent's RPC listener, e.g.
	// "127.0.0.1:1314".
	Address string

	// Timeout bounds how long Dial waits for the connection.
	Timeout time.Duration
}

// DefaultConfig returns a Config pointed at the agent's default RPC
// bind address.
func DefaultConfig() *Config {
	return &Config{
		Address: "127.0.0.1:1314",
		Timeout: 5 * time.Second,
	}
}

// Client is a connection to a running emrscale agent's RPC endpoint.
type Client struct {
	config Config
	rpc    *rpc.Client
}

// NewClient dials the agent's RPC listener and returns a Client ready
// to issue status calls.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	conn, err := net.DialTimeout("tcp", config.Address, config.Timeout)
	if err != nil {
		return nil, err
	}

	codec := msgpackrpc.NewCodecFromHandle(true, true, conn, autoscaler.HashiMsgpackHandle)

	return &Client{
		config: *config,
		rpc:    rpc.NewClientWithCodec(codec),
	}, nil
}

// Close tears down the underlying RPC connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// Status returns a handle on the status related endpoints.
func (c *Client) Status() *Status {
	return &Status{client: c}
}
