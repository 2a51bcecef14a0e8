package agent

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/NYTimes/gziphandler"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elsevier-core-engineering/emrscale/logging"
)

// HTTPServer exposes the /metrics Prometheus endpoint alongside the
// statsd sink. The agent starts it at HTTPBindAddress, or at
// Telemetry.PrometheusBindAddress when HTTPBindAddress is empty
// (SPEC_FULL.md EXTERNAL INTERFACES).
type HTTPServer struct {
	mux      *http.ServeMux
	listener net.Listener
	Addr     string
}

// Listener opens a TCP listener at addr:port.
func Listener(addr string, port int) (net.Listener, error) {
	if port < 0 || port > 65535 {
		return nil, &net.OpError{
			Op:  "listen",
			Net: "tcp",
			Err: &net.AddrError{Err: "invalid port", Addr: fmt.Sprint(port)},
		}
	}
	return net.Listen("tcp", net.JoinHostPort(addr, strconv.Itoa(port)))
}

// NewHTTPServer starts an HTTP server exposing /metrics at bindAddr
// (host:port).
func NewHTTPServer(bindAddr string) (*HTTPServer, error) {
	host, portStr, err := net.SplitHostPort(bindAddr)
	if err != nil {
		return nil, fmt.Errorf("command/http: invalid bind address %q: %w", bindAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("command/http: invalid bind port %q: %w", portStr, err)
	}

	ln, err := Listener(host, port)
	if err != nil {
		return nil, fmt.Errorf("command/http: failed to start HTTP listener: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &HTTPServer{
		mux:      mux,
		listener: ln,
		Addr:     ln.Addr().String(),
	}

	gzip, err := gziphandler.GzipHandlerWithOpts(gziphandler.MinSize(0))
	if err != nil {
		return nil, err
	}

	go http.Serve(ln, gzip(mux))
	logging.Info("command/http: metrics server listening at %s", srv.Addr)

	return srv, nil
}

// Shutdown stops the HTTP server.
func (s *HTTPServer) Shutdown() {
	if s != nil {
		logging.Info("command/http: shutting down metrics server at %v", s.Addr)
		s.listener.Close()
	}
}
