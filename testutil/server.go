// Package testutil provides fake YARN ResourceManager and node_exporter
// HTTP backends for tests that exercise the metrics collection path
// without a real EMR cluster.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// YARNMetrics is the subset of the YARN clusterMetrics document the
// collector cares about.
type YARNMetrics struct {
	AppsRunning     int64
	AppsPending     int64
	ReservedMB      int64
	PendingMB       int64
	AllocatedMB     int64
	AvailableMB     int64
	TotalMB         int64
	ReservedVCores  int64
	PendingVCores   int64
	AllocatedVCores int64
	AvailableVCores int64
	TotalVCores     int64
	ActiveNodes     int64
}

// NewYARNServer starts an httptest.Server that serves m at
// /ws/v1/cluster/metrics, mimicking the YARN ResourceManager REST API.
// It also injects a handful of "AcrossPartition" fields the real API
// emits and the collector must ignore.
func NewYARNServer(t *testing.T, m YARNMetrics) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/v1/cluster/metrics" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"clusterMetrics":{
			"appsRunning": %d, "appsPending": %d,
			"reservedMB": %d, "pendingMB": %d, "allocatedMB": %d,
			"availableMB": %d, "totalMB": %d,
			"reservedVirtualCores": %d, "pendingVirtualCores": %d,
			"allocatedVirtualCores": %d, "availableVirtualCores": %d,
			"totalVirtualCores": %d,
			"activeNodes": %d,
			"reservedMBAcrossPartition": 0, "totalMBAcrossPartition": 0
		}}`,
			m.AppsRunning, m.AppsPending,
			m.ReservedMB, m.PendingMB, m.AllocatedMB,
			m.AvailableMB, m.TotalMB,
			m.ReservedVCores, m.PendingVCores,
			m.AllocatedVCores, m.AvailableVCores,
			m.TotalVCores,
			m.ActiveNodes,
		)
	}))
}

// NewNodeExporterServer starts an httptest.Server that serves the
// node_cpu_seconds_total family in the Prometheus text exposition
// format, at the path node_exporter actually uses.
func NewNodeExporterServer(t *testing.T, idleSeconds, totalSeconds float64) *httptest.Server {
	t.Helper()

	busy := totalSeconds - idleSeconds

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/metrics" {
			http.NotFound(w, r)
			return
		}

		fmt.Fprintf(w, "node_cpu_seconds_total{cpu=\"0\",mode=\"idle\"} %f\n", idleSeconds)
		fmt.Fprintf(w, "node_cpu_seconds_total{cpu=\"0\",mode=\"user\"} %f\n", busy)
	}))
}
