package api

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elsevier-core-engineering/emrscale/autoscaler"
	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/client/store"
)

func newTestServer(t *testing.T) (*autoscaler.Server, string) {
	t.Helper()

	os.Unsetenv("DB_CONN_STR")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	s, err := store.Open()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.AddCluster(&structs.Cluster{
		ID:           "j-TEST",
		Name:         "test-cluster",
		Active:       true,
		CPULower:     0.3,
		CPUUpper:     0.8,
		ResizePolicy: structs.ResizePolicyCPUBased,
	}))

	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	srv, err := autoscaler.NewServer(s, addr)
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)

	return srv, addr.String()
}

func TestClient_ClusterStatus(t *testing.T) {
	_, addr := newTestServer(t)

	c, err := NewClient(&Config{Address: addr})
	require.NoError(t, err)
	defer c.Close()

	resp, err := c.Status().ClusterStatus("j-TEST")
	require.NoError(t, err)
	require.Equal(t, "j-TEST", resp.ClusterID)
	require.True(t, resp.Active)
}

func TestClient_ListClusters(t *testing.T) {
	_, addr := newTestServer(t)

	c, err := NewClient(&Config{Address: addr})
	require.NoError(t, err)
	defer c.Close()

	ids, err := c.Status().ListClusters()
	require.NoError(t, err)
	require.Equal(t, []string{"j-TEST"}, ids)
}
