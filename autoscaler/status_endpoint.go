package autoscaler

// ClusterStatusRequest names the cluster a status RPC call is for.
type ClusterStatusRequest struct {
	ClusterID string
}

// ClusterStatusResponse is the RPC-visible snapshot of one cluster's
// control state, exposed for operator tooling. Carries no scaling
// authority of its own.
type ClusterStatusResponse struct {
	ClusterID      string
	Active         bool
	FailsafeMode   bool
	FailureCount   int
	LastScaleInTS  string
	LastScaleOutTS string
}

// Status is the RPC endpoint exposing per-cluster control state.
type Status struct {
	srv *Server
}

// ClusterStatus returns the current control state of one registered
// cluster.
func (s *Status) ClusterStatus(args *ClusterStatusRequest, reply *ClusterStatusResponse) error {
	c, err := s.srv.store.GetCluster(args.ClusterID)
	if err != nil {
		return err
	}

	*reply = ClusterStatusResponse{
		ClusterID:      c.ID,
		Active:         c.Active,
		FailsafeMode:   c.FailsafeMode,
		FailureCount:   c.FailureCount,
		LastScaleInTS:  c.LastScaleInTS.String(),
		LastScaleOutTS: c.LastScaleOutTS.String(),
	}
	return nil
}

// ListClusters returns every registered cluster's id.
func (s *Status) ListClusters(args interface{}, reply *[]string) error {
	clusters, err := s.srv.store.ListClusters()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(clusters))
	for _, c := range clusters {
		ids = append(ids, c.ID)
	}
	*reply = ids
	return nil
}
