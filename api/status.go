package api

import "github.com/elsevier-core-engineering/emrscale/autoscaler"

// Status is used to query the agent's status related RPC endpoints.
type Status struct {
	client *Client
}

// ClusterStatus returns the current control state of one registered
// cluster, as tracked by the agent's reconciliation loop.
func (s *Status) ClusterStatus(clusterID string) (autoscaler.ClusterStatusResponse, error) {
	var resp autoscaler.ClusterStatusResponse

	req := &autoscaler.ClusterStatusRequest{ClusterID: clusterID}
	if err := s.client.rpc.Call("Status.ClusterStatus", req, &resp); err != nil {
		return resp, err
	}

	return resp, nil
}

// ListClusters returns every cluster ID currently registered with the
// agent.
func (s *Status) ListClusters() ([]string, error) {
	var ids []string

	if err := s.client.rpc.Call("Status.ListClusters", struct{}{}, &ids); err != nil {
		return nil, err
	}

	return ids, nil
}
