package autoscaler

import (
	"context"

	"github.com/elsevier-core-engineering/emrscale/client"
	"github.com/elsevier-core-engineering/emrscale/client/store"
)

// Persister used here is the store itself; GetCluster/UpdateCluster are
// both needed, which the narrow failsafe.Persister interface does not
// cover, so Reset takes the concrete *store.Store.

// Reset restores a cluster's live MaximumCapacityUnits to the value
// frozen at registration time and pushes the restored policy back to
// the provider (spec §6 "reset", §8 round-trip property).
func Reset(s *store.Store, provider client.Provider, clusterID string) error {
	c, err := s.GetCluster(clusterID)
	if err != nil {
		return err
	}

	initial, err := c.InitialPolicy()
	if err != nil {
		return err
	}

	current, err := c.CurrentPolicy()
	if err != nil {
		return err
	}
	current.MaximumCapacityUnits = initial.MaximumCapacityUnits

	if err := provider.PutManagedScalingPolicy(context.Background(), clusterID, current); err != nil {
		return err
	}

	if err := c.SetCurrentPolicy(current); err != nil {
		return err
	}

	return s.UpdateCluster(c)
}
