package autoscaler

import (
	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/logging"
	"github.com/elsevier-core-engineering/emrscale/notifier"
)

const clusterFailsafeReason = "cluster_failsafe_mode"

// Persister is the narrow store capability the failsafe circuit breaker
// needs: persisting the cluster row it mutates.
type Persister interface {
	UpdateCluster(*structs.Cluster) error
}

// FailsafeCheck implements the per-cluster circuit breaker that trips
// automatically once failureThreshold consecutive tick failures have
// been recorded. Once tripped, a human operator must reset it via the
// registry CLI (spec §7 "Programmer errors" ambient concern).
func FailsafeCheck(c *structs.Cluster, store Persister, threshold int, notifiers []notifier.Notifier) bool {
	if c.FailsafeMode {
		return false
	}

	if c.FailureCount >= threshold {
		tripFailsafe(c, store, notifiers)
		return false
	}

	logging.Debug("autoscaler/failsafe: failsafe check passes for cluster %s, "+
		"scaling operations are permitted", c.ID)
	return true
}

// RecordFailure increments the failure counter for a cluster following a
// failed tick and persists it.
func RecordFailure(c *structs.Cluster, store Persister) error {
	c.FailureCount++
	return store.UpdateCluster(c)
}

// RecordSuccess resets the failure counter after a clean tick.
func RecordSuccess(c *structs.Cluster, store Persister) error {
	if c.FailureCount == 0 {
		return nil
	}
	c.FailureCount = 0
	return store.UpdateCluster(c)
}

// SetFailsafeMode administratively enables or disables failsafe mode for
// a cluster, used by the failsafe CLI command.
func SetFailsafeMode(c *structs.Cluster, store Persister, enabled bool) error {
	c.FailsafeMode = enabled
	if !enabled {
		c.FailureCount = 0
	}
	return store.UpdateCluster(c)
}

func tripFailsafe(c *structs.Cluster, store Persister, notifiers []notifier.Notifier) {
	if !c.FailsafeMode {
		msg := notifier.FailureMessage{
			ClusterIdentifier: c.ID,
			ResourceID:        c.ID,
			ResourceType:      "cluster",
			Reason:            clusterFailsafeReason,
		}
		for _, n := range notifiers {
			n.SendNotification(msg)
		}
	}

	logging.Warning("autoscaler/failsafe: cluster %s has been placed in failsafe "+
		"mode, no scaling operations will be permitted until it is administratively "+
		"reset", c.ID)

	c.FailsafeMode = true
	if err := store.UpdateCluster(c); err != nil {
		logging.Error("autoscaler/failsafe: failed to persist failsafe mode for cluster %s: %v", c.ID, err)
	}
}
