package autoscaler

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/client"
	"github.com/elsevier-core-engineering/emrscale/client/store"
	"github.com/elsevier-core-engineering/emrscale/logging"
	"github.com/elsevier-core-engineering/emrscale/notifier"
)

// Scheduler drives one reconciliation tick per interval across every
// active cluster (spec §4.7). A single logical scheduler owns every
// registered cluster; there is no leader election because spec.md's
// Non-goals rule out horizontal sharding of the daemon.
type Scheduler struct {
	store             *store.Store
	provider          client.Provider
	eventQueue        *client.EventQueue
	eventQueueName    string
	dryRun            bool
	failsafeThreshold int
	notifiers         []notifier.Notifier
	vcpu              VCPULookup

	doneChan chan struct{}
}

// NewScheduler builds a Scheduler from its collaborators.
func NewScheduler(s *store.Store, provider client.Provider, eventQueue *client.EventQueue,
	eventQueueName string, dryRun bool, failsafeThreshold int, notifiers []notifier.Notifier, vcpu VCPULookup) *Scheduler {
	return &Scheduler{
		store:             s,
		provider:          provider,
		eventQueue:        eventQueue,
		eventQueueName:    eventQueueName,
		dryRun:            dryRun,
		failsafeThreshold: failsafeThreshold,
		notifiers:         notifiers,
		vcpu:              vcpu,
		doneChan:          make(chan struct{}),
	}
}

// RunOnce performs a single reconciliation tick and returns.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.tick(ctx)
}

// Start runs ticks at the given interval until Stop is called.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-s.doneChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the scheduler after draining the current tick.
func (s *Scheduler) Stop() {
	close(s.doneChan)
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()

	ids, err := s.store.ActiveClusterIDs()
	if err != nil {
		logging.Error("autoscaler/scheduler: failed to snapshot active cluster ids: %v", err)
		return
	}

	for _, id := range ids {
		s.tickCluster(ctx, id, now)
	}

	if s.eventQueueName != "" && s.eventQueue != nil {
		persist := func(event structs.QueueEvent) error {
			return s.store.AppendQueueEvent(&event)
		}
		if err := s.eventQueue.Drain(ctx, s.eventQueueName, persist); err != nil {
			logging.Warning("autoscaler/scheduler: event queue drain failed: %v", err)
		}
	}

	if err := s.store.Sweep(now); err != nil {
		logging.Error("autoscaler/scheduler: retention sweep failed: %v", err)
	}
}

// tickCluster performs the full per-cluster reconciliation sequence.
// Any failure aborts only this cluster and the scheduler continues; a
// recovered panic is logged with its stack trace (spec §4.7 step 2, §7).
func (s *Scheduler) tickCluster(ctx context.Context, id string, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("autoscaler/scheduler: cluster %s tick panicked: %v\n%s", id, r, debug.Stack())
		}
	}()

	c, err := s.store.GetCluster(id)
	if err != nil {
		logging.Error("autoscaler/scheduler: cluster %s missing from registry mid-tick: %v", id, err)
		return
	}

	if c.FailsafeMode {
		logging.Debug("autoscaler/scheduler: cluster %s is in failsafe mode, skipping", id)
		return
	}

	event, err := s.reconcileCluster(ctx, c, now)
	if err != nil {
		logging.Error("autoscaler/scheduler: cluster %s tick failed: %v", id, err)
		if failErr := RecordFailure(c, s.store); failErr != nil {
			logging.Error("autoscaler/scheduler: failed to record failure for cluster %s: %v", id, failErr)
		}
		FailsafeCheck(c, s.store, s.failsafeThreshold, s.notifiers)
		return
	}

	if err := RecordSuccess(c, s.store); err != nil {
		logging.Error("autoscaler/scheduler: failed to reset failure count for cluster %s: %v", id, err)
	}

	if err := s.store.UpdateCluster(c); err != nil {
		logging.Error("autoscaler/scheduler: failed to persist cluster %s: %v", id, err)
		return
	}

	if event != nil {
		if err := s.store.AppendResizeEvent(event); err != nil {
			logging.Error("autoscaler/scheduler: failed to append resize event for cluster %s: %v", id, err)
		}
	}
}

// reconcileCluster runs the state refresh → aggregate → decide →
// execute sequence for one cluster (spec §4.7 step 2).
func (s *Scheduler) reconcileCluster(ctx context.Context, c *structs.Cluster, now time.Time) (*structs.ResizeEvent, error) {
	desc, err := s.provider.DescribeCluster(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if desc.State != "RUNNING" && desc.State != "WAITING" {
		logging.Info("autoscaler/scheduler: cluster %s is not running (state=%s), skipping", c.ID, desc.State)
		return nil, nil
	}
	c.MasterEndpoint = desc.MasterPublicDNSName

	policy, err := s.provider.GetManagedScalingPolicy(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if err := c.SetCurrentPolicy(policy); err != nil {
		return nil, err
	}

	if c.IsFleet() {
		fleets, err := s.provider.ListInstanceFleets(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if err := c.SetInstanceFleets(fleets); err != nil {
			return nil, err
		}
	} else {
		groups, err := s.provider.ListInstanceGroups(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if err := c.SetInstanceGroups(groups); err != nil {
			return nil, err
		}
	}

	metricSample, err := client.CollectYARNMetrics(ctx, c.MasterEndpoint)
	if err != nil {
		return nil, err
	}
	metricSample.ClusterID = c.ID
	metricSample.EventTime = now
	if err := s.store.AppendMetricSample(metricSample); err != nil {
		return nil, err
	}

	instances, err := client.DiscoverInstances(ctx, s.provider, c.ID)
	if err != nil {
		return nil, err
	}
	cpuSamples, err := client.ScrapeCPUSamples(ctx, c.ID, instances, now)
	if err != nil {
		logging.Warning("autoscaler/scheduler: partial CPU scrape failure for cluster %s: %v", c.ID, err)
	}
	if err := s.store.AppendCPUSamples(cpuSamples); err != nil {
		return nil, err
	}

	avg, err := ComputeAverages(s.store.DB(), c, now, cpuSamples)
	if err != nil {
		logging.Info("autoscaler/scheduler: cluster %s aggregation skipped: %v", c.ID, err)
		return nil, nil
	}
	if avg.CPUUtilisation == nil {
		logging.Info("autoscaler/scheduler: cluster %s cpu utilisation indeterminate, skipping", c.ID)
		return nil, nil
	}
	if err := s.store.AppendAvgMetric(avg); err != nil {
		return nil, err
	}

	target := Decide(c, avg, policy)

	event, err := Execute(ctx, s.provider, c, policy, target, now, s.dryRun, s.vcpu)
	if err != nil {
		return nil, err
	}

	return event, nil
}
