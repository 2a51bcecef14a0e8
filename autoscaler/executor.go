package autoscaler

import (
	"context"
	"sort"
	"time"

	metrics "github.com/armon/go-metrics"
	"github.com/google/uuid"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/client"
	"github.com/elsevier-core-engineering/emrscale/logging"
)

// VCPULookup resolves an EC2 instance type to its vcpu count, backed by
// the process-wide cached catalog (cloud package).
type VCPULookup func(instanceType string) int

// Execute runs gating and dispatch for one cluster and returns the
// ResizeEvent describing the outcome (spec §4.6). dryRun suppresses the
// provider calls but not the gating/event bookkeeping.
func Execute(ctx context.Context, provider client.Provider, c *structs.Cluster, policy structs.ManagedScalingPolicy, target int, now time.Time, dryRun bool, vcpu VCPULookup) (*structs.ResizeEvent, error) {
	event := &structs.ResizeEvent{
		ID:              uuid.NewString(),
		ClusterID:       c.ID,
		EventTime:       now,
		CurrentMaxUnits: policy.MaximumCapacityUnits,
		TargetMaxUnits:  target,
	}

	resizing, err := c.IsResizing()
	if err != nil {
		return nil, err
	}
	event.IsResizing = resizing
	event.IsCoolingDown = c.IsCoolingDown(now)

	if resizing {
		logging.Info("autoscaler/executor: cluster %s has a resize in flight, skipping", c.ID)
		event.Action = structs.ActionNothing
		metrics.IncrCounter([]string{"autoscaler", "gated", "resizing"}, 1)
		return event, nil
	}
	if event.IsCoolingDown {
		logging.Info("autoscaler/executor: cluster %s is cooling down, skipping", c.ID)
		event.Action = structs.ActionNothing
		metrics.IncrCounter([]string{"autoscaler", "gated", "cooldown"}, 1)
		return event, nil
	}

	switch {
	case target < policy.MaximumCapacityUnits:
		event.Action = structs.ActionScaleIn
	case target > policy.MaximumCapacityUnits:
		event.Action = structs.ActionScaleOut
	default:
		event.Action = structs.ActionNothing
		return event, nil
	}

	if dryRun {
		logging.Info("autoscaler/executor: dry-run, would %s cluster %s from %d to %d units",
			event.Action, c.ID, policy.MaximumCapacityUnits, target)
		return event, nil
	}

	policy.MaximumCapacityUnits = target
	if err := provider.PutManagedScalingPolicy(ctx, c.ID, policy); err != nil {
		return nil, err
	}

	if err := c.SetCurrentPolicy(policy); err != nil {
		return nil, err
	}

	if event.Action == structs.ActionScaleOut {
		c.LastScaleOutTS = now
		metrics.IncrCounter([]string{"autoscaler", "scale_out"}, 1)
		return event, nil
	}

	delta := event.CurrentMaxUnits - target

	if c.IsFleet() {
		if err := scaleInFleet(ctx, provider, c, delta); err != nil {
			return nil, err
		}
	} else {
		if err := scaleInGroups(ctx, provider, c, delta, vcpu); err != nil {
			return nil, err
		}
	}

	c.LastScaleInTS = now
	metrics.IncrCounter([]string{"autoscaler", "scale_in"}, 1)
	return event, nil
}

// scaleInFleet reduces the TASK fleet's targets by delta, preferring to
// remove spot capacity before on-demand (spec §4.6, §8 invariant 4).
func scaleInFleet(ctx context.Context, provider client.Provider, c *structs.Cluster, delta int) error {
	fleet, err := c.TaskInstanceFleet()
	if err != nil {
		return err
	}
	if fleet == nil {
		return nil
	}

	od, sp := fleet.TargetOnDemandCapacity, fleet.TargetSpotCapacity
	if sp >= delta {
		sp -= delta
	} else {
		delta -= sp
		sp = 0
		od = max(od-delta, 0)
	}

	return provider.ModifyInstanceFleet(ctx, c.ID, fleet.Id, od, sp)
}

// scaleInGroups walks the TASK instance groups, SPOT first, subtracting
// as much of delta as each group can provide (spec §4.6, §8 invariant 4).
func scaleInGroups(ctx context.Context, provider client.Provider, c *structs.Cluster, delta int, vcpu VCPULookup) error {
	groups, err := c.TaskInstanceGroups()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}

	policy, err := c.CurrentPolicy()
	if err != nil {
		return err
	}

	sort.SliceStable(groups, func(i, j int) bool {
		iSpot := groups[i].Market == structs.MarketSpot
		jSpot := groups[j].Market == structs.MarketSpot
		return iSpot && !jSpot
	})

	var updates []client.InstanceGroupModify
	for _, g := range groups {
		if delta <= 0 {
			break
		}
		units := g.RunningInstanceCount
		if policy.UnitType == structs.UnitTypeVCPU {
			units = g.RunningInstanceCount * vcpu(g.InstanceType)
		}

		taken := delta
		if units < taken {
			taken = units
		}
		newCount := max(units-taken, 0)
		updates = append(updates, client.InstanceGroupModify{
			InstanceGroupID: g.Id,
			InstanceCount:   newCount,
		})
		delta -= taken
	}

	return provider.ModifyInstanceGroups(ctx, c.ID, updates)
}
