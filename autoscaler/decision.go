package autoscaler

import (
	"math"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
)

// Decide computes target_max_units for one cluster from its policy
// inputs and the latest sliding-window averages (spec §4.5). The
// clamping chain below is taken verbatim as canonical per spec §9 Open
// Question (a); the step formulas are taken as canonical per Open
// Question (b).
func Decide(c *structs.Cluster, m *structs.AvgMetric, policy structs.ManagedScalingPolicy) int {
	currentMax := policy.MaximumCapacityUnits

	var step float64
	switch c.ResizePolicy {
	case structs.ResizePolicyCPUBased:
		step = cpuBasedStep(c, m, currentMax)
	case structs.ResizePolicyResourceBased:
		step = resourceBasedStep(m, currentMax)
	}

	if step > 0 {
		step = math.Ceil(step * c.ScaleOutFactor)
	} else if step < 0 {
		step = math.Floor(step * c.ScaleInFactor)
	}

	target := currentMax + int(step)

	// Clamping chain, in order, per spec §4.5.
	target = min(target, c.MaxCapacityLimit)
	target = max(target, policy.MinimumCapacityUnits+1)
	target = max(target, policy.MaximumCoreCapacityUnits)
	target = max(target, policy.MaximumOnDemandCapacityUnits)

	return target
}

// cpuBasedStep implements the CPU_BASED step formula. A nil/indeterminate
// cpu_utilisation yields a zero step; callers are expected to have
// already aborted the tick on an indeterminate AvgMetric (spec §4.7).
func cpuBasedStep(c *structs.Cluster, m *structs.AvgMetric, currentMax int) float64 {
	if m.CPUUtilisation == nil {
		return 0
	}
	util := *m.CPUUtilisation

	switch {
	case util < c.CPULower:
		return -(1 - util/c.CPUUpper) * float64(currentMax)
	case util > c.CPUUpper:
		return (util/c.CPUUpper - 1) * float64(currentMax)
	default:
		return 0
	}
}

// resourceBasedStep implements the RESOURCE_BASED step formula.
func resourceBasedStep(m *structs.AvgMetric, currentMax int) float64 {
	pv, pm := m.PendingVCores, m.PendingMB
	tv, tm := m.TotalVCores, m.TotalMB
	av, amem := m.AllocatedVCores, m.AllocatedMB
	rv, rm := m.ReservedVCores, m.ReservedMB

	if pv > 0 || pm > 0 {
		ratio := 0.0
		if tv > 0 {
			ratio = math.Max(ratio, pv/tv)
		}
		if tm > 0 {
			ratio = math.Max(ratio, pm/tm)
		}
		return ratio * float64(currentMax)
	}

	step := math.Inf(-1)
	if tm > 0 {
		step = math.Max(step, -(1 - (amem+rm)/tm))
	}
	if tv > 0 {
		step = math.Max(step, -(1 - (av+rv)/tv))
	}
	if math.IsInf(step, -1) {
		step = 0
	}
	step *= float64(currentMax)
	return math.Min(step, 0)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
