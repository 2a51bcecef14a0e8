package structs

import (
	"encoding/json"
	"fmt"
	"time"
)

// Cluster is the registry record for one managed EMR cluster. Identity
// and policy-input fields are owned by the registry CLI; observed state
// and control state are owned exclusively by the reconciliation loop
// (see spec §3 Ownership).
type Cluster struct {
	// Identity.
	ID     string `gorm:"primaryKey" json:"id"`
	Name   string `json:"name"`
	Group  string `json:"group"`
	Active bool   `json:"active"`

	// Policy inputs.
	CPULower         float64 `json:"cpu_lower"`
	CPUUpper         float64 `json:"cpu_upper"`
	LookbackMinutes  int     `json:"lookback_minutes"`
	CooldownMinutes  int     `json:"cooldown_minutes"`
	ScaleInFactor    float64 `json:"scale_in_factor"`
	ScaleOutFactor   float64 `json:"scale_out_factor"`
	MaxCapacityLimit int     `json:"max_capacity_limit"`
	ResizePolicy     string  `json:"resize_policy"`

	// Observed state, refreshed each tick.
	MasterEndpoint     string `json:"master_endpoint"`
	InitialPolicyJSON  []byte `gorm:"column:initial_policy" json:"-"`
	CurrentPolicyJSON  []byte `gorm:"column:current_policy" json:"-"`
	InstanceFleetsJSON []byte `gorm:"column:instance_fleets" json:"-"`
	InstanceGroupsJSON []byte `gorm:"column:instance_groups" json:"-"`

	// Control state.
	LastScaleInTS  time.Time `json:"last_scale_in_ts"`
	LastScaleOutTS time.Time `json:"last_scale_out_ts"`

	// FailureCount/FailsafeMode back the per-cluster circuit breaker
	// (autoscaler/failsafe.go). Not part of spec's core data model, but
	// persisted alongside the record it guards.
	FailureCount int  `json:"failure_count"`
	FailsafeMode bool `json:"failsafe_mode"`
}

// Validate enforces the invariants of spec §3/§4.1.
func (c *Cluster) Validate() error {
	if c.CPULower >= c.CPUUpper {
		return fmt.Errorf("cpu_lower (%v) must be less than cpu_upper (%v)", c.CPULower, c.CPUUpper)
	}
	if c.ScaleInFactor < 0 || c.ScaleOutFactor < 0 {
		return fmt.Errorf("scale factors must be >= 0")
	}
	switch c.ResizePolicy {
	case ResizePolicyCPUBased, ResizePolicyResourceBased:
	default:
		return fmt.Errorf("resize_policy must be %s or %s", ResizePolicyCPUBased, ResizePolicyResourceBased)
	}
	return nil
}

// InitialPolicy returns the policy frozen at registration time. It is
// never mutated by the daemon (spec §3 invariant 2).
func (c *Cluster) InitialPolicy() (ManagedScalingPolicy, error) {
	return decodePolicy(c.InitialPolicyJSON)
}

// SetInitialPolicy freezes the policy at registration time. Callers
// outside the registry CLI must never call this again for an existing
// cluster.
func (c *Cluster) SetInitialPolicy(p ManagedScalingPolicy) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	c.InitialPolicyJSON = b
	return nil
}

// CurrentPolicy returns the live policy as last observed/mutated.
func (c *Cluster) CurrentPolicy() (ManagedScalingPolicy, error) {
	return decodePolicy(c.CurrentPolicyJSON)
}

// SetCurrentPolicy replaces the live policy.
func (c *Cluster) SetCurrentPolicy(p ManagedScalingPolicy) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	c.CurrentPolicyJSON = b
	return nil
}

func decodePolicy(raw []byte) (ManagedScalingPolicy, error) {
	var p ManagedScalingPolicy
	if len(raw) == 0 {
		return p, nil
	}
	err := json.Unmarshal(raw, &p)
	return p, err
}

// InstanceFleets returns the last-observed fleet list. Empty for
// group-shaped clusters.
func (c *Cluster) InstanceFleets() ([]InstanceFleet, error) {
	var fleets []InstanceFleet
	if len(c.InstanceFleetsJSON) == 0 {
		return fleets, nil
	}
	err := json.Unmarshal(c.InstanceFleetsJSON, &fleets)
	return fleets, err
}

// SetInstanceFleets replaces the last-observed fleet list.
func (c *Cluster) SetInstanceFleets(fleets []InstanceFleet) error {
	b, err := json.Marshal(fleets)
	if err != nil {
		return err
	}
	c.InstanceFleetsJSON = b
	return nil
}

// InstanceGroups returns the last-observed instance group list. Empty
// for fleet-shaped clusters.
func (c *Cluster) InstanceGroups() ([]InstanceGroup, error) {
	var groups []InstanceGroup
	if len(c.InstanceGroupsJSON) == 0 {
		return groups, nil
	}
	err := json.Unmarshal(c.InstanceGroupsJSON, &groups)
	return groups, err
}

// SetInstanceGroups replaces the last-observed instance group list.
func (c *Cluster) SetInstanceGroups(groups []InstanceGroup) error {
	b, err := json.Marshal(groups)
	if err != nil {
		return err
	}
	c.InstanceGroupsJSON = b
	return nil
}

// IsFleet reports whether this cluster is built on instance fleets
// rather than instance groups, derived from the current policy's unit
// type (spec §3).
func (c *Cluster) IsFleet() bool {
	policy, err := c.CurrentPolicy()
	if err != nil {
		return false
	}
	return policy.UnitType == UnitTypeInstanceFleetUnits
}

// TaskInstanceFleet returns the TASK fleet, if this cluster is
// fleet-shaped and one is present.
func (c *Cluster) TaskInstanceFleet() (*InstanceFleet, error) {
	fleets, err := c.InstanceFleets()
	if err != nil {
		return nil, err
	}
	for i := range fleets {
		if fleets[i].InstanceFleetType == GroupTypeTask {
			return &fleets[i], nil
		}
	}
	return nil, nil
}

// TaskInstanceGroups returns the TASK instance groups, if this cluster
// is group-shaped.
func (c *Cluster) TaskInstanceGroups() ([]InstanceGroup, error) {
	groups, err := c.InstanceGroups()
	if err != nil {
		return nil, err
	}
	var task []InstanceGroup
	for _, g := range groups {
		if g.InstanceGroupType == GroupTypeTask {
			task = append(task, g)
		}
	}
	return task, nil
}

// IsResizing reports whether any relevant fleet/group is not in a
// settled RUNNING state, per spec §4.6/Glossary.
func (c *Cluster) IsResizing() (bool, error) {
	if c.IsFleet() {
		fleets, err := c.InstanceFleets()
		if err != nil {
			return false, err
		}
		for _, f := range fleets {
			if f.Status.State != StateRunning {
				return true, nil
			}
		}
		return false, nil
	}

	groups, err := c.InstanceGroups()
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if g.Status.State != StateRunning {
			return true, nil
		}
	}
	return false, nil
}

// IsCoolingDown reports whether the cooldown window following the most
// recent scale action has not yet elapsed (spec §4.6/§5).
func (c *Cluster) IsCoolingDown(now time.Time) bool {
	last := c.LastScaleInTS
	if c.LastScaleOutTS.After(last) {
		last = c.LastScaleOutTS
	}
	if last.IsZero() {
		return false
	}
	return now.Sub(last) < time.Duration(c.CooldownMinutes)*time.Minute
}
