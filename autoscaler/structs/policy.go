package structs

// Unit types a managed scaling policy's capacity units are expressed in.
// A cluster built on instance fleets always uses InstanceFleetUnits; a
// cluster built on instance groups uses either Instances or VCPU,
// depending on how the cluster was launched.
const (
	UnitTypeInstanceFleetUnits = "InstanceFleetUnits"
	UnitTypeInstances          = "Instances"
	UnitTypeVCPU               = "VCPU"
)

// Resize policies supported by the decision engine.
const (
	ResizePolicyCPUBased      = "CPU_BASED"
	ResizePolicyResourceBased = "RESOURCE_BASED"
)

// Instance group/fleet roles within an EMR cluster.
const (
	GroupTypeMaster = "MASTER"
	GroupTypeCore   = "CORE"
	GroupTypeTask   = "TASK"
)

// Markets a TASK instance group/fleet can draw capacity from.
const (
	MarketSpot     = "SPOT"
	MarketOnDemand = "ON_DEMAND"
)

// State a fleet/instance group can be in. Only RUNNING is considered
// settled; anything else means the provider has a resize of its own
// already in flight.
const StateRunning = "RUNNING"

// ManagedScalingPolicy mirrors the EMR managed scaling policy document.
// MinimumCapacityUnits and MaximumCoreCapacityUnits are frozen floors the daemon
// never writes; MaximumCapacityUnits is the only field the decision
// engine/executor mutate.
type ManagedScalingPolicy struct {
	MinimumCapacityUnits     int    `json:"MinimumCapacityUnits"`
	MaximumCapacityUnits     int    `json:"MaximumCapacityUnits"`
	MaximumCoreCapacityUnits int    `json:"MaximumCoreCapacityUnits"`
	MaximumOnDemandCapacityUnits int `json:"MaximumOnDemandCapacityUnits"`
	UnitType                 string `json:"UnitType"`
}

// InstanceFleetStatus carries the provider-reported lifecycle state of a
// fleet. A fleet is "resizing" whenever State is anything but RUNNING.
type InstanceFleetStatus struct {
	State string `json:"State"`
}

// InstanceFleet is one MASTER/CORE/TASK fleet of an instance-fleet-shaped
// cluster.
type InstanceFleet struct {
	Id                     string              `json:"Id"`
	InstanceFleetType      string              `json:"InstanceFleetType"`
	Status                 InstanceFleetStatus `json:"Status"`
	TargetOnDemandCapacity int                 `json:"TargetOnDemandCapacity"`
	TargetSpotCapacity     int                 `json:"TargetSpotCapacity"`
}

// InstanceGroup is one MASTER/CORE/TASK instance group of a group-shaped
// cluster.
type InstanceGroup struct {
	Id                   string              `json:"Id"`
	InstanceGroupType    string              `json:"InstanceGroupType"`
	Market               string              `json:"Market"`
	InstanceType         string              `json:"InstanceType"`
	RunningInstanceCount int                 `json:"RunningInstanceCount"`
	Status               InstanceFleetStatus `json:"Status"`
}
