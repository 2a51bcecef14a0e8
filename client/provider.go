// Package client implements emrscale's collaborators: the cluster
// service SDK wrapper, the YARN/node-exporter HTTP collectors, instance
// discovery, the relational store, and the inbound event queue.
package client

import (
	"context"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
)

// Instance is one discovered cluster member.
type Instance struct {
	InstanceID string
	HostName   string
}

// InstanceGroupModify is one entry of a modify-instance-groups command.
type InstanceGroupModify struct {
	InstanceGroupID string
	InstanceCount   int
}

// ClusterDescription is the subset of the cluster service's
// describe-cluster response the control loop needs.
type ClusterDescription struct {
	MasterPublicDNSName string
	State               string
}

// Provider is the injected capability object through which the control
// loop talks to the cluster service. Production code is backed by
// EMRClient; tests inject a fake (spec.md §9 redesign note).
type Provider interface {
	DescribeCluster(ctx context.Context, clusterID string) (*ClusterDescription, error)
	GetManagedScalingPolicy(ctx context.Context, clusterID string) (structs.ManagedScalingPolicy, error)
	PutManagedScalingPolicy(ctx context.Context, clusterID string, policy structs.ManagedScalingPolicy) error
	ListInstanceFleets(ctx context.Context, clusterID string) ([]structs.InstanceFleet, error)
	ListInstanceGroups(ctx context.Context, clusterID string) ([]structs.InstanceGroup, error)
	ListInstances(ctx context.Context, clusterID string) ([]Instance, error)
	ModifyInstanceFleet(ctx context.Context, clusterID, fleetID string, onDemand, spot int) error
	ModifyInstanceGroups(ctx context.Context, clusterID string, updates []InstanceGroupModify) error
	AddJobFlowSteps(ctx context.Context, clusterID string, jarPath string, args []string) (string, error)
}
