package client

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/emr"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/logging"
)

// EMRClient implements Provider against the real EMR SDK.
type EMRClient struct {
	svc *emr.EMR
}

// NewEMRClient creates a new AWS API session and EMR service connection
// for the given region, mirroring the teacher's NewAWSAsgService
// construction pattern.
func NewEMRClient(region string) *EMRClient {
	sess := session.Must(session.NewSession())
	return &EMRClient{svc: emr.New(sess, &aws.Config{Region: aws.String(region)})}
}

func (c *EMRClient) DescribeCluster(ctx context.Context, clusterID string) (*ClusterDescription, error) {
	out, err := c.svc.DescribeClusterWithContext(ctx, &emr.DescribeClusterInput{
		ClusterId: aws.String(clusterID),
	})
	if err != nil {
		return nil, err
	}

	desc := &ClusterDescription{}
	if out.Cluster.MasterPublicDnsName != nil {
		desc.MasterPublicDNSName = *out.Cluster.MasterPublicDnsName
	}
	if out.Cluster.Status != nil && out.Cluster.Status.State != nil {
		desc.State = *out.Cluster.Status.State
	}
	return desc, nil
}

func (c *EMRClient) GetManagedScalingPolicy(ctx context.Context, clusterID string) (structs.ManagedScalingPolicy, error) {
	out, err := c.svc.GetManagedScalingPolicyWithContext(ctx, &emr.GetManagedScalingPolicyInput{
		ClusterId: aws.String(clusterID),
	})
	if err != nil {
		return structs.ManagedScalingPolicy{}, err
	}

	p := out.ManagedScalingPolicy
	policy := structs.ManagedScalingPolicy{}
	if p != nil && p.ComputeLimits != nil {
		cl := p.ComputeLimits
		policy.MinimumCapacityUnits = int(aws.Int64Value(cl.MinimumCapacityUnits))
		policy.MaximumCapacityUnits = int(aws.Int64Value(cl.MaximumCapacityUnits))
		policy.MaximumCoreCapacityUnits = int(aws.Int64Value(cl.MaximumCoreCapacityUnits))
		policy.MaximumOnDemandCapacityUnits = int(aws.Int64Value(cl.MaximumOnDemandCapacityUnits))
		policy.UnitType = aws.StringValue(cl.UnitType)
	}
	return policy, nil
}

func (c *EMRClient) PutManagedScalingPolicy(ctx context.Context, clusterID string, policy structs.ManagedScalingPolicy) error {
	_, err := c.svc.PutManagedScalingPolicyWithContext(ctx, &emr.PutManagedScalingPolicyInput{
		ClusterId: aws.String(clusterID),
		ManagedScalingPolicy: &emr.ManagedScalingPolicy{
			ComputeLimits: &emr.ComputeLimits{
				MinimumCapacityUnits:         aws.Int64(int64(policy.MinimumCapacityUnits)),
				MaximumCapacityUnits:         aws.Int64(int64(policy.MaximumCapacityUnits)),
				MaximumCoreCapacityUnits:     aws.Int64(int64(policy.MaximumCoreCapacityUnits)),
				MaximumOnDemandCapacityUnits: aws.Int64(int64(policy.MaximumOnDemandCapacityUnits)),
				UnitType:                     aws.String(policy.UnitType),
			},
		},
	})
	if err != nil {
		return err
	}
	logging.Info("client/emr: pushed managed scaling policy for cluster %s (max units=%d)",
		clusterID, policy.MaximumCapacityUnits)
	return nil
}

func (c *EMRClient) ListInstanceFleets(ctx context.Context, clusterID string) ([]structs.InstanceFleet, error) {
	var fleets []structs.InstanceFleet
	err := c.svc.ListInstanceFleetsPagesWithContext(ctx, &emr.ListInstanceFleetsInput{
		ClusterId: aws.String(clusterID),
	}, func(page *emr.ListInstanceFleetsOutput, lastPage bool) bool {
		for _, f := range page.InstanceFleets {
			fleets = append(fleets, structs.InstanceFleet{
				Id:                     aws.StringValue(f.Id),
				InstanceFleetType:      aws.StringValue(f.InstanceFleetType),
				Status:                 structs.InstanceFleetStatus{State: aws.StringValue(f.Status.State)},
				TargetOnDemandCapacity: int(aws.Int64Value(f.TargetOnDemandCapacity)),
				TargetSpotCapacity:     int(aws.Int64Value(f.TargetSpotCapacity)),
			})
		}
		return true
	})
	return fleets, err
}

func (c *EMRClient) ListInstanceGroups(ctx context.Context, clusterID string) ([]structs.InstanceGroup, error) {
	var groups []structs.InstanceGroup
	err := c.svc.ListInstanceGroupsPagesWithContext(ctx, &emr.ListInstanceGroupsInput{
		ClusterId: aws.String(clusterID),
	}, func(page *emr.ListInstanceGroupsOutput, lastPage bool) bool {
		for _, g := range page.InstanceGroups {
			groups = append(groups, structs.InstanceGroup{
				Id:                   aws.StringValue(g.Id),
				InstanceGroupType:    aws.StringValue(g.InstanceGroupType),
				Market:               aws.StringValue(g.Market),
				InstanceType:         aws.StringValue(g.InstanceType),
				RunningInstanceCount: int(aws.Int64Value(g.RunningInstanceCount)),
				Status:               structs.InstanceFleetStatus{State: aws.StringValue(g.Status.State)},
			})
		}
		return true
	})
	return groups, err
}

func (c *EMRClient) ListInstances(ctx context.Context, clusterID string) ([]Instance, error) {
	var instances []Instance
	err := c.svc.ListInstancesPagesWithContext(ctx, &emr.ListInstancesInput{
		ClusterId:          aws.String(clusterID),
		InstanceStates:     aws.StringSlice([]string{emr.InstanceStateRunning}),
		InstanceGroupTypes: aws.StringSlice([]string{emr.InstanceGroupTypeMaster, emr.InstanceGroupTypeCore, emr.InstanceGroupTypeTask}),
	}, func(page *emr.ListInstancesOutput, lastPage bool) bool {
		for _, i := range page.Instances {
			host := aws.StringValue(i.PublicDnsName)
			if host == "" {
				host = aws.StringValue(i.PrivateDnsName)
			}
			instances = append(instances, Instance{
				InstanceID: aws.StringValue(i.Ec2InstanceId),
				HostName:   host,
			})
		}
		return true
	}, func(in *emr.ListInstancesInput) {
		in.SetMaxItems(paginationMaxItems)
	})
	return instances, err
}

const paginationMaxItems = 100

func (c *EMRClient) ModifyInstanceFleet(ctx context.Context, clusterID, fleetID string, onDemand, spot int) error {
	_, err := c.svc.ModifyInstanceFleetWithContext(ctx, &emr.ModifyInstanceFleetInput{
		ClusterId: aws.String(clusterID),
		InstanceFleet: &emr.InstanceFleetModifyConfig{
			InstanceFleetId:        aws.String(fleetID),
			TargetOnDemandCapacity: aws.Int64(int64(onDemand)),
			TargetSpotCapacity:     aws.Int64(int64(spot)),
		},
	})
	if err != nil {
		return err
	}
	logging.Info("client/emr: modified instance fleet %s for cluster %s (od=%d sp=%d)",
		fleetID, clusterID, onDemand, spot)
	return nil
}

func (c *EMRClient) ModifyInstanceGroups(ctx context.Context, clusterID string, updates []InstanceGroupModify) error {
	configs := make([]*emr.InstanceGroupModifyConfig, 0, len(updates))
	for _, u := range updates {
		configs = append(configs, &emr.InstanceGroupModifyConfig{
			InstanceGroupId: aws.String(u.InstanceGroupID),
			InstanceCount:   aws.Int64(int64(u.InstanceCount)),
		})
	}
	_, err := c.svc.ModifyInstanceGroupsWithContext(ctx, &emr.ModifyInstanceGroupsInput{
		ClusterId:      aws.String(clusterID),
		InstanceGroups: configs,
	})
	if err != nil {
		return err
	}
	logging.Info("client/emr: modified %d instance group(s) for cluster %s", len(updates), clusterID)
	return nil
}

func (c *EMRClient) AddJobFlowSteps(ctx context.Context, clusterID, jarPath string, args []string) (string, error) {
	out, err := c.svc.AddJobFlowStepsWithContext(ctx, &emr.AddJobFlowStepsInput{
		JobFlowId: aws.String(clusterID),
		Steps: []*emr.StepConfig{
			{
				Name:           aws.String("emrscale-admin-step"),
				ActionOnFailure: aws.String(emr.ActionOnFailureContinue),
				HadoopJarStep: &emr.HadoopJarStepConfig{
					Jar:  aws.String(jarPath),
					Args: aws.StringSlice(args),
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(out.StepIds) == 0 {
		return "", fmt.Errorf("client/emr: add-job-flow-steps returned no step id")
	}
	return aws.StringValue(out.StepIds[0]), nil
}
