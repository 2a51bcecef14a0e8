package autoscaler

import (
	"context"
	"os"
	"testing"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/client"
	"github.com/elsevier-core-engineering/emrscale/client/store"
)

type fakeProvider struct {
	puts []structs.ManagedScalingPolicy
}

func (f *fakeProvider) DescribeCluster(ctx context.Context, clusterID string) (*client.ClusterDescription, error) {
	return &client.ClusterDescription{State: "WAITING"}, nil
}

func (f *fakeProvider) GetManagedScalingPolicy(ctx context.Context, clusterID string) (structs.ManagedScalingPolicy, error) {
	return structs.ManagedScalingPolicy{MaximumCapacityUnits: 10, UnitType: structs.UnitTypeInstanceFleetUnits}, nil
}

func (f *fakeProvider) PutManagedScalingPolicy(ctx context.Context, clusterID string, policy structs.ManagedScalingPolicy) error {
	f.puts = append(f.puts, policy)
	return nil
}

func (f *fakeProvider) ListInstanceFleets(ctx context.Context, clusterID string) ([]structs.InstanceFleet, error) {
	return nil, nil
}

func (f *fakeProvider) ListInstanceGroups(ctx context.Context, clusterID string) ([]structs.InstanceGroup, error) {
	return nil, nil
}

func (f *fakeProvider) ListInstances(ctx context.Context, clusterID string) ([]client.Instance, error) {
	return nil, nil
}

func (f *fakeProvider) ModifyInstanceFleet(ctx context.Context, clusterID, fleetID string, onDemand, spot int) error {
	return nil
}

func (f *fakeProvider) ModifyInstanceGroups(ctx context.Context, clusterID string, updates []client.InstanceGroupModify) error {
	return nil
}

func (f *fakeProvider) AddJobFlowSteps(ctx context.Context, clusterID, jarPath string, args []string) (string, error) {
	return "s-STEP", nil
}

func withTestStore(t *testing.T) *store.Store {
	t.Helper()
	os.Unsetenv("DB_CONN_STR")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("err: %s", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	s, err := store.Open()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReset_restoresInitialCeiling(t *testing.T) {
	s := withTestStore(t)

	c := &structs.Cluster{
		ID:           "j-RESET",
		Active:       true,
		CPULower:     0.3,
		CPUUpper:     0.7,
		ResizePolicy: structs.ResizePolicyCPUBased,
	}
	if err := c.SetInitialPolicy(structs.ManagedScalingPolicy{MaximumCapacityUnits: 10}); err != nil {
		t.Fatalf("err: %s", err)
	}
	if err := c.SetCurrentPolicy(structs.ManagedScalingPolicy{MaximumCapacityUnits: 40}); err != nil {
		t.Fatalf("err: %s", err)
	}
	if err := s.AddCluster(c); err != nil {
		t.Fatalf("err: %s", err)
	}

	provider := &fakeProvider{}
	if err := Reset(s, provider, "j-RESET"); err != nil {
		t.Fatalf("err: %s", err)
	}

	if len(provider.puts) != 1 || provider.puts[0].MaximumCapacityUnits != 10 {
		t.Fatalf("expected provider to be pushed the initial ceiling of 10, got %+v", provider.puts)
	}

	updated, err := s.GetCluster("j-RESET")
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	current, err := updated.CurrentPolicy()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if current.MaximumCapacityUnits != 10 {
		t.Fatalf("expected stored current policy ceiling to be 10, got %d", current.MaximumCapacityUnits)
	}
}
