package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/client"
	"github.com/elsevier-core-engineering/emrscale/client/store"
)

// AddClusterCommand registers a new cluster with the registry, freezing
// its managed scaling policy as observed at registration time (spec
// §4.1/§8 invariant 2).
type AddClusterCommand struct {
	Meta
}

func (c *AddClusterCommand) Help() string {
	helpText := `
Usage: emrscale add-cluster [options]

  Registers an EMR cluster to be managed by emrscale. The cluster's
  current managed scaling policy is read from the provider and frozen
  as the initial policy; it is never mutated by the daemon.

Options:

  -cluster-id=<id>
  -cluster-name=<name>
  -cluster-group=<group>
  -cpu-usage-upper-bound=<fraction>
  -cpu-usage-lower-bound=<fraction>
  -metrics-lookback-period-minutes=<minutes>
  -cool-down-period-minutes=<minutes>
  -scale-in-factor=<factor>
  -scale-out-factor=<factor>
  -max-capacity-limit=<units>
  -resize-policy=<CPU_BASED|RESOURCE_BASED>
  -region=<aws region>
`
	return strings.TrimSpace(helpText)
}

func (c *AddClusterCommand) Synopsis() string {
	return "Register an EMR cluster for managed scaling"
}

func (c *AddClusterCommand) Run(args []string) int {
	var id, name, group, resizePolicy, region string
	var cpuUpper, cpuLower, scaleIn, scaleOut float64
	var lookback, cooldown, maxCapacity int

	flags := c.Meta.FlagSet("add-cluster", FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }
	flags.StringVar(&id, "cluster-id", "", "")
	flags.StringVar(&name, "cluster-name", "", "")
	flags.StringVar(&group, "cluster-group", "", "")
	flags.Float64Var(&cpuUpper, "cpu-usage-upper-bound", 0.6, "")
	flags.Float64Var(&cpuLower, "cpu-usage-lower-bound", 0.4, "")
	flags.IntVar(&lookback, "metrics-lookback-period-minutes", 15, "")
	flags.IntVar(&cooldown, "cool-down-period-minutes", 5, "")
	flags.Float64Var(&scaleIn, "scale-in-factor", 1, "")
	flags.Float64Var(&scaleOut, "scale-out-factor", 1, "")
	flags.IntVar(&maxCapacity, "max-capacity-limit", 0, "")
	flags.StringVar(&resizePolicy, "resize-policy", structs.ResizePolicyCPUBased, "")
	flags.StringVar(&region, "region", "us-east-1", "")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	if id == "" {
		c.UI.Error("-cluster-id is required")
		return 1
	}

	s, err := store.Open()
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to open registry: %v", err))
		return 1
	}
	defer s.Close()

	provider := client.NewEMRClient(region)
	policy, err := provider.GetManagedScalingPolicy(context.Background(), id)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to read managed scaling policy for cluster %s: %v", id, err))
		return 1
	}

	cluster := &structs.Cluster{
		ID:               id,
		Name:             name,
		Group:            group,
		Active:           true,
		CPULower:         cpuLower,
		CPUUpper:         cpuUpper,
		LookbackMinutes:  lookback,
		CooldownMinutes:  cooldown,
		ScaleInFactor:    scaleIn,
		ScaleOutFactor:   scaleOut,
		MaxCapacityLimit: maxCapacity,
		ResizePolicy:      resizePolicy,
	}
	if cluster.MaxCapacityLimit == 0 {
		cluster.MaxCapacityLimit = policy.MaximumCapacityUnits
	}
	if err := cluster.SetInitialPolicy(policy); err != nil {
		c.UI.Error(fmt.Sprintf("Failed to freeze initial policy: %v", err))
		return 1
	}
	if err := cluster.SetCurrentPolicy(policy); err != nil {
		c.UI.Error(fmt.Sprintf("Failed to set current policy: %v", err))
		return 1
	}

	if err := cluster.Validate(); err != nil {
		c.UI.Error(fmt.Sprintf("Invalid cluster configuration: %v", err))
		return 1
	}

	if err := s.AddCluster(cluster); err != nil {
		c.UI.Error(fmt.Sprintf("Failed to register cluster %s: %v", id, err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Registered cluster %s", id))
	return 0
}

// ModifyClusterCommand updates the mutable policy-input fields of an
// already-registered cluster. Every flag is optional; only flags
// actually passed are applied (spec §6 "modify-cluster (same fields,
// all optional)").
type ModifyClusterCommand struct {
	Meta
}

func (c *ModifyClusterCommand) Help() string {
	helpText := `
Usage: emrscale modify-cluster -cluster-id=<id> [options]

  Updates one or more policy-input fields of a registered cluster. All
  fields besides -cluster-id are optional.
`
	return strings.TrimSpace(helpText)
}

func (c *ModifyClusterCommand) Synopsis() string {
	return "Modify a registered cluster's configuration"
}

func (c *ModifyClusterCommand) Run(args []string) int {
	var id, name, group, resizePolicy string
	var cpuUpper, cpuLower, scaleIn, scaleOut string
	var lookback, cooldown, maxCapacity string

	flags := c.Meta.FlagSet("modify-cluster", FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }
	flags.StringVar(&id, "cluster-id", "", "")
	flags.StringVar(&name, "cluster-name", "", "")
	flags.StringVar(&group, "cluster-group", "", "")
	flags.StringVar(&cpuUpper, "cpu-usage-upper-bound", "", "")
	flags.StringVar(&cpuLower, "cpu-usage-lower-bound", "", "")
	flags.StringVar(&lookback, "metrics-lookback-period-minutes", "", "")
	flags.StringVar(&cooldown, "cool-down-period-minutes", "", "")
	flags.StringVar(&scaleIn, "scale-in-factor", "", "")
	flags.StringVar(&scaleOut, "scale-out-factor", "", "")
	flags.StringVar(&maxCapacity, "max-capacity-limit", "", "")
	flags.StringVar(&resizePolicy, "resize-policy", "", "")

	if err := flags.Parse(args); err != nil {
		return 1
	}
	if id == "" {
		c.UI.Error("-cluster-id is required")
		return 1
	}

	s, err := store.Open()
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to open registry: %v", err))
		return 1
	}
	defer s.Close()

	cluster, err := s.GetCluster(id)
	if err != nil {
		c.UI.Error(store.NotExistError(id).Error())
		return 1
	}

	if name != "" {
		cluster.Name = name
	}
	if group != "" {
		cluster.Group = group
	}
	if resizePolicy != "" {
		cluster.ResizePolicy = resizePolicy
	}
	if cpuUpper != "" {
		if v, err := strconv.ParseFloat(cpuUpper, 64); err == nil {
			cluster.CPUUpper = v
		}
	}
	if cpuLower != "" {
		if v, err := strconv.ParseFloat(cpuLower, 64); err == nil {
			cluster.CPULower = v
		}
	}
	if scaleIn != "" {
		if v, err := strconv.ParseFloat(scaleIn, 64); err == nil {
			cluster.ScaleInFactor = v
		}
	}
	if scaleOut != "" {
		if v, err := strconv.ParseFloat(scaleOut, 64); err == nil {
			cluster.ScaleOutFactor = v
		}
	}
	if lookback != "" {
		if v, err := strconv.Atoi(lookback); err == nil {
			cluster.LookbackMinutes = v
		}
	}
	if cooldown != "" {
		if v, err := strconv.Atoi(cooldown); err == nil {
			cluster.CooldownMinutes = v
		}
	}
	if maxCapacity != "" {
		if v, err := strconv.Atoi(maxCapacity); err == nil {
			cluster.MaxCapacityLimit = v
		}
	}

	if err := cluster.Validate(); err != nil {
		c.UI.Error(fmt.Sprintf("Invalid cluster configuration: %v", err))
		return 1
	}

	if err := s.UpdateCluster(cluster); err != nil {
		c.UI.Error(fmt.Sprintf("Failed to update cluster %s: %v", id, err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Modified cluster %s", id))
	return 0
}

// ListClustersCommand prints every registered cluster's summary fields.
type ListClustersCommand struct {
	Meta
}

func (c *ListClustersCommand) Help() string {
	return "Usage: emrscale list-clusters"
}

func (c *ListClustersCommand) Synopsis() string {
	return "List all registered clusters"
}

func (c *ListClustersCommand) Run(args []string) int {
	s, err := store.Open()
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to open registry: %v", err))
		return 1
	}
	defer s.Close()

	clusters, err := s.ListClusters()
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to list clusters: %v", err))
		return 1
	}

	if len(clusters) == 0 {
		c.UI.Output("No clusters registered.")
		return 0
	}

	for _, cl := range clusters {
		c.UI.Output(fmt.Sprintf("%-20s %-20s active=%v resize_policy=%s max_capacity_limit=%d",
			cl.ID, cl.Name, cl.Active, cl.ResizePolicy, cl.MaxCapacityLimit))
	}
	return 0
}

// DescribeClusterCommand prints the full registry record for one
// cluster, or the spec §7 exact error message on an unknown id.
type DescribeClusterCommand struct {
	Meta
}

func (c *DescribeClusterCommand) Help() string {
	return "Usage: emrscale describe-cluster -cluster-id=<id>"
}

func (c *DescribeClusterCommand) Synopsis() string {
	return "Describe a registered cluster"
}

func (c *DescribeClusterCommand) Run(args []string) int {
	var id string
	flags := c.Meta.FlagSet("describe-cluster", FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }
	flags.StringVar(&id, "cluster-id", "", "")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	s, err := store.Open()
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to open registry: %v", err))
		return 1
	}
	defer s.Close()

	cluster, err := s.GetCluster(id)
	if err != nil {
		c.UI.Error(store.NotExistError(id).Error())
		return 1
	}

	c.UI.Output(fmt.Sprintf("ID:                 %s", cluster.ID))
	c.UI.Output(fmt.Sprintf("Name:               %s", cluster.Name))
	c.UI.Output(fmt.Sprintf("Group:              %s", cluster.Group))
	c.UI.Output(fmt.Sprintf("Active:             %v", cluster.Active))
	c.UI.Output(fmt.Sprintf("CPU bounds:         [%v, %v]", cluster.CPULower, cluster.CPUUpper))
	c.UI.Output(fmt.Sprintf("Lookback minutes:   %d", cluster.LookbackMinutes))
	c.UI.Output(fmt.Sprintf("Cooldown minutes:   %d", cluster.CooldownMinutes))
	c.UI.Output(fmt.Sprintf("Scale factors:      in=%v out=%v", cluster.ScaleInFactor, cluster.ScaleOutFactor))
	c.UI.Output(fmt.Sprintf("Max capacity limit: %d", cluster.MaxCapacityLimit))
	c.UI.Output(fmt.Sprintf("Resize policy:      %s", cluster.ResizePolicy))
	c.UI.Output(fmt.Sprintf("Failsafe mode:      %v (failures=%d)", cluster.FailsafeMode, cluster.FailureCount))
	return 0
}

// DeleteClusterCommand removes a cluster from the registry.
type DeleteClusterCommand struct {
	Meta
}

func (c *DeleteClusterCommand) Help() string {
	return "Usage: emrscale delete-cluster -cluster-id=<id>"
}

func (c *DeleteClusterCommand) Synopsis() string {
	return "Delete a registered cluster"
}

func (c *DeleteClusterCommand) Run(args []string) int {
	var id string
	flags := c.Meta.FlagSet("delete-cluster", FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }
	flags.StringVar(&id, "cluster-id", "", "")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	s, err := store.Open()
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to open registry: %v", err))
		return 1
	}
	defer s.Close()

	if _, err := s.GetCluster(id); err != nil {
		c.UI.Error(store.NotExistError(id).Error())
		return 1
	}

	if err := s.DeleteCluster(id); err != nil {
		c.UI.Error(fmt.Sprintf("Failed to delete cluster %s: %v", id, err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Deleted cluster %s", id))
	return 0
}
