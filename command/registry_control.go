package command

import (
	"fmt"

	"github.com/elsevier-core-engineering/emrscale/autoscaler"
	"github.com/elsevier-core-engineering/emrscale/client"
	"github.com/elsevier-core-engineering/emrscale/client/store"
)

// EnableClusterCommand activates one or every registered cluster.
type EnableClusterCommand struct {
	Meta
}

func (c *EnableClusterCommand) Help() string {
	return "Usage: emrscale enable-cluster [-cluster-id=<id> | -a]"
}

func (c *EnableClusterCommand) Synopsis() string {
	return "Enable scaling for a cluster, or all clusters"
}

func (c *EnableClusterCommand) Run(args []string) int {
	return setActive(c.Meta, args, "enable-cluster", true)
}

// DisableClusterCommand deactivates one or every registered cluster.
type DisableClusterCommand struct {
	Meta
}

func (c *DisableClusterCommand) Help() string {
	return "Usage: emrscale disable-cluster [-cluster-id=<id> | -a]"
}

func (c *DisableClusterCommand) Synopsis() string {
	return "Disable scaling for a cluster, or all clusters"
}

func (c *DisableClusterCommand) Run(args []string) int {
	return setActive(c.Meta, args, "disable-cluster", false)
}

func setActive(m Meta, args []string, name string, active bool) int {
	var id string
	var all bool

	flags := m.FlagSet(name, FlagSetClient)
	flags.Usage = func() { m.UI.Error(fmt.Sprintf("Usage: emrscale %s [-cluster-id=<id> | -a]", name)) }
	flags.StringVar(&id, "cluster-id", "", "")
	flags.BoolVar(&all, "a", false, "")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if id == "" && !all {
		m.UI.Error("one of -cluster-id or -a is required")
		return 1
	}

	s, err := store.Open()
	if err != nil {
		m.UI.Error(fmt.Sprintf("Failed to open registry: %v", err))
		return 1
	}
	defer s.Close()

	if id != "" {
		if _, err := s.GetCluster(id); err != nil {
			m.UI.Error(store.NotExistError(id).Error())
			return 1
		}
		if err := s.SetActive(id, active); err != nil {
			m.UI.Error(fmt.Sprintf("Failed to update cluster %s: %v", id, err))
			return 1
		}
		m.UI.Output(fmt.Sprintf("Updated cluster %s", id))
		return 0
	}

	if err := s.SetActive("", active); err != nil {
		m.UI.Error(fmt.Sprintf("Failed to update clusters: %v", err))
		return 1
	}
	m.UI.Output("Updated all clusters")
	return 0
}

// ResetCommand restores one or every cluster's live MaximumCapacityUnits
// to its frozen initial value (spec §6 "reset", §8 round-trip property).
type ResetCommand struct {
	Meta
}

func (c *ResetCommand) Help() string {
	return "Usage: emrscale reset [-cluster-id=<id> | -a]"
}

func (c *ResetCommand) Synopsis() string {
	return "Reset a cluster's managed scaling policy to its initial value"
}

func (c *ResetCommand) Run(args []string) int {
	var id string
	var all bool
	var region string

	flags := c.Meta.FlagSet("reset", FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }
	flags.StringVar(&id, "cluster-id", "", "")
	flags.BoolVar(&all, "a", false, "")
	flags.StringVar(&region, "region", "us-east-1", "")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if id == "" && !all {
		c.UI.Error("one of -cluster-id or -a is required")
		return 1
	}

	s, err := store.Open()
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to open registry: %v", err))
		return 1
	}
	defer s.Close()

	var ids []string
	if id != "" {
		ids = []string{id}
	} else {
		all, err := s.ListClusters()
		if err != nil {
			c.UI.Error(fmt.Sprintf("Failed to list clusters: %v", err))
			return 1
		}
		for _, cl := range all {
			ids = append(ids, cl.ID)
		}
	}

	provider := client.NewEMRClient(region)

	for _, cid := range ids {
		if err := autoscaler.Reset(s, provider, cid); err != nil {
			c.UI.Error(fmt.Sprintf("Failed to reset cluster %s: %v", cid, err))
			continue
		}
		c.UI.Output(fmt.Sprintf("Reset cluster %s to its initial managed scaling policy", cid))
	}

	return 0
}
