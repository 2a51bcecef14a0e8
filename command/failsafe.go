package command

import (
	"fmt"
	"strings"

	"github.com/elsevier-core-engineering/emrscale/autoscaler"
	"github.com/elsevier-core-engineering/emrscale/client/store"
)

// FailsafeCommand is a command implementation that allows operators to
// place a cluster in or take a cluster out of failsafe mode (spec §7
// "Programmer errors" ambient concern; adapted from the teacher's
// distributed state lock into a registry row reset).
type FailsafeCommand struct {
	Meta
	args []string
}

func (c *FailsafeCommand) Help() string {
	helpText := `
Usage: emrscale failsafe [options]

  Allows an operator to administratively control the per-cluster
  failsafe circuit breaker. While a cluster is in failsafe mode, the
  reconciliation loop skips it entirely every tick.

  Failsafe mode trips automatically after a cluster accumulates enough
  consecutive tick failures. An operator must explicitly clear it after
  identifying the root cause.

Options:

  -cluster-id=<id>
    The cluster to act on.

  -enable
    Place the cluster in failsafe mode.

  -disable
    Take the cluster out of failsafe mode and reset its failure count.

  -force
    Suppress the confirmation prompt.
`
	return strings.TrimSpace(helpText)
}

func (c *FailsafeCommand) Synopsis() string {
	return "Administratively control per-cluster failsafe mode"
}

func (c *FailsafeCommand) Run(args []string) int {
	if len(args) == 0 {
		c.UI.Error(c.Help())
		return 1
	}
	c.args = args

	var id string
	var enable, disable, force bool

	flags := c.Meta.FlagSet("failsafe", FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }
	flags.StringVar(&id, "cluster-id", "", "")
	flags.BoolVar(&enable, "enable", false, "")
	flags.BoolVar(&disable, "disable", false, "")
	flags.BoolVar(&force, "force", false, "")
	if err := flags.Parse(c.args); err != nil {
		return 1
	}

	if id == "" {
		c.UI.Error("-cluster-id is required")
		return 1
	}
	if (enable && disable) || (!enable && !disable) {
		c.UI.Error(c.Help())
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

	verb := "enable"
	if disable {
		verb = "disable"
	}

	if (cluster.FailsafeMode && enable) || (!cluster.FailsafeMode && disable) {
		c.UI.Warn(fmt.Sprintf("Failsafe mode is already %vd for cluster %s, no action required.", verb, id))
		return 0
	}

	if !force {
		question := fmt.Sprintf("Are you sure you want to %s failsafe mode for cluster %s?\n", verb, id)
		if enable {
			question += "No scaling operations will be permitted for this cluster until it is reset.\n"
		}
		answer, err := c.UI.Ask(fmt.Sprintf("%sConfirm [y/N]: ", question))
		if err != nil {
			c.UI.Error(fmt.Sprintf("Failed to parse answer: %v", err))
			return 1
		}
		if answer == "" || strings.ToLower(answer)[0] == 'n' {
			c.UI.Output(fmt.Sprintf("Cancelling, will not %s failsafe mode.", verb))
			return 0
		} else if answer != "y" {
			c.UI.Output("For confirmation, an exact 'y' is required.")
			return 1
		}
	}

	if err := autoscaler.SetFailsafeMode(cluster, s, enable); err != nil {
		c.UI.Error(fmt.Sprintf("Failed to %s failsafe mode for cluster %s: %v", verb, id, err))
		return 1
	}

	c.UI.Info(fmt.Sprintf("Successfully %vd failsafe mode for cluster %s", verb, id))
	return 0
}
