// Package admin implements operator tooling for exercising a managed
// cluster outside the reconciliation loop: submitting a synthetic Spark
// job to force scale-out pressure, and killing running applications to
// force scale-in (spec §6 supplemented admin commands).
package admin

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/elsevier-core-engineering/emrscale/client"
	"github.com/elsevier-core-engineering/emrscale/client/store"
	"github.com/elsevier-core-engineering/emrscale/command"
)

// sparkPiJar/sparkPiArgs mirror the reference tool's synthetic load
// generator: a long-running SparkPi job with dynamic allocation
// disabled so YARN sees sustained pending/allocated vcore pressure.
const sparkPiJar = "command-runner.jar"

func sparkPiArgs(numExecutors, executorMemory string) []string {
	return []string{
		"spark-submit",
		"--deploy-mode", "cluster",
		"--master", "yarn",
		"--executor-memory", executorMemory,
		"--num-executors", numExecutors,
		"--executor-cores", "1",
		"--conf", "spark.dynamicAllocation.enabled=false",
		"--class", "org.apache.spark.examples.SparkPi",
		"/usr/lib/spark/examples/jars/spark-examples.jar",
		"1000000",
	}
}

// RunTestJobCommand submits one or more synthetic Spark jobs to a
// managed cluster.
type RunTestJobCommand struct {
	command.Meta
}

func (c *RunTestJobCommand) Help() string {
	helpText := `
Usage: emrscale run-test-job -cluster-id=<id> [options]

  Submits a long-running SparkPi job to the given cluster, useful for
  exercising resize behavior under synthetic load.

Options:

  -job-number=<n>        Number of jobs to submit (default 1)
  -num-executors=<n>      (default 1)
  -executor-memory=<mem>  (default 1G)
  -region=<aws region>
`
	return strings.TrimSpace(helpText)
}

func (c *RunTestJobCommand) Synopsis() string {
	return "Submit a synthetic test job to a managed cluster"
}

func (c *RunTestJobCommand) Run(args []string) int {
	var id, numExecutors, executorMemory, region string
	var jobNumber int

	flags := c.Meta.FlagSet("run-test-job", command.FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }
	flags.StringVar(&id, "cluster-id", "", "")
	flags.IntVar(&jobNumber, "job-number", 1, "")
	flags.StringVar(&numExecutors, "num-executors", "1", "")
	flags.StringVar(&executorMemory, "executor-memory", "1G", "")
	flags.StringVar(&region, "region", "us-east-1", "")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if id == "" {
		c.UI.Error("-cluster-id is required")
		return 1
	}

	provider := client.NewEMRClient(region)
	ctx := context.Background()

	for i := 0; i < jobNumber; i++ {
		stepID, err := provider.AddJobFlowSteps(ctx, id, sparkPiJar, sparkPiArgs(numExecutors, executorMemory))
		if err != nil {
			c.UI.Error(fmt.Sprintf("Failed to submit test job to cluster %s: %v", id, err))
			return 1
		}
		c.UI.Output(fmt.Sprintf("Submitted step %s to cluster %s", stepID, id))
	}

	return 0
}

// KillTestJobCommand kills a random sample of running YARN applications
// on a managed cluster.
type KillTestJobCommand struct {
	command.Meta
}

func (c *KillTestJobCommand) Help() string {
	helpText := `
Usage: emrscale kill-test-job -cluster-id=<id> [options]

  Kills a random sample of currently running YARN applications on the
  given cluster, useful for exercising scale-in behavior.

Options:

  -job-number=<n>  Number of running applications to kill (default 1)
`
	return strings.TrimSpace(helpText)
}

func (c *KillTestJobCommand) Synopsis() string {
	return "Kill a sample of running applications on a managed cluster"
}

func (c *KillTestJobCommand) Run(args []string) int {
	var id string
	var jobNumber int

	flags := c.Meta.FlagSet("kill-test-job", command.FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }
	flags.StringVar(&id, "cluster-id", "", "")
	flags.IntVar(&jobNumber, "job-number", 1, "")
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
	if cluster.MasterEndpoint == "" {
		c.UI.Error(fmt.Sprintf("Cluster %s has no known master endpoint yet, run a tick first", id))
		return 1
	}

	ctx := context.Background()
	running, err := client.ListRunningApps(ctx, cluster.MasterEndpoint)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to list running applications for cluster %s: %v", id, err))
		return 1
	}

	terminating := running
	if len(running) > jobNumber {
		terminating = sampleApps(running, jobNumber)
	}

	for _, appID := range terminating {
		c.UI.Output(fmt.Sprintf("Killing %s", appID))
		if err := client.KillApp(ctx, cluster.MasterEndpoint, appID); err != nil {
			c.UI.Error(fmt.Sprintf("Failed to kill %s: %v", appID, err))
		}
	}

	return 0
}

func sampleApps(apps []string, n int) []string {
	shuffled := make([]string, len(apps))
	copy(shuffled, apps)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}
