package command

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"
)

// DefaultInitName is the default name used when writing the example
// configuration file.
const DefaultInitName = "emrscale.hcl"

// InitCommand writes an example agent configuration file to the
// current directory, a starting point for customization.
type InitCommand struct {
	Meta
}

func (c *InitCommand) Help() string {
	helpText := `
Usage: emrscale init

  Creates an example agent configuration file that can be used as a
  starting point to customize further.
`
	return strings.TrimSpace(helpText)
}

func (c *InitCommand) Synopsis() string {
	return "Create an example emrscale configuration file"
}

func (c *InitCommand) Run(args []string) int {
	if len(args) != 0 {
		c.UI.Error(c.Help())
		return 1
	}

	_, err := os.Stat(DefaultInitName)
	if err != nil && !os.IsNotExist(err) {
		c.UI.Error(fmt.Sprintf("Failed to stat '%s': %v", DefaultInitName, err))
		return 1
	}
	if !os.IsNotExist(err) {
		c.UI.Error(fmt.Sprintf("Configuration file '%s' already exists", DefaultInitName))
		return 1
	}

	err = ioutil.WriteFile(DefaultInitName, []byte(defaultAgentConfig), 0660)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to write '%s': %v", DefaultInitName, err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("Example configuration file written to %s", DefaultInitName))
	return 0
}

var defaultAgentConfig = strings.TrimSpace(`
log_level           = "INFO"
scaling_interval    = 60
aws_region          = "us-east-1"
failsafe_threshold  = 3
rpc_bind_address    = "127.0.0.1:1314"

telemetry {
  statsd_address = "127.0.0.1:8125"
}

notification {
  cluster_identifier    = "emrscale"
  pagerduty_service_key = ""
}
`)
