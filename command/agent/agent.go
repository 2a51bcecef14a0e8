// Package agent implements the emrscale "start" command: the long-
// running reconciliation loop (spec §4.7/§6).
package agent

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	metrics "github.com/armon/go-metrics"

	"github.com/elsevier-core-engineering/emrscale/autoscaler"
	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/client"
	"github.com/elsevier-core-engineering/emrscale/client/store"
	"github.com/elsevier-core-engineering/emrscale/cloud/aws"
	"github.com/elsevier-core-engineering/emrscale/command"
	"github.com/elsevier-core-engineering/emrscale/command/base"
	"github.com/elsevier-core-engineering/emrscale/logging"
	"github.com/elsevier-core-engineering/emrscale/notifier"
	"github.com/elsevier-core-engineering/emrscale/version"
)

// Command is the "start" command structure, tracking passed args and
// CLI meta (spec §6 "start -s <interval-seconds> [--dry-run]
// [--run-once] [--event-queue <name>]").
type Command struct {
	command.Meta
	args []string

	store      *store.Store
	scheduler  *autoscaler.Scheduler
	rpcServer  *autoscaler.Server
	httpServer *HTTPServer
}

// Run parses configuration, wires up the scheduler and its
// collaborators, and runs until an interrupt is received.
func (c *Command) Run(args []string) int {
	c.args = args
	conf := c.parseFlags()
	if conf == nil {
		return 1
	}

	if err := c.initialize(conf); err != nil {
		logging.Error("command/agent: unable to initialize: %v", err)
		return 1
	}
	defer c.store.Close()

	logging.Info("command/agent: running version %v", version.Get())
	logging.Info("command/agent: starting emrscale")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if conf.RunOnce {
		c.scheduler.RunOnce(ctx)
		return 0
	}

	go c.scheduler.Start(ctx, time.Duration(conf.ScalingInterval)*time.Second)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	for s := range signalCh {
		switch s {
		case syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
			logging.Info("command/agent: caught signal %v, shutting down", s)
			c.scheduler.Stop()
			if c.rpcServer != nil {
				c.rpcServer.Shutdown()
			}
			if c.httpServer != nil {
				c.httpServer.Shutdown()
			}
			return 0

		case syscall.SIGHUP:
			logging.Info("command/agent: caught signal %v, reloading configuration", s)
			c.scheduler.Stop()
			if c.rpcServer != nil {
				c.rpcServer.Shutdown()
				c.rpcServer = nil
			}
			if c.httpServer != nil {
				c.httpServer.Shutdown()
				c.httpServer = nil
			}

			conf = c.parseFlags()
			if conf == nil {
				return 1
			}
			if err := c.initialize(conf); err != nil {
				logging.Error("command/agent: unable to reinitialize: %v", err)
				return 1
			}
			go c.scheduler.Start(ctx, time.Duration(conf.ScalingInterval)*time.Second)
		}
	}

	return 0
}

func (c *Command) parseFlags() *structs.Config {
	var configPath string
	var dev bool
	var interval int

	cliConfig := &structs.Config{
		Telemetry:    &structs.Telemetry{},
		Notification: &structs.Notification{},
	}

	flags := c.Meta.FlagSet("start", command.FlagSetClient)
	flags.Usage = func() { c.UI.Error(c.Help()) }

	flags.StringVar(&configPath, "config", "", "")
	flags.BoolVar(&dev, "dev", false, "")
	flags.IntVar(&interval, "s", 0, "")
	flags.StringVar(&cliConfig.LogLevel, "log-level", "", "")
	flags.StringVar(&cliConfig.Region, "region", "", "")
	flags.BoolVar(&cliConfig.DryRun, "dry-run", false, "")
	flags.BoolVar(&cliConfig.RunOnce, "run-once", false, "")
	flags.StringVar(&cliConfig.EventQueue, "event-queue", "", "")
	flags.StringVar(&cliConfig.RPCBindAddress, "rpc-bind-address", "", "")
	flags.StringVar(&cliConfig.HTTPBindAddress, "http-bind-address", "", "")

	flags.StringVar(&cliConfig.Telemetry.StatsdAddress, "statsd-address", "", "")
	flags.StringVar(&cliConfig.Telemetry.PrometheusBindAddress, "prometheus-bind-address", "", "")

	flags.StringVar(&cliConfig.Notification.ClusterIdentifier, "cluster-identifier", "", "")
	flags.StringVar(&cliConfig.Notification.PagerDutyServiceKey, "pagerduty-service-key", "", "")
	flags.StringVar(&cliConfig.Notification.OpsGenieAPIKey, "opsgenie-api-key", "", "")

	if err := flags.Parse(c.args); err != nil {
		return nil
	}

	var config *structs.Config
	if dev {
		config = base.DevConfig()
	} else {
		config = base.DefaultConfig()
	}

	if configPath != "" {
		current, err := base.LoadConfig(configPath)
		if err != nil {
			c.UI.Error(fmt.Sprintf("Error loading configuration from %s: %s", configPath, err))
			return nil
		}
		config = config.Merge(current)
	}

	if interval > 0 {
		cliConfig.ScalingInterval = interval
	}

	config = config.Merge(cliConfig)
	return config
}

// initialize wires up the store, provider, notifiers, telemetry, and
// RPC/HTTP servers from the merged configuration, and builds the
// Scheduler.
func (c *Command) initialize(config *structs.Config) error {
	logging.SetLevel(config.LogLevel)

	if err := c.setupTelemetry(config.Telemetry); err != nil {
		return err
	}

	notifiers, err := c.setupNotifiers(config.Notification)
	if err != nil {
		return err
	}

	s, err := store.Open()
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	c.store = s

	provider := client.NewEMRClient(config.Region)

	var eventQueue *client.EventQueue
	if config.EventQueue != "" {
		eventQueue = client.NewEventQueue(config.Region)
	}

	vcpu := aws.VCPUForInstanceType(config.Region)

	c.scheduler = autoscaler.NewScheduler(s, provider, eventQueue, config.EventQueue,
		config.DryRun, config.FailsafeThreshold, notifiers, vcpu)

	if config.RPCBindAddress != "" {
		addr, err := net.ResolveTCPAddr("tcp", config.RPCBindAddress)
		if err != nil {
			return fmt.Errorf("invalid rpc bind address %q: %w", config.RPCBindAddress, err)
		}
		srv, err := autoscaler.NewServer(s, addr)
		if err != nil {
			return err
		}
		c.rpcServer = srv
	}

	httpBindAddr := config.HTTPBindAddress
	if httpBindAddr == "" && config.Telemetry != nil {
		httpBindAddr = config.Telemetry.PrometheusBindAddress
	}
	if httpBindAddr != "" {
		httpSrv, err := NewHTTPServer(httpBindAddr)
		if err != nil {
			return err
		}
		c.httpServer = httpSrv
	}

	return nil
}

// setupTelemetry configures the armon/go-metrics global sink: always an
// in-memory sink, optionally fanned out to statsd.
func (c *Command) setupTelemetry(config *structs.Telemetry) error {
	inm := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(inm)

	telemetry := config
	if telemetry == nil {
		telemetry = &structs.Telemetry{}
	}

	metricsConf := metrics.DefaultConfig("emrscale")

	var fanout metrics.FanoutSink
	if telemetry.StatsdAddress != "" {
		sink, err := metrics.NewStatsdSink(telemetry.StatsdAddress)
		if err != nil {
			return err
		}
		fanout = append(fanout, sink)
	}

	if len(fanout) > 0 {
		fanout = append(fanout, inm)
		metrics.NewGlobal(metricsConf, fanout)
	} else {
		metricsConf.EnableHostname = false
		metrics.NewGlobal(metricsConf, inm)
	}
	return nil
}

// setupNotifiers builds the failsafe escalation notifiers configured.
func (c *Command) setupNotifiers(config *structs.Notification) ([]notifier.Notifier, error) {
	var notifiers []notifier.Notifier
	if config == nil {
		return notifiers, nil
	}

	if config.PagerDutyServiceKey != "" {
		p := map[string]string{
			"PagerDutyServiceKey": config.PagerDutyServiceKey,
			"ClusterIdentifier":   config.ClusterIdentifier,
		}
		n, err := notifier.NewProvider("pagerduty", p)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}

	if config.OpsGenieAPIKey != "" {
		p := map[string]string{
			"OpsGenieAPIKey":    config.OpsGenieAPIKey,
			"ClusterIdentifier": config.ClusterIdentifier,
		}
		n, err := notifier.NewProvider("opsgenie", p)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}

	return notifiers, nil
}

// Help provides the help information for the start command.
func (c *Command) Help() string {
	helpText := `
  Usage: emrscale start [options]

    Starts the emrscale reconciliation loop and runs until an interrupt
    is received, unless -run-once is passed.

  General Options:

    -config=<path>
      The path to either a single config file or a directory of config
      files to use. Processed in lexicographic order.

    -dev
      Start in development mode with dev-friendly defaults.

    -s=<seconds>
      The interval in seconds between reconciliation ticks.

    -dry-run
      Log every gating/dispatch decision but emit no provider mutation.

    -run-once
      Perform a single reconciliation tick and exit.

    -event-queue=<name>
      Name of the inbound event-bus queue to drain each tick.

    -region=<aws region>

    -rpc-bind-address=<address:port>
      Bind address for the status RPC listener.

    -http-bind-address=<address:port>
      Bind address for the /metrics HTTP endpoint.

  Telemetry Options:

    -statsd-address=<address:port>
    -prometheus-bind-address=<address:port>

  Notification Options:

    -cluster-identifier=<name>
    -pagerduty-service-key=<key>
    -opsgenie-api-key=<key>
`
	return strings.TrimSpace(helpText)
}

// Synopsis provides a brief summary of the start command.
func (c *Command) Synopsis() string {
	return "Runs the emrscale reconciliation loop"
}
