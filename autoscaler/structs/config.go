package structs

// Config is the main configuration struct used to configure the
// emrscale daemon. It is assembled by merging, in increasing priority,
// a built-in default, an optional HCL file, and CLI flags — the same
// three-way merge the teacher's agent config uses.
type Config struct {
	// LogLevel is the level at which the application should log from.
	LogLevel string `mapstructure:"log_level"`

	// ScalingInterval is the number of seconds between reconciliation
	// ticks when running in periodic mode.
	ScalingInterval int `mapstructure:"scaling_interval"`

	// DryRun, when true, logs every gating/dispatch decision but emits
	// no EMR mutation.
	DryRun bool `mapstructure:"dry_run"`

	// RunOnce, when true, performs a single tick and exits.
	RunOnce bool `mapstructure:"run_once"`

	// EventQueue is the name of the inbound event-bus queue to drain at
	// the end of each tick. Empty disables event draining.
	EventQueue string `mapstructure:"event_queue"`

	// Region is the AWS region EMR/EC2/SQS API calls are issued against.
	Region string `mapstructure:"aws_region"`

	// FailsafeThreshold is the number of consecutive per-cluster tick
	// failures that trips the failsafe circuit breaker for that cluster.
	FailsafeThreshold int `mapstructure:"failsafe_threshold"`

	// RPCBindAddress is the bind address of the status RPC listener.
	RPCBindAddress string `mapstructure:"rpc_bind_address"`

	// HTTPBindAddress is the bind address of the status/metrics HTTP
	// server. Empty disables it.
	HTTPBindAddress string `mapstructure:"http_bind_address"`

	Telemetry    *Telemetry    `mapstructure:"telemetry"`
	Notification *Notification `mapstructure:"notification"`
}

// Telemetry controls telemetry sinks. If a value is present, that sink
// is enabled.
type Telemetry struct {
	// StatsdAddress specifies the address of a statsd server to forward
	// metrics to, including the port.
	StatsdAddress string `mapstructure:"statsd_address"`

	// PrometheusBindAddress, when set, exposes a Prometheus /metrics
	// endpoint on this address alongside the statsd sink. A non-empty
	// HTTPBindAddress takes precedence over it.
	PrometheusBindAddress string `mapstructure:"prometheus_bind_address"`
}

// Notification controls failsafe escalation.
type Notification struct {
	ClusterIdentifier   string `mapstructure:"cluster_identifier"`
	PagerDutyServiceKey string `mapstructure:"pagerduty_service_key"`
	OpsGenieAPIKey      string `mapstructure:"opsgenie_api_key"`
}

// Merge merges two configurations, with values from b taking priority
// whenever they are non-zero.
func (c *Config) Merge(b *Config) *Config {
	if b == nil {
		return c
	}
	config := *c

	if b.LogLevel != "" {
		config.LogLevel = b.LogLevel
	}
	if b.ScalingInterval > 0 {
		config.ScalingInterval = b.ScalingInterval
	}
	if b.DryRun {
		config.DryRun = b.DryRun
	}
	if b.RunOnce {
		config.RunOnce = b.RunOnce
	}
	if b.EventQueue != "" {
		config.EventQueue = b.EventQueue
	}
	if b.Region != "" {
		config.Region = b.Region
	}
	if b.FailsafeThreshold > 0 {
		config.FailsafeThreshold = b.FailsafeThreshold
	}
	if b.RPCBindAddress != "" {
		config.RPCBindAddress = b.RPCBindAddress
	}
	if b.HTTPBindAddress != "" {
		config.HTTPBindAddress = b.HTTPBindAddress
	}

	if config.Telemetry == nil && b.Telemetry != nil {
		telemetry := *b.Telemetry
		config.Telemetry = &telemetry
	} else if b.Telemetry != nil {
		config.Telemetry = config.Telemetry.Merge(b.Telemetry)
	}

	if config.Notification == nil && b.Notification != nil {
		notification := *b.Notification
		config.Notification = &notification
	} else if b.Notification != nil {
		config.Notification = config.Notification.Merge(b.Notification)
	}

	return &config
}

// Merge merges two Telemetry configurations together.
func (t *Telemetry) Merge(b *Telemetry) *Telemetry {
	config := *t
	if b.StatsdAddress != "" {
		config.StatsdAddress = b.StatsdAddress
	}
	if b.PrometheusBindAddress != "" {
		config.PrometheusBindAddress = b.PrometheusBindAddress
	}
	return &config
}

// Merge merges two Notification configurations together.
func (n *Notification) Merge(b *Notification) *Notification {
	config := *n
	if b.ClusterIdentifier != "" {
		config.ClusterIdentifier = b.ClusterIdentifier
	}
	if b.PagerDutyServiceKey != "" {
		config.PagerDutyServiceKey = b.PagerDutyServiceKey
	}
	if b.OpsGenieAPIKey != "" {
		config.OpsGenieAPIKey = b.OpsGenieAPIKey
	}
	return &config
}
