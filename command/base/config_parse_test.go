package base

import (
	"io/ioutil"
	"os"
	"reflect"
	"testing"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
)

func TestConfigParse_LoadConfigFile(t *testing.T) {
	fh, err := ioutil.TempFile("", "emrscale")
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	defer os.Remove(fh.Name())

	content := `
    log_level           = "info"
    scaling_interval    = 45
    dry_run             = true
    aws_region          = "us-west-2"
    failsafe_threshold  = 5

    telemetry {
      statsd_address = "10.0.0.10:8125"
    }

    notification {
      pagerduty_service_key = "thistooisafakekey"
      cluster_identifier    = "emr-prod"
    }
  `
	if _, err := fh.WriteString(content); err != nil {
		t.Fatalf("err: %s", err)
	}
	if err := fh.Close(); err != nil {
		t.Fatalf("err: %s", err)
	}

	c, err := LoadConfig(fh.Name())
	if err != nil {
		t.Fatal(err)
	}

	expected := &structs.Config{
		LogLevel:          "info",
		ScalingInterval:   45,
		DryRun:            true,
		Region:            "us-west-2",
		FailsafeThreshold: 5,

		Telemetry: &structs.Telemetry{
			StatsdAddress: "10.0.0.10:8125",
		},

		Notification: &structs.Notification{
			PagerDutyServiceKey: "thistooisafakekey",
			ClusterIdentifier:   "emr-prod",
		},
	}
	if !reflect.DeepEqual(c, expected) {
		t.Fatalf("expected \n%#v\n\n, got \n\n%#v\n\n", expected, c)
	}
}
