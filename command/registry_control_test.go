package command

import (
	"testing"

	"github.com/mitchellh/cli"

	"github.com/elsevier-core-engineering/emrscale/client/store"
)

func TestEnableDisableClusterCommand_Run(t *testing.T) {
	withTestRegistry(t)
	seedCluster(t, "j-TOGGLE")

	ui := cli.NewMockUi()
	disable := &DisableClusterCommand{Meta: Meta{UI: ui}}
	if code := disable.Run([]string{"-cluster-id=j-TOGGLE"}); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, ui.ErrorWriter.String())
	}

	s, err := store.Open()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	c, err := s.GetCluster("j-TOGGLE")
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if c.Active {
		t.Fatalf("expected cluster to be disabled")
	}
	s.Close()

	ui = cli.NewMockUi()
	enable := &EnableClusterCommand{Meta: Meta{UI: ui}}
	if code := enable.Run([]string{"-cluster-id=j-TOGGLE"}); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, ui.ErrorWriter.String())
	}

	s, err = store.Open()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	defer s.Close()
	c, err = s.GetCluster("j-TOGGLE")
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if !c.Active {
		t.Fatalf("expected cluster to be re-enabled")
	}
}

func TestEnableClusterCommand_Run_requiresSelector(t *testing.T) {
	withTestRegistry(t)

	ui := cli.NewMockUi()
	cmd := &EnableClusterCommand{Meta: Meta{UI: ui}}
	if code := cmd.Run(nil); code != 1 {
		t.Fatalf("expected exit 1 when neither -cluster-id nor -a is given, got %d", code)
	}
}

func TestDisableClusterCommand_Run_all(t *testing.T) {
	withTestRegistry(t)
	seedCluster(t, "j-ALL-1")
	seedCluster(t, "j-ALL-2")

	ui := cli.NewMockUi()
	cmd := &DisableClusterCommand{Meta: Meta{UI: ui}}
	if code := cmd.Run([]string{"-a"}); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, ui.ErrorWriter.String())
	}

	s, err := store.Open()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	defer s.Close()

	clusters, err := s.ListClusters()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	for _, c := range clusters {
		if c.Active {
			t.Fatalf("expected cluster %s to be disabled", c.ID)
		}
	}
}
