package command

import (
	"strings"
	"testing"

	"github.com/mitchellh/cli"

	"github.com/elsevier-core-engineering/emrscale/client/store"
)

func TestFailsafeCommand_Run_enableForce(t *testing.T) {
	withTestRegistry(t)
	seedCluster(t, "j-FAILSAFE")

	ui := cli.NewMockUi()
	cmd := &FailsafeCommand{Meta: Meta{UI: ui}}

	code := cmd.Run([]string{"-cluster-id=j-FAILSAFE", "-enable", "-force"})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, ui.ErrorWriter.String())
	}

	s, err := store.Open()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	defer s.Close()

	c, err := s.GetCluster("j-FAILSAFE")
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if !c.FailsafeMode {
		t.Fatalf("expected failsafe mode to be enabled")
	}
}

func TestFailsafeCommand_Run_alreadyInDesiredState(t *testing.T) {
	withTestRegistry(t)
	seedCluster(t, "j-FAILSAFE2")

	ui := cli.NewMockUi()
	cmd := &FailsafeCommand{Meta: Meta{UI: ui}}

	// Cluster starts with FailsafeMode=false, so -disable is a no-op.
	code := cmd.Run([]string{"-cluster-id=j-FAILSAFE2", "-disable", "-force"})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(ui.WarnWriter.String(), "already") {
		t.Fatalf("expected a no-action-required warning, got %q", ui.WarnWriter.String())
	}
}

func TestFailsafeCommand_Run_requiresExactlyOneVerb(t *testing.T) {
	withTestRegistry(t)
	seedCluster(t, "j-FAILSAFE3")

	ui := cli.NewMockUi()
	cmd := &FailsafeCommand{Meta: Meta{UI: ui}}

	if code := cmd.Run([]string{"-cluster-id=j-FAILSAFE3"}); code != 1 {
		t.Fatalf("expected exit 1 with neither -enable nor -disable, got %d", code)
	}
	if code := cmd.Run([]string{"-cluster-id=j-FAILSAFE3", "-enable", "-disable"}); code != 1 {
		t.Fatalf("expected exit 1 with both -enable and -disable, got %d", code)
	}
}
