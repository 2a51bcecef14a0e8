package command

import (
	"strings"
	"testing"

	"github.com/mitchellh/cli"
)

func TestVersionCommand_Run(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &VersionCommand{Version: "1.2.3", VersionPrerelease: "beta", UI: ui}

	if code := cmd.Run(nil); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	out := ui.OutputWriter.String()
	if !strings.Contains(out, "emrscale v1.2.3-beta") {
		t.Fatalf("expected version string, got %q", out)
	}
}

func TestVersionCommand_Run_noPrerelease(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &VersionCommand{Version: "1.2.3", UI: ui}

	cmd.Run(nil)

	out := ui.OutputWriter.String()
	if strings.Contains(out, "-") {
		t.Fatalf("expected no prerelease suffix, got %q", out)
	}
}
