package command

import (
	"os"
	"strings"
	"testing"

	"github.com/mitchellh/cli"
)

func TestInitCommand_Run(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("err: %s", err)
	}
	defer os.Chdir(wd)

	ui := cli.NewMockUi()
	cmd := &InitCommand{Meta: Meta{UI: ui}}

	if code := cmd.Run(nil); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, ui.ErrorWriter.String())
	}

	content, err := os.ReadFile(DefaultInitName)
	if err != nil {
		t.Fatalf("expected %s to be written: %s", DefaultInitName, err)
	}
	if !strings.Contains(string(content), "scaling_interval") {
		t.Fatalf("expected example config to set scaling_interval, got %q", content)
	}

	// Running again without overwriting should fail.
	ui = cli.NewMockUi()
	cmd = &InitCommand{Meta: Meta{UI: ui}}
	if code := cmd.Run(nil); code != 1 {
		t.Fatalf("expected exit 1 when config already exists, got %d", code)
	}
}
