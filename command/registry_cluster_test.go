package command

import (
	"os"
	"strings"
	"testing"

	"github.com/mitchellh/cli"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/client/store"
)

// withTestRegistry isolates store.Open()'s default sqlite file to a
// fresh temp directory for the duration of the test.
func withTestRegistry(t *testing.T) {
	t.Helper()
	os.Unsetenv("DB_CONN_STR")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("err: %s", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func seedCluster(t *testing.T, id string) {
	t.Helper()

	s, err := store.Open()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	defer s.Close()

	c := &structs.Cluster{
		ID:               id,
		Name:             "orig-name",
		Active:           true,
		CPULower:         0.3,
		CPUUpper:         0.7,
		LookbackMinutes:  15,
		CooldownMinutes:  5,
		ScaleInFactor:    1,
		ScaleOutFactor:   1,
		MaxCapacityLimit: 10,
		ResizePolicy:     structs.ResizePolicyCPUBased,
	}
	if err := s.AddCluster(c); err != nil {
		t.Fatalf("err: %s", err)
	}
}

func TestModifyClusterCommand_Run(t *testing.T) {
	withTestRegistry(t)
	seedCluster(t, "j-MODIFY")

	ui := cli.NewMockUi()
	cmd := &ModifyClusterCommand{Meta: Meta{UI: ui}}

	code := cmd.Run([]string{"-cluster-id=j-MODIFY", "-cluster-name=renamed", "-max-capacity-limit=20"})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, ui.ErrorWriter.String())
	}

	s, err := store.Open()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	defer s.Close()

	c, err := s.GetCluster("j-MODIFY")
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	if c.Name != "renamed" {
		t.Fatalf("expected name to be updated, got %q", c.Name)
	}
	if c.MaxCapacityLimit != 20 {
		t.Fatalf("expected max capacity limit 20, got %d", c.MaxCapacityLimit)
	}
	if c.CPULower != 0.3 {
		t.Fatalf("expected untouched cpu_lower to survive, got %v", c.CPULower)
	}
}

func TestModifyClusterCommand_Run_unknownCluster(t *testing.T) {
	withTestRegistry(t)

	ui := cli.NewMockUi()
	cmd := &ModifyClusterCommand{Meta: Meta{UI: ui}}

	code := cmd.Run([]string{"-cluster-id=j-NOPE"})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(ui.ErrorWriter.String(), "j-NOPE") {
		t.Fatalf("expected error to mention cluster id, got %q", ui.ErrorWriter.String())
	}
}

func TestListClustersCommand_Run(t *testing.T) {
	withTestRegistry(t)

	ui := cli.NewMockUi()
	cmd := &ListClustersCommand{Meta: Meta{UI: ui}}
	if code := cmd.Run(nil); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(ui.OutputWriter.String(), "No clusters registered") {
		t.Fatalf("expected empty-registry message, got %q", ui.OutputWriter.String())
	}

	seedCluster(t, "j-LIST")

	ui = cli.NewMockUi()
	cmd = &ListClustersCommand{Meta: Meta{UI: ui}}
	if code := cmd.Run(nil); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(ui.OutputWriter.String(), "j-LIST") {
		t.Fatalf("expected listing to include j-LIST, got %q", ui.OutputWriter.String())
	}
}

func TestDescribeClusterCommand_Run(t *testing.T) {
	withTestRegistry(t)
	seedCluster(t, "j-DESC")

	ui := cli.NewMockUi()
	cmd := &DescribeClusterCommand{Meta: Meta{UI: ui}}
	if code := cmd.Run([]string{"-cluster-id=j-DESC"}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(ui.OutputWriter.String(), "j-DESC") {
		t.Fatalf("expected output to include cluster id, got %q", ui.OutputWriter.String())
	}
}

func TestDeleteClusterCommand_Run(t *testing.T) {
	withTestRegistry(t)
	seedCluster(t, "j-DEL")

	ui := cli.NewMockUi()
	cmd := &DeleteClusterCommand{Meta: Meta{UI: ui}}
	if code := cmd.Run([]string{"-cluster-id=j-DEL"}); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, ui.ErrorWriter.String())
	}

	s, err := store.Open()
	if err != nil {
		t.Fatalf("err: %s", err)
	}
	defer s.Close()

	if _, err := s.GetCluster("j-DEL"); err == nil {
		t.Fatalf("expected cluster to be deleted")
	}
}
