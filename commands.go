package main

import (
	"os"

	"github.com/elsevier-core-engineering/emrscale/command"
	"github.com/elsevier-core-engineering/emrscale/command/admin"
	"github.com/elsevier-core-engineering/emrscale/command/agent"
	"github.com/elsevier-core-engineering/emrscale/version"
	"github.com/mitchellh/cli"
)

// Commands returns the mapping of CLI commands for emrscale. The meta
// parameter lets you set meta options for all commands.
func Commands(metaPtr *command.Meta) map[string]cli.CommandFactory {
	if metaPtr == nil {
		metaPtr = new(command.Meta)
	}

	meta := *metaPtr
	if meta.UI == nil {
		meta.UI = &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      os.Stdout,
			ErrorWriter: os.Stderr,
		}
	}

	return map[string]cli.CommandFactory{
		"start": func() (cli.Command, error) {
			return &agent.Command{Meta: meta}, nil
		},
		"init": func() (cli.Command, error) {
			return &command.InitCommand{Meta: meta}, nil
		},
		"failsafe": func() (cli.Command, error) {
			return &command.FailsafeCommand{Meta: meta}, nil
		},
		"add-cluster": func() (cli.Command, error) {
			return &command.AddClusterCommand{Meta: meta}, nil
		},
		"modify-cluster": func() (cli.Command, error) {
			return &command.ModifyClusterCommand{Meta: meta}, nil
		},
		"list-clusters": func() (cli.Command, error) {
			return &command.ListClustersCommand{Meta: meta}, nil
		},
		"describe-cluster": func() (cli.Command, error) {
			return &command.DescribeClusterCommand{Meta: meta}, nil
		},
		"delete-cluster": func() (cli.Command, error) {
			return &command.DeleteClusterCommand{Meta: meta}, nil
		},
		"enable-cluster": func() (cli.Command, error) {
			return &command.EnableClusterCommand{Meta: meta}, nil
		},
		"disable-cluster": func() (cli.Command, error) {
			return &command.DisableClusterCommand{Meta: meta}, nil
		},
		"reset": func() (cli.Command, error) {
			return &command.ResetCommand{Meta: meta}, nil
		},
		"run-test-job": func() (cli.Command, error) {
			return &admin.RunTestJobCommand{Meta: meta}, nil
		},
		"kill-test-job": func() (cli.Command, error) {
			return &admin.KillTestJobCommand{Meta: meta}, nil
		},
		"version": func() (cli.Command, error) {
			ver := version.Version
			rel := version.VersionPrerelease

			if rel == "" && version.VersionPrerelease != "" {
				rel = "dev"
			}

			return &command.VersionCommand{
				Version:           ver,
				VersionPrerelease: rel,
				UI:                meta.UI,
			}, nil
		},
	}
}
