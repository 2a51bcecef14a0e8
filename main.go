package main

import (
	"fmt"
	"os"

	"github.com/elsevier-core-engineering/emrscale/version"
	"github.com/mitchellh/cli"
)

func main() {
	os.Exit(Run(os.Args[1:]))
}

// Run runs the emrscale CLI with the given arguments and returns an
// exit code.
func Run(args []string) int {
	c := cli.NewCLI("emrscale", version.Get())
	c.Args = args
	c.Commands = Commands(nil)

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
		return 1
	}

	return exitCode
}
